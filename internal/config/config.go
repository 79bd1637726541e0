package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rogersnm/stitchbook/internal/logging"
	"github.com/rogersnm/stitchbook/internal/remote"
	"gopkg.in/yaml.v3"
)

const (
	fileName        = "config.yaml"
	defaultDatabase = "stitchbook.db"
)

type Config struct {
	Remote  *RemoteConfig  `yaml:"remote,omitempty"`
	Logging logging.Config `yaml:"logging,omitempty"`
	// Database is the sqlite file, relative to the data directory unless
	// absolute.
	Database string `yaml:"database,omitempty"`
}

// RemoteConfig is the WebDAV connection, stored with the rest of the
// settings and handed to the remote package on each call.
type RemoteConfig struct {
	URL      string        `yaml:"url"`
	Username string        `yaml:"username,omitempty"`
	Password string        `yaml:"password,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
}

func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to the data directory. The file holds the remote
// password, so it is only readable by the owner.
func Save(dataDir string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	path := filepath.Join(dataDir, fileName)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// RemoteConfig returns the connection settings for the remote package. A
// config without a remote section yields an empty value, which the remote
// package rejects as not configured.
func (c *Config) RemoteConfig() remote.Config {
	if c.Remote == nil {
		return remote.Config{}
	}
	return remote.Config{
		URL:      c.Remote.URL,
		Username: c.Remote.Username,
		Password: c.Remote.Password,
		Timeout:  c.Remote.Timeout,
	}
}

// DatabasePath resolves the sqlite file location.
func (c *Config) DatabasePath(dataDir string) string {
	db := c.Database
	if db == "" {
		db = defaultDatabase
	}
	if filepath.IsAbs(db) {
		return db
	}
	return filepath.Join(dataDir, db)
}
