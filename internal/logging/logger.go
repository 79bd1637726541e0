package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Config is the `logging` section of config.yaml.
type Config struct {
	// Level is the minimum level to output ("debug", "info", "warn", "error").
	// STITCHBOOK_LOG_LEVEL overrides it.
	Level string `yaml:"level,omitempty"`
	// Format is "text" (default) or "json". STITCHBOOK_LOG_FORMAT overrides it.
	Format string `yaml:"format,omitempty"`
	// File, if set, receives log output in addition to stderr.
	File string `yaml:"file,omitempty"`
}

const defaultLevel = logrus.WarnLevel

var (
	base      = newBase()
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	logFile   *os.File
)

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(defaultLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// NewLogger returns the logger for a component. Loggers are cached per
// component and share one underlying logger, so Configure applies to all.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, ok := loggers[component]; ok {
		return logger
	}
	entry := base.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure applies cfg, with environment variables taking precedence.
func Configure(cfg Config) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelStr := cfg.Level
	if env := os.Getenv("STITCHBOOK_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level := defaultLevel
	if levelStr != "" {
		parsed, err := logrus.ParseLevel(levelStr)
		if err != nil {
			return fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}
	base.SetLevel(level)

	format := cfg.Format
	if env := os.Getenv("STITCHBOOK_LOG_FORMAT"); env != "" {
		format = env
	}
	switch format {
	case "json":
		base.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	if cfg.File == "" {
		base.SetOutput(os.Stderr)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logFile = f
	base.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}

// SetOutput redirects all loggers, mainly for tests.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	base.SetOutput(w)
}
