package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rogersnm/stitchbook/internal/logging"
	"github.com/rogersnm/stitchbook/internal/model"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store is the local record database. Every collection lives in a single
// `records` table keyed by (collection, id) with the record JSON as payload.
type Store struct {
	db   *sql.DB
	path string
	log  *logrus.Entry

	patterns *Repo[*model.Pattern]
	projects *Repo[*model.Project]
	yarns    *Repo[*model.Yarn]
	finished *Repo[*model.FinishedWork]
}

const schema = `CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT '',
	payload    BLOB NOT NULL,
	PRIMARY KEY (collection, id)
)`

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// sqlite allows one writer; a single connection serializes writes
	// instead of surfacing SQLITE_BUSY to concurrent callers.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA busy_timeout=5000`, schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing database: %w", err)
		}
	}

	log := logging.NewLogger("store")
	s := &Store{db: db, path: path, log: log}
	s.patterns = newRepo[*model.Pattern](db, model.Patterns, log)
	s.projects = newRepo[*model.Project](db, model.Projects, log)
	s.yarns = newRepo[*model.Yarn](db, model.Yarns, log)
	s.finished = newRepo[*model.FinishedWork](db, model.Finished, log)
	log.WithField("path", path).Debug("opened record store")
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) Patterns() *Repo[*model.Pattern]      { return s.patterns }
func (s *Store) Projects() *Repo[*model.Project]      { return s.projects }
func (s *Store) Yarns() *Repo[*model.Yarn]            { return s.yarns }
func (s *Store) Finished() *Repo[*model.FinishedWork] { return s.finished }

func now() string {
	return model.Timestamp(time.Now())
}
