// Package sqlite implements the durable trial store on top of a single
// SQLite database file. Multi-valued trial fields are stored as JSON text
// columns and decoded on read; the has_results flag is stored as an
// integer.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// DBFileName is the database file created under the data directory.
const DBFileName = "trials.db"

// Store errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Store is the SQLite-backed trial store. A Store is created detached;
// Attach opens (and if necessary creates) the database file and applies
// the schema. The zero value is not usable; call NewStore.
type Store struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB
}

// NewStore creates a detached Store.
func NewStore() *Store {
	return &Store{}
}

// Attach opens the database under cfg.DataDir, creating the directory and
// file on first use, and idempotently applies the schema. Safe to call on
// every process start; a second Attach on the same Store is an error.
func (s *Store) Attach(cfg types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return ErrAlreadyAttached
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// WAL and a busy timeout keep page transactions isolated from the
	// read API, which may query concurrently with a sync run. The
	// pragmas ride on the DSN so every pooled connection gets them.
	dbPath := filepath.Join(cfg.DataDir, DBFileName)
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	s.db = db
	s.attached = true
	return nil
}

// Detach closes the database. Idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	s.db = nil
	return nil
}

// conn returns the open database handle or ErrDetached.
func (s *Store) conn() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.attached {
		return nil, ErrDetached
	}
	return s.db, nil
}

// IsEmpty reports whether the trials table has no rows. Used by bootstrap
// logic to decide whether a full load is needed.
func (s *Store) IsEmpty() (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	var exists int
	err = db.QueryRow("SELECT EXISTS (SELECT 1 FROM trials)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking trials existence: %w", err)
	}
	return exists == 0, nil
}

// Count returns the number of stored trials.
func (s *Store) Count() (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := db.QueryRow("SELECT COUNT(*) FROM trials").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting trials: %w", err)
	}
	return n, nil
}
