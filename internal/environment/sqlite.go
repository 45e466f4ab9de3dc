package environment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the state database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS build_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		build_id TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		nav_hash TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS fingerprints (
		docname TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load retrieves the last saved snapshot.
func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{Fingerprints: map[string]string{}}
	err := s.db.QueryRowContext(ctx,
		"SELECT build_id, config_hash, nav_hash FROM build_state WHERE id = 1",
	).Scan(&snap.BuildID, &snap.ConfigHash, &snap.NavHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query build state: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT docname, fingerprint FROM fingerprints")
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, fp string
		if err := rows.Scan(&name, &fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		snap.Fingerprints[name] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO build_state (id, build_id, config_hash, nav_hash) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET build_id = excluded.build_id, config_hash = excluded.config_hash, nav_hash = excluded.nav_hash`,
		snap.BuildID, snap.ConfigHash, snap.NavHash,
	); err != nil {
		return fmt.Errorf("upsert build state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM fingerprints"); err != nil {
		return fmt.Errorf("clear fingerprints: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO fingerprints (docname, fingerprint) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for name, fp := range snap.Fingerprints {
		if _, err := stmt.ExecContext(ctx, name, fp); err != nil {
			return fmt.Errorf("insert fingerprint %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
