// Package sqlite persists snapshots in a local SQLite file, one JSON
// document per credential key. It serves as the offline-capable local copy;
// the worker mirrors it to the remote store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements store.DocumentStore.
func (s *Store) Load(ctx context.Context, key string) (core.Snapshot, bool, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM snapshots WHERE key = ?`, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Default(), false, nil
	}
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("select snapshot: %w", err)
	}

	var snap core.Snapshot
	if err := json.Unmarshal(doc, &snap); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("decode snapshot document: %w", err)
	}
	return snap, true, nil
}

// Save implements store.DocumentStore.
func (s *Store) Save(ctx context.Context, key string, snap core.Snapshot) error {
	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, document, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		key, doc, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to SQLite",
		"records", len(snap.Records),
		"tags", len(snap.Tags),
		"bytes", len(doc))
	return nil
}
