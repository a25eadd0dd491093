// Package backend selects and constructs the configured document store.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"gagyebu/internal/config"
	"gagyebu/internal/store"
	"gagyebu/internal/store/firestore"
	"gagyebu/internal/store/memory"
	"gagyebu/internal/store/sqlite"
)

type Type string

const (
	Memory    Type = "memory"
	SQLite    Type = "sqlite"
	Firestore Type = "firestore"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Firestore:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{Memory, SQLite, Firestore}
}

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   store.DocumentStore
	Cleanup store.CleanupFunc
}

// Factory creates document stores based on configuration.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the document store named by t using the app configuration.
func (f *Factory) Create(ctx context.Context, t Type, cfg *config.Config) (*Result, error) {
	switch t {
	case Memory:
		f.logger.Info("Initialized memory document store")
		return &Result{Store: memory.New()}, nil

	case SQLite:
		if cfg.SQLiteDBPath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		st, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		f.logger.Info("Initialized SQLite document store", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil

	case Firestore:
		if cfg.FirestoreProject == "" {
			return nil, fmt.Errorf("Firestore project ID is required for firestore backend")
		}
		st, err := firestore.NewFromCredentialsFile(ctx,
			cfg.FirestoreProject, cfg.FirestoreCollection, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("initialize firestore store: %w", err)
		}
		f.logger.Info("Initialized Firestore document store",
			"project", cfg.FirestoreProject,
			"collection", cfg.FirestoreCollection)
		return &Result{Store: st}, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", t)
	}
}
