// Package store defines the keyed document store the snapshots persist
// through. The key is the user's credential, used verbatim; whoever supplies
// the same key reads and overwrites the same document. Saves are whole-
// document last-write-wins with no version check — a stronger backend can be
// substituted behind this interface without touching callers.
package store

import (
	"context"

	"gagyebu/internal/core"
	"gagyebu/internal/theme"
)

// DocumentStore loads and saves one snapshot per credential key.
type DocumentStore interface {
	// Load fetches the snapshot stored under key. An absent document is not
	// an error: it returns the default snapshot and found=false, signalling
	// first-time use.
	Load(ctx context.Context, key string) (snap core.Snapshot, found bool, err error)

	// Save overwrites the document under key wholesale. Safe to call
	// repeatedly and frequently.
	Save(ctx context.Context, key string, snap core.Snapshot) error
}

// CleanupFunc releases a backend's resources.
type CleanupFunc func() error

// Default returns the snapshot handed to first-time users.
func Default() core.Snapshot {
	return core.Snapshot{
		Records: []core.DayRecord{},
		Tags:    []string{},
		Theme:   theme.DefaultTheme,
		Font:    theme.DefaultFont,
	}
}
