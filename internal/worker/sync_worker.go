package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gagyebu/internal/amqp"
	"gagyebu/internal/store"
)

// SyncWorker mirrors snapshots from the local document store to the remote
// one, driven by snapshot-dirty messages. The local copy is authoritative;
// the mirror is a plain last-write-wins overwrite.
type SyncWorker struct {
	local  store.DocumentStore
	remote store.DocumentStore
}

func NewSyncWorker(local, remote store.DocumentStore) *SyncWorker {
	return &SyncWorker{local: local, remote: remote}
}

// HandleDirty processes one snapshot-dirty message.
func (w *SyncWorker) HandleDirty(ctx context.Context, msg *amqp.SnapshotDirtyMessage) error {
	if msg.Key == "" {
		slog.WarnContext(ctx, "Dropping dirty message without key")
		return nil
	}

	snap, found, err := w.local.Load(ctx, msg.Key)
	if err != nil {
		return fmt.Errorf("load local snapshot: %w", err)
	}
	if !found {
		// Saved-then-evicted race or a stale queue entry; nothing to mirror.
		slog.WarnContext(ctx, "No local snapshot for dirty message, skipping")
		return nil
	}

	if err := w.remote.Save(ctx, msg.Key, snap); err != nil {
		return fmt.Errorf("mirror snapshot to remote: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot mirrored to remote store",
		"records", len(snap.Records),
		"tags", len(snap.Tags))
	return nil
}
