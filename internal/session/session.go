// Package session owns one user's in-memory snapshot and the mutate-then-sync
// cycle around it: every mutation applies to memory first, then a
// non-blocking save pushes the whole snapshot to the document store. The
// in-memory state stays the source of truth even when the remote copy lags.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/stats"
	"gagyebu/internal/store"
	"gagyebu/internal/tags"
	"gagyebu/internal/theme"
)

// Status is the three-state sync indicator the clients render.
type Status string

const (
	StatusSynced  Status = "synced"
	StatusSyncing Status = "syncing"
	StatusError   Status = "error"
)

// Publisher announces that a snapshot changed; nil disables publishing.
type Publisher interface {
	PublishSnapshotDirty(ctx context.Context, key string) error
}

type Session struct {
	key   string
	store store.DocumentStore

	mu     sync.Mutex
	ledger *ledger.Store
	tags   []string
	theme  string
	font   string
	status Status

	publisher   Publisher
	onStatus    func(Status)
	saveTimeout time.Duration
	saves       sync.WaitGroup
}

type Option func(*Session)

// WithPublisher attaches a snapshot-dirty publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// WithStatusFunc registers a callback invoked on every sync status change.
func WithStatusFunc(fn func(Status)) Option {
	return func(s *Session) { s.onStatus = fn }
}

// WithSaveTimeout bounds each background save.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Session) { s.saveTimeout = d }
}

// Open loads the snapshot stored under key, or starts a fresh one when the
// key has never been used. A failed load is treated the same way as an
// absent document: the session starts from the default snapshot and the
// in-memory copy becomes the source of truth, so first entry never fails.
// Unknown theme and font names from old documents fall back to the defaults.
func Open(ctx context.Context, st store.DocumentStore, key string, opts ...Option) *Session {
	snap, found, err := st.Load(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "Snapshot load failed, starting fresh", "error", err)
		snap = store.Default()
	} else if !found {
		slog.InfoContext(ctx, "No stored snapshot, starting fresh")
	}

	s := &Session{
		key:         key,
		store:       st,
		ledger:      ledger.New(snap.Records),
		tags:        append([]string(nil), snap.Tags...),
		theme:       theme.Normalize(snap.Theme),
		font:        theme.NormalizeFont(snap.Font),
		status:      StatusSynced,
		saveTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the credential key the session persists under.
func (s *Session) Key() string {
	return s.key
}

// AddItem validates and appends an item to the record for date, registers
// its tags, and schedules a save. The stored item (with its assigned id) is
// returned.
func (s *Session) AddItem(ctx context.Context, date string, item core.Item) (core.Item, error) {
	if err := item.Validate(); err != nil {
		return core.Item{}, err
	}
	rec, err := s.ledger.UpsertItem(date, item)
	if err != nil {
		return core.Item{}, err
	}
	s.registerTags(item.Tags)
	s.syncLater(ctx)
	return rec.Items[len(rec.Items)-1], nil
}

// UpdateItem replaces the item matching id on date, keeping the id.
func (s *Session) UpdateItem(ctx context.Context, date string, id int64, item core.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.ledger.UpdateItem(date, id, item); err != nil {
		return err
	}
	s.registerTags(item.Tags)
	s.syncLater(ctx)
	return nil
}

// DeleteItem removes the item matching id on date; absent ids are a no-op
// but still trigger a save, since every mutation schedules one.
func (s *Session) DeleteItem(ctx context.Context, date string, id int64) {
	s.ledger.DeleteItem(date, id)
	s.syncLater(ctx)
}

// SetNote upserts the daily note for date.
func (s *Session) SetNote(ctx context.Context, date, text string) error {
	if err := s.ledger.SetNote(date, text); err != nil {
		return err
	}
	s.syncLater(ctx)
	return nil
}

// SetTheme switches the display theme; unknown names are rejected.
func (s *Session) SetTheme(ctx context.Context, name string) error {
	if _, ok := theme.Lookup(name); !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	s.mu.Lock()
	s.theme = name
	s.mu.Unlock()
	s.syncLater(ctx)
	return nil
}

// SetFont switches the display font; unknown names are rejected.
func (s *Session) SetFont(ctx context.Context, name string) error {
	if _, ok := theme.LookupFont(name); !ok {
		return fmt.Errorf("unknown font %q", name)
	}
	s.mu.Lock()
	s.font = name
	s.mu.Unlock()
	s.syncLater(ctx)
	return nil
}

// Record returns the day record for date, synthesized empty when absent.
func (s *Session) Record(date string) core.DayRecord {
	return s.ledger.GetRecord(date)
}

// Records returns a copy of all day records.
func (s *Session) Records() []core.DayRecord {
	return s.ledger.Records()
}

// DailyTotal returns the spend total for date.
func (s *Session) DailyTotal(date string) int64 {
	return stats.DailyTotal(s.ledger.Records(), date)
}

// WeeklySeries returns the 7-day series ending at anchor.
func (s *Session) WeeklySeries(anchor string) ([]stats.DayTotal, error) {
	return stats.WeeklySeries(s.ledger.Records(), anchor)
}

// MonthlyBreakdown returns the month summary for anchor's month.
func (s *Session) MonthlyBreakdown(anchor string) (stats.MonthSummary, error) {
	return stats.MonthlyBreakdown(s.ledger.Records(), anchor)
}

// Calendar returns the month grid for anchor's month.
func (s *Session) Calendar(anchor string) (stats.MonthCalendar, error) {
	return stats.Calendar(s.ledger.Records(), anchor)
}

// Tags returns a copy of the accumulated tag vocabulary.
func (s *Session) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.tags...)
}

// Theme returns the active theme name.
func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Font returns the active font name.
func (s *Session) Font() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.font
}

// Status returns the latest sync status.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot assembles the persistable snapshot from the current state.
func (s *Session) Snapshot() core.Snapshot {
	s.mu.Lock()
	t, f := s.theme, s.font
	tg := append([]string(nil), s.tags...)
	s.mu.Unlock()
	return core.Snapshot{
		Records: s.ledger.Records(),
		Tags:    tg,
		Theme:   t,
		Font:    f,
	}
}

// Flush saves the current snapshot synchronously.
func (s *Session) Flush(ctx context.Context) error {
	return s.store.Save(ctx, s.key, s.Snapshot())
}

// Wait blocks until all scheduled background saves finished. Used by tests
// and by graceful shutdown.
func (s *Session) Wait() {
	s.saves.Wait()
}

func (s *Session) registerTags(incoming []string) {
	s.mu.Lock()
	s.tags = tags.Register(s.tags, incoming)
	s.mu.Unlock()
}

// syncLater schedules a whole-snapshot save without blocking the mutation
// path. Saves carry no version token; whichever save completes last sets the
// status, and a failure only flags the session as out of sync.
func (s *Session) syncLater(ctx context.Context) {
	snap := s.Snapshot()
	s.setStatus(StatusSyncing)

	s.saves.Add(1)
	go func() {
		defer s.saves.Done()

		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
		defer cancel()

		if err := s.store.Save(saveCtx, s.key, snap); err != nil {
			slog.ErrorContext(saveCtx, "Snapshot save failed", "error", err)
			s.setStatus(StatusError)
			return
		}
		s.setStatus(StatusSynced)

		if s.publisher != nil {
			if err := s.publisher.PublishSnapshotDirty(saveCtx, s.key); err != nil {
				// Mirror lag is acceptable; the next mutation republishes.
				slog.WarnContext(saveCtx, "Snapshot dirty publish failed", "error", err)
			}
		}
	}()
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	s.status = st
	cb := s.onStatus
	s.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}
