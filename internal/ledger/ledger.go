// Package ledger holds the in-memory day-keyed record store. Records are
// kept in first-write order; at most one record exists per date.
package ledger

import (
	"sort"
	"sync"
	"time"

	"gagyebu/internal/core"
)

type Store struct {
	mu      sync.Mutex
	records []core.DayRecord
	now     func() time.Time
}

// New builds a store seeded with records loaded from a snapshot. The input
// slice is deep-copied; the caller keeps no alias into the store.
func New(records []core.DayRecord) *Store {
	s := &Store{now: time.Now}
	s.records = make([]core.DayRecord, len(records))
	for i, r := range records {
		s.records[i] = r.Clone()
	}
	return s
}

// UpsertItem appends the item to the record for date, creating the record on
// first write. The item's ID is assigned here: a unix-millisecond timestamp,
// bumped until unique within the day. Returns the updated record.
func (s *Store) UpsertItem(date string, item core.Item) (core.DayRecord, error) {
	if err := core.ParseDate(date); err != nil {
		return core.DayRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.find(date)
	if rec == nil {
		s.records = append(s.records, core.DayRecord{Date: date, Items: []core.Item{}})
		rec = &s.records[len(s.records)-1]
	}

	item = item.Clone()
	item.ID = s.nextID(rec)
	rec.Items = append(rec.Items, item)
	return rec.Clone(), nil
}

// UpdateItem replaces the item matching id within the record for date,
// keeping the original id. Returns core.ErrItemNotFound when no such record
// or item exists.
func (s *Store) UpdateItem(date string, id int64, item core.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.find(date)
	if rec == nil {
		return core.ErrItemNotFound
	}
	for i := range rec.Items {
		if rec.Items[i].ID == id {
			item = item.Clone()
			item.ID = id
			rec.Items[i] = item
			return nil
		}
	}
	return core.ErrItemNotFound
}

// DeleteItem removes the item matching id. An absent date or id is a no-op.
func (s *Store) DeleteItem(date string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.find(date)
	if rec == nil {
		return
	}
	for i := range rec.Items {
		if rec.Items[i].ID == id {
			rec.Items = append(rec.Items[:i], rec.Items[i+1:]...)
			return
		}
	}
}

// SetNote upserts the record for date with the given note, creating an
// empty-items record if none exists.
func (s *Store) SetNote(date, text string) error {
	if err := core.ParseDate(date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec := s.find(date); rec != nil {
		rec.DailyNote = text
		return nil
	}
	s.records = append(s.records, core.DayRecord{Date: date, Items: []core.Item{}, DailyNote: text})
	return nil
}

// GetRecord returns the record for date, or a synthesized empty one. The
// store is never mutated by a read; items come back in insertion order.
func (s *Store) GetRecord(date string) core.DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec := s.find(date); rec != nil {
		return rec.Clone()
	}
	return core.DayRecord{Date: date, Items: []core.Item{}}
}

// Records returns a deep copy of all records in first-write order.
func (s *Store) Records() []core.DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.DayRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

func (s *Store) find(date string) *core.DayRecord {
	for i := range s.records {
		if s.records[i].Date == date {
			return &s.records[i]
		}
	}
	return nil
}

func (s *Store) nextID(rec *core.DayRecord) int64 {
	id := s.now().UnixMilli()
	for {
		taken := false
		for _, it := range rec.Items {
			if it.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		id++
	}
}

// SortItemsByTime orders items by their "HH:MM" field ascending, using plain
// string comparison. Read paths that display a day call this; the stored
// order stays insertion order.
func SortItemsByTime(items []core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time < items[j].Time
	})
}
