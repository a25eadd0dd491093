package ledger

import (
	"testing"
	"time"

	"gagyebu/internal/core"
)

func item(name string, amount int64) core.Item {
	return core.Item{Category: core.CategoryFood, Amount: amount, Name: name}
}

func TestUpsertItemInsertionOrderAndIDs(t *testing.T) {
	s := New(nil)

	for i, name := range []string{"a", "b", "c"} {
		rec, err := s.UpsertItem("2026-01-20", item(name, int64(i+1)*100))
		if err != nil {
			t.Fatalf("UpsertItem: %v", err)
		}
		if len(rec.Items) != i+1 {
			t.Fatalf("expected %d items, got %d", i+1, len(rec.Items))
		}
	}

	rec := s.GetRecord("2026-01-20")
	seen := map[int64]bool{}
	for i, name := range []string{"a", "b", "c"} {
		if rec.Items[i].Name != name {
			t.Fatalf("expected insertion order, got %q at %d", rec.Items[i].Name, i)
		}
		if seen[rec.Items[i].ID] {
			t.Fatalf("duplicate id %d", rec.Items[i].ID)
		}
		seen[rec.Items[i].ID] = true
	}
}

func TestUpsertItemIDCollision(t *testing.T) {
	s := New(nil)
	fixed := time.UnixMilli(1700000000000)
	s.now = func() time.Time { return fixed }

	r1, _ := s.UpsertItem("2026-01-20", item("a", 100))
	r2, _ := s.UpsertItem("2026-01-20", item("b", 200))
	if r1.Items[0].ID == r2.Items[1].ID {
		t.Fatalf("expected bumped id on collision, both are %d", r1.Items[0].ID)
	}
}

func TestUpsertItemInvalidDate(t *testing.T) {
	s := New(nil)
	if _, err := s.UpsertItem("20-01-2026", item("a", 100)); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}

func TestUpdateItem(t *testing.T) {
	s := New(nil)
	rec, _ := s.UpsertItem("2026-01-20", item("lunch", 12000))
	id := rec.Items[0].ID

	if err := s.UpdateItem("2026-01-20", id, item("dinner", 15000)); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got := s.GetRecord("2026-01-20").Items[0]
	if got.Name != "dinner" || got.Amount != 15000 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.ID != id {
		t.Fatalf("update changed id: %d -> %d", id, got.ID)
	}

	if err := s.UpdateItem("2026-01-20", id+999, item("x", 1)); err != core.ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := s.UpdateItem("2026-01-21", id, item("x", 1)); err != core.ErrItemNotFound {
		t.Fatalf("expected ErrItemNotFound for absent date, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	s := New(nil)
	rec, _ := s.UpsertItem("2026-01-20", item("lunch", 12000))
	id := rec.Items[0].ID

	// absent id and absent date are no-ops
	s.DeleteItem("2026-01-20", id+1)
	s.DeleteItem("2026-01-21", id)
	if got := len(s.GetRecord("2026-01-20").Items); got != 1 {
		t.Fatalf("no-op delete removed items, have %d", got)
	}

	s.DeleteItem("2026-01-20", id)
	if got := len(s.GetRecord("2026-01-20").Items); got != 0 {
		t.Fatalf("expected 0 items after delete, got %d", got)
	}
}

func TestSetNote(t *testing.T) {
	s := New(nil)

	// creates an empty-items record
	if err := s.SetNote("2026-01-20", "장보기"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	rec := s.GetRecord("2026-01-20")
	if rec.DailyNote != "장보기" || len(rec.Items) != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	// updates in place; items survive
	if _, err := s.UpsertItem("2026-01-20", item("lunch", 12000)); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}
	if err := s.SetNote("2026-01-20", "updated"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	rec = s.GetRecord("2026-01-20")
	if rec.DailyNote != "updated" || len(rec.Items) != 1 {
		t.Fatalf("unexpected record after update: %+v", rec)
	}
	if got := len(s.Records()); got != 1 {
		t.Fatalf("expected a single record per date, got %d", got)
	}
}

func TestGetRecordDoesNotMutate(t *testing.T) {
	s := New(nil)

	rec := s.GetRecord("2026-01-20")
	if rec.Date != "2026-01-20" || rec.Items == nil || len(rec.Items) != 0 {
		t.Fatalf("expected synthesized empty record, got %+v", rec)
	}
	if got := len(s.Records()); got != 0 {
		t.Fatalf("read created a record, store has %d", got)
	}

	// mutating the returned copy must not reach the store
	s.UpsertItem("2026-01-21", item("a", 100))
	copyRec := s.GetRecord("2026-01-21")
	copyRec.Items[0].Amount = 999
	if got := s.GetRecord("2026-01-21").Items[0].Amount; got != 100 {
		t.Fatalf("returned record aliases the store, amount %d", got)
	}
}

func TestSortItemsByTime(t *testing.T) {
	items := []core.Item{
		{Name: "dinner", Time: "19:00"},
		{Name: "coffee", Time: "09:15"},
		{Name: "lunch", Time: "12:30"},
	}
	SortItemsByTime(items)
	if items[0].Name != "coffee" || items[1].Name != "lunch" || items[2].Name != "dinner" {
		t.Fatalf("unexpected order: %v", items)
	}
}
