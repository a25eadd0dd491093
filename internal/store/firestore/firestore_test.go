package firestore

import (
	"reflect"
	"testing"

	firestore "google.golang.org/api/firestore/v1"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

func TestSnapshotCodecRoundTrip(t *testing.T) {
	snap := core.Snapshot{
		Records: []core.DayRecord{
			{
				Date: "2026-01-20",
				Items: []core.Item{
					{ID: 1737340000000, Category: core.CategoryFood, Amount: 12000, Name: "lunch", Memo: "회사 근처", Time: "12:30", Tags: []string{"외식"}},
					{ID: 1737350000000, Category: core.CategoryEtc, Amount: -50000, Name: "refund", Tags: []string{}},
				},
				DailyNote: "바쁜 하루",
			},
			{Date: "2026-01-21", Items: []core.Item{}, DailyNote: ""},
		},
		Tags:  []string{"외식", "카페"},
		Theme: "nightsky",
		Font:  "mono",
	}

	doc := &firestore.Document{Fields: encodeSnapshot(snap)}
	got, err := decodeSnapshot(doc)
	if err != nil {
		t.Fatalf("decodeSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}
}

func TestDecodeEmptyDocument(t *testing.T) {
	got, err := decodeSnapshot(&firestore.Document{})
	if err != nil {
		t.Fatalf("decodeSnapshot: %v", err)
	}
	if !reflect.DeepEqual(got, store.Default()) {
		t.Fatalf("expected default snapshot, got %+v", got)
	}
}

func TestDecodeNormalizesMissingFields(t *testing.T) {
	// A document written by an early client: no theme/font, items without tags.
	doc := &firestore.Document{Fields: map[string]firestore.Value{
		"data": {ArrayValue: &firestore.ArrayValue{Values: []*firestore.Value{
			{MapValue: &firestore.MapValue{Fields: map[string]firestore.Value{
				"date": {StringValue: "2026-01-20"},
				"items": {ArrayValue: &firestore.ArrayValue{Values: []*firestore.Value{
					{MapValue: &firestore.MapValue{Fields: map[string]firestore.Value{
						"id":       {IntegerValue: 7},
						"category": {StringValue: "식비"},
						"amount":   {IntegerValue: 9000},
						"name":     {StringValue: "lunch"},
					}}},
				}}},
			}}},
		}}},
	}}

	got, err := decodeSnapshot(doc)
	if err != nil {
		t.Fatalf("decodeSnapshot: %v", err)
	}
	if got.Theme != "modern" || got.Font != "sans" {
		t.Fatalf("expected default theme/font, got %q/%q", got.Theme, got.Font)
	}
	if len(got.Records) != 1 || len(got.Records[0].Items) != 1 {
		t.Fatalf("unexpected records: %+v", got.Records)
	}
	item := got.Records[0].Items[0]
	if item.ID != 7 || item.Category != core.CategoryFood || item.Amount != 9000 {
		t.Fatalf("unexpected item: %+v", item)
	}
	if item.Tags == nil || len(item.Tags) != 0 {
		t.Fatalf("expected empty tags, got %#v", item.Tags)
	}
}
