// Package firestore is the remote document store: one Firestore document
// per credential key under a single collection, matching the document shape
// the web clients persisted ({data, allTags, theme, font}).
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firestore "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

const DefaultCollection = "budgets"

type Store struct {
	svc        *firestore.Service
	project    string
	collection string
}

func New(ctx context.Context, project, collection string, opts ...option.ClientOption) (*Store, error) {
	if project == "" {
		return nil, fmt.Errorf("firestore project is required")
	}
	if collection == "" {
		collection = DefaultCollection
	}

	svc, err := firestore.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore service: %w", err)
	}

	return &Store{svc: svc, project: project, collection: collection}, nil
}

// NewFromCredentialsFile builds a store authenticated with a service
// account key file, or application default credentials when path is empty.
func NewFromCredentialsFile(ctx context.Context, project, collection, path string) (*Store, error) {
	var opts []option.ClientOption
	if path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	return New(ctx, project, collection, opts...)
}

func (s *Store) docName(key string) string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents/%s/%s",
		s.project, s.collection, key)
}

// Load implements store.DocumentStore.
func (s *Store) Load(ctx context.Context, key string) (core.Snapshot, bool, error) {
	doc, err := s.svc.Projects.Databases.Documents.Get(s.docName(key)).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 404 {
			return store.Default(), false, nil
		}
		return core.Snapshot{}, false, fmt.Errorf("get document: %w", err)
	}

	snap, err := decodeSnapshot(doc)
	if err != nil {
		return core.Snapshot{}, false, fmt.Errorf("decode document: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot loaded from Firestore",
		"collection", s.collection,
		"records", len(snap.Records))
	return snap, true, nil
}

// Save implements store.DocumentStore.
func (s *Store) Save(ctx context.Context, key string, snap core.Snapshot) error {
	doc := &firestore.Document{Fields: encodeSnapshot(snap)}

	_, err := s.svc.Projects.Databases.Documents.Patch(s.docName(key), doc).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("patch document: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved to Firestore",
		"collection", s.collection,
		"records", len(snap.Records))
	return nil
}

func encodeSnapshot(snap core.Snapshot) map[string]firestore.Value {
	records := make([]*firestore.Value, 0, len(snap.Records))
	for _, r := range snap.Records {
		records = append(records, recordValue(r))
	}
	return map[string]firestore.Value{
		"data":    {ArrayValue: &firestore.ArrayValue{Values: records}},
		"allTags": {ArrayValue: stringArray(snap.Tags)},
		"theme":   {StringValue: snap.Theme},
		"font":    {StringValue: snap.Font},
	}
}

func recordValue(r core.DayRecord) *firestore.Value {
	items := make([]*firestore.Value, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, &firestore.Value{MapValue: &firestore.MapValue{
			Fields: map[string]firestore.Value{
				"id":       {IntegerValue: it.ID},
				"category": {StringValue: string(it.Category)},
				"amount":   {IntegerValue: it.Amount},
				"name":     {StringValue: it.Name},
				"memo":     {StringValue: it.Memo},
				"time":     {StringValue: it.Time},
				"tags":     {ArrayValue: stringArray(it.Tags)},
			},
		}})
	}
	return &firestore.Value{MapValue: &firestore.MapValue{
		Fields: map[string]firestore.Value{
			"date":      {StringValue: r.Date},
			"items":     {ArrayValue: &firestore.ArrayValue{Values: items}},
			"dailyNote": {StringValue: r.DailyNote},
		},
	}}
}

func stringArray(values []string) *firestore.ArrayValue {
	out := make([]*firestore.Value, 0, len(values))
	for _, v := range values {
		out = append(out, &firestore.Value{StringValue: v})
	}
	return &firestore.ArrayValue{Values: out}
}

func decodeSnapshot(doc *firestore.Document) (core.Snapshot, error) {
	snap := store.Default()
	if doc == nil || doc.Fields == nil {
		return snap, nil
	}

	if v, ok := doc.Fields["theme"]; ok && v.StringValue != "" {
		snap.Theme = v.StringValue
	}
	if v, ok := doc.Fields["font"]; ok && v.StringValue != "" {
		snap.Font = v.StringValue
	}
	if v, ok := doc.Fields["allTags"]; ok && v.ArrayValue != nil {
		snap.Tags = decodeStrings(v.ArrayValue)
	}
	if v, ok := doc.Fields["data"]; ok && v.ArrayValue != nil {
		records := make([]core.DayRecord, 0, len(v.ArrayValue.Values))
		for _, rv := range v.ArrayValue.Values {
			rec, err := decodeRecord(rv)
			if err != nil {
				return core.Snapshot{}, err
			}
			records = append(records, rec)
		}
		snap.Records = records
	}
	return snap, nil
}

func decodeRecord(v *firestore.Value) (core.DayRecord, error) {
	if v == nil || v.MapValue == nil {
		return core.DayRecord{}, fmt.Errorf("record is not a map value")
	}
	fields := v.MapValue.Fields
	rec := core.DayRecord{
		Date:      fields["date"].StringValue,
		DailyNote: fields["dailyNote"].StringValue,
		Items:     []core.Item{},
	}
	if iv, ok := fields["items"]; ok && iv.ArrayValue != nil {
		for _, itv := range iv.ArrayValue.Values {
			if itv == nil || itv.MapValue == nil {
				return core.DayRecord{}, fmt.Errorf("item is not a map value")
			}
			f := itv.MapValue.Fields
			item := core.Item{
				ID:       f["id"].IntegerValue,
				Category: core.Category(f["category"].StringValue),
				Amount:   f["amount"].IntegerValue,
				Name:     f["name"].StringValue,
				Memo:     f["memo"].StringValue,
				Time:     f["time"].StringValue,
				Tags:     []string{},
			}
			if tv, ok := f["tags"]; ok && tv.ArrayValue != nil {
				item.Tags = decodeStrings(tv.ArrayValue)
			}
			rec.Items = append(rec.Items, item)
		}
	}
	return rec, nil
}

func decodeStrings(av *firestore.ArrayValue) []string {
	out := make([]string, 0, len(av.Values))
	for _, v := range av.Values {
		if v != nil {
			out = append(out, v.StringValue)
		}
	}
	return out
}
