package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gagyebu/internal/auth"
	"gagyebu/internal/core"
	"gagyebu/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(":0", memory.New(), auth.PlainKeyer{}, nil, Options{
		SaveTimeout: time.Second,
	})
}

func doRequest(t *testing.T, s *Server, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if key != "" {
		req.Header.Set(credentialHeader, key)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func login(t *testing.T, s *Server, pin, subID string) string {
	t.Helper()
	rec := doRequest(t, s, http.MethodPost, "/login", "", loginRequest{PIN: pin, SubID: subID})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[loginResponse](t, rec).Key
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLoginFirstUse(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/login", "", loginRequest{PIN: "1234", SubID: "house"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[loginResponse](t, rec)
	if resp.Key != "1234house" {
		t.Fatalf("expected key 1234house, got %q", resp.Key)
	}
	if resp.Theme != "modern" || resp.Font != "sans" {
		t.Fatalf("expected default settings, got theme=%q font=%q", resp.Theme, resp.Font)
	}
	if resp.RecordCount != 0 || resp.SyncStatus != "synced" {
		t.Fatalf("expected empty synced snapshot, got %+v", resp)
	}
}

func TestLoginShortPIN(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodPost, "/login", "", loginRequest{PIN: "12"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t)
	var last int
	for i := 0; i < 11; i++ {
		last = doRequest(t, s, http.MethodPost, "/login", "", loginRequest{PIN: "1234"}).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}

func TestMissingCredential(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/records/2026-03-10", "/tags", "/settings", "/sync"} {
		rec := doRequest(t, s, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestItemLifecycle(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "house")

	rec := doRequest(t, s, http.MethodPost, "/records/2026-03-10/items", key, itemRequest{
		Category: "식비", Amount: 12000, Name: "점심", Time: "12:30", Tags: []string{"회사"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	item := decodeBody[core.Item](t, rec)
	if item.ID == 0 {
		t.Fatal("expected assigned item id")
	}

	rec = doRequest(t, s, http.MethodGet, "/records/2026-03-10", key, nil)
	record := decodeBody[recordResponse](t, rec)
	if len(record.Items) != 1 || record.Total != 12000 {
		t.Fatalf("unexpected record: %+v", record)
	}

	rec = doRequest(t, s, http.MethodPut, fmt.Sprintf("/records/2026-03-10/items/%d", item.ID), key, itemRequest{
		Category: "교통", Amount: 1500, Name: "버스", Time: "08:10",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	record = decodeBody[recordResponse](t, rec)
	if record.Items[0].Name != "버스" || record.Items[0].ID != item.ID {
		t.Fatalf("update lost identity: %+v", record.Items[0])
	}

	rec = doRequest(t, s, http.MethodPut, "/records/2026-03-10/items/999999", key, itemRequest{
		Category: "식비", Amount: 100, Name: "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update missing: expected 404, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, fmt.Sprintf("/records/2026-03-10/items/%d", item.ID), key, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/stats/daily?date=2026-03-10", key, nil)
	daily := decodeBody[map[string]any](t, rec)
	if daily["total"].(float64) != 0 {
		t.Fatalf("expected zero total after delete, got %v", daily["total"])
	}
}

func TestAddItemRejectsInvalid(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "")

	cases := []itemRequest{
		{Category: "식비", Amount: 12000},                            // missing name
		{Category: "식비", Name: "점심"},                               // missing amount
		{Category: "간식", Amount: 1000, Name: "과자"},                 // unknown category
		{Category: "식비", Amount: 1000, Name: "점심", Time: "25:00"}, // bad clock
	}
	for i, req := range cases {
		rec := doRequest(t, s, http.MethodPost, "/records/2026-03-10/items", key, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("case %d: expected 422, got %d", i, rec.Code)
		}
	}

	rec := doRequest(t, s, http.MethodPost, "/records/bad-date/items", key, itemRequest{
		Category: "식비", Amount: 1000, Name: "점심",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", rec.Code)
	}
}

func TestDailyNote(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "")

	rec := doRequest(t, s, http.MethodPut, "/records/2026-03-10/note", key, noteRequest{Note: "가족 저녁"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	record := decodeBody[recordResponse](t, doRequest(t, s, http.MethodGet, "/records/2026-03-10", key, nil))
	if record.DailyNote != "가족 저녁" {
		t.Fatalf("expected note to persist, got %q", record.DailyNote)
	}
}

func TestWeeklyStats(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "")

	for i, date := range []string{"2026-03-04", "2026-03-07", "2026-03-10"} {
		rec := doRequest(t, s, http.MethodPost, "/records/"+date+"/items", key, itemRequest{
			Category: "식비", Amount: int64(1000 * (i + 1)), Name: "점심",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed %s: got %d", date, rec.Code)
		}
	}

	rec := doRequest(t, s, http.MethodGet, "/stats/weekly?date=2026-03-10", key, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[map[string][]struct {
		Date  string `json:"date"`
		Total int64  `json:"total"`
	}](t, rec)

	series := resp["series"]
	if len(series) != 7 {
		t.Fatalf("expected 7 days, got %d", len(series))
	}
	if series[0].Date != "2026-03-04" || series[6].Date != "2026-03-10" {
		t.Fatalf("wrong window: %s .. %s", series[0].Date, series[6].Date)
	}
	var sum int64
	for _, day := range series {
		sum += day.Total
	}
	if sum != 6000 {
		t.Fatalf("expected window sum 6000, got %d", sum)
	}
}

func TestTagsAccumulate(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "")

	for _, tags := range [][]string{{"회사", "점심"}, {"점심", "친구"}} {
		rec := doRequest(t, s, http.MethodPost, "/records/2026-03-10/items", key, itemRequest{
			Category: "식비", Amount: 1000, Name: "점심", Tags: tags,
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed: got %d", rec.Code)
		}
	}

	resp := decodeBody[map[string][]string](t, doRequest(t, s, http.MethodGet, "/tags", key, nil))
	want := []string{"회사", "점심", "친구"}
	got := resp["tags"]
	if len(got) != len(want) {
		t.Fatalf("expected tags %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected tags %v, got %v", want, got)
		}
	}
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "")

	rec := doRequest(t, s, http.MethodPut, "/settings", key, settingsRequest{Theme: "nightsky", Font: "mono"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	applied := decodeBody[map[string]string](t, rec)
	if applied["theme"] != "nightsky" || applied["font"] != "mono" {
		t.Fatalf("unexpected settings: %v", applied)
	}

	rec = doRequest(t, s, http.MethodPut, "/settings", key, settingsRequest{Theme: "plasma"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown theme, got %d", rec.Code)
	}

	resp := decodeBody[settingsResponse](t, doRequest(t, s, http.MethodGet, "/settings", key, nil))
	if resp.Theme.Name != "nightsky" || resp.Font.Name != "mono" {
		t.Fatalf("settings not persisted: theme=%q font=%q", resp.Theme.Name, resp.Font.Name)
	}
	if len(resp.Themes) == 0 || len(resp.Fonts) == 0 {
		t.Fatal("expected available theme and font lists")
	}
}

func TestSessionSurvivesEviction(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "house")

	rec := doRequest(t, s, http.MethodPost, "/records/2026-03-10/items", key, itemRequest{
		Category: "식비", Amount: 12000, Name: "점심",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add: got %d", rec.Code)
	}

	// The background save must land before the session is dropped.
	sess, ok := s.sessions.Get(key)
	if !ok {
		t.Fatal("expected cached session")
	}
	sess.Wait()
	s.sessions.Delete(key)

	record := decodeBody[recordResponse](t, doRequest(t, s, http.MethodGet, "/records/2026-03-10", key, nil))
	if len(record.Items) != 1 {
		t.Fatalf("expected re-opened session to load saved data, got %+v", record)
	}
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "")

	rec := doRequest(t, s, http.MethodPost, "/logout", key, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if _, ok := s.sessions.Get(key); ok {
		t.Fatal("expected session to be dropped on logout")
	}
}

func TestSyncStatus(t *testing.T) {
	s := newTestServer(t)
	key := login(t, s, "1234", "")

	resp := decodeBody[map[string]string](t, doRequest(t, s, http.MethodGet, "/sync", key, nil))
	if resp["status"] != "synced" {
		t.Fatalf("expected synced, got %q", resp["status"])
	}
}
