package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"gagyebu/internal/auth"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/session"
	"gagyebu/internal/theme"
)

// credentialHeader carries the composed key on every request after login.
const credentialHeader = "X-Budget-Key"

type loginRequest struct {
	PIN   string `json:"pin"`
	SubID string `json:"subId"`
}

type loginResponse struct {
	Key         string   `json:"key"`
	Theme       string   `json:"theme"`
	Font        string   `json:"font"`
	Tags        []string `json:"tags"`
	RecordCount int      `json:"recordCount"`
	SyncStatus  string   `json:"syncStatus"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.loginLimiter.allow(clientIP(r)) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key, err := s.keyer.Key(req.PIN, req.SubID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	sess := s.openSession(r.Context(), key)

	if s.creds != nil {
		if err := s.creds.Store(key); err != nil {
			slog.WarnContext(r.Context(), "Failed to cache credential", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Key:         key,
		Theme:       sess.Theme(),
		Font:        sess.Font(),
		Tags:        sess.Tags(),
		RecordCount: len(sess.Records()),
		SyncStatus:  string(sess.Status()),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(credentialHeader)
	if key != "" {
		s.sessions.Delete(key)
	}
	if s.creds != nil {
		if err := s.creds.Clear(); err != nil {
			slog.WarnContext(r.Context(), "Failed to clear credential cache", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionFromRequest resolves the caller's session, re-opening it from the
// document store after an eviction.
func (s *Server) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	key := r.Header.Get(credentialHeader)
	if key == "" {
		writeError(w, http.StatusUnauthorized, "missing credential")
		return nil, false
	}
	if len(key) < auth.MinPINLength {
		writeError(w, http.StatusUnauthorized, "invalid credential")
		return nil, false
	}

	if sess, ok := s.sessions.Get(key); ok {
		return sess, true
	}
	return s.openSession(r.Context(), key), true
}

// openSession always yields a usable session: a load failure falls back to a
// fresh default snapshot, matching the first-entry-is-never-an-error rule.
func (s *Server) openSession(ctx context.Context, key string) *session.Session {
	opts := []session.Option{session.WithSaveTimeout(s.saveTimeout)}
	if s.publisher != nil {
		opts = append(opts, session.WithPublisher(s.publisher))
	}
	sess := session.Open(ctx, s.docs, key, opts...)
	s.sessions.Set(key, sess)
	return sess
}

type recordResponse struct {
	Date      string      `json:"date"`
	Items     []core.Item `json:"items"`
	DailyNote string      `json:"dailyNote"`
	Total     int64       `json:"total"`
}

func recordView(rec core.DayRecord) recordResponse {
	ledger.SortItemsByTime(rec.Items)
	return recordResponse{
		Date:      rec.Date,
		Items:     rec.Items,
		DailyNote: rec.DailyNote,
		Total:     rec.Total(),
	}
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	writeJSON(w, http.StatusOK, recordView(sess.Record(date)))
}

type itemRequest struct {
	Category string   `json:"category"`
	Amount   int64    `json:"amount"`
	Name     string   `json:"name"`
	Memo     string   `json:"memo"`
	Time     string   `json:"time"`
	Tags     []string `json:"tags"`
}

func (req itemRequest) toItem() core.Item {
	return core.Item{
		Category: core.Category(req.Category),
		Amount:   req.Amount,
		Name:     req.Name,
		Memo:     req.Memo,
		Time:     req.Time,
		Tags:     req.Tags,
	}
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := sess.AddItem(r.Context(), date, req.toItem())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	slog.InfoContext(r.Context(), "Item added",
		"date", date,
		"item_id", item.ID,
		"amount", item.Amount,
		"category", item.Category.String())

	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := sess.UpdateItem(r.Context(), date, id, req.toItem()); err != nil {
		if errors.Is(err, core.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recordView(sess.Record(date)))
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	sess.DeleteItem(r.Context(), date, id)
	w.WriteHeader(http.StatusNoContent)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleSetNote(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := pathDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := sess.SetNote(r.Context(), date, req.Note); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDailyStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"total": sess.DailyTotal(date),
	})
}

func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	series, err := sess.WeeklySeries(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"series": series})
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	summary, err := sess.MonthlyBreakdown(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCalendarStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	date, err := queryDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	cal, err := sess.Calendar(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": sess.Tags()})
}

type settingsResponse struct {
	Theme  theme.Theme `json:"theme"`
	Font   theme.Font  `json:"font"`
	Themes []string    `json:"themes"`
	Fonts  []string    `json:"fonts"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	t, _ := theme.Lookup(sess.Theme())
	f, _ := theme.LookupFont(sess.Font())
	writeJSON(w, http.StatusOK, settingsResponse{
		Theme:  t,
		Font:   f,
		Themes: theme.Names(),
		Fonts:  theme.FontNames(),
	})
}

type settingsRequest struct {
	Theme string `json:"theme"`
	Font  string `json:"font"`
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Theme != "" {
		if err := sess.SetTheme(r.Context(), req.Theme); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if req.Font != "" {
		if err := sess.SetFont(r.Context(), req.Font); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"theme": sess.Theme(),
		"font":  sess.Font(),
	})
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(sess.Status())})
}
