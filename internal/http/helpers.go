package http

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"gagyebu/internal/core"
)

const maxBodyBytes = 1 << 20 // 1MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// pathDate extracts and validates the {date} path segment.
func pathDate(r *http.Request) (string, error) {
	date := r.PathValue("date")
	if err := core.ParseDate(date); err != nil {
		return "", err
	}
	return date, nil
}

// queryDate reads the date query parameter, defaulting to today.
func queryDate(r *http.Request) (string, error) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		return core.Today(), nil
	}
	if err := core.ParseDate(date); err != nil {
		return "", err
	}
	return date, nil
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
