package http

import (
	"container/list"
	"context"
	"net/http"
	"sync"
	"time"

	"gagyebu/internal/auth"
	"gagyebu/internal/session"
	"gagyebu/internal/store"
)

// LRU cache with TTL and size-based eviction. Sessions hold no unsaved
// state (every mutation already scheduled a save), so eviction loses
// nothing; the next request re-opens the session from the store.
type lruCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type cacheItem[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func newLRUCache[T any](maxSize int, ttl time.Duration) *lruCache[T] {
	return &lruCache[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *lruCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	item := elem.Value.(*cacheItem[T])
	if time.Now().After(item.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return item.data, true
}

func (c *lruCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[T]{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}

	if elem, exists := c.items[key]; exists {
		elem.Value = item
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(item)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *lruCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *lruCache[T]) removeElement(elem *list.Element) {
	item := elem.Value.(*cacheItem[T])
	delete(c.items, item.key)
	c.lru.Remove(elem)
}

// Simple in-memory rate limiter for the login endpoint.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	limit   int
	window  time.Duration
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		clients: make(map[string]*clientInfo),
		limit:   limit,
		window:  window,
	}
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	info, ok := rl.clients[clientIP]
	if !ok || now.Sub(info.windowStart) > rl.window {
		rl.clients[clientIP] = &clientInfo{windowStart: now, requests: 1}
		rl.pruneLocked(now)
		return true
	}
	if info.requests >= rl.limit {
		return false
	}
	info.requests++
	return true
}

// pruneLocked drops windows that already expired; called with the lock held.
func (rl *rateLimiter) pruneLocked(now time.Time) {
	for ip, info := range rl.clients {
		if now.Sub(info.windowStart) > rl.window {
			delete(rl.clients, ip)
		}
	}
}

type Server struct {
	http.Server

	docs         store.DocumentStore
	keyer        auth.Keyer
	creds        *auth.CredentialCache
	publisher    session.Publisher
	saveTimeout  time.Duration
	sessions     *lruCache[*session.Session]
	loginLimiter *rateLimiter
}

// Options tunes the server; zero values fall back to defaults.
type Options struct {
	Publisher        session.Publisher
	SaveTimeout      time.Duration
	SessionTTL       time.Duration
	SessionCacheSize int
}

func NewServer(addr string, docs store.DocumentStore, keyer auth.Keyer, creds *auth.CredentialCache, opts Options) *Server {
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 10 * time.Second
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.SessionCacheSize <= 0 {
		opts.SessionCacheSize = 100
	}

	s := &Server{
		docs:         docs,
		keyer:        keyer,
		creds:        creds,
		publisher:    opts.Publisher,
		saveTimeout:  opts.SaveTimeout,
		sessions:     newLRUCache[*session.Session](opts.SessionCacheSize, opts.SessionTTL),
		loginLimiter: newRateLimiter(10, time.Minute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("POST /login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("POST /logout", s.withSecurityHeaders(s.handleLogout))
	mux.HandleFunc("GET /records/{date}", s.withSecurityHeaders(s.handleGetRecord))
	mux.HandleFunc("POST /records/{date}/items", s.withSecurityHeaders(s.handleAddItem))
	mux.HandleFunc("PUT /records/{date}/items/{id}", s.withSecurityHeaders(s.handleUpdateItem))
	mux.HandleFunc("DELETE /records/{date}/items/{id}", s.withSecurityHeaders(s.handleDeleteItem))
	mux.HandleFunc("PUT /records/{date}/note", s.withSecurityHeaders(s.handleSetNote))
	mux.HandleFunc("GET /stats/daily", s.withSecurityHeaders(s.handleDailyStats))
	mux.HandleFunc("GET /stats/weekly", s.withSecurityHeaders(s.handleWeeklyStats))
	mux.HandleFunc("GET /stats/monthly", s.withSecurityHeaders(s.handleMonthlyStats))
	mux.HandleFunc("GET /stats/calendar", s.withSecurityHeaders(s.handleCalendarStats))
	mux.HandleFunc("GET /tags", s.withSecurityHeaders(s.handleTags))
	mux.HandleFunc("GET /settings", s.withSecurityHeaders(s.handleGetSettings))
	mux.HandleFunc("PUT /settings", s.withSecurityHeaders(s.handlePutSettings))
	mux.HandleFunc("GET /sync", s.withSecurityHeaders(s.handleSyncStatus))

	s.Server = http.Server{Addr: addr, Handler: mux}
	return s
}

func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next(w, r)
	}
}

// Shutdown drains in-flight background saves of cached sessions before
// stopping the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.sessions.mu.Lock()
	open := make([]*session.Session, 0, len(s.sessions.items))
	for _, elem := range s.sessions.items {
		open = append(open, elem.Value.(*cacheItem[*session.Session]).data)
	}
	s.sessions.mu.Unlock()

	for _, sess := range open {
		sess.Wait()
	}
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
