// Package http serves the dashboard query API: filter options, filtered
// views with their aggregates, the cleaning summary, and the state
// reference table the front end joins against its topology.
package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"donordash/internal/cache"
	applog "donordash/internal/log"
	"donordash/internal/query"
)

// Reloader is the optional hook invoked by POST /api/reload. The memory
// backend re-reads the CSV; the server also flushes the view cache and
// publishes the AMQP notification through this hook.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Server struct {
	http.Server

	options  query.OptionLister
	viewer   query.Viewer
	summary  query.SummaryReader
	reloader Reloader

	rateLimiter *rateLimiter

	// Filtered views are recomputed on every constraint change; the LRU
	// absorbs repeat requests for the same constraint set.
	viewCache    *cache.LRUCache[*query.View]
	cacheManager *cache.Manager

	structuredLogger *applog.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, ol query.OptionLister, v query.Viewer, sr query.SummaryReader, rl Reloader) *Server {
	mux := http.NewServeMux()
	logger := applog.Default(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(logger)(mux),
		},
		options:          ol,
		viewer:           v,
		summary:          sr,
		reloader:         rl,
		rateLimiter:      newRateLimiter(),
		viewCache:        cache.NewLRUCache[*query.View](200, 5*time.Minute),
		cacheManager:     cache.NewManager(),
		structuredLogger: applog.NewStructuredLogger(logger),
	}

	s.cacheManager.Register(s.viewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/api/health", s.withMiddleware(s.handleHealth))
	mux.HandleFunc("/api/options", s.withMiddleware(s.handleOptions))
	mux.HandleFunc("/api/view", s.withMiddleware(s.handleView))
	mux.HandleFunc("/api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/api/states", s.withMiddleware(s.handleStates))
	mux.HandleFunc("/api/reload", s.withMiddleware(s.handleReload))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware wraps a handler with security headers, rate limiting, and
// request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		ip := clientIP(r)
		if !s.rateLimiter.allow(ip) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.structuredLogger.LogHTTPEnd(r.Context(), r, rec.status, time.Since(start).Milliseconds(), ip)
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// clientIP extracts the client address, honoring X-Forwarded-For only from
// private/loopback peers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)
	if peer == nil || !(peer.IsLoopback() || peer.IsPrivate()) {
		return host
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	return host
}

// Simple in-memory rate limiter, per client IP.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Allow up to 120 requests per minute
	client.requests++
	client.lastRequest = now
	return client.requests <= 120
}
