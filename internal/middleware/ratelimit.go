// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// visitor tracks request timestamps for a single client IP.
type visitor struct {
	mu   sync.Mutex
	hits []time.Time
}

// RateLimiter provides per-IP rate limiting using a sliding window.
// The login form and the public comment form sit behind one of these.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*visitor
	limit   int           // max requests per window
	window  time.Duration // sliding window duration
	stopCh  chan struct{}
}

// NewRateLimiter creates a rate limiter allowing limit requests per
// window and starts a background goroutine that evicts idle clients.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*visitor),
		limit:   limit,
		window:  window,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) visitor(key string) *visitor {
	rl.mu.RLock()
	v, ok := rl.clients[key]
	rl.mu.RUnlock()
	if ok {
		return v
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	// Another request may have created the entry between the locks.
	if v, ok = rl.clients[key]; !ok {
		v = &visitor{}
		rl.clients[key] = v
	}
	return v
}

// allow reports whether the key is still within its window, recording
// the request if it is.
func (rl *RateLimiter) allow(key string) bool {
	v := rl.visitor(key)

	now := time.Now()
	cutoff := now.Add(-rl.window)

	v.mu.Lock()
	defer v.mu.Unlock()

	live := v.hits[:0]
	for _, ts := range v.hits {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	v.hits = live

	if len(v.hits) >= rl.limit {
		return false
	}

	v.hits = append(v.hits, now)
	return true
}

// cleanup drops clients whose whole window has already passed.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.clients {
		v.mu.Lock()
		idle := true
		for _, ts := range v.hits {
			if ts.After(cutoff) {
				idle = false
				break
			}
		}
		v.mu.Unlock()

		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, honouring X-Forwarded-For
// and X-Real-IP for proxied requests.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The leftmost entry is the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr carries a port; strip it.
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
