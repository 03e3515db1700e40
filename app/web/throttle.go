package web

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mpraski/competitor-form/app/ticker"
	"golang.org/x/time/rate"
)

// Throttle is a per-client token bucket protecting the HTTP surface itself.
// It is independent of the advisory submission limiter.
type Throttle struct {
	mu           sync.Mutex
	entries      map[string]*throttleEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type throttleEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

const (
	defaultIdleTTL      = 15 * time.Minute
	defaultCleanupEvery = 2 * time.Minute
)

func NewThrottle(rps float64, burst int) *Throttle {
	return &Throttle{
		entries:      make(map[string]*throttleEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      defaultIdleTTL,
		cleanupEvery: defaultCleanupEvery,
	}
}

func (t *Throttle) Allow(key string) bool {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &throttleEntry{lim: rate.NewLimiter(t.rps, t.burst)}
		t.entries[key] = e
	}

	e.lastSeen = now

	return e.lim.AllowN(now, 1)
}

func (t *Throttle) Cleanup(now time.Time) {
	cutoff := now.Add(-t.idleTTL)

	t.mu.Lock()
	defer t.mu.Unlock()

	for k, e := range t.entries {
		if e.lastSeen.Before(cutoff) {
			delete(t.entries, k)
		}
	}
}

// Run drops idle clients periodically until ctx is done.
func (t *Throttle) Run(ctx context.Context) error {
	<-ticker.Every(ctx, t.cleanupEvery, func(now time.Time) bool {
		t.Cleanup(now)
		return true
	}).Done()

	return nil
}

func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.Allow(clientKey(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(1))
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, r)
	})
}

type peerAddrKey struct{}

func withPeerAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerAddrKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientKey prefers the address recorded by withPeerAddr over RemoteAddr.
func clientKey(r *http.Request) string {
	addr, ok := r.Context().Value(peerAddrKey{}).(string)
	if !ok {
		addr = r.RemoteAddr
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err == nil && host != "" {
		return host
	}

	if addr != "" {
		return addr
	}

	return "unknown"
}
