// Package ratelimit provides a per-client-IP token bucket for the auth
// endpoints.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxEntries = 10000

// IPRateLimiter manages one token bucket per client IP. Buckets untouched
// for longer than the cleanup interval are discarded.
type IPRateLimiter struct {
	mu             sync.Mutex
	buckets        map[string]*bucket
	rate           rate.Limit
	burst          int
	cleanup        time.Duration
	trustedProxies []*net.IPNet
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewIPRateLimiter builds a limiter allowing r requests per second with the
// given burst. trustedProxies lists CIDRs whose X-Forwarded-For is honored;
// an empty list trusts all proxies.
func NewIPRateLimiter(r rate.Limit, burst int, cleanup time.Duration, trustedProxies []string) *IPRateLimiter {
	l := &IPRateLimiter{
		buckets: make(map[string]*bucket),
		rate:    r,
		burst:   burst,
		cleanup: cleanup,
	}

	for _, entry := range trustedProxies {
		if _, ipnet, err := net.ParseCIDR(entry); err == nil {
			l.trustedProxies = append(l.trustedProxies, ipnet)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			bits := "/32"
			if ip.To4() == nil {
				bits = "/128"
			}
			if _, ipnet, err := net.ParseCIDR(entry + bits); err == nil {
				l.trustedProxies = append(l.trustedProxies, ipnet)
			}
		}
	}

	go l.reap()
	return l
}

// Middleware rejects requests over the limit with 429.
func (l *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(l.clientIP(r)) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		if len(l.buckets) >= maxEntries {
			l.evictOldestLocked()
		}
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[ip] = b
	}
	b.lastAccess = time.Now()
	return b.limiter.Allow()
}

func (l *IPRateLimiter) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for k, b := range l.buckets {
		if oldestKey == "" || b.lastAccess.Before(oldest) {
			oldestKey = k
			oldest = b.lastAccess
		}
	}
	if oldestKey != "" {
		delete(l.buckets, oldestKey)
	}
}

func (l *IPRateLimiter) reap() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-l.cleanup)
		l.mu.Lock()
		for k, b := range l.buckets {
			if b.lastAccess.Before(cutoff) {
				delete(l.buckets, k)
			}
		}
		l.mu.Unlock()
	}
}

// clientIP resolves the caller's address, honoring X-Forwarded-For only for
// connections arriving from a trusted proxy.
func (l *IPRateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	forwarded := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0])
	if forwarded == "" {
		return host
	}

	if len(l.trustedProxies) == 0 {
		return forwarded
	}

	remote := net.ParseIP(host)
	for _, ipnet := range l.trustedProxies {
		if remote != nil && ipnet.Contains(remote) {
			return forwarded
		}
	}
	return host
}
