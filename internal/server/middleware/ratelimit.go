package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the token bucket limiter.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
	// PerClient keeps one bucket per client address instead of a shared one.
	PerClient bool
	// Cost returns how many tokens a request takes; nil means one each.
	// Costs above Burst are clamped to Burst.
	Cost func(*http.Request) int
}

// RateLimit rejects requests the bucket cannot pay for with 429 and a
// Retry-After hint in whole seconds.
func RateLimit(config *RateLimitConfig) Middleware {
	if !config.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	buckets := newLimiterSet(config.RequestsPerSecond, config.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if config.PerClient {
				key = clientIP(r)
			}

			cost := 1
			if config.Cost != nil {
				cost = min(max(config.Cost(r), 1), config.Burst)
			}

			now := time.Now()
			res := buckets.get(key).ReserveN(now, cost)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// maxClients bounds the per-client limiter set.
const maxClients = 4096

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rps     rate.Limit
	burst   int
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	return &limiterSet{
		buckets: make(map[string]*bucket),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		if len(s.buckets) >= maxClients {
			s.evictIdlest()
		}
		b = &bucket{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

// evictIdlest drops the bucket unused for longest. Caller holds mu.
func (s *limiterSet) evictIdlest() {
	var idlest string
	var seen time.Time
	for k, b := range s.buckets {
		if idlest == "" || b.lastSeen.Before(seen) {
			idlest, seen = k, b.lastSeen
		}
	}
	delete(s.buckets, idlest)
}

// clientIP returns the first X-Forwarded-For hop, X-Real-IP, or the host
// part of RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
