package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/phrazzld/docket-api/internal/api/shared"
)

// visitorTTL is how long an idle client keeps its limiter before the
// cleanup loop drops it.
const (
	rateLimitCleanupInterval = 5 * time.Minute
	visitorTTL               = 2 * rateLimitCleanupInterval
)

// visitor pairs a client's limiter with its last activity, so idle
// entries can be reclaimed.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token-bucket limit per client address. It guards
// the unauthenticated register and login endpoints against credential
// stuffing and bulk account creation.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit      rate.Limit
	burst      int
	retryAfter string
	logger     *slog.Logger

	stopCh chan struct{}
}

// NewRateLimiter creates a limiter allowing perMinute requests per client
// with the given burst, and starts the background cleanup of idle
// clients. Call Stop to end the cleanup goroutine.
func NewRateLimiter(perMinute, burst int, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}

	retryAfterSec := int(math.Ceil(60.0 / float64(perMinute)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	rl := &RateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      rate.Limit(float64(perMinute) / 60.0),
		burst:      burst,
		retryAfter: strconv.Itoa(retryAfterSec),
		logger:     logger.With(slog.String("component", "rate_limiter")),
		stopCh:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop ends the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Limit is the middleware. Requests over the limit receive 429 with a
// Retry-After header estimating when the next token is available.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)

		if !rl.allow(key) {
			rl.logger.Warn("rate limit exceeded",
				slog.String("client", key),
				slog.String("path", r.URL.Path))
			w.Header().Set("Retry-After", rl.retryAfter)
			shared.RespondWithError(w, r, http.StatusTooManyRequests,
				"Too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, key)
		}
	}
}

// visitorCount reports the number of tracked clients, for tests.
func (rl *RateLimiter) visitorCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// clientKey identifies the client by IP. RemoteAddr usually carries a
// port; the RealIP middleware may have already stripped it.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
