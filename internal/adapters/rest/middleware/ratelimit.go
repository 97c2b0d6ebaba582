package middleware

import (
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/philly/imageblog/internal/platform/apperror"
	"golang.org/x/time/rate"
)

const clientIdleTTL = 10 * time.Minute

// RateLimiter applies a token bucket per client IP
type RateLimiter struct {
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	stop    chan struct{}
	once    sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst for each client. A non-positive rps disables limiting.
// Call Close to stop the cleanup goroutine.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   burst,
		stop:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Middleware returns a rate limiting middleware
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := rl.limiterFor(getClientIP(r))

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retry := math.Ceil(reservation.Delay().Seconds())
			reservation.Cancel()
			WriteJSONErrorWithDetails(w, apperror.CodeRateLimited, MessageRateLimited, http.StatusTooManyRequests,
				map[string]any{"retry_after_seconds": retry})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Close stops the background cleanup
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) limiterFor(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, exists := rl.clients[clientID]
	if !exists {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientID] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

// cleanup removes clients that have been idle for a while
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for clientID, client := range rl.clients {
				if now.Sub(client.lastSeen) > clientIdleTTL {
					delete(rl.clients, clientID)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// getClientIP keys clients by the connection address. Forwarded headers are
// honoured only when a trusted proxy rewrites RemoteAddr upstream (chi RealIP).
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
