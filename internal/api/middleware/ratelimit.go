package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/askdoc/askdoc-api/internal/api/shared"
	"golang.org/x/time/rate"
)

// limiterTTL controls how long an idle client's limiter is kept before
// being rebuilt.
const limiterTTL = 5 * time.Minute

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

// RateLimitMiddleware limits query submissions per client address using a
// token bucket. perMinute of zero disables the limiter entirely.
func RateLimitMiddleware(perMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limiters := sync.Map{} // client address -> *cachedLimiter

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if perMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			client := clientAddress(r)
			limiter := getOrCreateLimiter(&limiters, client, perMinute)
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientAddress extracts the remote host, falling back to the raw
// RemoteAddr when it cannot be split.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func getOrCreateLimiter(limiters *sync.Map, client string, perMinute int) *rate.Limiter {
	if entry, ok := limiters.Load(client); ok {
		cached := entry.(*cachedLimiter)
		if time.Now().Before(cached.expiresAt) {
			return cached.limiter
		}
		// expired, need to create new
	}

	limiter := rate.NewLimiter(
		rate.Limit(float64(perMinute)/60.0),
		perMinute,
	)
	limiters.Store(client, &cachedLimiter{
		limiter:   limiter,
		expiresAt: time.Now().Add(limiterTTL),
	})
	return limiter
}
