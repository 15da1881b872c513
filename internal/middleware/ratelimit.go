package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pitetris/backend/internal/response"
)

// RateLimit returns middleware enforcing a per-client-IP token bucket.
// Stale buckets are evicted after ten minutes of inactivity.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	type bucket struct {
		lim  *rate.Limiter
		seen time.Time
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		b, ok := buckets[ip]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
			buckets[ip] = b
		}
		b.seen = now

		if len(buckets) > 1024 {
			for k, v := range buckets {
				if now.Sub(v.seen) > 10*time.Minute {
					delete(buckets, k)
				}
			}
		}
		return b.lim
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !get(ip).Allow() {
				response.TooManyRequests(w, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
