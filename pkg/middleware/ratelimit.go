package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit rejects requests over the server-wide budget with 429. One
// shared limiter covers all routes; per-operation limits live in the
// services that need them.
func RateLimit(limiter *rate.Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
