package api

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// documentRequestCost is charged for requests that carry a document to
	// parse, so uploads drain the bucket faster than reads.
	documentRequestCost = 5
	retryAfterSeconds   = 1
)

// rateLimiter is satisfied by *rate.Limiter.
type rateLimiter interface {
	AllowN(now time.Time, n int) bool
}

// WithRateLimit configures the token bucket limiter. A non-positive rate or
// burst disables rate limiting entirely.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		if ratePerSecond <= 0 || burst <= 0 {
			cfg.rateLimiter = nil
			return
		}
		cfg.rateLimiter = newTokenBucketLimiter(ratePerSecond, burst)
	}
}

// newTokenBucketLimiter never returns a bucket smaller than one document
// request, otherwise uploads could never be admitted.
func newTokenBucketLimiter(ratePerSecond float64, burst int) *rate.Limiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst < documentRequestCost {
		burst = documentRequestCost
	}
	return rate.NewLimiter(rate.Limit(ratePerSecond), burst)
}

func requestCost(r *http.Request) int {
	switch r.Method {
	case http.MethodPut, http.MethodPost:
		return documentRequestCost
	default:
		return 1
	}
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter.AllowN(time.Now(), requestCost(r)) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
