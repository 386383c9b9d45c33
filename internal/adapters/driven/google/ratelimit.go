package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ServiceType identifies a Google API service for rate limiting purposes.
type ServiceType string

const (
	// ServiceSearch is the Discovery Engine search API.
	ServiceSearch ServiceType = "search"
	// ServiceGenerate is the Vertex AI generate content API.
	ServiceGenerate ServiceType = "generate"
	// ServiceFirestore is the Firestore API.
	ServiceFirestore ServiceType = "firestore"
)

// RateLimitConfig holds rate limiting configuration for a service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultRateLimits provides conservative defaults for each service.
var DefaultRateLimits = map[ServiceType]RateLimitConfig{
	ServiceSearch:    {RequestsPerSecond: 5.0, BurstSize: 5},
	ServiceGenerate:  {RequestsPerSecond: 1.0, BurstSize: 2},
	ServiceFirestore: {RequestsPerSecond: 10.0, BurstSize: 20},
}

// defaultBackoff applies when a 429 carries no Retry-After header.
const defaultBackoff = 60 * time.Second

// RateLimiter provides rate limiting for Google API requests.
// It uses a token bucket with a backoff window after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter with the defaults for a service.
func NewRateLimiter(service ServiceType) *RateLimiter {
	cfg, ok := DefaultRateLimits[service]
	if !ok {
		cfg = RateLimitConfig{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	return NewRateLimiterWithConfig(cfg)
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
// A non-positive rate disables the token bucket; backoff still applies.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst), now: time.Now}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by Backoff.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := retryAt.Sub(r.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Backoff blocks further requests for the given number of seconds.
// Call this after a 429 response; zero uses a 60 second default.
func (r *RateLimiter) Backoff(retryAfterSeconds int) {
	d := time.Duration(retryAfterSeconds) * time.Second
	if d <= 0 {
		d = defaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = r.now().Add(d)
}

// Observe records the outcome of a call and backs off on rate limiting.
func (r *RateLimiter) Observe(err error) {
	if err != nil && IsRateLimited(err) {
		r.Backoff(RetryAfter(err))
	}
}

// Allow checks if a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if r.now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
