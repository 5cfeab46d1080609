package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	Allow(clientKey string) bool
}

// InMemoryLimiter is an implementation of Limiter stored in memory
type InMemoryLimiter struct {
	clients map[string]*rate.Limiter
	mu      sync.Mutex
	r       rate.Limit // Rate of adding tokens (e.g., 1 token every 20 seconds)
	b       int        // Bucket size (e.g., can perform 3 requests in a row)
}

// NewInMemoryLimiter creates a new rate limiter
// Example: NewInMemoryLimiter(3, time.Minute, 3) -> allows 3 requests per minute, burst of 3
func NewInMemoryLimiter(requests int, per time.Duration, burst int) Limiter {
	return &InMemoryLimiter{
		clients: make(map[string]*rate.Limiter),
		r:       rate.Every(per / time.Duration(requests)),
		b:       burst,
	}
}

// Allow checks if a client is allowed to perform an action
func (l *InMemoryLimiter) Allow(clientKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.clients[clientKey]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.clients[clientKey] = limiter
	}

	return limiter.Allow()
}
