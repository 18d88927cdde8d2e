// Package tokencache provides TokenCache implementations for docuauth: an
// in-process single-flight cache and a Redis-backed one for deployments that
// run more than one connector instance against the same DocuSign account.
package tokencache

import (
	"context"
	"sync"
	"time"
)

type cached struct {
	token     string
	expiresAt time.Time
}

// InMemory is a mutex-guarded, per-process TokenCache. Concurrent callers
// refreshing the same key block on the same in-flight call instead of each
// starting their own JWT exchange (spec §5).
type InMemory struct {
	mu      sync.Mutex
	entries map[string]cached
	inFlight map[string]*call
}

type call struct {
	done  chan struct{}
	token string
	err   error
}

// NewInMemory creates an empty in-process token cache.
func NewInMemory() *InMemory {
	return &InMemory{
		entries:  make(map[string]cached),
		inFlight: make(map[string]*call),
	}
}

// Get returns the cached token for key if present and not yet expired.
func (c *InMemory) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.token, true
}

// SingleFlight ensures only one refresh for key is in flight at a time;
// other callers wait for its result instead of issuing their own exchange.
func (c *InMemory) SingleFlight(ctx context.Context, key string, refresh func(context.Context) (string, time.Duration, error)) (string, error) {
	c.mu.Lock()
	if existing, ok := c.inFlight[key]; ok {
		c.mu.Unlock()
		select {
		case <-existing.done:
			return existing.token, existing.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	cl := &call{done: make(chan struct{})}
	c.inFlight[key] = cl
	c.mu.Unlock()

	token, ttl, err := refresh(ctx)

	c.mu.Lock()
	delete(c.inFlight, key)
	if err == nil {
		c.entries[key] = cached{token: token, expiresAt: time.Now().Add(ttl)}
	}
	c.mu.Unlock()

	cl.token, cl.err = token, err
	close(cl.done)
	return token, err
}
