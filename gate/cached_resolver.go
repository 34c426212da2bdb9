package gate

import (
	"context"
	"sync"
	"time"
)

// CachedResolver wraps a PlanResolver with TTL-based caching so entitlement
// checks do not hit the database on every request.
type CachedResolver[U comparable] struct {
	inner PlanResolver[U]
	cache map[U]cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	plan      Plan
	expiresAt time.Time
}

// NewCachedResolver wraps inner; plans are re-fetched after ttl.
func NewCachedResolver[U comparable](inner PlanResolver[U], ttl time.Duration) *CachedResolver[U] {
	return &CachedResolver[U]{
		inner: inner,
		cache: make(map[U]cacheEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Resolve returns the cached plan when fresh, otherwise asks the inner resolver.
// Errors are not cached.
func (r *CachedResolver[U]) Resolve(ctx context.Context, user U) (Plan, error) {
	r.mu.RLock()
	entry, ok := r.cache[user]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.plan, nil
	}

	plan, err := r.inner.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[user] = cacheEntry{plan: plan, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return plan, nil
}

// Invalidate drops a user's cached plan. Call it after a plan change.
func (r *CachedResolver[U]) Invalidate(user U) {
	r.mu.Lock()
	delete(r.cache, user)
	r.mu.Unlock()
}

// InvalidateAll clears the cache, e.g. after plan permissions are edited.
func (r *CachedResolver[U]) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[U]cacheEntry)
	r.mu.Unlock()
}
