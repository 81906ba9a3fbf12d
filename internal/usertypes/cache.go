package usertypes

import (
	"sync"
	"time"

	"github.com/desertthunder/soundshelf/internal/models"
)

// DefaultTTL is how long a cached entry stays valid.
const DefaultTTL = 5 * time.Minute

// Entry is a cached value and the time it was written. Entries are replaced, never mutated.
type Entry[T any] struct {
	Value    T
	CachedAt time.Time
}

// record holds both kinds for one user. Each kind expires independently.
type record struct {
	planTier *Entry[models.PlanTier]
	roles    *Entry[models.RoleSet]
}

// Cache stores resolved user types keyed by user ID.
//
// Staleness is checked at read time with [Cache.Valid]; nothing is swept or size-evicted.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	records map[string]*record
}

// NewCache creates a [Cache] with the given TTL and clock.
//
// A non-positive ttl uses [DefaultTTL] and a nil clock uses [time.Now].
func NewCache(ttl time.Duration, clock func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache{ttl: ttl, now: clock, records: make(map[string]*record)}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// PlanTier returns the stored plan tier entry for userID, whether or not it is still valid.
func (c *Cache) PlanTier(userID string) (Entry[models.PlanTier], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[userID]
	if !ok || rec.planTier == nil {
		return Entry[models.PlanTier]{}, false
	}
	return *rec.planTier, true
}

// Roles returns the stored role set entry for userID, whether or not it is still valid.
//
// The returned set is a copy.
func (c *Cache) Roles(userID string) (Entry[models.RoleSet], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[userID]
	if !ok || rec.roles == nil {
		return Entry[models.RoleSet]{}, false
	}
	return Entry[models.RoleSet]{Value: rec.roles.Value.Clone(), CachedAt: rec.roles.CachedAt}, true
}

// Valid reports whether an entry written at cachedAt is younger than the TTL.
func (c *Cache) Valid(cachedAt time.Time) bool {
	return c.now().Sub(cachedAt) < c.ttl
}

// PutPlanTier stores tier for userID, leaving any cached roles untouched.
func (c *Cache) PutPlanTier(userID string, tier models.PlanTier) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.record(userID).planTier = &Entry[models.PlanTier]{Value: tier, CachedAt: c.now()}
}

// PutRoles stores roles for userID, leaving any cached plan tier untouched.
func (c *Cache) PutRoles(userID string, roles models.RoleSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.record(userID).roles = &Entry[models.RoleSet]{Value: roles.Clone(), CachedAt: c.now()}
}

// record returns the user's record, creating it. Callers must hold the write lock.
func (c *Cache) record(userID string) *record {
	rec, ok := c.records[userID]
	if !ok {
		rec = &record{}
		c.records[userID] = rec
	}
	return rec
}

// Invalidate drops everything cached for userID.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, userID)
}

// InvalidateAll drops every cached record.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.records)
}

// Len returns the number of users with a cached record.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}
