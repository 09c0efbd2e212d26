package game

import (
	"context"
	"log"
	"sync"
	"time"

	"music-quiz-service/internal/domain"
)

// SessionStore is the durable backing store for sessions. The cache sits in
// front of it; the store remains the source of truth.
type SessionStore interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// sessionEntry pairs a cached session with its mutation lock. All changes to
// the session go through mu, so submissions, timers and finalization for one
// session serialize while different sessions proceed in parallel.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// SessionCache keeps active sessions hot in memory with idle eviction. The
// map has its own lock, independent of the per-session mutexes, because
// insert and evict can race with get.
type SessionCache struct {
	store SessionStore
	clock func() time.Time

	mu      sync.RWMutex
	entries map[string]*cacheSlot
}

type cacheSlot struct {
	entry       *sessionEntry
	lastTouched time.Time
}

func NewSessionCache(store SessionStore) *SessionCache {
	return &SessionCache{
		store:   store,
		clock:   time.Now,
		entries: make(map[string]*cacheSlot),
	}
}

// insert caches a freshly created session and returns its entry.
func (c *SessionCache) insert(session *domain.Session) *sessionEntry {
	entry := &sessionEntry{session: session}
	c.mu.Lock()
	c.entries[session.ID] = &cacheSlot{entry: entry, lastTouched: c.clock()}
	c.mu.Unlock()
	return entry
}

// acquire returns the entry for a session, loading from the store on a cache
// miss. Sessions loaded in a terminal state are handed back without being
// re-cached, so finished games do not re-enter the hot path.
func (c *SessionCache) acquire(ctx context.Context, id string) (*sessionEntry, error) {
	c.mu.RLock()
	slot, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		c.touch(id)
		return slot.entry, nil
	}

	session, err := c.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State == domain.SessionFinished {
		return &sessionEntry{session: session}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have cached it while we hit the store.
	if slot, ok := c.entries[id]; ok {
		slot.lastTouched = c.clock()
		return slot.entry, nil
	}
	entry := &sessionEntry{session: session}
	c.entries[id] = &cacheSlot{entry: entry, lastTouched: c.clock()}
	return entry, nil
}

func (c *SessionCache) touch(id string) {
	c.mu.Lock()
	if slot, ok := c.entries[id]; ok {
		slot.lastTouched = c.clock()
	}
	c.mu.Unlock()
}

func (c *SessionCache) remove(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

func (c *SessionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// EvictIdleOlderThan drops entries untouched for longer than maxIdle,
// regardless of session state, and returns how many were removed. Eviction
// only affects the cache; the store record stays.
func (c *SessionCache) EvictIdleOlderThan(maxIdle time.Duration) int {
	cutoff := c.clock().Add(-maxIdle)
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for id, slot := range c.entries {
		if slot.lastTouched.Before(cutoff) {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs the idle sweep on a ticker until ctx is cancelled. The
// sweep is independent of request traffic so abandoned sessions cannot pin
// memory forever.
func (c *SessionCache) StartSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := c.EvictIdleOlderThan(maxIdle); n > 0 {
					log.Printf("session cache: evicted %d idle sessions", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
