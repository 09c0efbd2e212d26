package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"music-quiz-service/internal/domain"
	memstore "music-quiz-service/internal/infra/memory"
)

func newCacheFixture() (*SessionCache, *memstore.SessionStore, *fakeClock) {
	store := memstore.NewSessionStore()
	clock := &fakeClock{t: time.Unix(1700000000, 0).UTC()}
	cache := NewSessionCache(store)
	cache.clock = clock.Now
	return cache, store, clock
}

func cachedSession(id string, state domain.SessionState) *domain.Session {
	return &domain.Session{ID: id, LobbyID: "lobby-1", State: state}
}

func TestCacheAcquireMissLoadsFromStore(t *testing.T) {
	cache, store, _ := newCacheFixture()
	ctx := context.Background()

	if err := store.Save(ctx, cachedSession("s1", domain.SessionPlaying)); err != nil {
		t.Fatalf("save: %v", err)
	}

	entry, err := cache.acquire(ctx, "s1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if entry.session.ID != "s1" {
		t.Fatalf("unexpected session: %+v", entry.session)
	}
	if cache.len() != 1 {
		t.Fatalf("active session not cached, len = %d", cache.len())
	}

	// Second acquire must hit the cache and return the same entry, so both
	// callers contend on the same mutex.
	again, err := cache.acquire(ctx, "s1")
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if again != entry {
		t.Fatalf("expected the same cached entry")
	}
}

func TestCacheAcquireUnknownSession(t *testing.T) {
	cache, _, _ := newCacheFixture()

	_, err := cache.acquire(context.Background(), "missing")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestCacheDoesNotRecacheFinishedSessions(t *testing.T) {
	cache, store, _ := newCacheFixture()
	ctx := context.Background()

	if err := store.Save(ctx, cachedSession("done", domain.SessionFinished)); err != nil {
		t.Fatalf("save: %v", err)
	}

	entry, err := cache.acquire(ctx, "done")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if entry.session.State != domain.SessionFinished {
		t.Fatalf("unexpected state: %v", entry.session.State)
	}
	if cache.len() != 0 {
		t.Fatalf("finished session re-entered the cache")
	}
}

func TestCacheEvictIdle(t *testing.T) {
	cache, store, clock := newCacheFixture()
	ctx := context.Background()

	cache.insert(cachedSession("old", domain.SessionPlaying))
	clock.Advance(20 * time.Minute)
	cache.insert(cachedSession("fresh", domain.SessionPlaying))
	clock.Advance(15 * time.Minute)

	// "old" has idled 35m, "fresh" only 15m.
	if n := cache.EvictIdleOlderThan(30 * time.Minute); n != 1 {
		t.Fatalf("evicted %d, want 1", n)
	}
	if cache.len() != 1 {
		t.Fatalf("cache len = %d, want 1", cache.len())
	}

	// Eviction drops the hot copy only; the store record survives, so the
	// session can be re-acquired.
	if err := store.Save(ctx, cachedSession("old", domain.SessionPlaying)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := cache.acquire(ctx, "old"); err != nil {
		t.Fatalf("re-acquire after eviction: %v", err)
	}
	if cache.len() != 2 {
		t.Fatalf("cache len = %d, want 2", cache.len())
	}
}

func TestCacheTouchKeepsEntryAlive(t *testing.T) {
	cache, _, clock := newCacheFixture()

	cache.insert(cachedSession("s1", domain.SessionPlaying))
	clock.Advance(25 * time.Minute)
	if _, err := cache.acquire(context.Background(), "s1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	clock.Advance(25 * time.Minute)

	// 50m old by insert time, but touched 25m ago.
	if n := cache.EvictIdleOlderThan(30 * time.Minute); n != 0 {
		t.Fatalf("evicted %d, want 0", n)
	}
}

func TestCacheRemove(t *testing.T) {
	cache, _, _ := newCacheFixture()

	cache.insert(cachedSession("s1", domain.SessionPlaying))
	cache.remove("s1")
	if cache.len() != 0 {
		t.Fatalf("cache len = %d, want 0", cache.len())
	}
}
