package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"music-quiz-service/internal/content"
	"music-quiz-service/internal/domain"
)

// ContentCache wraps a content provider with a per-difficulty TTL cache to
// avoid hammering the catalog on every round build.
type ContentCache struct {
	provider content.Provider
	ttl      time.Duration
	clock    func() time.Time
	sf       singleflight.Group
	rnd      *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedTracks
}

type cachedTracks struct {
	tracks    []domain.Track
	expiresAt time.Time
}

const cacheBatchSize = 20

func NewContentCache(provider content.Provider, ttl time.Duration) *ContentCache {
	return &ContentCache{
		provider: provider,
		ttl:      ttl,
		clock:    time.Now,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:    make(map[string]cachedTracks),
	}
}

func (c *ContentCache) FetchChallenge(ctx context.Context, difficulty string) (domain.Track, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[difficulty]; ok && entry.expiresAt.After(now) && len(entry.tracks) > 0 {
		c.mu.RUnlock()
		return c.pick(entry.tracks), nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(difficulty, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[difficulty]; ok && entry.expiresAt.After(now) && len(entry.tracks) > 0 {
			c.mu.RUnlock()
			return entry.tracks, nil
		}
		c.mu.RUnlock()

		tracks := make([]domain.Track, 0, cacheBatchSize)
		for i := 0; i < cacheBatchSize; i++ {
			track, err := c.provider.FetchChallenge(ctx, difficulty)
			if err != nil {
				if len(tracks) == 0 {
					return nil, err
				}
				break
			}
			tracks = append(tracks, track)
		}

		c.mu.Lock()
		c.cache[difficulty] = cachedTracks{
			tracks:    tracks,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return tracks, nil
	})
	if err != nil {
		return domain.Track{}, err
	}
	return c.pick(result.([]domain.Track)), nil
}

func (c *ContentCache) pick(tracks []domain.Track) domain.Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tracks[c.rnd.Intn(len(tracks))]
}

func (c *ContentCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
