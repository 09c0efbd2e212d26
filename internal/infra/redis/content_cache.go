package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"music-quiz-service/internal/content"
	"music-quiz-service/internal/domain"
)

// ContentCache caches per-difficulty track batches in Redis as a JSON blob
// and falls back to the wrapped provider on cache miss.
// Tracks are stored as: SET content:tracks:{difficulty} <json array> EX ttl
type ContentCache struct {
	client   *redis.Client
	provider content.Provider
	ttl      time.Duration
	sf       singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

const batchSize = 20

func NewContentCache(client *redis.Client, provider content.Provider, ttl time.Duration) *ContentCache {
	return &ContentCache{
		client:   client,
		provider: provider,
		ttl:      ttl,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ContentCache) FetchChallenge(ctx context.Context, difficulty string) (domain.Track, error) {
	key := c.key(difficulty)

	if tracks, ok := c.readCache(ctx, key); ok {
		return c.pick(tracks), nil
	}

	result, err, _ := c.sf.Do(difficulty, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if tracks, ok := c.readCache(ctx, key); ok {
			return tracks, nil
		}

		tracks := make([]domain.Track, 0, batchSize)
		for i := 0; i < batchSize; i++ {
			track, err := c.provider.FetchChallenge(ctx, difficulty)
			if err != nil {
				if len(tracks) == 0 {
					return nil, err
				}
				break
			}
			tracks = append(tracks, track)
		}

		if raw, err := json.Marshal(tracks); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return tracks, nil
	})
	if err != nil {
		return domain.Track{}, err
	}
	return c.pick(result.([]domain.Track)), nil
}

func (c *ContentCache) readCache(ctx context.Context, key string) ([]domain.Track, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Treat a broken cache as a miss; the loader is the truth.
			return nil, false
		}
		return nil, false
	}
	var tracks []domain.Track
	if err := json.Unmarshal(raw, &tracks); err != nil || len(tracks) == 0 {
		return nil, false
	}
	return tracks, true
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
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func (c *ContentCache) key(difficulty string) string {
	if difficulty == "" {
		difficulty = "any"
	}
	return "content:tracks:" + difficulty
}
