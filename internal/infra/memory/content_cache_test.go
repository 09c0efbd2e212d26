package memory

import (
	"context"
	"testing"
	"time"

	"music-quiz-service/internal/content"
	"music-quiz-service/internal/domain"
)

func TestContentCacheCaches(t *testing.T) {
	provider := &countingProvider{
		Provider: content.NewStaticProvider(content.BuiltinCatalog()),
	}
	cache := NewContentCache(provider, time.Minute)

	if _, err := cache.FetchChallenge(context.Background(), "medium"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	batched := provider.calls
	if batched == 0 {
		t.Fatalf("expected provider to be called on cold cache")
	}

	if _, err := cache.FetchChallenge(context.Background(), "medium"); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	if provider.calls != batched {
		t.Fatalf("expected cache hit, provider calls went %d -> %d", batched, provider.calls)
	}
}

type countingProvider struct {
	content.Provider
	calls int
}

func (p *countingProvider) FetchChallenge(ctx context.Context, difficulty string) (domain.Track, error) {
	p.calls++
	return p.Provider.FetchChallenge(ctx, difficulty)
}
