package content

import (
	"context"
	"log"
	"math/rand"
	"time"

	"music-quiz-service/internal/domain"
)

// Provider hands out challenge tracks for rounds. Implementations may reach
// out to a catalog service, a database, or a cache in front of either.
type Provider interface {
	FetchChallenge(ctx context.Context, difficulty string) (domain.Track, error)
}

// StaticProvider serves tracks from a fixed in-memory list. It backs tests
// and the optional degraded mode when the real catalog is unreachable.
type StaticProvider struct {
	tracks []domain.Track
	rnd    *rand.Rand
}

func NewStaticProvider(tracks []domain.Track) *StaticProvider {
	return &StaticProvider{
		tracks: tracks,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *StaticProvider) FetchChallenge(_ context.Context, _ string) (domain.Track, error) {
	if len(p.tracks) == 0 {
		return domain.Track{}, domain.ErrTrackNotFound
	}
	return p.tracks[p.rnd.Intn(len(p.tracks))], nil
}

// BuiltinCatalog is the bundled sample set, used for demos and as fallback
// content when enabled.
func BuiltinCatalog() []domain.Track {
	return []domain.Track{
		{ID: "t1", Title: "Yesterday", Artist: "The Beatles", Duration: 125, MediaURL: "https://cdn.example.com/audio/t1.mp3", PreviewURL: "https://cdn.example.com/preview/t1.mp3"},
		{ID: "t2", Title: "Bohemian Rhapsody", Artist: "Queen", Duration: 355, MediaURL: "https://cdn.example.com/audio/t2.mp3", PreviewURL: "https://cdn.example.com/preview/t2.mp3"},
		{ID: "t3", Title: "Radioactive", Artist: "Imagine Dragons", Duration: 187, MediaURL: "https://cdn.example.com/audio/t3.mp3", PreviewURL: "https://cdn.example.com/preview/t3.mp3"},
		{ID: "t4", Title: "Bad Guy", Artist: "Billie Eilish", Duration: 194, MediaURL: "https://cdn.example.com/audio/t4.mp3", PreviewURL: "https://cdn.example.com/preview/t4.mp3"},
		{ID: "t5", Title: "Yellow", Artist: "Coldplay", Duration: 267, MediaURL: "https://cdn.example.com/audio/t5.mp3", PreviewURL: "https://cdn.example.com/preview/t5.mp3"},
	}
}

// FallbackProvider tries the primary catalog and, when explicitly enabled by
// configuration, substitutes fallback content on failure. Substitution changes
// game fairness, so it is an opt-in and every fallback is logged.
type FallbackProvider struct {
	primary  Provider
	fallback Provider
}

func NewFallbackProvider(primary, fallback Provider) *FallbackProvider {
	return &FallbackProvider{primary: primary, fallback: fallback}
}

func (p *FallbackProvider) FetchChallenge(ctx context.Context, difficulty string) (domain.Track, error) {
	track, err := p.primary.FetchChallenge(ctx, difficulty)
	if err == nil {
		return track, nil
	}
	log.Printf("content: primary provider failed, using fallback catalog: %v", err)
	return p.fallback.FetchChallenge(ctx, difficulty)
}
