package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"music-quiz-service/internal/domain"
)

// TrackCatalog serves random challenge tracks from Postgres. Difficulty is a
// column filter; an empty difficulty draws from the whole catalog.
type TrackCatalog struct {
	pool *pgxpool.Pool
}

func NewTrackCatalog(pool *pgxpool.Pool) *TrackCatalog {
	return &TrackCatalog{pool: pool}
}

func (c *TrackCatalog) FetchChallenge(ctx context.Context, difficulty string) (domain.Track, error) {
	const query = `
		SELECT id, title, artist, duration, media_url, preview_url
		FROM tracks
		WHERE ($1 = '' OR difficulty = $1)
		ORDER BY random()
		LIMIT 1`

	var t domain.Track
	err := c.pool.QueryRow(ctx, query, difficulty).Scan(
		&t.ID, &t.Title, &t.Artist, &t.Duration, &t.MediaURL, &t.PreviewURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Track{}, domain.ErrTrackNotFound
		}
		return domain.Track{}, fmt.Errorf("fetch track: %w", err)
	}
	return t, nil
}
