package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const seedTracksSQL = `
INSERT INTO tracks (id, title, artist, duration, media_url, preview_url, difficulty) VALUES
	('t1', 'Yesterday', 'The Beatles', 125, 'https://cdn.example.com/audio/t1.mp3', 'https://cdn.example.com/preview/t1.mp3', 'easy'),
	('t2', 'Bohemian Rhapsody', 'Queen', 355, 'https://cdn.example.com/audio/t2.mp3', 'https://cdn.example.com/preview/t2.mp3', 'medium'),
	('t3', 'Radioactive', 'Imagine Dragons', 187, 'https://cdn.example.com/audio/t3.mp3', 'https://cdn.example.com/preview/t3.mp3', 'easy'),
	('t4', 'Bad Guy', 'Billie Eilish', 194, 'https://cdn.example.com/audio/t4.mp3', 'https://cdn.example.com/preview/t4.mp3', 'medium'),
	('t5', 'Yellow', 'Coldplay', 267, 'https://cdn.example.com/audio/t5.mp3', 'https://cdn.example.com/preview/t5.mp3', 'hard')
ON CONFLICT (id) DO NOTHING;
`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, seedTracksSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM tracks WHERE id IN ('t1','t2','t3','t4','t5')`)
			return err
		},
	)
}
