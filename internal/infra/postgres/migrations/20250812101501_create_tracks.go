package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createTracksSQL = `
CREATE TABLE IF NOT EXISTS tracks (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	artist      TEXT NOT NULL,
	duration    DOUBLE PRECISION NOT NULL DEFAULT 0,
	media_url   TEXT NOT NULL DEFAULT '',
	preview_url TEXT NOT NULL DEFAULT '',
	difficulty  TEXT NOT NULL DEFAULT 'medium'
);
CREATE INDEX IF NOT EXISTS tracks_difficulty_idx ON tracks (difficulty);
`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createTracksSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS tracks`)
			return err
		},
	)
}
