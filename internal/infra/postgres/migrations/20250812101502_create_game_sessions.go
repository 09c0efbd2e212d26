package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createGameSessionsSQL = `
CREATE TABLE IF NOT EXISTS game_sessions (
	id         TEXT PRIMARY KEY,
	lobby_id   TEXT NOT NULL,
	state      TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS game_sessions_lobby_idx ON game_sessions (lobby_id);
`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createGameSessionsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS game_sessions`)
			return err
		},
	)
}
