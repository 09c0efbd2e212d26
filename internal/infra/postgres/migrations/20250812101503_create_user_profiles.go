package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

const createUserProfilesSQL = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id               TEXT PRIMARY KEY,
	total_score           BIGINT NOT NULL DEFAULT 0,
	games_played          INT NOT NULL DEFAULT 0,
	games_won             INT NOT NULL DEFAULT 0,
	correct_answers       INT NOT NULL DEFAULT 0,
	total_answers         INT NOT NULL DEFAULT 0,
	average_response_time DOUBLE PRECISION NOT NULL DEFAULT 0,
	current_streak        INT NOT NULL DEFAULT 0,
	best_streak           INT NOT NULL DEFAULT 0,
	last_active           TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS user_profiles_total_score_idx ON user_profiles (total_score DESC);
`

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createUserProfilesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS user_profiles`)
			return err
		},
	)
}
