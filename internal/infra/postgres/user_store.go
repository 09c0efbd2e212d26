package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"music-quiz-service/internal/domain"
)

// UserStore keeps cumulative player statistics in Postgres.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) LoadProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	var p domain.UserProfile
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, total_score, games_played, games_won, correct_answers,
		       total_answers, average_response_time, current_streak, best_streak, last_active
		FROM user_profiles WHERE user_id=$1`, userID).Scan(
		&p.UserID, &p.TotalScore, &p.GamesPlayed, &p.GamesWon, &p.CorrectAnswers,
		&p.TotalAnswers, &p.AverageResponseTime, &p.CurrentStreak, &p.BestStreak, &p.LastActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{}, domain.ErrProfileNotFound
		}
		return domain.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (s *UserStore) SaveProfile(ctx context.Context, p domain.UserProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_profiles (user_id, total_score, games_played, games_won, correct_answers,
		                           total_answers, average_response_time, current_streak, best_streak, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			total_score=EXCLUDED.total_score,
			games_played=EXCLUDED.games_played,
			games_won=EXCLUDED.games_won,
			correct_answers=EXCLUDED.correct_answers,
			total_answers=EXCLUDED.total_answers,
			average_response_time=EXCLUDED.average_response_time,
			current_streak=EXCLUDED.current_streak,
			best_streak=EXCLUDED.best_streak,
			last_active=EXCLUDED.last_active`,
		p.UserID, p.TotalScore, p.GamesPlayed, p.GamesWon, p.CorrectAnswers,
		p.TotalAnswers, p.AverageResponseTime, p.CurrentStreak, p.BestStreak, p.LastActive)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
