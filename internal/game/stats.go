package game

import (
	"context"
	"errors"
	"sort"
	"time"

	"music-quiz-service/internal/domain"
)

// UserStore persists cumulative cross-session player statistics.
type UserStore interface {
	LoadProfile(ctx context.Context, userID string) (domain.UserProfile, error)
	SaveProfile(ctx context.Context, profile domain.UserProfile) error
}

// finalizeStandings recomputes every participant's totals from the recorded
// answers, ranks them by total score (stable, so earlier lobby order wins
// ties) and picks the winner. Run exactly once, when the session finishes.
func finalizeStandings(s *domain.Session) {
	for i := range s.Participants {
		p := &s.Participants[i]

		total, correct := 0, 0
		var responseSum float64
		answered := 0
		for r := range s.Rounds {
			answer, ok := s.Rounds[r].AnswerBy(p.UserID)
			if !ok {
				continue
			}
			total += answer.Score
			if answer.Correct {
				correct++
			}
			responseSum += answer.ResponseTime
			answered++
		}

		p.TotalScore = total
		p.CorrectAnswers = correct
		if answered > 0 {
			p.AverageResponseTime = responseSum / float64(answered)
		} else {
			p.AverageResponseTime = 0
		}
	}

	sort.SliceStable(s.Participants, func(i, j int) bool {
		return s.Participants[i].TotalScore > s.Participants[j].TotalScore
	})
	for i := range s.Participants {
		s.Participants[i].Rank = i + 1
	}
	if len(s.Participants) > 0 {
		s.WinnerID = s.Participants[0].UserID
	}
}

// applySessionToProfile folds one finished session into a player's cumulative
// profile: games, totals, win streaks and the weighted running average
// response time newAvg = (oldAvg*(n-1) + sessionAvg) / n.
func applySessionToProfile(profile *domain.UserProfile, p domain.Participant, roundCount int, now time.Time) {
	profile.GamesPlayed++
	profile.TotalScore += p.TotalScore
	profile.CorrectAnswers += p.CorrectAnswers
	profile.TotalAnswers += roundCount

	if p.Rank == 1 {
		profile.GamesWon++
		profile.CurrentStreak++
		if profile.CurrentStreak > profile.BestStreak {
			profile.BestStreak = profile.CurrentStreak
		}
	} else {
		profile.CurrentStreak = 0
	}

	n := float64(profile.GamesPlayed)
	profile.AverageResponseTime = (profile.AverageResponseTime*(n-1) + p.AverageResponseTime) / n
	profile.LastActive = now
}

// updateProfiles pushes each participant's session results into the user
// store. A missing profile starts fresh; store failures are reported to the
// caller for logging and retry, never escalated to the players.
func (e *Engine) updateProfiles(ctx context.Context, s *domain.Session) error {
	var errs []error
	for _, p := range s.Participants {
		profile, err := e.users.LoadProfile(ctx, p.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrProfileNotFound) {
				errs = append(errs, err)
				continue
			}
			profile = domain.UserProfile{UserID: p.UserID}
		}

		applySessionToProfile(&profile, p, len(s.Rounds), e.now())

		if err := e.saveProfileRetry(ctx, profile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) saveProfileRetry(ctx context.Context, profile domain.UserProfile) error {
	var err error
	for attempt := 0; attempt < e.saveAttempts; attempt++ {
		if err = e.users.SaveProfile(ctx, profile); err == nil {
			return nil
		}
	}
	return err
}
