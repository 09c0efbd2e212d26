package game

import (
	"math"
	"testing"
	"time"

	"music-quiz-service/internal/domain"
)

func TestFinalizeStandings(t *testing.T) {
	s := &domain.Session{
		Participants: []domain.Participant{
			{UserID: "a"}, {UserID: "b"}, {UserID: "c"},
		},
		Rounds: []domain.Round{
			{Index: 0, Answers: []domain.Answer{
				{ParticipantID: "a", Correct: true, Score: 92, ResponseTime: 5},
				{ParticipantID: "b", Correct: false, Score: 0, ResponseTime: 10},
			}},
			{Index: 1, Answers: []domain.Answer{
				{ParticipantID: "a", Correct: true, Score: 100, ResponseTime: 0},
				{ParticipantID: "b", Correct: true, Score: 100, ResponseTime: 2},
				{ParticipantID: "c", Correct: true, Score: 100, ResponseTime: 3},
			}},
		},
	}

	finalizeStandings(s)

	if s.WinnerID != "a" {
		t.Fatalf("winner = %s, want a", s.WinnerID)
	}
	a := s.Participants[0]
	if a.UserID != "a" || a.TotalScore != 192 || a.CorrectAnswers != 2 || a.Rank != 1 {
		t.Fatalf("unexpected first place: %+v", a)
	}
	if got := a.AverageResponseTime; got != 2.5 {
		t.Fatalf("average response time = %v, want 2.5", got)
	}

	// b and c tie on 100; the stable sort keeps b (earlier lobby slot) ahead.
	if s.Participants[1].UserID != "b" || s.Participants[1].Rank != 2 {
		t.Fatalf("unexpected second place: %+v", s.Participants[1])
	}
	if s.Participants[2].UserID != "c" || s.Participants[2].Rank != 3 {
		t.Fatalf("unexpected third place: %+v", s.Participants[2])
	}
}

func TestFinalizeStandingsSilentParticipant(t *testing.T) {
	s := &domain.Session{
		Participants: []domain.Participant{{UserID: "a"}, {UserID: "b"}},
		Rounds: []domain.Round{
			{Index: 0, Answers: []domain.Answer{
				{ParticipantID: "a", Correct: true, Score: 80, ResponseTime: 12},
			}},
		},
	}

	finalizeStandings(s)

	b := s.Participants[1]
	if b.UserID != "b" || b.TotalScore != 0 || b.AverageResponseTime != 0 || b.Rank != 2 {
		t.Fatalf("unexpected silent participant: %+v", b)
	}
}

func TestApplySessionToProfileWin(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	profile := domain.UserProfile{
		UserID:              "a",
		GamesPlayed:         3,
		GamesWon:            1,
		TotalScore:          400,
		CorrectAnswers:      5,
		TotalAnswers:        9,
		AverageResponseTime: 8,
		CurrentStreak:       1,
		BestStreak:          1,
	}

	applySessionToProfile(&profile, domain.Participant{
		UserID:              "a",
		TotalScore:          192,
		CorrectAnswers:      2,
		AverageResponseTime: 4,
		Rank:                1,
	}, 3, now)

	if profile.GamesPlayed != 4 || profile.GamesWon != 2 {
		t.Fatalf("unexpected game counts: %+v", profile)
	}
	if profile.TotalScore != 592 || profile.CorrectAnswers != 7 || profile.TotalAnswers != 12 {
		t.Fatalf("unexpected totals: %+v", profile)
	}
	if profile.CurrentStreak != 2 || profile.BestStreak != 2 {
		t.Fatalf("unexpected streaks: %+v", profile)
	}
	// newAvg = (8*3 + 4) / 4 = 7
	if math.Abs(profile.AverageResponseTime-7) > 1e-9 {
		t.Fatalf("average response time = %v, want 7", profile.AverageResponseTime)
	}
	if !profile.LastActive.Equal(now) {
		t.Fatalf("last active not stamped: %v", profile.LastActive)
	}
}

func TestApplySessionToProfileLossResetsStreak(t *testing.T) {
	profile := domain.UserProfile{
		UserID:        "b",
		GamesPlayed:   2,
		CurrentStreak: 2,
		BestStreak:    2,
	}

	applySessionToProfile(&profile, domain.Participant{UserID: "b", Rank: 3}, 2, time.Now())

	if profile.CurrentStreak != 0 {
		t.Fatalf("streak not reset: %+v", profile)
	}
	if profile.BestStreak != 2 {
		t.Fatalf("best streak must survive a loss: %+v", profile)
	}
}

func TestProfileDerivedRates(t *testing.T) {
	p := domain.UserProfile{GamesPlayed: 4, GamesWon: 1, TotalAnswers: 10, CorrectAnswers: 7}
	if p.WinRate() != 25 {
		t.Fatalf("win rate = %v, want 25", p.WinRate())
	}
	if p.Accuracy() != 70 {
		t.Fatalf("accuracy = %v, want 70", p.Accuracy())
	}

	var empty domain.UserProfile
	if empty.WinRate() != 0 || empty.Accuracy() != 0 {
		t.Fatalf("empty profile rates must be zero")
	}
}
