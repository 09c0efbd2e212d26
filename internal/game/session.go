package game

import (
	"fmt"
	"time"

	"music-quiz-service/internal/domain"
)

// buildSession assembles a session from a ready lobby and pre-fetched tracks.
// One track per round; the whole list must be present before anything is
// persisted, so a failed content fetch never leaves a partial session behind.
func buildSession(id string, lobby domain.Lobby, tracks []domain.Track, now time.Time) *domain.Session {
	participants := make([]domain.Participant, 0, len(lobby.Members))
	for _, m := range lobby.Members {
		participants = append(participants, domain.Participant{UserID: m.UserID})
	}

	rounds := make([]domain.Round, 0, len(tracks))
	for i, track := range tracks {
		rounds = append(rounds, domain.Round{
			Index:         i,
			Track:         track,
			CorrectAnswer: fmt.Sprintf("%s - %s", track.Artist, track.Title),
			Alternatives:  trackAlternatives(track),
			TimeLimit:     lobby.Settings.RoundTime,
			State:         domain.RoundWaiting,
		})
	}

	return &domain.Session{
		ID:           id,
		LobbyID:      lobby.ID,
		Participants: participants,
		Rounds:       rounds,
		Settings:     lobby.Settings,
		State:        domain.SessionPreparing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// trackAlternatives lists the accepted spellings besides "Artist - Title".
func trackAlternatives(t domain.Track) []string {
	return []string{
		t.Title,
		t.Artist,
		fmt.Sprintf("%s - %s", t.Title, t.Artist),
	}
}

// startRound moves a waiting round into play and stamps its start time.
func startRound(s *domain.Session, index int, now time.Time) (*domain.Round, error) {
	if index < 0 || index >= len(s.Rounds) {
		return nil, domain.ErrRoundNotFound
	}
	round := &s.Rounds[index]
	if round.State != domain.RoundWaiting {
		return nil, domain.ErrRoundNotActive
	}
	s.CurrentRound = index
	round.State = domain.RoundPlaying
	round.StartedAt = now
	s.UpdatedAt = now
	return round, nil
}

// recordAnswer validates, scores and appends a participant's answer. The
// preconditions are checked in order so each failure mode is distinct:
// round active, time limit, duplicate.
func recordAnswer(s *domain.Session, roundIndex int, participantID, text string, now time.Time) (domain.SubmissionResult, error) {
	if _, ok := s.Participant(participantID); !ok {
		return domain.SubmissionResult{}, domain.ErrParticipantNotFound
	}
	if roundIndex < 0 || roundIndex >= len(s.Rounds) {
		return domain.SubmissionResult{}, domain.ErrRoundNotFound
	}
	round := &s.Rounds[roundIndex]
	if s.State != domain.SessionPlaying || roundIndex != s.CurrentRound || round.State != domain.RoundPlaying {
		return domain.SubmissionResult{}, domain.ErrRoundNotActive
	}

	responseTime := now.Sub(round.StartedAt).Seconds()
	if responseTime > round.TimeLimit {
		return domain.SubmissionResult{}, domain.ErrTimeLimitExceeded
	}
	if responseTime < 0 {
		responseTime = 0
	}

	if _, ok := round.AnswerBy(participantID); ok {
		return domain.SubmissionResult{}, domain.ErrDuplicateAnswer
	}

	correct := MatchAnswer(text, round.CorrectAnswer, round.Alternatives)
	score := Score(responseTime, round.TimeLimit, correct)

	round.Answers = append(round.Answers, domain.Answer{
		ParticipantID: participantID,
		Text:          text,
		Correct:       correct,
		ResponseTime:  responseTime,
		Score:         score,
		SubmittedAt:   now,
	})
	s.UpdatedAt = now

	return domain.SubmissionResult{Correct: correct, Score: score, ResponseTime: responseTime}, nil
}

// endRound closes a playing round. It is the single guarded entry point for
// both the deadline timer and the all-answered path: whichever arrives second
// sees a finished round and reports false.
func endRound(s *domain.Session, index int, now time.Time) bool {
	if index < 0 || index >= len(s.Rounds) {
		return false
	}
	round := &s.Rounds[index]
	if round.State != domain.RoundPlaying {
		return false
	}
	round.State = domain.RoundFinished
	ended := now
	round.EndedAt = &ended
	s.UpdatedAt = now
	return true
}

// allAnswered reports whether every participant has answered the round.
func allAnswered(s *domain.Session, index int) bool {
	if index < 0 || index >= len(s.Rounds) {
		return false
	}
	return len(s.Rounds[index].Answers) >= len(s.Participants)
}

// roundView builds the redacted view of a round for participants. The track
// title and artist are the answer, so they stay hidden until the reveal.
func roundView(s *domain.Session, round *domain.Round) domain.RoundView {
	return domain.RoundView{
		Index:       round.Index,
		TotalRounds: len(s.Rounds),
		Track: domain.TrackHint{
			ID:         round.Track.ID,
			Duration:   round.Track.Duration,
			PreviewURL: round.Track.PreviewURL,
		},
		StartedAt: round.StartedAt,
		TimeLimit: round.TimeLimit,
		State:     round.State,
		Answered:  len(round.Answers),
	}
}

// roundReveal builds the post-round summary including the correct answer.
func roundReveal(round *domain.Round) domain.RoundReveal {
	reveal := domain.RoundReveal{
		Index:         round.Index,
		Track:         round.Track,
		CorrectAnswer: round.CorrectAnswer,
		Answers:       len(round.Answers),
	}
	for _, a := range round.Answers {
		if reveal.FastestAnswer == nil || a.ResponseTime < *reveal.FastestAnswer {
			t := a.ResponseTime
			reveal.FastestAnswer = &t
		}
	}
	return reveal
}
