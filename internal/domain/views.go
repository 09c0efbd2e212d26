package domain

import "time"

// TrackHint is the redacted track payload sent while a round is still being
// played: enough to play the clip, nothing that gives the answer away.
type TrackHint struct {
	ID         string  `json:"id"`
	Duration   float64 `json:"duration"`
	PreviewURL string  `json:"previewUrl"`
}

// RoundView is the participant-facing view of the current round. Title,
// artist, the canonical answer and per-answer correctness stay hidden until
// the round finishes.
type RoundView struct {
	Index       int        `json:"index"`
	TotalRounds int        `json:"totalRounds"`
	Track       TrackHint  `json:"track"`
	StartedAt   time.Time  `json:"startedAt"`
	TimeLimit   float64    `json:"timeLimit"`
	State       RoundState `json:"state"`
	Answered    int        `json:"answered"`
}

// RoundReveal is the post-round summary including the correct answer.
type RoundReveal struct {
	Index         int      `json:"index"`
	Track         Track    `json:"track"`
	CorrectAnswer string   `json:"correctAnswer"`
	Answers       int      `json:"answers"`
	FastestAnswer *float64 `json:"fastestAnswer,omitempty"`
}

// SessionResults is the final standings for a finished session.
type SessionResults struct {
	SessionID   string        `json:"sessionId"`
	WinnerID    string        `json:"winnerId"`
	Leaderboard []Participant `json:"leaderboard"`
	Rounds      []RoundReveal `json:"rounds"`
	FinishedAt  *time.Time    `json:"finishedAt,omitempty"`
}

// SubmissionResult is what a submitter gets back for their own answer.
type SubmissionResult struct {
	Correct      bool    `json:"correct"`
	Score        int     `json:"score"`
	ResponseTime float64 `json:"responseTime"`
}
