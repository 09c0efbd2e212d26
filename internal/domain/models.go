package domain

import "time"

// SessionState is the lifecycle state of a game session.
type SessionState string

const (
	SessionPreparing SessionState = "preparing"
	SessionPlaying   SessionState = "playing"
	SessionFinished  SessionState = "finished"
)

// RoundState is the lifecycle state of a single round.
type RoundState string

const (
	RoundWaiting  RoundState = "waiting"
	RoundPlaying  RoundState = "playing"
	RoundFinished RoundState = "finished"
)

// Track is the challenge content for one round: the song to guess.
type Track struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Duration   float64 `json:"duration"` // seconds
	MediaURL   string  `json:"mediaUrl"`
	PreviewURL string  `json:"previewUrl"`
}

// Answer records a single participant's submission for a round.
// At most one answer per participant per round.
type Answer struct {
	ParticipantID string    `json:"participantId"`
	Text          string    `json:"text"`
	Correct       bool      `json:"correct"`
	ResponseTime  float64   `json:"responseTime"` // seconds since round start
	Score         int       `json:"score"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Round is one timed challenge within a session.
type Round struct {
	Index         int        `json:"index"`
	Track         Track      `json:"track"`
	CorrectAnswer string     `json:"correctAnswer"`
	Alternatives  []string   `json:"alternatives"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
	TimeLimit     float64    `json:"timeLimit"` // seconds
	Answers       []Answer   `json:"answers"`
	State         RoundState `json:"state"`
}

// AnswerBy returns the participant's answer for this round, if any.
func (r *Round) AnswerBy(participantID string) (Answer, bool) {
	for _, a := range r.Answers {
		if a.ParticipantID == participantID {
			return a, true
		}
	}
	return Answer{}, false
}

// Participant holds a session-scoped running total for one lobby member.
type Participant struct {
	UserID              string  `json:"userId"`
	TotalScore          int     `json:"totalScore"`
	CorrectAnswers      int     `json:"correctAnswers"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	Rank                int     `json:"rank,omitempty"` // assigned once, at session end
}

// Settings configures a session at creation time.
type Settings struct {
	Rounds     int     `json:"rounds"`
	RoundTime  float64 `json:"roundTime"` // seconds per round
	Difficulty string  `json:"difficulty"`
}

// Session is one complete multi-round game tied to a lobby.
type Session struct {
	ID           string        `json:"id"`
	LobbyID      string        `json:"lobbyId"`
	Participants []Participant `json:"participants"`
	Rounds       []Round       `json:"rounds"`
	CurrentRound int           `json:"currentRound"`
	Settings     Settings      `json:"settings"`
	State        SessionState  `json:"state"`
	WinnerID     string        `json:"winnerId,omitempty"`
	// NeedsResync marks a session whose in-memory state is ahead of the
	// backing store after a failed save. Cleared on the next successful save.
	NeedsResync bool       `json:"needsResync,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Participant returns the session participant with the given user ID.
func (s *Session) Participant(userID string) (*Participant, bool) {
	for i := range s.Participants {
		if s.Participants[i].UserID == userID {
			return &s.Participants[i], true
		}
	}
	return nil, false
}

// LobbyMember is one user in a lobby with their readiness flag.
type LobbyMember struct {
	UserID string `json:"userId"`
	Ready  bool   `json:"ready"`
}

// Lobby is the pre-game grouping a session is created from. Membership
// management happens elsewhere; the engine only checks readiness.
type Lobby struct {
	ID       string        `json:"id"`
	Members  []LobbyMember `json:"members"`
	Settings Settings      `json:"settings"`
}

// UserProfile is the cumulative cross-session record kept in the user store.
type UserProfile struct {
	UserID              string    `json:"userId"`
	TotalScore          int       `json:"totalScore"`
	GamesPlayed         int       `json:"gamesPlayed"`
	GamesWon            int       `json:"gamesWon"`
	CorrectAnswers      int       `json:"correctAnswers"`
	TotalAnswers        int       `json:"totalAnswers"`
	AverageResponseTime float64   `json:"averageResponseTime"`
	CurrentStreak       int       `json:"currentStreak"`
	BestStreak          int       `json:"bestStreak"`
	LastActive          time.Time `json:"lastActive"`
}

// WinRate is the percentage of games won.
func (p UserProfile) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.GamesWon) / float64(p.GamesPlayed) * 100
}

// Accuracy is the percentage of answers that were correct.
func (p UserProfile) Accuracy() float64 {
	if p.TotalAnswers == 0 {
		return 0
	}
	return float64(p.CorrectAnswers) / float64(p.TotalAnswers) * 100
}
