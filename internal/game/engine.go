package game

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"music-quiz-service/internal/content"
	"music-quiz-service/internal/domain"
)

// BroadcastSink pushes lifecycle events to whoever is listening on a session.
// Fire-and-forget: the engine never waits for delivery.
type BroadcastSink interface {
	Notify(scope, event string, payload any)
}

// Broadcast event names, scoped to a session ID.
const (
	EventGameStarted  = "game_started"
	EventRoundStarted = "round_started"
	EventRoundEnded   = "round_ended"
	EventGameFinished = "game_finished"
)

const (
	defaultSettleDelay  = 3 * time.Second
	defaultSaveAttempts = 3
)

// Config wires the engine's collaborators. Cache, Store, Content, Sink and
// Users are required; the rest default.
type Config struct {
	Cache   *SessionCache
	Store   SessionStore
	Content content.Provider
	Sink    BroadcastSink
	Users   UserStore

	// SettleDelay is the pause between one round ending and the next starting.
	SettleDelay time.Duration
	// SaveAttempts bounds the store-save retry for accepted mutations.
	SaveAttempts int
	// Clock overrides time.Now for deterministic tests.
	Clock func() time.Time
}

// Engine drives game sessions: creation, round timers, answer submission,
// completion and final aggregation. One mutation at a time per session;
// different sessions run fully in parallel.
type Engine struct {
	cache        *SessionCache
	store        SessionStore
	content      content.Provider
	sink         BroadcastSink
	users        UserStore
	settleDelay  time.Duration
	saveAttempts int
	now          func() time.Time

	timerMu sync.Mutex
	timers  map[string]*time.Timer
}

func NewEngine(c Config) *Engine {
	if c.SettleDelay <= 0 {
		c.SettleDelay = defaultSettleDelay
	}
	if c.SaveAttempts <= 0 {
		c.SaveAttempts = defaultSaveAttempts
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return &Engine{
		cache:        c.Cache,
		store:        c.Store,
		content:      c.Content,
		sink:         c.Sink,
		users:        c.Users,
		settleDelay:  c.SettleDelay,
		saveAttempts: c.SaveAttempts,
		now:          c.Clock,
		timers:       make(map[string]*time.Timer),
	}
}

// CreateSession builds a session from a ready lobby: all round content is
// fetched up front and nothing is persisted unless every round has a track.
func (e *Engine) CreateSession(ctx context.Context, lobby domain.Lobby) (*domain.Session, error) {
	if len(lobby.Members) < 2 {
		return nil, domain.ErrLobbyNotReady
	}
	for _, m := range lobby.Members {
		if !m.Ready {
			return nil, domain.ErrLobbyNotReady
		}
	}
	if lobby.Settings.Rounds < 1 || lobby.Settings.RoundTime <= 0 {
		return nil, &domain.Error{Kind: domain.KindValidation, Message: "invalid session settings"}
	}

	tracks := make([]domain.Track, 0, lobby.Settings.Rounds)
	for i := 0; i < lobby.Settings.Rounds; i++ {
		track, err := e.content.FetchChallenge(ctx, lobby.Settings.Difficulty)
		if err != nil {
			return nil, domain.DependencyError("fetch round content", err)
		}
		tracks = append(tracks, track)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	session := buildSession(id.String(), lobby, tracks, e.now())
	if err := e.store.Save(ctx, session); err != nil {
		return nil, domain.DependencyError("persist session", err)
	}
	e.cache.insert(session)
	return session, nil
}

// StartSession moves a prepared session into play and begins round 0.
func (e *Engine) StartSession(ctx context.Context, sessionID string) error {
	return e.withSession(ctx, sessionID, func(s *domain.Session) error {
		switch s.State {
		case domain.SessionPreparing:
		case domain.SessionPlaying:
			return domain.ErrSessionAlreadyStarted
		default:
			return &domain.Error{Kind: domain.KindPrecondition, Message: "session already finished"}
		}

		now := e.now()
		s.State = domain.SessionPlaying
		s.StartedAt = &now
		s.UpdatedAt = now

		round, err := startRound(s, 0, now)
		if err != nil {
			return err
		}
		e.persistAccepted(ctx, s)
		e.armRoundTimer(s.ID, round.Index, round.TimeLimit)

		e.sink.Notify(s.ID, EventGameStarted, map[string]any{
			"sessionId":   s.ID,
			"totalRounds": len(s.Rounds),
			"startedAt":   now,
		})
		e.sink.Notify(s.ID, EventRoundStarted, roundView(s, round))
		return nil
	})
}

// SubmitAnswer validates, scores and records one participant's answer, then
// closes the round early if everyone has now answered. The call returns as
// soon as this answer is scored; it never waits for other participants.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID string, roundIndex int, participantID, text string) (domain.SubmissionResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.SubmissionResult{}, domain.ErrEmptyAnswer
	}

	var result domain.SubmissionResult
	err := e.withSession(ctx, sessionID, func(s *domain.Session) error {
		res, err := recordAnswer(s, roundIndex, participantID, text, e.now())
		if err != nil {
			return err
		}
		result = res
		e.persistAccepted(ctx, s)

		if allAnswered(s, roundIndex) {
			e.finishRound(ctx, s, roundIndex)
		}
		return nil
	})
	return result, err
}

// CurrentRound returns the participant-facing view of the active round with
// the answer material redacted.
func (e *Engine) CurrentRound(ctx context.Context, sessionID string) (domain.RoundView, error) {
	var view domain.RoundView
	err := e.withSession(ctx, sessionID, func(s *domain.Session) error {
		if s.State == domain.SessionPreparing {
			return domain.ErrSessionNotStarted
		}
		if s.State == domain.SessionFinished || s.CurrentRound >= len(s.Rounds) {
			return domain.ErrRoundNotActive
		}
		view = roundView(s, &s.Rounds[s.CurrentRound])
		return nil
	})
	return view, err
}

// Results returns the final standings and per-round reveals for a finished
// session.
func (e *Engine) Results(ctx context.Context, sessionID string) (domain.SessionResults, error) {
	var results domain.SessionResults
	err := e.withSession(ctx, sessionID, func(s *domain.Session) error {
		if s.State != domain.SessionFinished {
			return domain.ErrSessionNotFinished
		}
		results = domain.SessionResults{
			SessionID:   s.ID,
			WinnerID:    s.WinnerID,
			Leaderboard: append([]domain.Participant(nil), s.Participants...),
			FinishedAt:  s.FinishedAt,
		}
		for i := range s.Rounds {
			results.Rounds = append(results.Rounds, roundReveal(&s.Rounds[i]))
		}
		return nil
	})
	return results, err
}

// Close stops all pending timers. In-flight transitions finish normally.
func (e *Engine) Close() {
	e.timerMu.Lock()
	defer e.timerMu.Unlock()
	for id, t := range e.timers {
		t.Stop()
		delete(e.timers, id)
	}
}

// withSession serializes fn against all other mutations of the same session.
func (e *Engine) withSession(ctx context.Context, sessionID string, fn func(s *domain.Session) error) error {
	entry, err := e.cache.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// finishRound is the single guarded Playing→Finished entry point shared by
// the deadline timer and the all-answered path. Caller holds the session
// lock; whichever caller gets there second is a no-op.
func (e *Engine) finishRound(ctx context.Context, s *domain.Session, roundIndex int) {
	if !endRound(s, roundIndex, e.now()) {
		return
	}
	e.stopTimer(s.ID)
	e.persistAccepted(ctx, s)
	e.sink.Notify(s.ID, EventRoundEnded, roundReveal(&s.Rounds[roundIndex]))

	if roundIndex+1 < len(s.Rounds) {
		e.scheduleAdvance(s.ID, roundIndex+1)
		return
	}
	e.finishSession(ctx, s)
}

// finishSession finalizes standings, updates cumulative player stats and
// announces the result. Caller holds the session lock.
func (e *Engine) finishSession(ctx context.Context, s *domain.Session) {
	now := e.now()
	s.State = domain.SessionFinished
	s.FinishedAt = &now
	s.CurrentRound = len(s.Rounds)
	s.UpdatedAt = now

	finalizeStandings(s)
	e.persistAccepted(ctx, s)

	if err := e.updateProfiles(ctx, s); err != nil {
		log.Printf("session %s: updating user profiles failed: %v", s.ID, err)
	}

	results := domain.SessionResults{
		SessionID:   s.ID,
		WinnerID:    s.WinnerID,
		Leaderboard: append([]domain.Participant(nil), s.Participants...),
		FinishedAt:  s.FinishedAt,
	}
	for i := range s.Rounds {
		results.Rounds = append(results.Rounds, roundReveal(&s.Rounds[i]))
	}
	e.sink.Notify(s.ID, EventGameFinished, results)
}

// armRoundTimer schedules the deadline for a round. One timer slot per
// session: arming replaces whatever was pending.
func (e *Engine) armRoundTimer(sessionID string, roundIndex int, limitSeconds float64) {
	d := time.Duration(limitSeconds * float64(time.Second))
	e.setTimer(sessionID, time.AfterFunc(d, func() {
		e.roundDeadline(sessionID, roundIndex)
	}))
}

// scheduleAdvance starts the next round after the settle delay.
func (e *Engine) scheduleAdvance(sessionID string, nextIndex int) {
	e.setTimer(sessionID, time.AfterFunc(e.settleDelay, func() {
		e.advanceRound(sessionID, nextIndex)
	}))
}

func (e *Engine) setTimer(sessionID string, t *time.Timer) {
	e.timerMu.Lock()
	if old, ok := e.timers[sessionID]; ok {
		old.Stop()
	}
	e.timers[sessionID] = t
	e.timerMu.Unlock()
}

func (e *Engine) stopTimer(sessionID string) {
	e.timerMu.Lock()
	if t, ok := e.timers[sessionID]; ok {
		t.Stop()
		delete(e.timers, sessionID)
	}
	e.timerMu.Unlock()
}

// roundDeadline fires when a round's time limit elapses. The state guard in
// finishRound makes a stale timer (round already closed by the all-answered
// path, or a later round playing) a no-op.
func (e *Engine) roundDeadline(sessionID string, roundIndex int) {
	ctx := context.Background()
	err := e.withSession(ctx, sessionID, func(s *domain.Session) error {
		if s.State != domain.SessionPlaying || s.CurrentRound != roundIndex {
			return nil
		}
		e.finishRound(ctx, s, roundIndex)
		return nil
	})
	if err != nil {
		log.Printf("session %s: round %d deadline: %v", sessionID, roundIndex, err)
	}
}

// advanceRound begins the next round after the settle delay.
func (e *Engine) advanceRound(sessionID string, index int) {
	ctx := context.Background()
	err := e.withSession(ctx, sessionID, func(s *domain.Session) error {
		if s.State != domain.SessionPlaying {
			return nil
		}
		round, err := startRound(s, index, e.now())
		if err != nil {
			return nil // already started or out of range; stale schedule
		}
		e.persistAccepted(ctx, s)
		e.armRoundTimer(s.ID, round.Index, round.TimeLimit)
		e.sink.Notify(s.ID, EventRoundStarted, roundView(s, round))
		return nil
	})
	if err != nil {
		log.Printf("session %s: advance to round %d: %v", sessionID, index, err)
	}
}

// persistAccepted saves a session whose mutation has already been accepted.
// The save is retried a bounded number of times; if it still fails the
// in-memory state stands and the session is flagged for resync, which the
// next successful save clears.
func (e *Engine) persistAccepted(ctx context.Context, s *domain.Session) {
	s.NeedsResync = false
	var err error
	for attempt := 0; attempt < e.saveAttempts; attempt++ {
		if err = e.store.Save(ctx, s); err == nil {
			return
		}
	}
	s.NeedsResync = true
	log.Printf("session %s: save failed after %d attempts, marked for resync: %v", s.ID, e.saveAttempts, err)
}
