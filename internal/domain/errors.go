package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so transports can map them to their own codes.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindPrecondition ErrorKind = "precondition"
	KindNotFound     ErrorKind = "not_found"
	KindDependency   ErrorKind = "dependency"
)

// Error is a kind-tagged error. Sentinel instances below cover the engine's
// synchronous failure modes; dependency failures wrap their cause.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches on kind and message so sentinel comparisons survive wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// DependencyError wraps a collaborator failure (store, content provider).
func DependencyError(message string, cause error) *Error {
	return &Error{Kind: KindDependency, Message: message, cause: cause}
}

// KindOf returns the kind of err, or empty string for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

var (
	// ErrEmptyAnswer is returned for blank submission text.
	ErrEmptyAnswer = newError(KindValidation, "answer text is empty")
	// ErrLobbyNotReady is returned when a lobby has fewer than two members
	// or any member is not marked ready.
	ErrLobbyNotReady = newError(KindPrecondition, "lobby is not ready")
	// ErrRoundNotActive is returned when the addressed round is not the
	// current round in playing state.
	ErrRoundNotActive = newError(KindPrecondition, "round is not active")
	// ErrTimeLimitExceeded is returned when an answer arrives past the
	// round's time limit, even if the round has not been closed yet.
	ErrTimeLimitExceeded = newError(KindPrecondition, "time limit exceeded")
	// ErrDuplicateAnswer is returned when a participant already answered
	// the round. Retries are rejected without disturbing the recorded answer.
	ErrDuplicateAnswer = newError(KindPrecondition, "answer already submitted")
	// ErrSessionNotStarted is returned when gameplay operations hit a
	// session still in the preparing state.
	ErrSessionNotStarted = newError(KindPrecondition, "session has not started")
	// ErrSessionAlreadyStarted is returned when starting a session twice.
	ErrSessionAlreadyStarted = newError(KindPrecondition, "session already started")
	// ErrSessionNotFinished is returned when results are requested before
	// the session is finalized.
	ErrSessionNotFinished = newError(KindPrecondition, "session is not finished")

	// ErrSessionNotFound indicates an unknown session ID.
	ErrSessionNotFound = newError(KindNotFound, "session not found")
	// ErrParticipantNotFound indicates the user is not part of the session.
	ErrParticipantNotFound = newError(KindNotFound, "participant not found in session")
	// ErrRoundNotFound indicates a round index outside the session.
	ErrRoundNotFound = newError(KindNotFound, "round not found")
	// ErrTrackNotFound indicates the content source has no track to offer.
	ErrTrackNotFound = newError(KindNotFound, "no track available")
	// ErrProfileNotFound indicates no stored profile for the user.
	ErrProfileNotFound = newError(KindNotFound, "user profile not found")
)
