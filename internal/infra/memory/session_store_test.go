package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"music-quiz-service/internal/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	session := &domain.Session{
		ID:      "s1",
		LobbyID: "lobby-1",
		State:   domain.SessionPreparing,
		Participants: []domain.Participant{
			{UserID: "u1"},
			{UserID: "u2"},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LobbyID != "lobby-1" || len(loaded.Participants) != 2 {
		t.Fatalf("unexpected session: %+v", loaded)
	}

	// The store must hold a snapshot, not alias the saved pointer.
	session.State = domain.SessionPlaying
	loaded2, _ := store.Load(ctx, "s1")
	if loaded2.State != domain.SessionPreparing {
		t.Fatalf("store aliased caller state, got %s", loaded2.State)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestUserStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()

	if _, err := store.LoadProfile(ctx, "u1"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected profile not found, got %v", err)
	}

	profile := domain.UserProfile{UserID: "u1", GamesPlayed: 3, GamesWon: 2}
	if err := store.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	loaded, err := store.LoadProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if loaded.GamesPlayed != 3 || loaded.GamesWon != 2 {
		t.Fatalf("unexpected profile: %+v", loaded)
	}
}
