package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"music-quiz-service/internal/content"
	"music-quiz-service/internal/domain"
	"music-quiz-service/internal/game"
	"music-quiz-service/internal/infra/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *game.Engine) {
	t.Helper()
	store := memory.NewSessionStore()
	// Single-track catalog so the correct answer is known in advance.
	provider := content.NewStaticProvider([]domain.Track{
		{ID: "t1", Title: "Yesterday", Artist: "The Beatles", Duration: 125},
	})
	hub := NewHub()
	engine := game.NewEngine(game.Config{
		Cache:       game.NewSessionCache(store),
		Store:       store,
		Content:     provider,
		Sink:        hub,
		Users:       memory.NewUserStore(),
		SettleDelay: 10 * time.Millisecond,
	})
	t.Cleanup(engine.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(engine, hub).ServeWS)
	mux.HandleFunc("/sessions", NewSessionHandler(engine, domain.Settings{Rounds: 3, RoundTime: 30}).CreateSession)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, engine
}

func createSession(t *testing.T, server *httptest.Server, users ...string) string {
	t.Helper()
	members := make([]map[string]any, 0, len(users))
	for _, u := range users {
		members = append(members, map[string]any{"userId": u, "ready": true})
	}
	body, _ := json.Marshal(map[string]any{
		"id":      "lobby-1",
		"members": members,
		"settings": map[string]any{
			"rounds":    1,
			"roundTime": 30,
		},
	})

	resp, err := http.Post(server.URL+"/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post session: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session status = %d", resp.StatusCode)
	}

	var created struct {
		SessionID   string `json:"sessionId"`
		State       string `json:"state"`
		TotalRounds int    `json:"totalRounds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if created.SessionID == "" || created.State != "preparing" || created.TotalRounds != 1 {
		t.Fatalf("unexpected session response: %+v", created)
	}
	return created.SessionID
}

func dialWS(t *testing.T, server *httptest.Server, sessionID, userID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=" + sessionID + "&userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil skims frames until one of the wanted type arrives. Broadcasts and
// direct replies interleave, so tests must not assume a strict frame order.
func readUntil(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read while waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
		if msg.Type == "error" && want != "error" {
			t.Fatalf("unexpected error frame while waiting for %s: %v", want, msg.Payload)
		}
	}
	t.Fatalf("no %s frame in 10 reads", want)
	return nil
}

func sendCommand(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestSessionEndpointRejectsUnreadyLobby(t *testing.T) {
	server, _ := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"id": "lobby-1",
		"members": []map[string]any{
			{"userId": "a", "ready": true},
			{"userId": "b", "ready": false},
		},
		"settings": map[string]any{"rounds": 1, "roundTime": 30},
	})
	resp, err := http.Post(server.URL+"/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	var payload struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if payload.Kind != string(domain.KindPrecondition) {
		t.Fatalf("kind = %q, want precondition", payload.Kind)
	}
}

func TestServeWSRequiresIdentity(t *testing.T) {
	server, _ := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=only"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without userId")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 handshake response, got %+v", resp)
	}
}

func TestWebSocketGameFlow(t *testing.T) {
	server, _ := newTestServer(t)
	sessionID := createSession(t, server, "a", "b")

	connA := dialWS(t, server, sessionID, "a")
	connB := dialWS(t, server, sessionID, "b")

	sendCommand(t, connA, "start", nil)

	// Both participants see the lifecycle broadcasts.
	readUntil(t, connA, "game_started")
	roundA := readUntil(t, connA, "round_started")
	readUntil(t, connB, "round_started")
	if track, ok := roundA["track"].(map[string]any); !ok || track["title"] != nil {
		t.Fatalf("round_started must not leak the track title: %v", roundA)
	}

	sendCommand(t, connA, "answer", map[string]any{"roundIndex": 0, "text": "The Beatles - Yesterday"})
	result := readUntil(t, connA, "answer_result")
	if result["correct"] != true {
		t.Fatalf("expected correct answer, got %v", result)
	}

	// Everyone answered once b submits, so the single round closes and the
	// game finishes. On b's connection the broadcasts are queued before the
	// direct answer_result reply, so read that last.
	sendCommand(t, connB, "answer", map[string]any{"roundIndex": 0, "text": "no idea"})
	readUntil(t, connB, "game_finished")
	readUntil(t, connB, "answer_result")

	reveal := readUntil(t, connA, "round_ended")
	if reveal["correctAnswer"] != "The Beatles - Yesterday" {
		t.Fatalf("reveal missing correct answer: %v", reveal)
	}
	readUntil(t, connA, "game_finished")

	sendCommand(t, connB, "results", nil)
	results := readUntil(t, connB, "results")
	if results["winnerId"] != "a" {
		t.Fatalf("winner = %v, want a", results["winnerId"])
	}
}

func TestWebSocketErrorReplies(t *testing.T) {
	server, _ := newTestServer(t)
	sessionID := createSession(t, server, "a", "b")
	conn := dialWS(t, server, sessionID, "a")

	// Answering before the session starts is a precondition failure.
	sendCommand(t, conn, "answer", map[string]any{"roundIndex": 0, "text": "guess"})
	errPayload := readUntil(t, conn, "error")
	if errPayload["kind"] != string(domain.KindPrecondition) {
		t.Fatalf("unexpected error payload: %v", errPayload)
	}

	sendCommand(t, conn, "bogus", nil)
	if readUntil(t, conn, "error") == nil {
		t.Fatalf("expected error reply for unsupported type")
	}
}
