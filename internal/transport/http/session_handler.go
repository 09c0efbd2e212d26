package http

import (
	"encoding/json"
	"net/http"

	"music-quiz-service/internal/domain"
	"music-quiz-service/internal/game"
)

// SessionHandler exposes session creation to the lobby layer. The lobby
// service posts its ready snapshot; everything after that flows over the
// websocket. Settings the lobby leaves unset fall back to the server defaults.
type SessionHandler struct {
	engine   *game.Engine
	defaults domain.Settings
}

func NewSessionHandler(engine *game.Engine, defaults domain.Settings) *SessionHandler {
	return &SessionHandler{engine: engine, defaults: defaults}
}

var kindToStatus = map[domain.ErrorKind]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindPrecondition: http.StatusConflict,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindDependency:   http.StatusBadGateway,
}

// CreateSession handles POST /sessions with a lobby snapshot body.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var lobby domain.Lobby
	if err := json.NewDecoder(r.Body).Decode(&lobby); err != nil {
		http.Error(w, "invalid lobby payload", http.StatusBadRequest)
		return
	}
	if lobby.Settings.Rounds == 0 {
		lobby.Settings.Rounds = h.defaults.Rounds
	}
	if lobby.Settings.RoundTime == 0 {
		lobby.Settings.RoundTime = h.defaults.RoundTime
	}
	if lobby.Settings.Difficulty == "" {
		lobby.Settings.Difficulty = h.defaults.Difficulty
	}

	session, err := h.engine.CreateSession(r.Context(), lobby)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"sessionId":   session.ID,
		"state":       session.State,
		"totalRounds": len(session.Rounds),
	})
}

func writeError(w http.ResponseWriter, err error) {
	status, ok := kindToStatus[domain.KindOf(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorFrom(err))
}
