package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"music-quiz-service/internal/domain"
	"music-quiz-service/internal/game"
)

// WSHandler wires websocket connections into the game engine: inbound
// commands (answer, start, round, results) and outbound lifecycle broadcasts
// via the shared Hub.
type WSHandler struct {
	engine   *game.Engine
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *game.Engine, hub *Hub) *WSHandler {
	return &WSHandler{
		engine: engine,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	RoundIndex int    `json:"roundIndex"`
	Text       string `json:"text"`
}

type errorPayload struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and pumps commands for one participant.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	userID := r.URL.Query().Get("userId")
	if sessionID == "" || userID == "" {
		http.Error(w, "missing sessionId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, 16)}
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop()
	}()

	h.hub.register(sessionID, c)
	defer func() {
		h.hub.unregister(sessionID, c)
		<-done
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				c.sendDirect("error", errorPayload{Message: "invalid answer payload"})
				continue
			}
			result, err := h.engine.SubmitAnswer(r.Context(), sessionID, payload.RoundIndex, userID, payload.Text)
			if err != nil {
				c.sendDirect("error", errorFrom(err))
				continue
			}
			c.sendDirect("answer_result", result)
		case "start":
			if err := h.engine.StartSession(r.Context(), sessionID); err != nil {
				c.sendDirect("error", errorFrom(err))
			}
		case "round":
			view, err := h.engine.CurrentRound(r.Context(), sessionID)
			if err != nil {
				c.sendDirect("error", errorFrom(err))
				continue
			}
			c.sendDirect("round", view)
		case "results":
			results, err := h.engine.Results(r.Context(), sessionID)
			if err != nil {
				c.sendDirect("error", errorFrom(err))
				continue
			}
			c.sendDirect("results", results)
		default:
			c.sendDirect("error", errorPayload{Message: "unsupported message type"})
		}
	}
}

func errorFrom(err error) errorPayload {
	return errorPayload{
		Kind:    string(domain.KindOf(err)),
		Message: err.Error(),
	}
}
