package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	// Origin is enforced by the CORS layer; the handshake accepts any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsEmitter serializes session output onto one websocket connection.
type wsEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (e *wsEmitter) Emit(m domain.Outbound) error {
	b, err := domain.MarshalEnvelope(m)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn.WriteMessage(websocket.TextMessage, b)
}

// SessionHandler handles GET /v1/interviews/{id}/ws. It upgrades the
// connection, registers a session for the interview, and pumps inbound
// frames into it until either side closes.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		interviewID := chi.URLParam(r, "id")
		lg := LoggerFrom(r).With(slog.String("interview_id", interviewID))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			lg.Warn("websocket upgrade failed", slog.Any("error", err))
			return
		}
		defer func() { _ = conn.Close() }()

		emitter := &wsEmitter{conn: conn}
		sess := session.New(s.SessionDeps, interviewID, emitter)
		if err := s.Sessions.Add(interviewID, sess); err != nil {
			b, _ := domain.MarshalEnvelope(domain.Outbound{Type: domain.MsgError, Payload: domain.ErrorPayload{
				Code:    session.CodeInvalidState,
				Message: "interview already has an active session",
			}})
			_ = conn.WriteMessage(websocket.TextMessage, b)
			return
		}
		defer s.Sessions.Remove(interviewID)

		go func() {
			if err := sess.Run(r.Context()); err != nil {
				lg.Warn("session ended with error", slog.Any("error", err))
			}
			// Wake the read loop so the handler can return.
			_ = conn.Close()
		}()
		defer sess.Close()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					lg.Info("websocket closed", slog.Any("error", err))
				}
				return
			}
			var env domain.Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				_ = emitter.Emit(domain.Outbound{Type: domain.MsgError, Payload: domain.ErrorPayload{
					Code:    session.CodeBadPayload,
					Message: "malformed frame",
				}})
				continue
			}
			if err := sess.Dispatch(env); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return
				}
				lg.Warn("dispatch failed", slog.Any("error", err))
			}
		}
	}
}
