package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // deployed behind the chat gateway
	},
}

// wsIncoming is a message from the client.
type wsIncoming struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// handleWebSocket answers each chat message on the connection in order.
// Messages not addressed to the bot get an "ignored" frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	log := s.logger.With(zap.String("conn", uuid.NewString()))
	log.Debug("websocket connected")

	ctx := r.Context()
	for {
		var msg wsIncoming
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket closed")
				return
			}
			log.Warn("websocket read error", zap.Error(err))
			return
		}

		if msg.Type != "message" || msg.Content == "" {
			s.wsWrite(conn, log, wsOutgoing{Type: "error", Content: "invalid message"})
			continue
		}

		reply, handled, err := s.dispatcher.Handle(ctx, msg.Content)
		switch {
		case err != nil:
			s.wsWrite(conn, log, wsOutgoing{Type: "error", Content: err.Error()})
		case !handled:
			s.wsWrite(conn, log, wsOutgoing{Type: "ignored"})
		default:
			s.wsWrite(conn, log, wsOutgoing{Type: "reply", Content: reply})
		}
	}
}

func (s *Server) wsWrite(conn *websocket.Conn, log *zap.Logger, v wsOutgoing) {
	if err := conn.WriteJSON(v); err != nil {
		log.Warn("websocket write error", zap.Error(err))
	}
}
