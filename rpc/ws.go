package rpc

import (
	"net/http"

	"github.com/gorilla/websocket"
)

const wsReadLimit = 15 * 1024 * 1024

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// serveWS answers JSON-RPC messages on a websocket until the peer goes away.
// Each text frame holds one request or one batch.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)

	s.logger.Debug("websocket connected", "remote", r.RemoteAddr)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket closed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		out := s.handleBody(r.Context(), data)
		if out == nil {
			continue
		}

		if err := conn.WriteJSON(out); err != nil {
			s.logger.Error("failed to write response", "err", err)
			return
		}
	}
}
