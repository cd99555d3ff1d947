package websocket

import (
	"context"
	"net/http"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"
	"gig-marketplace/pkg/utils"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// clientCommand is what clients send over the socket. Room membership is
// always an explicit command, never a side effect of connecting: join-room
// carries the caller's token and subscribes the personal and broadcast rooms,
// join-gig-room/leave-gig-room toggle a gig's room while its detail view is
// open.
type clientCommand struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Token string `json:"token,omitempty"`
}

type WebSocketHandler struct {
	hub      *Hub
	verifier domain.TokenVerifier
	log      logger.Logger
}

func NewWebSocketHandler(hub *Hub, verifier domain.TokenVerifier, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		verifier: verifier,
		log:      log,
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewWebSocketConnection(conn, utils.NewID())
	h.log.Info("Client connected", "conn_id", wsConn.ID())

	go h.handleCommands(wsConn, conn)
}

// The request context is not used past the upgrade: it is cancelled as soon
// as HandleConnection returns, while the command loop outlives it.
func (h *WebSocketHandler) handleCommands(wsConn *WebSocketConnection, conn *websocket.Conn) {
	defer func() {
		h.hub.Disconnect(wsConn)
		wsConn.Close()
		h.log.Info("Client disconnected", "conn_id", wsConn.ID())
	}()

	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Error("Failed to read command", "conn_id", wsConn.ID(), "error", err)
			}
			return
		}

		switch cmd.Type {
		case "join-room":
			h.handleJoinRoom(wsConn, cmd)
		case "join-gig-room":
			h.hub.Join(wsConn, domain.GigRoom(cmd.ID))
		case "leave-gig-room":
			h.hub.Leave(wsConn, domain.GigRoom(cmd.ID))
		case "ping":
			wsConn.Send("pong", nil)
		}
	}
}

func (h *WebSocketHandler) handleJoinRoom(wsConn *WebSocketConnection, cmd clientCommand) {
	user, err := h.verifier.VerifyToken(context.Background(), cmd.Token)
	if err != nil {
		h.log.Warn("Rejected join-room", "conn_id", wsConn.ID(), "error", err)
		wsConn.Send("error", map[string]string{"message": "authentication required"})
		return
	}

	h.hub.Join(wsConn, domain.UserRoom(user.ID))
	h.hub.Join(wsConn, domain.BroadcastRoom)
}
