package websocket

import (
	"sync"

	"github.com/gorilla/websocket"
)

// frame is the wire shape of every server push.
type frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type WebSocketConnection struct {
	conn    *websocket.Conn
	id      string
	writeMu sync.Mutex // gorilla allows one concurrent writer
}

func NewWebSocketConnection(conn *websocket.Conn, id string) *WebSocketConnection {
	return &WebSocketConnection{
		conn: conn,
		id:   id,
	}
}

func (c *WebSocketConnection) Send(event string, payload interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame{Event: event, Data: payload})
}

func (c *WebSocketConnection) Close() error {
	return c.conn.Close()
}

func (c *WebSocketConnection) ID() string {
	return c.id
}
