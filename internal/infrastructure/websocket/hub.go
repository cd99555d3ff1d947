package websocket

import (
	"sync"

	"gig-marketplace/internal/domain"
	"gig-marketplace/pkg/logger"
)

// Hub is the process-wide room registry and fan-out point. It is constructed
// once at startup and injected into everything that publishes; membership
// lives only as long as the connections do.
type Hub struct {
	rooms      map[string]map[string]domain.Connection // room -> connID -> connection
	membership map[string]map[string]struct{}          // connID -> set of rooms
	mutex      sync.RWMutex
	log        logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[string]domain.Connection),
		membership: make(map[string]map[string]struct{}),
		log:        log,
	}
}

func (h *Hub) Join(conn domain.Connection, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]domain.Connection)
	}
	h.rooms[room][conn.ID()] = conn

	if h.membership[conn.ID()] == nil {
		h.membership[conn.ID()] = make(map[string]struct{})
	}
	h.membership[conn.ID()][room] = struct{}{}

	h.log.Debug("Connection joined room", "conn_id", conn.ID(), "room", room)
}

func (h *Hub) Leave(conn domain.Connection, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.removeFromRoom(conn.ID(), room)
	if members, exists := h.membership[conn.ID()]; exists {
		delete(members, room)
		if len(members) == 0 {
			delete(h.membership, conn.ID())
		}
	}

	h.log.Debug("Connection left room", "conn_id", conn.ID(), "room", room)
}

// Disconnect removes the connection from every room it joined. No explicit
// leave commands are needed on connection loss.
func (h *Hub) Disconnect(conn domain.Connection) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for room := range h.membership[conn.ID()] {
		h.removeFromRoom(conn.ID(), room)
	}
	delete(h.membership, conn.ID())

	h.log.Debug("Connection disconnected", "conn_id", conn.ID())
}

func (h *Hub) removeFromRoom(connID, room string) {
	if members, exists := h.rooms[room]; exists {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Publish sends the event to every current member of room. Fire-and-forget:
// send failures are logged and skipped, never retried or queued.
func (h *Hub) Publish(room, event string, payload interface{}) error {
	for _, conn := range h.snapshot(room, "") {
		if err := conn.Send(event, payload); err != nil {
			h.log.Error("Failed to send event", "conn_id", conn.ID(),
				"room", room, "event", event, "error", err)
		}
	}
	return nil
}

// PublishExcept sends the event to every member of room that is not also a
// member of exceptRoom.
func (h *Hub) PublishExcept(room, exceptRoom, event string, payload interface{}) error {
	for _, conn := range h.snapshot(room, exceptRoom) {
		if err := conn.Send(event, payload); err != nil {
			h.log.Error("Failed to send event", "conn_id", conn.ID(),
				"room", room, "event", event, "error", err)
		}
	}
	return nil
}

func (h *Hub) snapshot(room, exceptRoom string) []domain.Connection {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var excluded map[string]domain.Connection
	if exceptRoom != "" {
		excluded = h.rooms[exceptRoom]
	}

	var connections []domain.Connection
	for id, conn := range h.rooms[room] {
		if _, skip := excluded[id]; skip {
			continue
		}
		connections = append(connections, conn)
	}

	return connections
}
