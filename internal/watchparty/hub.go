// Package watchparty hosts the per-market chat rooms. Each market id maps to
// one room; clients join over WebSocket, announce a username, and every
// message is broadcast to the whole room. Rooms are created on first join
// and reaped when the last client leaves.
package watchparty

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Message is the wire format for everything in a room: client->server join
// and chat messages, and server->client broadcasts.
type Message struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	Text      string `json:"text,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type Hub struct {
	mu       sync.Mutex
	rooms    map[string]map[string]*client
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*client),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			// Rooms carry no privileged state; any origin may join.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWS upgrades the connection and runs the client until it disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	marketID := mux.Vars(r)["marketID"]
	if marketID == "" {
		http.Error(w, "missing market id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("watchparty: upgrade failed: %v", err)
		return
	}

	c := newClient(marketID, conn)
	h.register(c)

	go c.writePump()
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.marketID]
	if !ok {
		room = make(map[string]*client)
		h.rooms[c.marketID] = room
	}
	room[c.id] = c

	log.Printf("watchparty: client connected to market %s (%d in room)", c.marketID, len(room))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	room, ok := h.rooms[c.marketID]
	if ok {
		delete(room, c.id)
		if len(room) == 0 {
			delete(h.rooms, c.marketID)
		}
	}
	remaining := len(room)
	h.mu.Unlock()

	c.close()

	if ok && remaining > 0 && c.username != "" {
		h.broadcast(c.marketID, Message{
			Type:      "user_leave",
			Username:  c.username,
			Timestamp: timestamp(),
		})
	}
	log.Printf("watchparty: client left market %s (%d remaining)", c.marketID, remaining)
}

// broadcast delivers msg to every client in the room. A client that cannot
// keep up has its buffer dropped on the floor rather than blocking the room.
func (h *Hub) broadcast(marketID string, msg Message) {
	h.mu.Lock()
	room := h.rooms[marketID]
	clients := make([]*client, 0, len(room))
	for _, c := range room {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.enqueue(msg)
	}
}

func (h *Hub) readPump(c *client) {
	defer h.unregister(c)

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join":
			c.username = msg.Username
			h.broadcast(c.marketID, Message{
				Type:      "user_join",
				Username:  c.username,
				Timestamp: timestamp(),
			})
		case "message":
			h.broadcast(c.marketID, Message{
				Type:      "message",
				Username:  c.username,
				Text:      msg.Text,
				Timestamp: timestamp(),
			})
		}
	}
}

// RoomSize reports how many clients are in a market's room.
func (h *Hub) RoomSize(marketID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[marketID])
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}
