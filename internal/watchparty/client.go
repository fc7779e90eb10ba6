package watchparty

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
)

type client struct {
	id       string
	marketID string
	username string
	conn     *websocket.Conn

	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(marketID string, conn *websocket.Conn) *client {
	return &client{
		id:       uuid.NewString(),
		marketID: marketID,
		conn:     conn,
		send:     make(chan Message, sendBuffer),
		done:     make(chan struct{}),
	}
}

// enqueue hands a message to the write pump. A full buffer or a closed
// client drops the message rather than blocking the room.
func (c *client) enqueue(msg Message) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
