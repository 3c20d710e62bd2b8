package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	readLimitBytes = 512 * 1024
)

// Client owns one websocket connection: a buffered outbound channel drained
// by the write pump, a keepalive pinger, and a read pump that feeds the
// session. The send channel is never closed; shutdown is signalled via done
// so concurrent Send calls can never hit a closed channel.
type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan Event
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
	closeFn sync.Once
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan Event, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an event for the write pump. It never blocks: a full buffer or
// a finished connection drops the event for this peer only.
func (c *Client) Send(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Client) shutdown() {
	c.closeFn.Do(func() {
		close(c.done)
	})
}

func (c *Client) writePump() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.conn.Close()
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			err := c.conn.WriteJSON(ev)
			c.mu.Unlock()

			if err != nil {
				log.Printf("chat: error sending event to client %s: %v", c.id, err)
				return
			}
		}
	}
}

func (c *Client) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()

			if err != nil {
				log.Printf("chat: ping error for client %s: %v", c.id, err)
				return
			}
		}
	}
}

func (c *Client) readPump(ctx context.Context, session *Session) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("chat: recovered from panic in read pump: %v", r)
		}

		c.shutdown()
		session.Close()
		decConnections()
		log.Printf("chat: client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(readLimitBytes)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("chat: error reading from client %s: %v", c.id, err)
			break
		}

		session.HandleRaw(ctx, data)
	}
}
