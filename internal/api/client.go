package api

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ricochet1k/storymesh/pkg/wire"
)

const outboundBufferSize = 64

var errClientGone = errors.New("observer send buffer full or closed")

// Client is one attached websocket observer. Outbound envelopes go through
// a buffered send channel drained by WriteLoop, so hub sweeps never block
// on a slow socket.
type Client struct {
	id    string
	conn  *websocket.Conn
	send  chan wire.ServerEnvelope
	close sync.Once

	mu     sync.Mutex
	closed bool
}

func NewClient(id string, conn *websocket.Conn) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan wire.ServerEnvelope, outboundBufferSize),
	}
}

func (c *Client) ID() string {
	return c.id
}

// Send queues an envelope for delivery. A full buffer counts as a send
// failure, which detaches this observer without touching the others.
func (c *Client) Send(env wire.ServerEnvelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientGone
	}
	select {
	case c.send <- env:
		return nil
	default:
		return errClientGone
	}
}

func (c *Client) WriteLoop() {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *Client) Close() {
	c.close.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		_ = c.conn.Close()
		close(c.send)
	})
}
