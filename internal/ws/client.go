package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message is one server→client frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Frame is one client→server frame; Data stays raw until the event type
// picks its shape.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client wraps one websocket connection with a stable transport session id
// and a write lock.
type Client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{id: uuid.NewString(), conn: conn}
}

func (c *Client) SessionID() string {
	return c.id
}

func (c *Client) Send(event string, data interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(Message{Type: event, Data: data})
}

func (c *Client) ReadFrame() (*Frame, error) {
	var f Frame
	if err := c.conn.ReadJSON(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) Close() {
	c.conn.Close()
}
