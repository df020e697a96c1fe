package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents a WebSocket client for a public exchange feed:
// dial, subscribe, mutex-guarded writes, and plain JSON text framing.
type Client struct {
	url     string
	conn    *websocket.Conn
	header  http.Header
	writeMu sync.Mutex
}

// NewClient creates a new WebSocket client for the given public
// endpoint. No auth header is required; public trade channels need
// none.
func NewClient(url string) *Client {
	header := make(http.Header)
	header.Set("User-Agent", "Mozilla/5.0")
	return &Client{url: url, header: header}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, c.header)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}
	c.conn = conn
	return nil
}

// subscribeArg is one channel/instrument pair in an OKX-style
// subscribe request.
type subscribeArg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

type subscribeRequest struct {
	Op   string         `json:"op"`
	Args []subscribeArg `json:"args"`
}

// SubscribeTrades sends a subscribe request for the public trades
// channel of every given instrument.
func (c *Client) SubscribeTrades(symbols []string) error {
	args := make([]subscribeArg, len(symbols))
	for i, s := range symbols {
		args[i] = subscribeArg{Channel: "trades", InstID: s}
	}
	req := subscribeRequest{Op: "subscribe", Args: args}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}
	return c.WriteTextMessage(data)
}

// WriteTextMessage sends a text message thread-safely.
func (c *Client) WriteTextMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("connection is nil")
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadMessage reads one text frame from the connection.
func (c *Client) ReadMessage() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close closes the WebSocket connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
