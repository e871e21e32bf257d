package server

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/tourguide/internal/logging"
	"go.uber.org/zap"
)

// Client is a bridge peer used by the watch command.
type Client struct {
	addr string
	conn *websocket.Conn
	wmu  sync.Mutex
}

// Dial connects to the bridge at addr (host:port).
func Dial(ctx context.Context, addr string) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bridge %s: %w", addr, err)
	}
	logging.LogConnection(addr, "bridge_dialed")
	return &Client{addr: addr, conn: conn}, nil
}

// Read blocks for the next message. Malformed frames are logged and skipped.
func (c *Client) Read() (Message, error) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return Message{}, err
		}
		msg, err := ParseMessage(data)
		if err != nil {
			logging.Warn("Malformed bridge message",
				zap.String("remote_addr", c.addr),
				zap.Error(err),
			)
			continue
		}
		return msg, nil
	}
}

// SendIntent asks the bridge to apply intent.
func (c *Client) SendIntent(intent string) error {
	data, err := IntentMessage(intent).Encode()
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.wmu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.wmu.Unlock()
	return c.conn.Close()
}
