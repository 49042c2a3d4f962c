package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// WSMessage is the envelope for every frame sent to a client.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is a single WebSocket connection bound to one topic.
type Client struct {
	ID    string
	Topic string
	conn  *websocket.Conn
	send  chan WSMessage
	hub   *Hub
}

// Serve registers the connection with the hub and pumps frames until the
// peer disconnects. It blocks, which is how the fiber websocket handler
// keeps the connection alive.
func Serve(hub *Hub, conn *websocket.Conn, topic string, logger *zap.Logger) {
	c := &Client{
		ID:    uuid.New().String(),
		Topic: topic,
		conn:  conn,
		send:  make(chan WSMessage, sendBuffer),
		hub:   hub,
	}
	hub.Register(c)

	done := make(chan struct{})
	go c.writePump(done, logger)
	c.readPump()

	hub.Unregister(c)
	close(done)
}

// readPump drains incoming frames. Clients only receive; anything they
// send besides pongs is discarded.
func (c *Client) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump(done <-chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Debug("websocket write failed", zap.String("client_id", c.ID), zap.Error(err))
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		}
	}
}
