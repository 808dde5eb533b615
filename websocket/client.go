package websocket

import (
	"time"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/config"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/game"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Client is one websocket connection. The hub writes to send; writePump
// drains it to the socket.
type Client struct {
	id   game.ConnID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	cfg  config.WebSocketConfig
}

func newClient(hub *Hub, conn *websocket.Conn, id game.ConnID, cfg config.WebSocketConfig) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, cfg.SendBuffer),
		cfg:  cfg,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("connID", string(c.id)).Msg("WebSocket closed unexpectedly")
			}
			return
		}
		c.hub.Dispatch(c, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connID", string(c.id)).Msg("Failed to write message")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
