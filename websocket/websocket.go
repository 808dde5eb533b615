package websocket

import (
	"net/http"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/config"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/game"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/utils"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// NewHandler upgrades requests to websocket connections served by hub. Each
// connection gets a fresh id, its only identity for the game.
func NewHandler(hub *Hub, cfg config.WebSocketConfig) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     func(r *http.Request) bool { return true }, // Allow connections from any origin
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("WebSocket upgrade error")
			return
		}

		client := newClient(hub, conn, game.ConnID(utils.GenerateUUIDString()), cfg)
		if !hub.Register(client) {
			log.Warn().Str("connID", string(client.id)).Msg("Hub stopped, closing connection")
			conn.Close()
			return
		}
		log.Info().Str("connID", string(client.id)).Str("remoteAddr", conn.RemoteAddr().String()).Msg("WebSocket connection established")

		go client.writePump()
		client.readPump()
	}
}
