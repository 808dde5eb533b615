package api

import (
	"encoding/json"
	"net/http"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/config"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/game"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/websocket"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type API struct {
	service  *game.Service
	hub      *websocket.Hub
	wsConfig config.WebSocketConfig
	gatherer prometheus.Gatherer
}

func New(service *game.Service, hub *websocket.Hub, wsConfig config.WebSocketConfig, gatherer prometheus.Gatherer) *API {
	return &API{
		service:  service,
		hub:      hub,
		wsConfig: wsConfig,
		gatherer: gatherer,
	}
}

// Router returns the HTTP handler for every route, with CORS open to all
// origins and access logs written to the global logger.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", StatusHandler).Methods("GET")
	r.HandleFunc("/ws", websocket.NewHandler(a.hub, a.wsConfig))
	r.HandleFunc("/game/{roomID}/state", a.GetGameStateHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST"}),
	)
	return handlers.LoggingHandler(log.Logger, cors(r))
}

func StatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Server is running"))
}

func (a *API) GetGameStateHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]

	gameState, exists := a.service.Snapshot(roomID)
	if !exists {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	jsonData, err := json.Marshal(gameState)
	if err != nil {
		http.Error(w, "Failed to marshal game state to JSON", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(jsonData)
}
