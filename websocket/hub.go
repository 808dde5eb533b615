package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/events"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/game"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/metrics"
	"github.com/rs/zerolog/log"
)

// inboundMessage is a frame read from client, or its departure when leave
// is set. Both share one queue so a client's events keep their read order.
type inboundMessage struct {
	client *Client
	data   []byte
	leave  bool
}

type firedNotice struct {
	id         uint64
	notice     game.Notice
	recipients []game.ConnID
}

// Hub routes client events to the game service and fans out the resulting
// notices. Run owns all hub state, so events are applied one at a time.
type Hub struct {
	service *game.Service
	metrics *metrics.Metrics

	clients   map[game.ConnID]*Client
	topics    map[string]map[game.ConnID]struct{}
	timers    map[uint64]*time.Timer
	nextTimer uint64

	register chan *Client
	inbound  chan inboundMessage
	fired    chan firedNotice
	done     chan struct{}
}

func NewHub(service *game.Service, m *metrics.Metrics) *Hub {
	return &Hub{
		service:  service,
		metrics:  m,
		clients:  make(map[game.ConnID]*Client),
		topics:   make(map[string]map[game.ConnID]struct{}),
		timers:   make(map[uint64]*time.Timer),
		register: make(chan *Client),
		inbound:  make(chan inboundMessage, 256),
		fired:    make(chan firedNotice),
		done:     make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled. Pending deferred notices
// are cancelled and every client send channel is closed on return.
func (h *Hub) Run(ctx context.Context) {
	log.Info().Msg("Hub starting...")
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client.id] = client
			h.metrics.ConnectionOpened()
			log.Info().Str("connID", string(client.id)).Int("connectionsCount", len(h.clients)).Msg("Connection registered")
		case msg := <-h.inbound:
			if msg.leave {
				h.disconnect(msg.client)
			} else {
				h.dispatch(msg.client, msg.data)
			}
		case f := <-h.fired:
			delete(h.timers, f.id)
			h.deliverTo(f.recipients, f.notice)
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister queues the departure of c behind every frame it already
// dispatched.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.inbound <- inboundMessage{client: c, leave: true}:
	case <-h.done:
	}
}

// Dispatch queues a raw frame received from c.
func (h *Hub) Dispatch(c *Client, data []byte) {
	select {
	case h.inbound <- inboundMessage{client: c, data: data}:
	case <-h.done:
	}
}

func (h *Hub) shutdown() {
	close(h.done)
	for id, t := range h.timers {
		t.Stop()
		delete(h.timers, id)
	}
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
	log.Info().Msg("Hub stopped")
}

func (h *Hub) disconnect(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	for room, members := range h.topics {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.topics, room)
		}
	}
	close(c.send)
	h.metrics.ConnectionClosed()
	log.Info().Str("connID", string(c.id)).Int("remainingConnections", len(h.clients)).Msg("Connection deregistered")

	h.apply(h.service.Disconnect(c.id))
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

func (h *Hub) dispatch(c *Client, data []byte) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	var env events.RawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("connID", string(c.id)).Msg("Failed to parse message")
		return
	}

	out, err := h.route(c.id, env)
	if err != nil {
		log.Warn().Err(err).Str("connID", string(c.id)).Str("event", env.Event).Msg("Dropped message")
		return
	}
	h.metrics.EventReceived(env.Event)
	h.apply(out)
	h.metrics.SetRooms(h.service.RoomCount())
}

func (h *Hub) route(conn game.ConnID, env events.RawEnvelope) (game.Outcome, error) {
	switch env.Event {
	case events.CreateGame:
		req, err := decode[events.CreateGamePayload](env.Data)
		if err != nil {
			return game.Outcome{}, err
		}
		return h.service.Create(conn, req), nil
	case events.JoinGame:
		roomID, err := decode[string](env.Data)
		if err != nil {
			return game.Outcome{}, err
		}
		return h.service.Join(conn, roomID), nil
	case events.MakeMove:
		req, err := decode[events.MakeMovePayload](env.Data)
		if err != nil {
			return game.Outcome{}, err
		}
		return h.service.Move(conn, req), nil
	case events.RestartGame:
		roomID, err := decode[string](env.Data)
		if err != nil {
			return game.Outcome{}, err
		}
		return h.service.RequestRestart(conn, roomID), nil
	case events.DeclineRestart:
		roomID, err := decode[string](env.Data)
		if err != nil {
			return game.Outcome{}, err
		}
		return h.service.DeclineRestart(conn, roomID), nil
	case events.ChangeGameSettings:
		req, err := decode[events.ChangeGameSettingsPayload](env.Data)
		if err != nil {
			return game.Outcome{}, err
		}
		return h.service.ChangeSettings(conn, req), nil
	case events.ChatMessage:
		req, err := decode[events.ChatMessagePayload](env.Data)
		if err != nil {
			return game.Outcome{}, err
		}
		return h.service.Chat(conn, req), nil
	default:
		return game.Outcome{}, fmt.Errorf("unknown event %q", env.Event)
	}
}

func (h *Hub) apply(out game.Outcome) {
	for _, sub := range out.Subscribe {
		members, ok := h.topics[sub.Room]
		if !ok {
			members = make(map[game.ConnID]struct{})
			h.topics[sub.Room] = members
		}
		members[sub.Conn] = struct{}{}
	}
	for _, n := range out.Notices {
		h.deliver(n)
	}
	for _, d := range out.Deferred {
		h.schedule(d)
	}
	for _, room := range out.Closed {
		delete(h.topics, room)
		log.Debug().Str("roomID", room).Msg("Room topic closed")
	}
}

// schedule resolves the recipients of d now, so a deferred notice reaches
// the connections that played the game even if the room is closed or its
// id reused before the timer fires.
func (h *Hub) schedule(d game.Deferred) {
	h.nextTimer++
	id := h.nextTimer
	recipients := h.recipients(d.Notice.To)
	h.timers[id] = time.AfterFunc(d.After, func() {
		select {
		case h.fired <- firedNotice{id: id, notice: d.Notice, recipients: recipients}:
		case <-h.done:
		}
	})
}

func (h *Hub) recipients(to game.Audience) []game.ConnID {
	if to.Conn != "" {
		return []game.ConnID{to.Conn}
	}
	members := h.topics[to.Room]
	ids := make([]game.ConnID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) deliver(n game.Notice) {
	h.deliverTo(h.recipients(n.To), n)
}

// deliverTo sends n to every recipient that is still connected.
func (h *Hub) deliverTo(recipients []game.ConnID, n game.Notice) {
	payload, err := json.Marshal(n.Envelope)
	if err != nil {
		log.Error().Err(err).Str("event", n.Envelope.Event).Msg("Failed to marshal event")
		return
	}

	if n.To.Conn == "" {
		log.Debug().Str("roomID", n.To.Room).Str("event", n.Envelope.Event).Int("connectionsCount", len(recipients)).Msg("Broadcasting")
	}
	for _, id := range recipients {
		if c, ok := h.clients[id]; ok {
			h.send(c, payload)
		}
	}
}

func (h *Hub) send(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.metrics.MessageDropped()
		log.Warn().Str("connID", string(c.id)).Msg("Send buffer full, dropping message")
	}
}
