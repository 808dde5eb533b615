// Package metrics holds the Prometheus collectors for the game server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tictactoe"

// Metrics groups every collector the server records. A nil *Metrics is valid
// and records nothing, so packages can be used without a registry in tests.
type Metrics struct {
	Connections     prometheus.Gauge
	Rooms           prometheus.Gauge
	MovesTotal      prometheus.Counter
	GamesConcluded  *prometheus.CounterVec
	EventsTotal     *prometheus.CounterVec
	DroppedMessages prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Connections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of open websocket connections",
		}),
		Rooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Number of live game rooms",
		}),
		MovesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Total number of accepted moves",
		}),
		GamesConcluded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_concluded_total",
			Help:      "Total number of concluded games by outcome",
		}, []string{"outcome"}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of inbound events by name",
		}, []string{"event"}),
		DroppedMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_messages_total",
			Help:      "Outbound messages dropped because a client send buffer was full",
		}),
	}
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.Connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.Connections.Dec()
}

func (m *Metrics) SetRooms(n int) {
	if m == nil {
		return
	}
	m.Rooms.Set(float64(n))
}

func (m *Metrics) MoveAccepted() {
	if m == nil {
		return
	}
	m.MovesTotal.Inc()
}

// GameConcluded counts a finished game; outcome is "X", "O" or "draw".
func (m *Metrics) GameConcluded(outcome string) {
	if m == nil {
		return
	}
	m.GamesConcluded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EventReceived(event string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(event).Inc()
}

func (m *Metrics) MessageDropped() {
	if m == nil {
		return
	}
	m.DroppedMessages.Inc()
}
