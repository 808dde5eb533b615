package game

import (
	"time"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/events"
)

// Audience selects who receives a notice: every connection subscribed to
// Room, or the single connection Conn.
type Audience struct {
	Room string
	Conn ConnID
}

// Notice is one event addressed to an Audience.
type Notice struct {
	To       Audience
	Envelope events.Envelope
}

// Deferred is a notice the dispatcher must deliver After the transition.
type Deferred struct {
	After  time.Duration
	Notice Notice
}

// Subscription adds Conn to the broadcast topic of Room.
type Subscription struct {
	Conn ConnID
	Room string
}

// Outcome is what a transition asks the dispatcher to do, in order:
// subscribe, send Notices, schedule Deferred, then drop the topics of the
// Closed rooms.
type Outcome struct {
	Subscribe []Subscription
	Notices   []Notice
	Deferred  []Deferred
	Closed    []string
}

func (o *Outcome) toConn(conn ConnID, event string, data any) {
	o.Notices = append(o.Notices, Notice{
		To:       Audience{Conn: conn},
		Envelope: events.Envelope{Event: event, Data: data},
	})
}

func (o *Outcome) toRoom(room string, event string, data any) {
	o.Notices = append(o.Notices, Notice{
		To:       Audience{Room: room},
		Envelope: events.Envelope{Event: event, Data: data},
	})
}

func (o *Outcome) subscribe(conn ConnID, room string) {
	o.Subscribe = append(o.Subscribe, Subscription{Conn: conn, Room: room})
}

func (o *Outcome) deferToRoom(after time.Duration, room string, event string, data any) {
	o.Deferred = append(o.Deferred, Deferred{
		After: after,
		Notice: Notice{
			To:       Audience{Room: room},
			Envelope: events.Envelope{Event: event, Data: data},
		},
	})
}

func (o *Outcome) closeTopic(room string) {
	o.Closed = append(o.Closed, room)
}
