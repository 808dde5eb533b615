package game

import (
	"slices"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/events"
)

// RoomConfig holds the settings a room is created with.
type RoomConfig struct {
	SizeLabel  string
	Dimension  int
	HostPlaysX bool
}

// Room is the state of one game session.
type Room struct {
	ID             string
	Participants   []ConnID
	Host           ConnID
	SizeLabel      string
	Dimension      int
	Board          []Symbol
	Lines          []Line
	Turn           Symbol
	HostPlaysX     bool
	RestartPending bool
	// Outcome is set once the board is won or drawn; the board stays frozen
	// until the next reset.
	Outcome *Result

	// next holds settings deferred until the next reset so a game in
	// progress is never resized.
	next *RoomConfig
}

func newRoom(id string, cfg RoomConfig) *Room {
	r := &Room{ID: id}
	r.reset(cfg)
	return r
}

// reset replaces board, lines and turn together.
func (r *Room) reset(cfg RoomConfig) {
	r.SizeLabel = cfg.SizeLabel
	r.Dimension = cfg.Dimension
	r.HostPlaysX = cfg.HostPlaysX
	r.Board = make([]Symbol, cfg.Dimension*cfg.Dimension)
	r.Lines = WinningLines(len(r.Board))
	r.Turn = PlayerX
	r.RestartPending = false
	r.Outcome = nil
	r.next = nil
}

// restart resets the board, applying deferred settings if there are any.
func (r *Room) restart() {
	cfg := RoomConfig{SizeLabel: r.SizeLabel, Dimension: r.Dimension, HostPlaysX: r.HostPlaysX}
	if r.next != nil {
		cfg = *r.next
	}
	r.reset(cfg)
}

func (r *Room) slot(conn ConnID) int {
	return slices.Index(r.Participants, conn)
}

func (r *Room) HasParticipant(conn ConnID) bool {
	return r.slot(conn) >= 0
}

// SymbolOf returns the symbol conn plays, derived from its slot and HostPlaysX.
func (r *Room) SymbolOf(conn ConnID) (Symbol, bool) {
	slot := r.slot(conn)
	if slot < 0 {
		return None, false
	}
	return symbolFor(slot, r.HostPlaysX), true
}

// HostSymbol is the symbol the host plays.
func (r *Room) HostSymbol() Symbol {
	return symbolFor(0, r.HostPlaysX)
}

func (r *Room) other(conn ConnID) (ConnID, bool) {
	for _, p := range r.Participants {
		if p != conn {
			return p, true
		}
	}
	return "", false
}

func (r *Room) remove(conn ConnID) {
	r.Participants = slices.DeleteFunc(r.Participants, func(p ConnID) bool { return p == conn })
}

func (r *Room) boardEmpty() bool {
	for _, cell := range r.Board {
		if cell != None {
			return false
		}
	}
	return true
}

// State returns a copy of the room for the wire.
func (r *Room) State() events.GameState {
	players := make([]string, len(r.Participants))
	for i, p := range r.Participants {
		players[i] = string(p)
	}
	lines := make([][3]int, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = l
	}
	return events.GameState{
		RoomID:         r.ID,
		Players:        players,
		Host:           string(r.Host),
		Board:          convertBoard(r.Board),
		BoardSizeLabel: r.SizeLabel,
		Dimension:      r.Dimension,
		Turn:           string(r.Turn),
		HostPlaysX:     r.HostPlaysX,
		RestartPending: r.RestartPending,
		WinningLines:   lines,
	}
}
