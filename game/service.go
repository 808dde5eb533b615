package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/events"
	"github.com/cameroncuttingedge/tic_tac_toe_rooms/metrics"
	"github.com/rs/zerolog/log"
)

// DefaultConclusionDelay separates the final updateBoard from gameOver so
// players see the last mark before the result.
const DefaultConclusionDelay = 300 * time.Millisecond

// Service runs the room state machine. Every operation is one indivisible
// transition that returns the notices to deliver.
type Service struct {
	mu              sync.Mutex
	rooms           *Registry
	conclusionDelay time.Duration
	metrics         *metrics.Metrics
}

type Option func(*Service)

func WithConclusionDelay(d time.Duration) Option {
	return func(s *Service) {
		s.conclusionDelay = d
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(rooms *Registry, opts ...Option) *Service {
	s := &Service{
		rooms:           rooms,
		conclusionDelay: DefaultConclusionDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RoomCount returns the number of live rooms.
func (s *Service) RoomCount() int {
	return s.rooms.Len()
}

// Snapshot returns the current state of a room.
func (s *Service) Snapshot(roomID string) (events.GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms.Get(roomID)
	if !ok {
		return events.GameState{}, false
	}
	return room.State(), true
}

// Create opens a room with conn as host. If the room already exists its
// settings are kept: the host gets its acknowledgment again and anyone else
// is treated as joining.
func (s *Service) Create(conn ConnID, req events.CreateGamePayload) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	dim, err := ParseBoardSize(req.BoardSizeLabel)
	if err != nil {
		log.Warn().Err(err).Str("roomID", req.RoomID).Str("connID", string(conn)).Msg("Rejected game creation")
		out.toConn(conn, events.InvalidSettings, events.NoticePayload{Message: err.Error()})
		return out
	}

	room, created := s.rooms.CreateIfAbsent(req.RoomID, RoomConfig{
		SizeLabel:  req.BoardSizeLabel,
		Dimension:  dim,
		HostPlaysX: req.HostPlaysX,
	})
	if created {
		room.Host = conn
		room.Participants = []ConnID{conn}
		s.metrics.SetRooms(s.rooms.Len())
		log.Info().Str("roomID", room.ID).Str("connID", string(conn)).Str("size", room.SizeLabel).Msg("Room created")
	} else if room.Host != conn {
		log.Info().Str("roomID", room.ID).Str("connID", string(conn)).Msg("Room already exists, joining instead")
		return s.join(conn, room.ID)
	}

	out.subscribe(conn, room.ID)
	out.toConn(conn, events.AssignSymbol, events.AssignSymbolPayload{Symbol: string(room.HostSymbol()), IsHost: true})
	out.toConn(conn, events.WaitingForOpponent, events.WaitingPayload{RoomID: room.ID, BoardSizeLabel: room.SizeLabel})
	return out
}

// Join adds conn as the second participant.
func (s *Service) Join(conn ConnID, roomID string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.join(conn, roomID)
}

func (s *Service) join(conn ConnID, roomID string) Outcome {
	var out Outcome
	room, ok := s.rooms.Get(roomID)
	if !ok {
		log.Info().Str("roomID", roomID).Str("connID", string(conn)).Msg("Game not found")
		out.toConn(conn, events.GameNotFound, events.NoticePayload{Message: fmt.Sprintf("Game %s not found", roomID)})
		return out
	}
	if room.HasParticipant(conn) {
		return out
	}
	if len(room.Participants) >= 2 {
		log.Info().Str("roomID", roomID).Str("connID", string(conn)).Msg("Game is full")
		out.toConn(conn, events.GameFull, events.NoticePayload{Message: fmt.Sprintf("Game %s is full", roomID)})
		return out
	}

	room.Participants = append(room.Participants, conn)
	symbol, _ := room.SymbolOf(conn)
	log.Info().Str("roomID", roomID).Str("connID", string(conn)).Str("symbol", string(symbol)).Msg("Player joined")

	out.subscribe(conn, roomID)
	out.toConn(conn, events.AssignSymbol, events.AssignSymbolPayload{Symbol: string(symbol), IsHost: false})
	out.toRoom(roomID, events.GameStart, room.State())
	return out
}

// Move places the caller's symbol. Illegal moves are ignored.
func (s *Service) Move(conn ConnID, req events.MakeMovePayload) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	room, ok := s.rooms.Get(req.RoomID)
	if !ok || room.Outcome != nil {
		return out
	}
	if req.CellIndex < 0 || req.CellIndex >= len(room.Board) || room.Board[req.CellIndex] != None {
		return out
	}
	symbol, ok := room.SymbolOf(conn)
	if !ok || symbol != room.Turn {
		log.Debug().Str("roomID", room.ID).Str("connID", string(conn)).Msg("Ignored out of turn move")
		return out
	}

	room.Board[req.CellIndex] = symbol
	s.metrics.MoveAccepted()

	result, concluded := Evaluate(room.Board, room.Lines)
	if !concluded {
		room.Turn = room.Turn.Opponent()
		out.toRoom(room.ID, events.UpdateBoard, room.State())
		return out
	}

	room.Outcome = &result
	s.metrics.GameConcluded(result.Winner)
	log.Info().Str("roomID", room.ID).Str("winner", result.Winner).Ints("line", result.Line).Msg("Game over")
	log.Debug().Str("roomID", room.ID).Msg("Final board:\n" + RenderBoard(room.Board, room.Dimension))

	out.toRoom(room.ID, events.UpdateBoard, room.State())
	out.deferToRoom(s.conclusionDelay, room.ID, events.GameOver, events.GameOverPayload{
		Winner:      result.Winner,
		WinningLine: result.Line,
	})
	return out
}

// RequestRestart proposes a restart when sent by the host and accepts one
// when sent by the guest.
func (s *Service) RequestRestart(conn ConnID, roomID string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	room, ok := s.rooms.Get(roomID)
	if !ok {
		log.Info().Str("roomID", roomID).Msg("Restart for unknown game")
		return out
	}
	if !room.HasParticipant(conn) {
		return out
	}

	if conn == room.Host {
		guest, ok := room.other(conn)
		if !ok {
			log.Debug().Str("roomID", roomID).Msg("Restart requested without an opponent")
			return out
		}
		room.RestartPending = true
		log.Info().Str("roomID", roomID).Str("connID", string(guest)).Msg("Sending restart request to opponent")
		out.toConn(guest, events.RestartRequest, nil)
		return out
	}

	room.restart()
	log.Info().Str("roomID", roomID).Int("players", len(room.Participants)).Msg("Game restarted")
	out.toRoom(roomID, events.GameRestarted, room.State())
	return out
}

// DeclineRestart rejects a pending restart proposal.
func (s *Service) DeclineRestart(conn ConnID, roomID string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	room, ok := s.rooms.Get(roomID)
	if !ok || !room.RestartPending || conn == room.Host || !room.HasParticipant(conn) {
		return out
	}

	room.RestartPending = false
	log.Info().Str("roomID", roomID).Str("connID", string(conn)).Msg("Restart declined")
	out.toConn(room.Host, events.RestartDeclined, nil)
	return out
}

// ChangeSettings lets the host change board size and symbol mapping. The
// change is applied at once only when it cannot cut a game short.
func (s *Service) ChangeSettings(conn ConnID, req events.ChangeGameSettingsPayload) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	room, ok := s.rooms.Get(req.RoomID)
	if !ok || conn != room.Host {
		return out
	}
	dim, err := ParseBoardSize(req.BoardSizeLabel)
	if err != nil {
		log.Warn().Err(err).Str("roomID", room.ID).Msg("Rejected settings change")
		out.toConn(conn, events.InvalidSettings, events.NoticePayload{Message: err.Error()})
		return out
	}

	cfg := RoomConfig{SizeLabel: req.BoardSizeLabel, Dimension: dim, HostPlaysX: req.HostPlaysX}
	if req.ApplyImmediately || room.boardEmpty() || room.Outcome != nil {
		room.reset(cfg)
		log.Info().Str("roomID", room.ID).Str("size", cfg.SizeLabel).Bool("hostPlaysX", cfg.HostPlaysX).Msg("Settings applied")
		for _, p := range room.Participants {
			symbol, _ := room.SymbolOf(p)
			out.toConn(p, events.AssignSymbol, events.AssignSymbolPayload{Symbol: string(symbol), IsHost: p == room.Host})
		}
		out.toRoom(room.ID, events.GameRestarted, room.State())
		return out
	}

	room.SizeLabel = cfg.SizeLabel
	room.next = &cfg
	log.Info().Str("roomID", room.ID).Str("size", cfg.SizeLabel).Msg("Settings deferred until restart")
	out.toRoom(room.ID, events.GameSettingsChanged, events.SettingsChangedPayload{
		BoardSizeLabel: cfg.SizeLabel,
		HostPlaysX:     cfg.HostPlaysX,
		Dimension:      cfg.Dimension,
	})
	return out
}

// Chat relays a message to the room. The sender is not checked against the
// participants.
func (s *Service) Chat(conn ConnID, req events.ChatMessagePayload) Outcome {
	var out Outcome
	out.toRoom(req.RoomID, events.ReceiveMessage, events.ReceiveMessagePayload{
		Message:     req.Message,
		SenderLabel: req.SenderLabel,
	})
	return out
}

// Disconnect removes conn from every room it plays in.
func (s *Service) Disconnect(conn ConnID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	for _, room := range s.rooms.WithParticipant(conn) {
		room.remove(conn)

		switch {
		case conn == room.Host:
			log.Info().Str("roomID", room.ID).Str("connID", string(conn)).Msg("Host left, closing room")
			out.toRoom(room.ID, events.HostLeft, nil)
			s.rooms.Delete(room.ID)
			out.closeTopic(room.ID)
		case len(room.Participants) > 0:
			log.Info().Str("roomID", room.ID).Str("connID", string(conn)).Msg("Opponent left")
			room.RestartPending = false
			out.toRoom(room.ID, events.OpponentLeft, nil)
		}

		if len(room.Participants) == 0 && conn != room.Host {
			s.rooms.Delete(room.ID)
			out.closeTopic(room.ID)
		}
	}
	s.metrics.SetRooms(s.rooms.Len())
	return out
}
