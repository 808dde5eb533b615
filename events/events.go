package events

import "encoding/json"

// Inbound event names.
const (
	CreateGame         = "createGame"
	JoinGame           = "joinGame"
	MakeMove           = "makeMove"
	RestartGame        = "restartGame"
	DeclineRestart     = "declineRestart"
	ChangeGameSettings = "changeGameSettings"
	ChatMessage        = "chatMessage"
)

// Outbound event names.
const (
	AssignSymbol        = "assignSymbol"
	WaitingForOpponent  = "waitingForOpponent"
	GameStart           = "gameStart"
	GameFull            = "gameFull"
	GameNotFound        = "gameNotFound"
	UpdateBoard         = "updateBoard"
	GameOver            = "gameOver"
	RestartRequest      = "restartRequest"
	GameRestarted       = "gameRestarted"
	RestartDeclined     = "restartDeclined"
	GameSettingsChanged = "gameSettingsChanged"
	ReceiveMessage      = "receiveMessage"
	HostLeft            = "hostLeft"
	OpponentLeft        = "opponentLeft"
	InvalidSettings     = "invalidSettings"
)

// Envelope is the frame exchanged over the websocket in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// RawEnvelope is an inbound frame whose payload has not been decoded yet.
type RawEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// CreateGamePayload opens a room with the sender as host.
type CreateGamePayload struct {
	RoomID         string `json:"roomId"`
	BoardSizeLabel string `json:"boardSizeLabel"`
	HostPlaysX     bool   `json:"hostPlaysX"`
}

// MakeMovePayload places the sender's symbol at CellIndex, row-major from 0.
type MakeMovePayload struct {
	RoomID    string `json:"roomId"`
	CellIndex int    `json:"cellIndex"`
}

// ChangeGameSettingsPayload is sent by the host. Without ApplyImmediately a
// game in progress keeps its board until the next restart.
type ChangeGameSettingsPayload struct {
	RoomID           string `json:"roomId"`
	BoardSizeLabel   string `json:"boardSizeLabel"`
	HostPlaysX       bool   `json:"hostPlaysX"`
	ApplyImmediately bool   `json:"applyImmediately"`
}

// ChatMessagePayload is relayed to the room as receiveMessage.
type ChatMessagePayload struct {
	RoomID      string `json:"roomId"`
	Message     string `json:"message"`
	SenderLabel string `json:"senderLabel"`
}

// AssignSymbolPayload tells a connection which symbol it plays.
type AssignSymbolPayload struct {
	Symbol string `json:"symbol"`
	IsHost bool   `json:"isHost"`
}

// WaitingPayload acknowledges a new room to its host.
type WaitingPayload struct {
	RoomID         string `json:"roomId"`
	BoardSizeLabel string `json:"boardSizeLabel"`
}

// NoticePayload carries a human readable message for gameFull, gameNotFound
// and invalidSettings.
type NoticePayload struct {
	Message string `json:"message"`
}

// GameOverPayload reports the winner, or "draw" with an empty line.
type GameOverPayload struct {
	Winner      string `json:"winner"`
	WinningLine []int  `json:"winningLine"`
}

// SettingsChangedPayload announces settings that take effect on the next
// restart. Dimension is the side length of that next board.
type SettingsChangedPayload struct {
	BoardSizeLabel string `json:"boardSizeLabel"`
	HostPlaysX     bool   `json:"hostPlaysX"`
	Dimension      int    `json:"dimension"`
}

type ReceiveMessagePayload struct {
	Message     string `json:"message"`
	SenderLabel string `json:"senderLabel"`
}

// Cell is one board square on the wire. The empty cell encodes as null.
type Cell string

func (c Cell) MarshalJSON() ([]byte, error) {
	if c == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = Cell(s)
	return nil
}

// GameState is the full room state sent with gameStart, updateBoard and
// gameRestarted, and served by the HTTP state endpoint.
type GameState struct {
	RoomID         string   `json:"roomId"`
	Players        []string `json:"players"`
	Host           string   `json:"host"`
	Board          []Cell   `json:"board"`
	BoardSizeLabel string   `json:"boardSizeLabel"`
	Dimension      int      `json:"dimension"`
	Turn           string   `json:"turn"`
	HostPlaysX     bool     `json:"hostPlaysX"`
	RestartPending bool     `json:"restartPending"`
	WinningLines   [][3]int `json:"winningLines"`
}
