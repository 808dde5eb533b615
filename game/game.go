package game

import (
	"fmt"
	"strings"

	"github.com/cameroncuttingedge/tic_tac_toe_rooms/events"
)

// Symbol is the mark a player puts on the board. None is an empty cell.
type Symbol string

const (
	PlayerX Symbol = "X"
	PlayerO Symbol = "O"
	None    Symbol = ""
)

// Opponent returns the other player's symbol.
func (s Symbol) Opponent() Symbol {
	if s == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// ConnID identifies a transport connection. It is the only participant identity.
type ConnID string

var boardSizes = map[string]int{
	"3x3": 3,
	"6x6": 6,
	"9x9": 9,
}

// ParseBoardSize resolves a size label such as "6x6" to the side length.
func ParseBoardSize(label string) (int, error) {
	dim, ok := boardSizes[label]
	if !ok {
		return 0, fmt.Errorf("unknown board size %q", label)
	}
	return dim, nil
}

// symbolFor maps a slot to a symbol. Slot 0 is always the host.
func symbolFor(slot int, hostPlaysX bool) Symbol {
	if (slot == 0) == hostPlaysX {
		return PlayerX
	}
	return PlayerO
}

func convertBoard(board []Symbol) []events.Cell {
	converted := make([]events.Cell, len(board))
	for i, cell := range board {
		converted[i] = events.Cell(cell)
	}
	return converted
}

// RenderBoard returns a printable grid, used in debug logs.
func RenderBoard(board []Symbol, dimension int) string {
	var sb strings.Builder
	for i, cell := range board {
		if cell == None {
			sb.WriteString("- ")
		} else {
			sb.WriteString(fmt.Sprintf("%s ", cell))
		}
		if (i+1)%dimension == 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
