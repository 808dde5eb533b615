package game

// Draw is the winner tag of a full board without a completed line.
const Draw = "draw"

// Result is a concluded game. Line is empty for a draw.
type Result struct {
	Winner string
	Line   []int
}

// Evaluate reports whether board is concluded. The first completed line in
// lines wins, even when the last move completed several at once.
func Evaluate(board []Symbol, lines []Line) (Result, bool) {
	for _, line := range lines {
		first := board[line[0]]
		if first == None {
			continue
		}
		if first == board[line[1]] && first == board[line[2]] {
			return Result{Winner: string(first), Line: []int{line[0], line[1], line[2]}}, true
		}
	}

	for _, cell := range board {
		if cell == None {
			return Result{}, false
		}
	}
	return Result{Winner: Draw, Line: []int{}}, true
}
