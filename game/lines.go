package game

import "math"

// RunLength is the number of consecutive marks that wins, whatever the board size.
const RunLength = 3

// Line is a winning triple of cell indexes.
type Line [RunLength]int

// WinningLines returns every run of three consecutive cells on a square board
// with size cells: rows, then columns, then down-right diagonals, then
// down-left diagonals. Larger boards are still won by a local three in a row.
// Evaluate depends on this order for tie-breaking.
func WinningLines(size int) []Line {
	side := int(math.Sqrt(float64(size)))
	if side*side != size || side < RunLength {
		return nil
	}

	var lines []Line
	for r := 0; r < side; r++ {
		for c := 0; c <= side-RunLength; c++ {
			start := r*side + c
			lines = append(lines, Line{start, start + 1, start + 2})
		}
	}

	for c := 0; c < side; c++ {
		for r := 0; r <= side-RunLength; r++ {
			start := r*side + c
			lines = append(lines, Line{start, start + side, start + 2*side})
		}
	}

	for r := 0; r <= side-RunLength; r++ {
		for c := 0; c <= side-RunLength; c++ {
			start := r*side + c
			lines = append(lines, Line{start, start + side + 1, start + 2*(side+1)})
		}
	}

	for r := 0; r <= side-RunLength; r++ {
		for c := RunLength - 1; c < side; c++ {
			start := r*side + c
			lines = append(lines, Line{start, start + side - 1, start + 2*(side-1)})
		}
	}

	return lines
}
