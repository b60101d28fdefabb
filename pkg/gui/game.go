package gui

import (
	"github.com/qnkhuat/sweepterm/pkg/grid"
)

// Frame encapsulates everything needed to draw the game
type Frame struct {
	Cells  [][]grid.View
	Status Status
}

// Size is the board edge length, 0 before the first board arrives
func (f Frame) Size() int {
	return len(f.Cells)
}

// Selectable reports whether (row, col) is a cell worth acting on
func (f Frame) Selectable(row, col int) bool {
	if row < 0 || row >= len(f.Cells) || col < 0 || col >= len(f.Cells[row]) {
		return false
	}
	return f.Cells[row][col].State != grid.Revealed
}
