package grid

import (
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	hiddenColor = color.New(color.FgHiBlack)
	flagColor   = color.New(color.FgYellow, color.Bold)
	mineColor   = color.New(color.FgRed, color.Bold)
	zeroColor   = color.New(color.FgWhite)

	numberColors = [9]*color.Color{
		1: color.New(color.FgBlue),
		2: color.New(color.FgGreen),
		3: color.New(color.FgRed),
		4: color.New(color.FgMagenta),
		5: color.New(color.FgHiRed),
		6: color.New(color.FgCyan),
		7: color.New(color.FgHiWhite),
		8: color.New(color.FgHiBlack),
	}
)

// Rune returns the plain character for a cell. With reveal set, hidden and
// flagged cells are drawn as if they were open.
func (c Cell) Rune(reveal bool) rune {
	state := c.State
	if reveal {
		state = Revealed
	}

	switch state {
	case Hidden:
		return '-'
	case Flagged:
		return 'F'
	}

	if c.Mine {
		return '*'
	}
	if c.Neighbors == 0 {
		return '.'
	}
	return rune('0' + c.Neighbors)
}

func cellColor(c Cell, r rune) *color.Color {
	switch r {
	case '-':
		return hiddenColor
	case 'F':
		return flagColor
	case '*':
		return mineColor
	case '.':
		return zeroColor
	}
	return numberColors[c.Neighbors]
}

// Render draws the board as text with a column header and row labels.
// Colors are dropped automatically when the output is not a terminal.
func (g Grid) Render(reveal bool) string {
	var b strings.Builder

	b.WriteString("   ")
	for col := 0; col < g.size; col++ {
		b.WriteString(strconv.Itoa(col % 10))
		b.WriteRune(' ')
	}
	b.WriteRune('\n')

	for row := 0; row < g.size; row++ {
		label := strconv.Itoa(row)
		if len(label) < 2 {
			label = " " + label
		}
		b.WriteString(label)
		b.WriteRune(' ')

		for col := 0; col < g.size; col++ {
			c := g.cells[index(Pos{row, col}, g.size)]
			r := c.Rune(reveal)
			b.WriteString(cellColor(c, r).Sprint(string(r)))
			b.WriteRune(' ')
		}

		if row < g.size-1 {
			b.WriteRune('\n')
		}
	}

	return b.String()
}
