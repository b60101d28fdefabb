package gui

import (
	"fmt"
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/qnkhuat/sweepterm/pkg/grid"
	"github.com/rivo/tview"
)

// CellText is the label of a cell. Every label is three columns wide so the
// board stays square in most terminal fonts.
func CellText(v grid.View) string {
	switch v.State {
	case grid.Flagged:
		return " F "
	case grid.Revealed:
		if v.Mine {
			return " * "
		}
		if v.Count == 0 {
			return "   "
		}
		return " " + strconv.Itoa(v.Count) + " "
	default:
		return " - "
	}
}

// CellStyle returns the foreground and background of a cell
func CellStyle(v grid.View, t Theme) (fg, bg tcell.Color) {
	switch v.State {
	case grid.Flagged:
		return t.Flag, t.Hidden
	case grid.Revealed:
		if v.Mine {
			return t.Text, t.Mine
		}
		return t.Number(v.Count), t.Revealed
	default:
		return t.Text, t.Hidden
	}
}

// RenderBoard writes every cell into table, reusing the table cells so the
// current selection is kept
func RenderBoard(table *tview.Table, cells [][]grid.View, t Theme) {
	if table.GetRowCount() != len(cells) {
		table.Clear()
	}

	for r, row := range cells {
		for c, v := range row {
			fg, bg := CellStyle(v, t)
			cell := table.GetCell(r, c)
			cell.SetText(CellText(v)).
				SetTextColor(fg).
				SetBackgroundColor(bg).
				SetAlign(tview.AlignCenter)
			table.SetCell(r, c, cell)
		}
	}
}

// Status is what the header and status line show besides the board
type Status struct {
	Nickname       string
	MinesRemaining int
	Score          int
	Clock          string
	Won            bool
	Lost           bool
	Notice         string
}

func (s Status) Banner() string {
	switch {
	case s.Won:
		return "You Won!"
	case s.Lost:
		return "You Lost!"
	default:
		return ""
	}
}

// HeaderText formats the header for a TextView with dynamic colors
func HeaderText(s Status, t Theme) string {
	return fmt.Sprintf("[%s::b]sweepterm[-::-]  [%s]mines %d  score %d  time %s",
		colorTag(t.Title), colorTag(t.Status), s.MinesRemaining, s.Score, s.Clock)
}

// StatusText formats the line under the board
func StatusText(s Status, t Theme) string {
	switch {
	case s.Won:
		return fmt.Sprintf("[%s::b]%s[-::-] %s", colorTag(t.Won), s.Banner(), s.Notice)
	case s.Lost:
		return fmt.Sprintf("[%s::b]%s[-::-] %s", colorTag(t.Lost), s.Banner(), s.Notice)
	default:
		return fmt.Sprintf("[%s]%s: enter reveal, f flag, r restart, q quit", colorTag(t.Status), s.Nickname)
	}
}

func colorTag(c tcell.Color) string {
	v := c.Hex()
	if v < 0 {
		return "-"
	}
	return fmt.Sprintf("#%06x", v)
}
