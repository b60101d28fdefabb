package gui

import (
	"github.com/rivo/tview"
)

// Layout is the widget tree of the client: a header, the board, the status
// line and a column of buttons
type Layout struct {
	Root    *tview.Grid
	Header  *tview.TextView
	Board   *tview.Table
	Status  *tview.TextView
	Restart *tview.Button
	Quit    *tview.Button

	theme Theme
}

func NewLayout(t Theme) *Layout {
	header := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	status := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)

	board := tview.NewTable().
		SetSelectable(true, true)

	restart := tview.NewButton("Restart")
	quit := tview.NewButton("Quit")

	buttons := tview.NewGrid().
		SetRows(1, 1, 1, -1).
		SetColumns(-1).
		AddItem(restart, 0, 0, 1, 1, 0, 0, false).
		AddItem(quit, 2, 0, 1, 1, 0, 0, false)

	root := tview.NewGrid().
		SetRows(1, 1, -1, 1).
		SetColumns(-1, 12).
		AddItem(header, 0, 0, 1, 2, 0, 0, false).
		AddItem(board, 2, 0, 1, 1, 0, 0, true).
		AddItem(buttons, 2, 1, 1, 1, 0, 0, false).
		AddItem(status, 3, 0, 1, 2, 0, 0, false)

	return &Layout{
		Root:    root,
		Header:  header,
		Board:   board,
		Status:  status,
		Restart: restart,
		Quit:    quit,
		theme:   t,
	}
}

func (l *Layout) Theme() Theme {
	return l.theme
}

// Render draws a full frame. It must run on the application goroutine.
func (l *Layout) Render(f Frame) {
	RenderBoard(l.Board, f.Cells, l.theme)
	l.Header.SetText(HeaderText(f.Status, l.theme))
	l.Status.SetText(StatusText(f.Status, l.theme))
}

// Tick redraws only the header, for the once per second clock update
func (l *Layout) Tick(s Status) {
	l.Header.SetText(HeaderText(s, l.theme))
}
