package pkg

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/qnkhuat/sweepterm/pkg/gui"
	"github.com/rivo/tview"
	log "github.com/sirupsen/logrus"
)

const writeDrainTimeout = time.Second

type Client struct {
	App      *tview.Application
	Layout   *gui.Layout
	Conn     net.Conn
	Out      chan MessageInterface
	Nickname string

	clock     *Clock
	mu        sync.Mutex
	board     BoardView
	notice    MessageNotify
	closed    bool
	done      chan struct{}
	writeDone chan struct{}
}

func NewClient(theme gui.Theme, nickname string) *Client {
	cl := &Client{
		App:       tview.NewApplication(),
		Layout:    gui.NewLayout(theme),
		Out:       make(chan MessageInterface, ConnQueueSize),
		Nickname:  nickname,
		clock:     NewClock(),
		done:      make(chan struct{}),
		writeDone: make(chan struct{}),
	}
	cl.bindKeys()
	return cl
}

func (cl *Client) bindKeys() {
	board := cl.Layout.Board

	board.Select(0, 0).SetSelectedFunc(func(row, col int) {
		cl.Send(ActionReveal, row, col)
	}).SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			cl.Quit()
		}
	})

	board.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case ' ':
			cl.actOnSelection(ActionReveal)
		case 'f':
			cl.actOnSelection(ActionFlag)
		case 'r':
			cl.Send(ActionRestart, 0, 0)
		case 'q':
			cl.Quit()
		default:
			return event
		}
		return nil
	})

	// Left click selects, double click reveals and right click flags. The
	// click is turned into a left click first so the table moves its
	// selection before the action reads it.
	board.SetMouseCapture(func(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
		switch action {
		case tview.MouseLeftDoubleClick:
			go cl.App.QueueUpdate(func() { cl.actOnSelection(ActionReveal) })
			return tview.MouseLeftClick, event
		case tview.MouseRightClick:
			go cl.App.QueueUpdate(func() { cl.actOnSelection(ActionFlag) })
			return tview.MouseLeftClick, event
		}
		return action, event
	})

	cl.Layout.Restart.SetSelectedFunc(func() {
		cl.Send(ActionRestart, 0, 0)
		cl.App.SetFocus(board)
	})
	cl.Layout.Quit.SetSelectedFunc(cl.Quit)
}

func (cl *Client) actOnSelection(a Action) {
	row, col := cl.Layout.Board.GetSelection()
	cl.act(a, row, col)
}

// act sends a cell action unless the cell is already open or off the board
func (cl *Client) act(a Action, row, col int) bool {
	if !cl.Frame().Selectable(row, col) {
		return false
	}
	cl.Send(a, row, col)
	return true
}

// Connect dials a remote game server
func (cl *Client) Connect(addr string) error {
	log.Infof("Connecting to %s", addr)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	cl.Attach(conn)
	return nil
}

// Attach uses an established connection, such as one end of a pipe to an
// in-process server
func (cl *Client) Attach(conn net.Conn) {
	cl.Conn = conn
}

// Run joins the game and blocks until the UI exits
func (cl *Client) Run() error {
	go cl.HandleRead()
	go cl.HandleWrite()
	go cl.tick()

	cl.send(MessageJoin{Nickname: cl.Nickname})

	cl.draw()
	return cl.App.SetRoot(cl.Layout.Root, true).EnableMouse(true).Run()
}

func (cl *Client) HandleRead() {
	err := ReadMessages(cl.Conn, func(m MessageTransport) {
		if cl.apply(m) {
			cl.App.QueueUpdateDraw(cl.draw)
		}
	})
	if err != nil {
		log.WithError(err).Warn("Connection lost")
	}
	log.Info("Server closed the connection")
	cl.App.Stop()
}

func (cl *Client) HandleWrite() {
	defer close(cl.writeDone)

	for message := range cl.Out {
		if err := WriteMessage(cl.Conn, message); err != nil {
			log.WithError(err).Error("Failed to send")
			continue
		}
		log.Debugf("Sent %s", message.Type())
	}
}

func (cl *Client) Send(a Action, row, col int) {
	cl.send(MessageAction{Action: a, Row: row, Col: col})
}

func (cl *Client) send(m MessageInterface) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.closed {
		return
	}
	select {
	case cl.Out <- m:
	default:
		log.Warnf("Dropped %s, send queue is full", m.Type())
	}
}

// apply updates the client state from one frame and reports whether the
// screen needs a redraw
func (cl *Client) apply(mt MessageTransport) bool {
	switch mt.MsgType {
	case TypeMessageConnect:
		var m MessageConnect
		if err := Decode(mt.Data, &m); err != nil {
			log.WithError(err).Warn("Bad connect")
			return false
		}
		cl.mu.Lock()
		cl.Nickname = m.Nickname
		cl.setBoard(m.Board)
		cl.mu.Unlock()

	case TypeMessageBoard:
		var m MessageBoard
		if err := Decode(mt.Data, &m); err != nil {
			log.WithError(err).Warn("Bad board")
			return false
		}
		cl.mu.Lock()
		cl.setBoard(m.Board)
		cl.mu.Unlock()

	case TypeMessageNotify:
		var m MessageNotify
		if err := Decode(mt.Data, &m); err != nil {
			log.WithError(err).Warn("Bad notification")
			return false
		}
		cl.mu.Lock()
		cl.notice = m
		cl.mu.Unlock()

	default:
		log.Debugf("Received unknown message %s", mt.MsgType)
		return false
	}
	return true
}

func (cl *Client) setBoard(b BoardView) {
	if b.State == Playing {
		cl.notice = MessageNotify{}
	}
	cl.board = b
	cl.clock.Sync(time.Duration(b.ElapsedMs)*time.Millisecond, b.Running)
}

// Frame is the current screen content
func (cl *Client) Frame() gui.Frame {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	notice := cl.notice.Text
	if cl.notice.Title != "" && notice == "" {
		notice = cl.notice.Title
	}

	return gui.Frame{
		Cells: cl.board.Cells,
		Status: gui.Status{
			Nickname:       cl.Nickname,
			MinesRemaining: cl.board.MinesRemaining,
			Score:          cl.board.Score,
			Clock:          cl.clock.String(),
			Won:            cl.board.State == Won,
			Lost:           cl.board.State == Lost,
			Notice:         notice,
		},
	}
}

func (cl *Client) draw() {
	cl.Layout.Render(cl.Frame())
}

// tick redraws the timer once per second while the game runs
func (cl *Client) tick() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			if !cl.clock.Running() {
				continue
			}
			status := cl.Frame().Status
			cl.App.QueueUpdateDraw(func() {
				cl.Layout.Tick(status)
			})
		}
	}
}

// Quit tells the server the player left and stops the UI
func (cl *Client) Quit() {
	cl.send(MessageAction{Action: ActionExit})
	cl.App.Stop()
}

// Disconnect flushes pending frames and closes the connection
func (cl *Client) Disconnect() {
	cl.mu.Lock()
	if cl.closed {
		cl.mu.Unlock()
		return
	}
	cl.closed = true
	close(cl.Out)
	close(cl.done)
	cl.mu.Unlock()

	select {
	case <-cl.writeDone:
	case <-time.After(writeDrainTimeout):
	}

	if cl.Conn != nil {
		cl.Conn.Close()
	}
}
