package pkg

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/qnkhuat/sweepterm/pkg/grid"
)

type GameState int

const (
	Playing GameState = iota
	Won
	Lost
)

func (gs GameState) String() string {
	switch gs {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

func (gs GameState) MarshalText() ([]byte, error) {
	return []byte(gs.String()), nil
}

func (gs *GameState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*gs = Playing
	case "won":
		*gs = Won
	case "lost":
		*gs = Lost
	default:
		return fmt.Errorf("unknown game state %q", text)
	}
	return nil
}

// Event is raised by Reveal when a session reaches a terminal state
type Event int

const (
	EventNone Event = iota
	EventWon
	EventLost
)

// Session is one game from initialization to a win or a loss. It is a value:
// Reveal and Flag return the next session and never modify the receiver.
type Session struct {
	ID             string
	Grid           grid.Grid
	MinesRemaining int
	Score          int
	State          GameState
}

// NewSession places mines on a fresh size×size grid and starts playing
func NewSession(size, mines int, rng *rand.Rand) Session {
	return newSession(grid.New(size, mines, rng))
}

func newSession(g grid.Grid) Session {
	return Session{
		ID:             uuid.New().String(),
		Grid:           g,
		MinesRemaining: g.Mines(),
		State:          Playing,
	}
}

// Restart discards the board and deals a new one of the same dimensions
func (s Session) Restart(rng *rand.Rand) Session {
	return NewSession(s.Grid.Size(), s.Grid.Mines(), rng)
}

func (s Session) Reveal(row, col int) (Session, Event) {
	if s.State != Playing {
		return s, EventNone
	}

	p := grid.Pos{Row: row, Col: col}
	c, ok := s.Grid.Cell(p)
	if !ok || c.State != grid.Hidden {
		return s, EventNone
	}

	next, revealed := s.Grid.Reveal(p)
	s.Grid = next

	if c.Mine {
		s.State = Lost
		return s, EventLost
	}

	s.Score += revealed
	if s.Grid.Cleared() {
		s.State = Won
		s.Grid = s.Grid.FlagMines()
		return s, EventWon
	}

	return s, EventNone
}

func (s Session) Flag(row, col int) Session {
	if s.State != Playing {
		return s
	}

	next, delta := s.Grid.ToggleFlag(grid.Pos{Row: row, Col: col})
	s.Grid = next
	s.MinesRemaining += delta

	return s
}

// View reports what the player may see of a single cell
func (s Session) View(row, col int) (grid.View, bool) {
	c, ok := s.Grid.Cell(grid.Pos{Row: row, Col: col})
	if !ok {
		return grid.View{}, false
	}
	return c.View(), true
}

// BoardView is the serializable state sent to players
type BoardView struct {
	SessionID      string        `json:"session_id"`
	Size           int           `json:"size"`
	Mines          int           `json:"mines"`
	MinesRemaining int           `json:"mines_remaining"`
	Score          int           `json:"score"`
	State          GameState     `json:"state"`
	ElapsedMs      int64         `json:"elapsed_ms"`
	Running        bool          `json:"running"`
	Cells          [][]grid.View `json:"cells"`
}

func (s Session) Snapshot() BoardView {
	return BoardView{
		SessionID:      s.ID,
		Size:           s.Grid.Size(),
		Mines:          s.Grid.Mines(),
		MinesRemaining: s.MinesRemaining,
		Score:          s.Score,
		State:          s.State,
		Cells:          s.Grid.Views(),
	}
}
