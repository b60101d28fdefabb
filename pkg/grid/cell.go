package grid

import (
	"fmt"
	"strconv"
	"strings"
)

type State int

const (
	Hidden State = iota
	Revealed
	Flagged
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Revealed:
		return "revealed"
	case Flagged:
		return "flagged"
	default:
		return "unknown"
	}
}

// Cell is one position of the board. Mine and Neighbors are fixed once the
// grid is built, only State changes.
type Cell struct {
	Mine      bool
	State     State
	Neighbors int
}

type Pos struct {
	Row, Col int
}

func (p Pos) String() string {
	var b strings.Builder
	b.WriteRune('(')
	b.WriteString(strconv.Itoa(p.Row))
	b.WriteRune(',')
	b.WriteString(strconv.Itoa(p.Col))
	b.WriteRune(')')

	return b.String()
}

// Neighborhood returns the Moore neighborhood of a point, unchecked against
// any bounds
func (p Pos) Neighborhood() []Pos {
	out := make([]Pos, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			out = append(out, Pos{p.Row + dr, p.Col + dc})
		}
	}
	return out
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hidden":
		*s = Hidden
	case "revealed":
		*s = Revealed
	case "flagged":
		*s = Flagged
	default:
		return fmt.Errorf("unknown cell state %q", text)
	}
	return nil
}

// View is what a player is allowed to know about a cell: mine and count are
// only filled in once the cell is revealed.
type View struct {
	State State `json:"state"`
	Mine  bool  `json:"mine,omitempty"`
	Count int   `json:"count,omitempty"`
}

func (c Cell) View() View {
	if c.State != Revealed {
		return View{State: c.State}
	}
	return View{State: Revealed, Mine: c.Mine, Count: c.Neighbors}
}
