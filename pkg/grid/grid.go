package grid

// Grid is an N×N board. It has value semantics: methods that change cell
// state return a new Grid and leave the receiver untouched, so a caller
// holding an older Grid never observes a partial update.
type Grid struct {
	size  int
	mines int
	cells []Cell
}

func index(p Pos, size int) int {
	return p.Row*size + p.Col
}

func empty(size int) Grid {
	if size < 1 {
		return Grid{}
	}
	return Grid{size: size, cells: make([]Cell, size*size)}
}

func (g Grid) Size() int  { return g.size }
func (g Grid) Mines() int { return g.mines }

// Safe is the number of cells that have to be revealed to win
func (g Grid) Safe() int { return g.size*g.size - g.mines }

func (g Grid) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < g.size && p.Col >= 0 && p.Col < g.size
}

func (g Grid) Cell(p Pos) (Cell, bool) {
	if !g.InBounds(p) {
		return Cell{}, false
	}
	return g.cells[index(p, g.size)], true
}

// Neighbors returns the in-bounds positions around p
func (g Grid) Neighbors(p Pos) []Pos {
	var out []Pos
	for _, n := range p.Neighborhood() {
		if g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Each calls fn for every cell in row-major order
func (g Grid) Each(fn func(p Pos, c Cell)) {
	for i, c := range g.cells {
		fn(Pos{i / g.size, i % g.size}, c)
	}
}

func (g Grid) SafeRevealed() int {
	n := 0
	for _, c := range g.cells {
		if c.State == Revealed && !c.Mine {
			n++
		}
	}
	return n
}

func (g Grid) Flags() int {
	n := 0
	for _, c := range g.cells {
		if c.State == Flagged {
			n++
		}
	}
	return n
}

// Cleared reports whether every safe cell has been revealed
func (g Grid) Cleared() bool {
	return g.size > 0 && g.SafeRevealed() == g.Safe()
}

func (g Grid) clone() Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return Grid{size: g.size, mines: g.mines, cells: cells}
}

// ToggleFlag switches a hidden cell to flagged and back. The returned delta is
// the change to apply to a mines-left counter: -1 when a flag is placed, +1
// when it is removed, 0 when nothing happened.
func (g Grid) ToggleFlag(p Pos) (Grid, int) {
	c, ok := g.Cell(p)
	if !ok || c.State == Revealed {
		return g, 0
	}

	next := g.clone()
	i := index(p, g.size)
	if c.State == Flagged {
		next.cells[i].State = Hidden
		return next, 1
	}
	next.cells[i].State = Flagged
	return next, -1
}

// RevealAll discloses the whole board, flags included
func (g Grid) RevealAll() Grid {
	next := g.clone()
	for i := range next.cells {
		next.cells[i].State = Revealed
	}
	return next
}

// FlagMines marks every mine that is not revealed as flagged
func (g Grid) FlagMines() Grid {
	next := g.clone()
	for i, c := range next.cells {
		if c.Mine && c.State == Hidden {
			next.cells[i].State = Flagged
		}
	}
	return next
}

// Views returns the player-visible state of the board, row by row
func (g Grid) Views() [][]View {
	views := make([][]View, g.size)
	for row := range views {
		views[row] = make([]View, g.size)
	}
	g.Each(func(p Pos, c Cell) {
		views[p.Row][p.Col] = c.View()
	})
	return views
}
