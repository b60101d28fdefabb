package grid

import (
	"github.com/zyedidia/generic/mapset"
)

// Reveal opens the hidden cell at p and returns the updated grid together
// with the number of cells that went from hidden to revealed.
//
// Opening a mine discloses the whole board and reports no revealed safe cells.
// Opening a safe cell floods outward breadth first through cells without
// neighboring mines; numbered cells on the border are opened but not
// expanded. Flags are left in place, but a flagged cell without neighboring
// mines still passes the flood through.
func (g Grid) Reveal(p Pos) (Grid, int) {
	c, ok := g.Cell(p)
	if !ok || c.State != Hidden {
		return g, 0
	}

	if c.Mine {
		return g.RevealAll(), 0
	}

	next := g.clone()
	revealed := 0

	visited := mapset.New[Pos]()
	visited.Put(p)
	queue := []Pos{p}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		i := index(cur, next.size)
		if next.cells[i].State == Hidden {
			next.cells[i].State = Revealed
			revealed++
		}

		if next.cells[i].Neighbors > 0 {
			continue
		}

		for _, n := range next.Neighbors(cur) {
			if visited.Has(n) {
				continue
			}
			nc := next.cells[index(n, next.size)]
			if nc.Mine || nc.State == Revealed {
				continue
			}
			visited.Put(n)
			queue = append(queue, n)
		}
	}

	return next, revealed
}
