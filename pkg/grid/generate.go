package grid

import (
	"math/rand"
	"time"
)

const (
	DefaultSize  = 10
	DefaultMines = 10
)

// NewRand returns a generator for New. A zero seed uses the current time.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// New builds a size×size board with exactly mines mines placed uniformly at
// random and the neighbor counts computed. The mine count is clamped to the
// number of cells.
func New(size, mines int, rng *rand.Rand) Grid {
	g := empty(size)
	if g.size == 0 {
		return g
	}
	if rng == nil {
		rng = NewRand(0)
	}

	total := g.size * g.size
	if mines < 0 {
		mines = 0
	} else if mines > total {
		mines = total
	}

	// Rejection sampling degrades as the board fills up, so dense boards pick
	// a random subset directly.
	if mines*2 <= total {
		g.placeRejection(mines, rng)
	} else {
		g.placeShuffle(mines, rng)
	}
	g.mines = mines
	g.countNeighbors()

	return g
}

// FromMines builds a board with mines at the given positions. Positions out of
// bounds and duplicates are ignored.
func FromMines(size int, mines []Pos) Grid {
	g := empty(size)
	if g.size == 0 {
		return g
	}

	for _, p := range mines {
		if !g.InBounds(p) {
			continue
		}
		i := index(p, g.size)
		if g.cells[i].Mine {
			continue
		}
		g.cells[i].Mine = true
		g.mines++
	}
	g.countNeighbors()

	return g
}

func (g *Grid) placeRejection(count int, rng *rand.Rand) {
	placed := 0
	for placed < count {
		i := rng.Intn(len(g.cells))
		if g.cells[i].Mine {
			continue
		}
		g.cells[i].Mine = true
		placed++
	}
}

// placeShuffle runs count steps of a Fisher-Yates shuffle over the cell
// indices and mines the selected prefix
func (g *Grid) placeShuffle(count int, rng *rand.Rand) {
	pool := make([]int, len(g.cells))
	for i := range pool {
		pool[i] = i
	}

	for i := 0; i < count; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		g.cells[pool[i]].Mine = true
	}
}

func (g *Grid) countNeighbors() {
	for i := range g.cells {
		if g.cells[i].Mine {
			continue
		}
		p := Pos{i / g.size, i % g.size}
		count := 0
		for _, n := range g.Neighbors(p) {
			if g.cells[index(n, g.size)].Mine {
				count++
			}
		}
		g.cells[i].Neighbors = count
	}
}
