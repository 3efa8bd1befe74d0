package fluid

import "math"

// Cell is a quantised grid coordinate.
type Cell struct{ X, Y int32 }

// Grid is a uniform spatial hash from cell coordinate to the indices of the
// particles bucketed there at the last Build. It holds indices only and is
// meaningless once the particle slice is reordered.
//
// Buckets keep their capacity between builds; a bucket that stays empty
// for a whole build is dropped on the next one.
type Grid struct {
	cellSize float64
	cells    map[Cell][]int
	owner    []Cell
}

func NewGrid(cellSize float64) *Grid {
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[Cell][]int),
	}
}

func (g *Grid) CellSize() float64 { return g.cellSize }

// Hash returns (floor(x/cellSize), floor(y/cellSize)).
func (g *Grid) Hash(p Vec2) Cell {
	return Cell{
		X: int32(math.Floor(p.X / g.cellSize)),
		Y: int32(math.Floor(p.Y / g.cellSize)),
	}
}

// Build buckets every particle index by its current position.
func (g *Grid) Build(particles []Particle) {
	for c, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, c)
			continue
		}
		g.cells[c] = bucket[:0]
	}

	if cap(g.owner) < len(particles) {
		g.owner = make([]Cell, len(particles))
	}
	g.owner = g.owner[:len(particles)]

	for i := range particles {
		c := g.Hash(particles[i].Position)
		g.cells[c] = append(g.cells[c], i)
		g.owner[i] = c
	}
}

// NeighborsOf returns the bucket for c, empty if no particle was there.
// The slice aliases grid storage and is valid until the next Build.
func (g *Grid) NeighborsOf(c Cell) []int {
	return g.cells[c]
}

// CellOf reports the cell particle i was bucketed into at the last Build.
func (g *Grid) CellOf(i int) Cell {
	return g.owner[i]
}

// Around appends the candidate neighbour indices of cell c to dst. Cells
// are visited row by row from the bottom left so the result order is
// deterministic.
func (g *Grid) Around(c Cell, n Neighborhood, dst []int) []int {
	if n == SameCell {
		return append(dst, g.cells[c]...)
	}
	for dy := int32(-1); dy <= 1; dy++ {
		for dx := int32(-1); dx <= 1; dx++ {
			dst = append(dst, g.cells[Cell{X: c.X + dx, Y: c.Y + dy}]...)
		}
	}
	return dst
}

// Occupied counts the non-empty buckets.
func (g *Grid) Occupied() int {
	n := 0
	for _, bucket := range g.cells {
		if len(bucket) > 0 {
			n++
		}
	}
	return n
}
