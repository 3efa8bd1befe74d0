package fluid

import (
	"math/rand"
	"testing"
)

func TestGridHash(t *testing.T) {
	g := NewGrid(36)
	tests := []struct {
		name string
		pos  Vec2
		want Cell
	}{
		{"origin", Vec2{X: 0, Y: 0}, Cell{0, 0}},
		{"interior", Vec2{X: 50, Y: 71.9}, Cell{1, 1}},
		{"exact boundary", Vec2{X: 36, Y: 72}, Cell{1, 2}},
		{"negative floors down", Vec2{X: -0.5, Y: -36.1}, Cell{-1, -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Hash(tt.pos); got != tt.want {
				t.Errorf("Hash(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestGridBuildPlacesEveryIndexOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{0, 1, 17, 500} {
		particles := make([]Particle, n)
		for i := range particles {
			particles[i].Position = Vec2{X: rng.Float64()*120 - 10, Y: rng.Float64()*120 - 10}
		}

		g := NewGrid(9)
		g.Build(particles)

		seen := make(map[int]int)
		for c, bucket := range g.cells {
			for _, i := range bucket {
				seen[i]++
				if want := g.Hash(particles[i].Position); c != want {
					t.Errorf("n=%d: index %d in cell %v, want %v", n, i, c, want)
				}
			}
		}
		for i := 0; i < n; i++ {
			if seen[i] != 1 {
				t.Errorf("n=%d: index %d appears %d times", n, i, seen[i])
			}
			if g.CellOf(i) != g.Hash(particles[i].Position) {
				t.Errorf("n=%d: CellOf(%d) disagrees with Hash", n, i)
			}
		}
	}
}

func TestGridNeighborsOfMissingCell(t *testing.T) {
	g := NewGrid(10)
	g.Build([]Particle{{Position: Vec2{X: 5, Y: 5}}})
	if got := g.NeighborsOf(Cell{7, 7}); len(got) != 0 {
		t.Errorf("expected empty bucket, got %v", got)
	}
	if got := g.NeighborsOf(Cell{0, 0}); len(got) != 1 || got[0] != 0 {
		t.Errorf("expected [0], got %v", got)
	}
}

func TestGridAround(t *testing.T) {
	g := NewGrid(10)
	particles := []Particle{
		{Position: Vec2{X: 15, Y: 15}}, // centre cell
		{Position: Vec2{X: 5, Y: 5}},   // diagonal neighbour
		{Position: Vec2{X: 25, Y: 15}}, // right neighbour
		{Position: Vec2{X: 35, Y: 15}}, // two cells away
	}
	g.Build(particles)

	same := g.Around(Cell{1, 1}, SameCell, nil)
	if len(same) != 1 || same[0] != 0 {
		t.Errorf("SameCell: got %v, want [0]", same)
	}

	moore := g.Around(Cell{1, 1}, Moore, nil)
	want := []int{1, 0, 2}
	if len(moore) != len(want) {
		t.Fatalf("Moore: got %v, want %v", moore, want)
	}
	for i := range want {
		if moore[i] != want[i] {
			t.Errorf("Moore: got %v, want %v", moore, want)
		}
	}
}

func TestGridPrunesEmptyBuckets(t *testing.T) {
	g := NewGrid(10)
	particles := []Particle{{Position: Vec2{X: 5, Y: 5}}}
	g.Build(particles)

	particles[0].Position = Vec2{X: 55, Y: 55}
	g.Build(particles)
	if g.Occupied() != 1 {
		t.Errorf("expected 1 occupied cell, got %d", g.Occupied())
	}

	g.Build(particles)
	if len(g.cells) != 1 {
		t.Errorf("expected stale bucket to be pruned, have %d buckets", len(g.cells))
	}
}
