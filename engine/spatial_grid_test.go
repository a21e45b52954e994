package engine

import (
	"math"
	"testing"

	"github.com/lixenwraith/contagion/vmath"
)

// Grid completeness: for randomized placements, Neighbors must return a
// superset of the agents whose true Euclidean distance is within the
// infection radius, verified against the O(n^2) brute force reference.
func TestGridNeighborsSupersetOfBruteForce(t *testing.T) {
	const (
		width  = 800.0
		height = 600.0
		radius = 25.0
		n      = 300
	)
	rng := vmath.NewFastRand(12345)

	for trial := 0; trial < 5; trial++ {
		agents := make([]Agent, n)
		for i := range agents {
			agents[i] = Agent{ID: i, X: rng.Range(0, width), Y: rng.Range(0, height)}
		}

		grid := NewSpatialGrid(width, height, math.Max(10, 2*radius))
		grid.Rebuild(agents)

		var buf []int
		for i := range agents {
			buf = grid.Neighbors(agents, i, buf[:0])
			returned := make(map[int]bool, len(buf))
			for _, idx := range buf {
				if idx == i {
					t.Fatalf("trial %d: query for %d returned itself", trial, i)
				}
				returned[idx] = true
			}

			for j := range agents {
				if j == i {
					continue
				}
				if vmath.Distance(agents[i].X, agents[i].Y, agents[j].X, agents[j].Y) <= radius && !returned[j] {
					t.Fatalf("trial %d: agent %d within radius of %d but missing from grid query", trial, j, i)
				}
			}
		}
	}
}

func TestGridNeighborsClustered(t *testing.T) {
	// Everything stacked in one corner: query must still be correct, just denser
	const radius = 25.0
	agents := make([]Agent, 50)
	rng := vmath.NewFastRand(9)
	for i := range agents {
		agents[i] = Agent{ID: i, X: rng.Range(0, 5), Y: rng.Range(0, 5)}
	}

	grid := NewSpatialGrid(800, 600, 2*radius)
	grid.Rebuild(agents)

	buf := grid.Neighbors(agents, 0, nil)
	if len(buf) != len(agents)-1 {
		t.Errorf("clustered query returned %d of %d expected neighbors", len(buf), len(agents)-1)
	}
}

func TestGridRebuildResetsBuckets(t *testing.T) {
	agents := []Agent{{ID: 0, X: 1, Y: 1}, {ID: 1, X: 2, Y: 2}}
	grid := NewSpatialGrid(100, 100, 50)

	grid.Rebuild(agents)
	grid.Rebuild(agents)

	buf := grid.Neighbors(agents, 0, nil)
	if len(buf) != 1 || buf[0] != 1 {
		t.Errorf("after two rebuilds query = %v, want [1]", buf)
	}
}

func TestGridOutOfBoundsPositionsClamp(t *testing.T) {
	// Positions outside the field bucket into the border cells rather than panic
	agents := []Agent{{ID: 0, X: -10, Y: -10}, {ID: 1, X: 1e6, Y: 1e6}, {ID: 2, X: 5, Y: 5}}
	grid := NewSpatialGrid(100, 100, 50)
	grid.Rebuild(agents)

	buf := grid.Neighbors(agents, 0, nil)
	found := false
	for _, idx := range buf {
		if idx == 2 {
			found = true
		}
	}
	if !found {
		t.Error("clamped corner agent should see the in-field agent sharing its cell block")
	}
}
