package engine

// SpatialGrid is a uniform bucket index over current agent positions, rebuilt
// every step, for bounded-cost proximity queries. Cell size is at least twice
// the infection radius, so any two agents within the radius fall in the same
// cell or an adjacent one; a 3x3 block query is therefore a superset of the
// true in-radius neighbor set.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]int // agent indices per cell, buckets reused across rebuilds
}

// NewSpatialGrid creates a grid covering a width x height field.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear empties all buckets without releasing their capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Rebuild re-buckets every agent by its current position. O(n).
func (g *SpatialGrid) Rebuild(agents []Agent) {
	g.Clear()
	for i := range agents {
		idx := g.cellIndex(agents[i].X, agents[i].Y)
		g.cells[idx] = append(g.cells[idx], i)
	}
}

// Neighbors appends to buf the indices of every agent in the 3x3 block of
// cells centered on agent self, excluding self, and returns the extended buf.
// The result is a superset of all agents within the infection radius of self.
func (g *SpatialGrid) Neighbors(agents []Agent, self int, buf []int) []int {
	col, row := g.cellAt(agents[self].X, agents[self].Y)

	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.cols {
				continue
			}
			for _, idx := range g.cells[r*g.cols+c] {
				if idx != self {
					buf = append(buf, idx)
				}
			}
		}
	}
	return buf
}

// cellAt returns the clamped (col, row) of a world position.
func (g *SpatialGrid) cellAt(x, y float64) (int, int) {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// cellIndex returns the flat bucket index for a world position.
func (g *SpatialGrid) cellIndex(x, y float64) int {
	col, row := g.cellAt(x, y)
	return row*g.cols + col
}
