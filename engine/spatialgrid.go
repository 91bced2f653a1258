package engine

import "github.com/Polymythic/LLMsubmarineBridgeSimulator/sim"

// GridCellSize sized for sonar/visual range queries rather than a fixed
// galaxy (submarine positions are unbounded, unlike the teacher's
// 100000x100000 Netrek galaxy), so the grid is a map keyed by cell
// coordinate pair instead of a fixed slice-of-cells array.
const GridCellSize = 4000.0

type cellKey struct{ col, row int }

// SpatialGrid is an O(1)-average-lookup grid hash over ship positions,
// adapted from the teacher's server/spatial_grid.go for unbounded
// coordinates and string-keyed entities.
type SpatialGrid struct {
	cellSize float64
	cells    map[cellKey][]string
}

func NewSpatialGrid() *SpatialGrid {
	return &SpatialGrid{cellSize: GridCellSize, cells: make(map[cellKey][]string)}
}

func (g *SpatialGrid) Clear() {
	for k := range g.cells {
		delete(g.cells, k)
	}
}

func (g *SpatialGrid) key(x, y float64) cellKey {
	return cellKey{col: int(x / g.cellSize), row: int(y / g.cellSize)}
}

func (g *SpatialGrid) Insert(id string, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], id)
}

// GetNearby returns ids that might be within range; callers must still do
// an exact distance check.
func (g *SpatialGrid) GetNearby(x, y float64) []string {
	center := g.key(x, y)
	var result []string
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if ids, ok := g.cells[cellKey{col: center.col + dc, row: center.row + dr}]; ok {
				result = append(result, ids...)
			}
		}
	}
	return result
}

// IndexShips populates the grid with every ship in the world.
func (g *SpatialGrid) IndexShips(w *sim.World) {
	g.Clear()
	for id, s := range w.Ships {
		g.Insert(id, s.Kin.X, s.Kin.Y)
	}
}
