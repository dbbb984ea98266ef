package area

import "github.com/lixenwraith/tileworld/grid"

// Crossable reports whether movement between orthogonally adjacent cells a and b stays inside one region
type Crossable func(a, b grid.Cell) bool

// Partition flood-fills a cols x rows grid into regions joined by crossable edges
// Regions are returned in row-major order of their first cell, cells in BFS order
func Partition(cols, rows int, crossable Crossable) [][]grid.Cell {
	b := grid.Bounds{Cols: cols, Rows: rows}
	seen := make([]bool, cols*rows)
	var regions [][]grid.Cell
	queue := make([]grid.Cell, 0, 64)

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			start := grid.Cell{X: x, Y: y}
			if seen[b.CellIndex(start)] {
				continue
			}
			seen[b.CellIndex(start)] = true
			queue = append(queue[:0], start)
			var region []grid.Cell

			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				region = append(region, cur)

				for _, side := range grid.CardinalSides {
					dx, dy := side.Offset()
					next := cur.Add(dx, dy)
					if !b.InCells(next) || seen[b.CellIndex(next)] || !crossable(cur, next) {
						continue
					}
					seen[b.CellIndex(next)] = true
					queue = append(queue, next)
				}
			}
			regions = append(regions, region)
		}
	}
	return regions
}
