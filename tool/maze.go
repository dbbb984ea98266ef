package tool

import (
	"github.com/lixenwraith/tileworld/maze"
	"github.com/lixenwraith/tileworld/world"
)

// MazeTool lays a generated maze over the whole world
type MazeTool struct {
	World    *world.World
	Asset    string
	Braiding float64
	Seed     int64
}

// Apply generates a layout sized to the world and places its interior walls
// Slots that refuse a wall are skipped; returns the layout and the number of walls placed
func (t *MazeTool) Apply() (maze.Layout, int) {
	b := t.World.Bounds()
	layout := maze.Generate(maze.Config{
		Cols:     b.Cols,
		Rows:     b.Rows,
		Braiding: t.Braiding,
		Seed:     t.Seed,
	})
	placed := 0
	for _, s := range layout.Walls {
		if t.World.PlaceWall(s, t.Asset) {
			placed++
		}
	}
	if placed > 0 {
		t.World.RebuildAreas()
	}
	return layout, placed
}
