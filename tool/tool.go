// Package tool provides editing commands bound to an explicit world
package tool

import (
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/parameter"
	"github.com/lixenwraith/tileworld/terrain"
	"github.com/lixenwraith/tileworld/world"
)

// HillTool paints one elevation level over a circular brush
type HillTool struct {
	World  *world.World
	Radius float64
	Level  terrain.Level
}

// NewHillTool returns a brush with the default radius
func NewHillTool(w *world.World, level terrain.Level) *HillTool {
	return &HillTool{World: w, Radius: parameter.BrushRadius, Level: level}
}

// Apply paints at a continuous world position; returns the number of points changed
func (t *HillTool) Apply(x, y float64) int {
	return t.World.SetElevationInCircle(x, y, t.Radius, t.Level)
}

// WallTool places straight runs of walls along one side of a row or column of cells
type WallTool struct {
	World *world.World
	Asset string
}

// NewWallTool returns a wall tool using the default asset
func NewWallTool(w *world.World) *WallTool {
	return &WallTool{World: w, Asset: parameter.WallAsset}
}

// Run lists the slots on side of every cell between from and to
// The run follows the dominant axis of the drag and stays on from's row or column
func Run(from, to grid.Cell, side grid.Side) []grid.Slot {
	dx, dy := to.X-from.X, to.Y-from.Y
	stepX, stepY, n := 0, 0, 0
	if abs(dx) >= abs(dy) {
		stepX, n = sign(dx), abs(dx)
	} else {
		stepY, n = sign(dy), abs(dy)
	}
	out := make([]grid.Slot, 0, n+1)
	c := from
	for i := 0; i <= n; i++ {
		out = append(out, grid.SlotAtSide(c, side))
		c = c.Add(stepX, stepY)
	}
	return out
}

// Apply places walls along the run and repartitions areas when anything was placed
// Returns the number of walls placed; occupied or invalid slots are skipped
func (t *WallTool) Apply(from, to grid.Cell, side grid.Side) int {
	placed := 0
	for _, s := range Run(from, to, side) {
		if t.World.PlaceWall(s, t.Asset) {
			placed++
		}
	}
	if placed > 0 {
		t.World.RebuildAreas()
	}
	return placed
}

// DoorTool turns walls into doors and back
type DoorTool struct {
	World *world.World
	Asset string
}

// NewDoorTool returns a door tool using the default asset
func NewDoorTool(w *world.World) *DoorTool {
	return &DoorTool{World: w, Asset: parameter.WallAsset}
}

// Toggle flips the door on an existing wall, or places a new door into an empty slot
func (t *DoorTool) Toggle(s grid.Slot) bool {
	if _, ok := t.World.WallAt(s); ok {
		return t.World.ToggleDoor(s)
	}
	if !t.World.PlaceDoor(s, t.Asset) {
		return false
	}
	// Doors bound areas like walls do
	t.World.RebuildAreas()
	return true
}

// DeleteTool clears walls and objects over a rectangle of cells
type DeleteTool struct {
	World *world.World
}

// Apply removes everything destructible between from and to inclusive and repartitions areas on change
func (t *DeleteTool) Apply(from, to grid.Cell) int {
	n := t.World.DeleteRect(from, to)
	if n > 0 {
		t.World.RebuildAreas()
	}
	return n
}

// ObjectTool stamps one kind of object onto cells
type ObjectTool struct {
	World  *world.World
	Object world.Object
}

// Apply places the object on c
func (t *ObjectTool) Apply(c grid.Cell) bool {
	return t.World.PlaceObject(c, t.Object)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
