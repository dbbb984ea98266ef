package world

import (
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/parameter"
	"github.com/lixenwraith/tileworld/status"
	"github.com/lixenwraith/tileworld/terrain"
)

// --- Terrain edits ---

// SetElevation raises or lowers point p; rejected edits change nothing and return false
func (w *World) SetElevation(p grid.Point, level terrain.Level) bool {
	if !w.terrain.SetElevation(p, level) {
		w.count(status.TerrainRejected)
		w.reject("elevation", "illegal edit", logrus.Fields{"point": p, "level": level})
		return false
	}
	w.count(status.TerrainApplied)
	return true
}

// SetElevationInCircle applies level to every point within radius of (cx, cy); returns the number applied
func (w *World) SetElevationInCircle(cx, cy, radius float64, level terrain.Level) int {
	n := w.terrain.SetElevationInCircle(cx, cy, radius, level)
	w.metrics.Ints.Get(status.TerrainApplied).Add(int64(n))
	if n == 0 {
		w.count(status.TerrainRejected)
		w.reject("elevation brush", "no point applied", logrus.Fields{"x": cx, "y": cy, "radius": radius})
	}
	return n
}

// --- Wall edits ---

// PlaceWall puts a wall into an empty slot
func (w *World) PlaceWall(s grid.Slot, asset string) bool {
	if asset == "" {
		asset = parameter.WallAsset
	}
	if !w.walls.Place(s, asset) {
		w.count(status.WallRejected)
		w.reject("wall", "slot unavailable", logrus.Fields{"slot": s})
		return false
	}
	return true
}

// PlaceDoor puts a door into an empty slot whose endpoints are level with each other
func (w *World) PlaceDoor(s grid.Slot, asset string) bool {
	a, b := s.Endpoints()
	if w.terrain.ElevationAt(a) != w.terrain.ElevationAt(b) {
		w.count(status.WallRejected)
		w.reject("door", "endpoints not level", logrus.Fields{"slot": s})
		return false
	}
	if !w.PlaceWall(s, asset) {
		return false
	}
	return w.walls.SetDoor(s, true)
}

// RemoveWall deletes the wall in slot s; indestructible walls stay
func (w *World) RemoveWall(s grid.Slot) bool {
	if !w.walls.Remove(s) {
		w.count(status.WallRejected)
		w.reject("remove wall", "empty or indestructible", logrus.Fields{"slot": s})
		return false
	}
	return true
}

// SetDoor turns the wall in slot s into a door or back into a plain wall
func (w *World) SetDoor(s grid.Slot, door bool) bool {
	if !w.walls.SetDoor(s, door) {
		w.count(status.WallRejected)
		w.reject("door", "no wall or endpoints not level", logrus.Fields{"slot": s, "door": door})
		return false
	}
	return true
}

// ToggleDoor flips the door state of the wall in slot s
func (w *World) ToggleDoor(s grid.Slot) bool {
	wl, ok := w.walls.WallAt(s)
	if !ok {
		return false
	}
	return w.SetDoor(s, !wl.Door)
}

// --- Objects ---

// PlaceObject puts o on an empty cell whose shape suits it
func (w *World) PlaceObject(c grid.Cell, o Object) bool {
	fields := logrus.Fields{"cell": c, "object": o.Name}
	switch {
	case !o.Exists() || !w.bounds.InCells(c):
		w.reject("object", "invalid", fields)
		return false
	case w.objects[w.bounds.CellIndex(c)].Exists():
		w.reject("object", "occupied", fields)
		return false
	case w.terrain.IsSloped(c) && !o.CanPlaceOnSlopes:
		w.reject("object", "sloped cell", fields)
		return false
	case w.terrain.IsWater(c) && !o.CanPlaceInWater:
		w.reject("object", "water cell", fields)
		return false
	}
	w.setObject(c, o)
	w.count(status.ObjectPlaced)
	return true
}

// RemoveObject clears the object on c
func (w *World) RemoveObject(c grid.Cell) bool {
	if _, ok := w.ObjectAt(c); !ok {
		return false
	}
	w.setObject(c, Object{})
	return true
}

func (w *World) setObject(c grid.Cell, o Object) {
	prev := w.objects[w.bounds.CellIndex(c)]
	w.objects[w.bounds.CellIndex(c)] = o
	w.version++
	w.syncClass(c)
	name := o.Name
	if !o.Exists() {
		name = prev.Name
	}
	w.publish(event.EventObjectChanged, &event.ObjectChangedPayload{Cell: c, Name: name, Present: o.Exists()})
}

// --- Bulk edits ---

// DeleteRect removes the objects and destructible walls on all four sides of every cell between from and to inclusive
// Returns the number of walls and objects removed
func (w *World) DeleteRect(from, to grid.Cell) int {
	x0, x1 := min(from.X, to.X), max(from.X, to.X)
	y0, y1 := min(from.Y, to.Y), max(from.Y, to.Y)
	removed := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := grid.Cell{X: x, Y: y}
			for _, side := range grid.CardinalSides {
				s := grid.SlotAtSide(c, side)
				if wl, ok := w.walls.WallAt(s); ok && !wl.Indestructible && w.walls.Remove(s) {
					removed++
				}
			}
			if w.RemoveObject(c) {
				removed++
			}
		}
	}
	return removed
}

// Reset flattens the terrain, clears every wall and object, then restores the border and a single area
func (w *World) Reset() {
	w.loading = true
	w.walls.Reset()
	w.loading = false

	if err := w.terrain.Load(make([]terrain.Level, len(w.terrain.Levels()))); err != nil {
		w.log.WithError(err).Error("terrain reset failed")
	}
	clear(w.objects)
	w.nav.MarkPath(nil)
	w.syncAll()

	if w.cfg.Border {
		w.placeBorder()
	}
	w.RebuildAreas()
	w.version++
	w.publish(event.EventWorldReset, nil)
}
