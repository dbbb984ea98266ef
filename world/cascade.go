package world

import (
	"github.com/lixenwraith/tileworld/area"
	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/navigation"
	"github.com/lixenwraith/tileworld/status"
	"github.com/lixenwraith/tileworld/terrain"
	"github.com/lixenwraith/tileworld/wall"
)

// --- terrain.Constraints ---

// ForbidsSlope reports whether the object on c must stay level
func (w *World) ForbidsSlope(c grid.Cell) bool {
	o, ok := w.ObjectAt(c)
	return ok && !o.CanPlaceOnSlopes
}

// ForbidsWater reports whether the object on c must stay dry
func (w *World) ForbidsWater(c grid.Cell) bool {
	o, ok := w.ObjectAt(c)
	return ok && !o.CanPlaceInWater
}

// HasDoor reports whether slot s holds a door
func (w *World) HasDoor(s grid.Slot) bool { return w.walls.IsDoor(s) }

// HasWall reports whether slot s holds any wall
func (w *World) HasWall(s grid.Slot) bool {
	_, ok := w.walls.WallAt(s)
	return ok
}

// --- terrain.Listener ---

// ElevationChanged re-derives wall geometry, node classes and edge blocks around a committed edit
func (w *World) ElevationChanged(ch terrain.Change) {
	w.version++

	for _, s := range w.walls.Refresh(ch.Center, ch.Radius) {
		wl, _ := w.walls.WallAt(s)
		w.publish(event.EventWallChanged, &event.WallChangedPayload{Slot: s, Asset: wl.Asset, Present: true})
	}
	for _, c := range ch.WaterFlipped {
		w.syncClass(c)
	}

	// Every cell touching a point within the radius
	for y := ch.Center.Y - ch.Radius - 1; y <= ch.Center.Y+ch.Radius; y++ {
		for x := ch.Center.X - ch.Radius - 1; x <= ch.Center.X+ch.Radius; x++ {
			w.syncBlocks(grid.Cell{X: x, Y: y})
		}
	}

	w.publish(event.EventElevationChanged, &event.ElevationChangedPayload{
		Center: ch.Center,
		Points: ch.Points,
		Radius: ch.Radius,
	})
	if len(ch.WaterFlipped) > 0 {
		w.publish(event.EventWaterChanged, &event.WaterChangedPayload{Cells: ch.WaterFlipped})
	}
}

// --- wall.Listener ---

// WallChanged keeps edge blocks and area adjacency in step with slot s
func (w *World) WallChanged(s grid.Slot, before, after wall.Wall) {
	w.version++

	a, _, b, _ := s.Sides()
	w.syncBlocks(a)
	w.syncBlocks(b)

	switch {
	case !before.Exists() && after.Exists():
		w.count(status.WallPlaced)
	case before.Exists() && !after.Exists():
		w.count(status.WallRemoved)
	}
	w.publish(event.EventWallChanged, &event.WallChangedPayload{Slot: s, Asset: after.Asset, Present: after.Exists()})

	wasDoor := before.Exists() && before.Door
	isDoor := after.Exists() && after.Door
	if wasDoor == isDoor {
		return
	}
	w.count(status.DoorToggled)
	w.publish(event.EventDoorChanged, &event.DoorChangedPayload{Slot: s, Door: isDoor})
	if w.loading {
		return
	}
	if isDoor {
		w.linkDoor(s)
	} else {
		w.unlinkDoor(s)
	}
}

// --- Derived navigation state ---

// syncClass derives the node class of c from its object and water state
func (w *World) syncClass(c grid.Cell) {
	if !w.bounds.InCells(c) {
		return
	}
	class := navigation.ClassOpen
	switch {
	case w.IsSolid(c):
		class = navigation.ClassClosed
	case w.terrain.IsWater(c):
		class = ClassWater
	}
	w.nav.SetTraversalClass(c, class)
}

// syncBlocks derives the wall and door side masks of c from the four slots around it
func (w *World) syncBlocks(c grid.Cell) {
	if !w.bounds.InCells(c) {
		return
	}
	var blocked, gated grid.Side
	for _, side := range grid.CardinalSides {
		wl, ok := w.walls.WallAtSide(c, side)
		switch {
		case !ok:
		case wl.Door:
			gated |= side
		default:
			blocked |= side
		}
	}
	w.nav.SetDirectionalBlock(c, blocked)
	w.nav.SetGate(c, gated)
}

// syncAll re-derives every node from scratch
func (w *World) syncAll() {
	w.nav.Reset()
	for y := 0; y < w.bounds.Rows; y++ {
		for x := 0; x < w.bounds.Cols; x++ {
			c := grid.Cell{X: x, Y: y}
			w.syncClass(c)
			w.syncBlocks(c)
		}
	}
}

// --- Area adjacency ---

// doorAreas returns the areas on both sides of s when they differ
func (w *World) doorAreas(s grid.Slot) (string, string, bool) {
	a, _, b, _ := s.Sides()
	ida, ok1 := w.areas.AreaAt(a)
	idb, ok2 := w.areas.AreaAt(b)
	if !ok1 || !ok2 || ida == idb {
		return "", "", false
	}
	return ida, idb, true
}

func (w *World) linkDoor(s grid.Slot) {
	ida, idb, ok := w.doorAreas(s)
	if !ok {
		return
	}
	if w.areas.Connect(ida, idb, area.Door{Slot: s, IsDoor: true}) {
		w.publish(event.EventAreasChanged, &event.AreasChangedPayload{A: ida, B: idb, Connected: true})
	}
}

func (w *World) unlinkDoor(s grid.Slot) {
	ida, idb, ok := w.doorAreas(s)
	if !ok {
		return
	}
	w.areas.Disconnect(ida, idb, &area.Door{Slot: s, IsDoor: true})
	w.publish(event.EventAreasChanged, &event.AreasChangedPayload{A: ida, B: idb, Connected: w.areas.Connected(ida, idb)})
}
