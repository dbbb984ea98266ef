package world

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/lixenwraith/tileworld/area"
	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/parameter"
	"github.com/lixenwraith/tileworld/status"
	"github.com/lixenwraith/tileworld/wall"
)

// RebuildAreas replaces every area with the regions enclosed by walls and doors, then links all doors
// Ids are AreaPrefix plus the region's scan-order index
func (w *World) RebuildAreas() {
	w.areas.Reset()
	regions := area.Partition(w.bounds.Cols, w.bounds.Rows, func(a, b grid.Cell) bool {
		return !w.HasWall(slotBetween(a, b))
	})
	for i, cells := range regions {
		// Ids are fresh after Reset so Add cannot fail
		_, _ = w.areas.Add(parameter.AreaPrefix+strconv.Itoa(i), cells)
	}
	w.linkAllDoors()
	w.count(status.AreasRebuilt)
	w.publish(event.EventAreasChanged, &event.AreasChangedPayload{})
}

// DefineArea registers a named area over cells, taking them from their current owners, and links its doors
// Owners left without cells are removed
func (w *World) DefineArea(id string, cells []grid.Cell) error {
	inBounds := make([]grid.Cell, 0, len(cells))
	owners := make(map[string]struct{})
	for _, c := range cells {
		if !w.bounds.InCells(c) {
			continue
		}
		inBounds = append(inBounds, c)
		if prev, ok := w.areas.AreaAt(c); ok {
			owners[prev] = struct{}{}
		}
	}
	if _, err := w.areas.Add(id, inBounds); err != nil {
		return err
	}
	for prev := range owners {
		if a, ok := w.areas.Get(prev); ok && a.Len() == 0 {
			w.areas.Remove(prev)
		}
	}
	for _, c := range inBounds {
		for _, side := range grid.CardinalSides {
			s := grid.SlotAtSide(c, side)
			if w.walls.IsDoor(s) {
				w.linkDoor(s)
			}
		}
	}
	w.publish(event.EventAreasChanged, &event.AreasChangedPayload{})
	return nil
}

// HighlightArea sets the render highlight flag of area id
func (w *World) HighlightArea(id string, on bool) bool {
	a, ok := w.areas.Get(id)
	if !ok {
		return false
	}
	a.Highlighted = on
	return true
}

// ValidateAreas checks the area graph invariants and that every listed door is a door in the wall layer
func (w *World) ValidateAreas() error {
	if err := w.areas.Validate(); err != nil {
		return err
	}
	for _, id := range w.areas.Areas() {
		a, _ := w.areas.Get(id)
		for _, n := range a.Neighbors() {
			for _, s := range a.Doors(n) {
				if !w.walls.IsDoor(s) {
					return errors.Errorf("world: %s->%s lists %v, which is not a door", id, n, s)
				}
			}
		}
	}
	return nil
}

func (w *World) linkAllDoors() {
	w.walls.Each(func(s grid.Slot, wl wall.Wall) {
		if wl.Door {
			w.linkDoor(s)
		}
	})
}

// slotBetween returns the slot shared by orthogonally adjacent cells a and b
func slotBetween(a, b grid.Cell) grid.Slot {
	return grid.SlotAtSide(a, grid.SidesToward(b.X-a.X, b.Y-a.Y))
}
