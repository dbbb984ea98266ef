// Package wall owns wall and door presence per grid edge slot and derives wall geometry from terrain
package wall

import (
	"github.com/pkg/errors"

	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/terrain"
)

// ErrInvalidWalls is returned by Load for arrays that break the shape or placement rules
var ErrInvalidWalls = errors.New("wall: invalid wall array")

// Wall is the content of one slot; an empty Asset means the slot is empty
type Wall struct {
	Asset          string
	Door           bool
	Indestructible bool
}

// Exists reports whether the slot holds a wall
func (w Wall) Exists() bool { return w.Asset != "" }

// Listener is notified synchronously of every change to a slot
type Listener interface {
	WallChanged(s grid.Slot, before, after Wall)
}

// Layer stores walls for every edge slot of a cols x rows grid
type Layer struct {
	bounds   grid.Bounds
	walls    []Wall
	heights  Heights
	listener Listener

	// Last derived geometry per slot, for change detection only
	memo      []Geometry
	memoValid []bool
}

// New creates an empty layer; listener may be nil
func New(cols, rows int, heights Heights, listener Listener) *Layer {
	b := grid.Bounds{Cols: max(1, cols), Rows: max(1, rows)}
	n := b.SlotCount()
	return &Layer{
		bounds:    b,
		walls:     make([]Wall, n),
		heights:   heights,
		listener:  listener,
		memo:      make([]Geometry, n),
		memoValid: make([]bool, n),
	}
}

// Bounds returns the cell dimensions of the layer
func (l *Layer) Bounds() grid.Bounds { return l.bounds }

// WallAt returns the wall in slot s
func (l *Layer) WallAt(s grid.Slot) (Wall, bool) {
	if !l.bounds.InSlots(s) {
		return Wall{}, false
	}
	w := l.walls[l.bounds.SlotIndex(s)]
	return w, w.Exists()
}

// WallAtSide returns the wall on the given side of cell c
func (l *Layer) WallAtSide(c grid.Cell, side grid.Side) (Wall, bool) {
	return l.WallAt(grid.SlotAtSide(c, side))
}

// IsDoor reports whether slot s holds a door
func (l *Layer) IsDoor(s grid.Slot) bool {
	w, ok := l.WallAt(s)
	return ok && w.Door
}

// Place puts a wall with the given asset into an empty slot
func (l *Layer) Place(s grid.Slot, asset string) bool {
	return l.place(s, Wall{Asset: asset})
}

// PlaceIndestructible puts a wall that Remove refuses to delete
func (l *Layer) PlaceIndestructible(s grid.Slot, asset string) bool {
	return l.place(s, Wall{Asset: asset, Indestructible: true})
}

func (l *Layer) place(s grid.Slot, w Wall) bool {
	if w.Asset == "" || !l.bounds.InSlots(s) {
		return false
	}
	idx := l.bounds.SlotIndex(s)
	if l.walls[idx].Exists() {
		return false
	}
	a, b := s.Endpoints()
	if l.heights.ElevationAt(a) == terrain.Water || l.heights.ElevationAt(b) == terrain.Water {
		return false
	}
	l.set(s, idx, w)
	return true
}

// Remove deletes the wall in slot s; indestructible walls and empty slots are rejected
func (l *Layer) Remove(s grid.Slot) bool {
	w, ok := l.WallAt(s)
	if !ok || w.Indestructible {
		return false
	}
	l.set(s, l.bounds.SlotIndex(s), Wall{})
	return true
}

// SetDoor toggles the door state of an existing wall
// A door needs level endpoints; setting the current state is accepted as a no-op
func (l *Layer) SetDoor(s grid.Slot, door bool) bool {
	w, ok := l.WallAt(s)
	if !ok {
		return false
	}
	if w.Door == door {
		return true
	}
	if door {
		a, b := s.Endpoints()
		if l.heights.ElevationAt(a) != l.heights.ElevationAt(b) {
			return false
		}
	}
	next := w
	next.Door = door
	l.set(s, l.bounds.SlotIndex(s), next)
	return true
}

// Reset empties every slot, indestructible walls included
func (l *Layer) Reset() {
	for i, w := range l.walls {
		if w.Exists() {
			l.set(l.bounds.SlotAt(i), i, Wall{})
		}
	}
}

func (l *Layer) set(s grid.Slot, idx int, w Wall) {
	before := l.walls[idx]
	l.walls[idx] = w
	l.memoValid[idx] = false
	if l.listener != nil {
		l.listener.WallChanged(s, before, w)
	}
}

// --- Geometry ---

// Geometry derives the current geometry of the wall in slot s
func (l *Layer) Geometry(s grid.Slot) (Geometry, bool) {
	w, ok := l.WallAt(s)
	if !ok {
		return Geometry{}, false
	}
	idx := l.bounds.SlotIndex(s)
	g := Derive(s, w.Door, l.heights)
	l.memo[idx] = g
	l.memoValid[idx] = true
	return g, true
}

// Refresh re-derives geometry for walls within radius of p and returns the slots whose geometry changed
func (l *Layer) Refresh(p grid.Point, radius int) []grid.Slot {
	var changed []grid.Slot
	for _, s := range l.SlotsNear(p, radius) {
		idx := l.bounds.SlotIndex(s)
		prev, had := l.memo[idx], l.memoValid[idx]
		g, _ := l.Geometry(s)
		if !had || prev != g {
			changed = append(changed, s)
		}
	}
	return changed
}

// --- Queries ---

// SlotsNear returns occupied slots with an endpoint within Chebyshev distance radius of p
func (l *Layer) SlotsNear(p grid.Point, radius int) []grid.Slot {
	var out []grid.Slot
	for y := p.Y - radius - 1; y <= p.Y+radius; y++ {
		for x := p.X - radius - 1; x <= p.X+radius; x++ {
			for _, o := range [2]grid.Orientation{grid.Horizontal, grid.Vertical} {
				s := grid.Slot{Cell: grid.Cell{X: x, Y: y}, Orientation: o}
				if !l.bounds.InSlots(s) || !l.walls[l.bounds.SlotIndex(s)].Exists() {
					continue
				}
				a, b := s.Endpoints()
				if near(a, p, radius) || near(b, p, radius) {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func near(a, b grid.Point, r int) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx >= -r && dx <= r && dy >= -r && dy <= r
}

// SlotsTouching returns the occupied slots meeting at point p
func (l *Layer) SlotsTouching(p grid.Point) []grid.Slot {
	var out []grid.Slot
	for _, s := range grid.SlotsTouching(p) {
		if _, ok := l.WallAt(s); ok {
			out = append(out, s)
		}
	}
	return out
}

// Each calls fn for every occupied slot in index order
func (l *Layer) Each(fn func(s grid.Slot, w Wall)) {
	for i, w := range l.walls {
		if w.Exists() {
			fn(l.bounds.SlotAt(i), w)
		}
	}
}

// Count returns the number of occupied slots
func (l *Layer) Count() int {
	n := 0
	for _, w := range l.walls {
		if w.Exists() {
			n++
		}
	}
	return n
}

// --- Raw array import/export ---

// Records returns a copy of every slot in SlotIndex order
func (l *Layer) Records() []Wall {
	out := make([]Wall, len(l.walls))
	copy(out, l.walls)
	return out
}

// Load replaces every slot from a raw array, notifying the listener of each difference
// Walls ending on water and doors across a slope are rejected before anything changes
func (l *Layer) Load(walls []Wall) error {
	if len(walls) != len(l.walls) {
		return errors.Wrapf(ErrInvalidWalls, "expected %d slots, got %d", len(l.walls), len(walls))
	}
	for i, w := range walls {
		s := l.bounds.SlotAt(i)
		if !w.Exists() {
			if w.Door || w.Indestructible {
				return errors.Wrapf(ErrInvalidWalls, "flags on empty slot %v", s)
			}
			continue
		}
		a, b := s.Endpoints()
		ea, eb := l.heights.ElevationAt(a), l.heights.ElevationAt(b)
		if ea == terrain.Water || eb == terrain.Water {
			return errors.Wrapf(ErrInvalidWalls, "wall %v ends on water", s)
		}
		if w.Door && ea != eb {
			return errors.Wrapf(ErrInvalidWalls, "door %v spans a slope", s)
		}
	}
	for i, w := range walls {
		if l.walls[i] != w {
			l.set(l.bounds.SlotAt(i), i, w)
		}
	}
	return nil
}
