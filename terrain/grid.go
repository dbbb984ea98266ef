// Package terrain owns the elevation heightfield: discrete levels at grid points,
// the slope shape and continuous height derived from them, and the legality of edits
package terrain

import (
	"math"

	"github.com/pkg/errors"

	"github.com/lixenwraith/tileworld/grid"
)

// ErrInvalidLevels is returned by Load for arrays that break heightfield invariants
var ErrInvalidLevels = errors.New("terrain: invalid level array")

// Constraints answers the questions an elevation edit asks about things placed on the terrain
type Constraints interface {
	ForbidsSlope(c grid.Cell) bool
	ForbidsWater(c grid.Cell) bool
	HasDoor(s grid.Slot) bool
	HasWall(s grid.Slot) bool
}

// Change describes one committed elevation edit
type Change struct {
	Center       grid.Point
	Points       []grid.Point // Points whose level changed, target first
	WaterFlipped []grid.Cell  // Cells whose water classification flipped
	Radius       int          // Geometry around Center within Radius may have changed
}

// Listener receives committed elevation edits
type Listener interface {
	ElevationChanged(ch Change)
}

// changeRadius covers flattened neighbors plus the cells and slots touching them
const changeRadius = 2

type permissive struct{}

func (permissive) ForbidsSlope(grid.Cell) bool { return false }
func (permissive) ForbidsWater(grid.Cell) bool { return false }
func (permissive) HasDoor(grid.Slot) bool      { return false }
func (permissive) HasWall(grid.Slot) bool      { return false }

// Grid is the terrain heightfield
type Grid struct {
	bounds grid.Bounds
	step   float64
	levels []Level // (cols+1) x (rows+1) points
	water  []bool  // cols x rows cells, derived from base height

	constraints Constraints
	listener    Listener
}

// New creates an all-flat grid of cols x rows cells
// constraints and listener may be nil
func New(cols, rows int, step float64, constraints Constraints, listener Listener) *Grid {
	cols = max(1, cols)
	rows = max(1, rows)
	if step <= 0 {
		step = DefaultStep
	}
	if constraints == nil {
		constraints = permissive{}
	}
	return &Grid{
		bounds:      grid.Bounds{Cols: cols, Rows: rows},
		step:        step,
		levels:      make([]Level, (cols+1)*(rows+1)),
		water:       make([]bool, cols*rows),
		constraints: constraints,
		listener:    listener,
	}
}

// Bounds returns the cell dimensions
func (g *Grid) Bounds() grid.Bounds { return g.bounds }

// Step returns the height of one level
func (g *Grid) Step() float64 { return g.step }

// ElevationAt returns the level at p, Flat outside the grid
func (g *Grid) ElevationAt(p grid.Point) Level {
	if !g.bounds.InPoints(p) {
		return Flat
	}
	return g.levels[g.bounds.PointIndex(p)]
}

// corners reads the four corner levels of c through an optional overlay of pending changes
func (g *Grid) corners(c grid.Cell, overlay map[grid.Point]Level) (nw, ne, sw, se Level) {
	var lv [4]Level
	for i, p := range c.Corners() {
		if l, ok := overlay[p]; ok {
			lv[i] = l
			continue
		}
		lv[i] = g.ElevationAt(p)
	}
	return lv[0], lv[1], lv[2], lv[3]
}

// SlopeVariantAt classifies cell c from its corners
func (g *Grid) SlopeVariantAt(c grid.Cell) SlopeVariant {
	return Classify(g.corners(c, nil))
}

// IsSloped reports whether c is anything but flat
func (g *Grid) IsSloped(c grid.Cell) bool {
	return g.SlopeVariantAt(c) != SlopeFlat
}

// BaseHeight is the lowest corner of c scaled by the level step
func (g *Grid) BaseHeight(c grid.Cell) float64 {
	nw, ne, sw, se := g.corners(c, nil)
	return float64(min(nw, ne, sw, se)) * g.step
}

// IsWater reports the water classification of c, false outside the grid
func (g *Grid) IsWater(c grid.Cell) bool {
	if !g.bounds.InCells(c) {
		return false
	}
	return g.water[g.bounds.CellIndex(c)]
}

// HeightAt returns the continuous terrain height at world position (x, y)
// Points on the far grid edge resolve through the last cell; positions outside the grid read 0
func (g *Grid) HeightAt(x, y float64) float64 {
	if x < 0 || y < 0 || x > float64(g.bounds.Cols) || y > float64(g.bounds.Rows) {
		return 0
	}
	cx, fx := split(x, g.bounds.Cols)
	cy, fy := split(y, g.bounds.Rows)
	c := grid.Cell{X: cx, Y: cy}
	return g.BaseHeight(c) + g.step*g.SlopeVariantAt(c).Rise(fx, fy)
}

// split returns the cell index and in-cell fraction of coordinate v, clamping v == limit into the last cell
func split(v float64, limit int) (int, float64) {
	i := int(math.Floor(v))
	if i >= limit {
		return limit - 1, 1
	}
	return i, v - float64(i)
}

// --- Editing ---

// plan returns the edit set for setting p to level: the target plus every 8-adjacent point of opposite sign flattened
// Flattening never creates a new opposite-sign pair, so one hop is complete
func (g *Grid) plan(p grid.Point, level Level) map[grid.Point]Level {
	edits := map[grid.Point]Level{p: level}
	if level == Flat {
		return edits
	}
	for _, n := range p.Adjacent8() {
		if g.bounds.InPoints(n) && g.ElevationAt(n) == -level {
			edits[n] = Flat
		}
	}
	return edits
}

// CanSetElevation reports whether setting p to level, including the flattening cascade, is legal
func (g *Grid) CanSetElevation(p grid.Point, level Level) bool {
	_, ok := g.validate(p, level)
	return ok
}

// validate builds the edit plan and checks every legality rule against the post-edit state
func (g *Grid) validate(p grid.Point, level Level) (map[grid.Point]Level, bool) {
	if !g.bounds.InPoints(p) || !level.Valid() {
		return nil, false
	}
	edits := g.plan(p, level)

	// Doors forbid any change at their endpoints
	for q, l := range edits {
		if g.ElevationAt(q) == l {
			continue
		}
		for _, s := range grid.SlotsTouching(q) {
			if g.bounds.InSlots(s) && g.constraints.HasDoor(s) {
				return nil, false
			}
		}
	}

	if level == Water {
		for _, c := range p.TouchingCells() {
			if g.bounds.InCells(c) && g.constraints.ForbidsWater(c) {
				return nil, false
			}
		}
		for _, s := range grid.SlotsTouching(p) {
			if g.bounds.InSlots(s) && g.constraints.HasWall(s) {
				return nil, false
			}
		}
	}

	for c := range g.affectedCells(edits) {
		if g.constraints.ForbidsSlope(c) && Classify(g.corners(c, edits)) != SlopeFlat {
			return nil, false
		}
	}
	return edits, true
}

// affectedCells returns the in-grid cells touching any point in edits
func (g *Grid) affectedCells(edits map[grid.Point]Level) map[grid.Cell]struct{} {
	cells := make(map[grid.Cell]struct{}, len(edits)*4)
	for q := range edits {
		for _, c := range q.TouchingCells() {
			if g.bounds.InCells(c) {
				cells[c] = struct{}{}
			}
		}
	}
	return cells
}

// SetElevation sets p to level and flattens adjacent opposite-sign points
// The whole edit applies or nothing does; returns false when rejected
func (g *Grid) SetElevation(p grid.Point, level Level) bool {
	edits, ok := g.validate(p, level)
	if !ok {
		return false
	}

	ch := Change{Center: p, Radius: changeRadius}
	// Target first, then cascaded points in a stable order
	if g.ElevationAt(p) != level {
		ch.Points = append(ch.Points, p)
	}
	for _, n := range p.Adjacent8() {
		if _, ok := edits[n]; ok && g.ElevationAt(n) != Flat {
			ch.Points = append(ch.Points, n)
		}
	}
	if len(ch.Points) == 0 {
		return true
	}

	for q, l := range edits {
		g.levels[g.bounds.PointIndex(q)] = l
	}

	for c := range g.affectedCells(edits) {
		idx := g.bounds.CellIndex(c)
		wet := g.BaseHeight(c) < 0
		if g.water[idx] != wet {
			g.water[idx] = wet
			ch.WaterFlipped = append(ch.WaterFlipped, c)
		}
	}

	if g.listener != nil {
		g.listener.ElevationChanged(ch)
	}
	return true
}

// SetElevationInCircle applies SetElevation to every grid point within radius of (cx, cy)
// Each point is its own atomic edit; returns the number of points applied
func (g *Grid) SetElevationInCircle(cx, cy, radius float64, level Level) int {
	if cx < 0 || cy < 0 || cx > float64(g.bounds.Cols) || cy > float64(g.bounds.Rows) {
		return 0
	}
	applied := 0
	r2 := radius * radius
	for y := int(math.Floor(cy - radius)); y <= int(math.Ceil(cy+radius)); y++ {
		for x := int(math.Floor(cx - radius)); x <= int(math.Ceil(cx+radius)); x++ {
			p := grid.Point{X: x, Y: y}
			if !g.bounds.InPoints(p) {
				continue
			}
			dx, dy := float64(x)-cx, float64(y)-cy
			if dx*dx+dy*dy > r2 {
				continue
			}
			if g.SetElevation(p, level) {
				applied++
			}
		}
	}
	return applied
}

// --- Raw array import/export ---

// Levels returns a copy of the point levels in row-major order
func (g *Grid) Levels() []Level {
	out := make([]Level, len(g.levels))
	copy(out, g.levels)
	return out
}

// Load replaces the heightfield with a raw level array and reclassifies water
// Rejects arrays of the wrong size, illegal levels, or adjacent opposite-sign points
func (g *Grid) Load(levels []Level) error {
	if len(levels) != len(g.levels) {
		return errors.Wrapf(ErrInvalidLevels, "expected %d levels, got %d", len(g.levels), len(levels))
	}
	b := g.bounds
	for i, l := range levels {
		if !l.Valid() {
			return errors.Wrapf(ErrInvalidLevels, "level %d at index %d", l, i)
		}
		if l == Flat {
			continue
		}
		p := grid.Point{X: i % (b.Cols + 1), Y: i / (b.Cols + 1)}
		for _, n := range p.Adjacent8() {
			if b.InPoints(n) && levels[b.PointIndex(n)] == -l {
				return errors.Wrapf(ErrInvalidLevels, "opposite levels at %v and %v", p, n)
			}
		}
	}
	copy(g.levels, levels)
	for y := 0; y < b.Rows; y++ {
		for x := 0; x < b.Cols; x++ {
			c := grid.Cell{X: x, Y: y}
			g.water[b.CellIndex(c)] = g.BaseHeight(c) < 0
		}
	}
	return nil
}
