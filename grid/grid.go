// Package grid holds the shared coordinate types of the world model
// Points address terrain vertices, cells address squares, slots address the edges between cells
package grid

import "fmt"

// Point is a vertex of the terrain heightfield, shared by up to four cells
type Point struct {
	X, Y int
}

// Cell is one grid square bounded by points (X,Y) and (X+1,Y+1)
type Cell struct {
	X, Y int
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }
func (c Cell) String() string  { return fmt.Sprintf("[%d,%d]", c.X, c.Y) }

// Add offsets a point
func (p Point) Add(dx, dy int) Point { return Point{p.X + dx, p.Y + dy} }

// Add offsets a cell
func (c Cell) Add(dx, dy int) Cell { return Cell{c.X + dx, c.Y + dy} }

// Corners returns the four points bounding the cell in NW, NE, SW, SE order
func (c Cell) Corners() [4]Point {
	return [4]Point{
		{c.X, c.Y},
		{c.X + 1, c.Y},
		{c.X, c.Y + 1},
		{c.X + 1, c.Y + 1},
	}
}

// TouchingCells returns the four cells sharing point p, which may include out-of-range cells
func (p Point) TouchingCells() [4]Cell {
	return [4]Cell{
		{p.X - 1, p.Y - 1},
		{p.X, p.Y - 1},
		{p.X - 1, p.Y},
		{p.X, p.Y},
	}
}

// Adjacent8 returns the orthogonal then diagonal neighbors of p
func (p Point) Adjacent8() [8]Point {
	return [8]Point{
		{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1},
		{p.X + 1, p.Y - 1}, {p.X + 1, p.Y + 1}, {p.X - 1, p.Y + 1}, {p.X - 1, p.Y - 1},
	}
}

// --- Sides ---

// Side is a compass side bitmask; several sides combine into a set
type Side uint8

const (
	North Side = 1 << iota
	East
	South
	West

	NoSides  Side = 0
	AllSides      = North | East | South | West
)

// CardinalSides in N, E, S, W order
var CardinalSides = [4]Side{North, East, South, West}

// Has reports whether every side in s is present in the set
func (set Side) Has(s Side) bool { return s != 0 && set&s == s }

// Any reports whether the set shares at least one side with s
func (set Side) Any(s Side) bool { return set&s != 0 }

// Opposite flips each side in the set
func (set Side) Opposite() Side {
	var out Side
	if set&North != 0 {
		out |= South
	}
	if set&South != 0 {
		out |= North
	}
	if set&East != 0 {
		out |= West
	}
	if set&West != 0 {
		out |= East
	}
	return out
}

// Offset returns the unit cell offset for a single side
func (s Side) Offset() (dx, dy int) {
	switch s {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	}
	return 0, 0
}

func (set Side) String() string {
	if set == 0 {
		return "-"
	}
	out := make([]byte, 0, 4)
	for i, s := range CardinalSides {
		if set&s != 0 {
			out = append(out, "NESW"[i])
		}
	}
	return string(out)
}

// SidesToward returns the sides of a cell facing a neighbor at offset (dx,dy)
// Diagonal offsets yield two sides
func SidesToward(dx, dy int) Side {
	var s Side
	switch {
	case dy < 0:
		s |= North
	case dy > 0:
		s |= South
	}
	switch {
	case dx > 0:
		s |= East
	case dx < 0:
		s |= West
	}
	return s
}

// --- Directions ---

// Direction vectors in N, NE, E, SE, S, SW, W, NW order
var DirVectors = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// --- Wall slots ---

// Orientation of an edge slot
type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "H"
	}
	return "V"
}

// Slot addresses one edge: a horizontal slot is the north edge of Cell, a vertical slot is its west edge
type Slot struct {
	Cell        Cell
	Orientation Orientation
}

func (s Slot) String() string { return fmt.Sprintf("%s%s", s.Orientation, s.Cell) }

// SlotAtSide returns the slot on the given side of cell c
func SlotAtSide(c Cell, side Side) Slot {
	switch side {
	case South:
		return Slot{Cell{c.X, c.Y + 1}, Horizontal}
	case West:
		return Slot{c, Vertical}
	case East:
		return Slot{Cell{c.X + 1, c.Y}, Vertical}
	default:
		return Slot{c, Horizontal}
	}
}

// Endpoints returns the two grid points the slot spans
// Horizontal: west then east; vertical: north then south
func (s Slot) Endpoints() (Point, Point) {
	a := Point{s.Cell.X, s.Cell.Y}
	if s.Orientation == Horizontal {
		return a, Point{a.X + 1, a.Y}
	}
	return a, Point{a.X, a.Y + 1}
}

// Sides returns the two cells separated by the slot and the side of each cell the slot lies on
// Horizontal: the cell above (south side) and Cell itself (north side)
// Vertical: the cell to the left (east side) and Cell itself (west side)
func (s Slot) Sides() (a Cell, aSide Side, b Cell, bSide Side) {
	if s.Orientation == Horizontal {
		return Cell{s.Cell.X, s.Cell.Y - 1}, South, s.Cell, North
	}
	return Cell{s.Cell.X - 1, s.Cell.Y}, East, s.Cell, West
}

// SlotsTouching returns the four slots meeting at point p: east, west, south, north of the point
func SlotsTouching(p Point) [4]Slot {
	return [4]Slot{
		{Cell{p.X, p.Y}, Horizontal},
		{Cell{p.X - 1, p.Y}, Horizontal},
		{Cell{p.X, p.Y}, Vertical},
		{Cell{p.X, p.Y - 1}, Vertical},
	}
}

// Bounds is a cols x rows cell grid with (cols+1) x (rows+1) points
type Bounds struct {
	Cols, Rows int
}

// InCells reports whether c lies inside the grid
func (b Bounds) InCells(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < b.Cols && c.Y < b.Rows
}

// InPoints reports whether p lies inside the vertex grid
func (b Bounds) InPoints(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= b.Cols && p.Y <= b.Rows
}

// InSlots reports whether s addresses an edge of the grid
func (b Bounds) InSlots(s Slot) bool {
	if s.Cell.X < 0 || s.Cell.Y < 0 {
		return false
	}
	if s.Orientation == Horizontal {
		return s.Cell.X < b.Cols && s.Cell.Y <= b.Rows
	}
	return s.Cell.X <= b.Cols && s.Cell.Y < b.Rows
}

// CellIndex returns the flat index of an in-range cell
func (b Bounds) CellIndex(c Cell) int { return c.Y*b.Cols + c.X }

// PointIndex returns the flat index of an in-range point
func (b Bounds) PointIndex(p Point) int { return p.Y*(b.Cols+1) + p.X }

// SlotIndex returns the flat index of an in-range slot
// Horizontal slots come first, (rows+1) x cols of them, then (cols+1) x rows vertical slots
func (b Bounds) SlotIndex(s Slot) int {
	if s.Orientation == Horizontal {
		return s.Cell.Y*b.Cols + s.Cell.X
	}
	return (b.Rows+1)*b.Cols + s.Cell.Y*(b.Cols+1) + s.Cell.X
}

// SlotCount returns the number of addressable slots
func (b Bounds) SlotCount() int {
	return (b.Rows+1)*b.Cols + (b.Cols+1)*b.Rows
}

// SlotAt is the inverse of SlotIndex
func (b Bounds) SlotAt(idx int) Slot {
	h := (b.Rows + 1) * b.Cols
	if idx < h {
		return Slot{Cell{idx % b.Cols, idx / b.Cols}, Horizontal}
	}
	idx -= h
	return Slot{Cell{idx % (b.Cols + 1), idx / (b.Cols + 1)}, Vertical}
}
