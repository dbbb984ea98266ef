package vmath

import (
	"math"
)

// GridTraverser is a zero-allocation Supercover DDA iterator over unit grid cells
// Cells touched only at a shared corner advance diagonally in one step
type GridTraverser struct {
	currX, currY     int
	targetX, targetY int
	stepX, stepY     int

	tMaxX, tMaxY     int64
	tDeltaX, tDeltaY int64

	started bool
	done    bool
}

// NewGridTraverser creates an iterator from (x1, y1) to (x2, y2) in Q32.32 fixed point
func NewGridTraverser(x1, y1, x2, y2 int64) GridTraverser {
	t := GridTraverser{
		currX: ToInt(x1), currY: ToInt(y1),
		targetX: ToInt(x2), targetY: ToInt(y2),
		stepX: 1, stepY: 1,
	}

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		t.stepX = -1
		dx = -dx
	}
	if dy < 0 {
		t.stepY = -1
		dy = -dy
	}

	t.tMaxX, t.tDeltaX = axisStart(x1, dx, t.stepX)
	t.tMaxY, t.tDeltaY = axisStart(y1, dy, t.stepY)
	return t
}

// NewGridTraverserFloat creates an iterator over world coordinates where cell (x, y) spans [x, x+1)
func NewGridTraverserFloat(x1, y1, x2, y2 float64) GridTraverser {
	return NewGridTraverser(FromFloat(x1), FromFloat(y1), FromFloat(x2), FromFloat(y2))
}

// axisStart returns the parametric distance to the first boundary and between boundaries on one axis
func axisStart(origin, delta int64, step int) (tMax, tDelta int64) {
	if delta == 0 {
		return math.MaxInt64, 0
	}
	tDelta = Div(Scale, delta)
	if step > 0 {
		return Mul(Scale-(origin&Mask), tDelta), tDelta
	}
	return Mul(origin&Mask, tDelta), tDelta
}

// Next advances to the next cell; returns true while a cell is available via Pos
func (t *GridTraverser) Next() bool {
	if t.done {
		return false
	}
	if !t.started {
		t.started = true
		return true
	}
	if t.currX == t.targetX && t.currY == t.targetY {
		t.done = true
		return false
	}

	switch {
	case t.tMaxX < t.tMaxY:
		if t.currX != t.targetX {
			t.advanceX()
		} else {
			t.advanceY()
		}
	case t.tMaxX > t.tMaxY:
		if t.currY != t.targetY {
			t.advanceY()
		} else {
			t.advanceX()
		}
	default:
		if t.currX != t.targetX {
			t.advanceX()
		}
		if t.currY != t.targetY {
			t.advanceY()
		}
	}
	return true
}

func (t *GridTraverser) advanceX() {
	t.currX += t.stepX
	t.tMaxX += t.tDeltaX
}

func (t *GridTraverser) advanceY() {
	t.currY += t.stepY
	t.tMaxY += t.tDeltaY
}

// Pos returns the current grid coordinates
func (t *GridTraverser) Pos() (int, int) {
	return t.currX, t.currY
}

// Traverse visits every cell the segment passes through in order until callback returns false
// Returns false when the walk was stopped early
func Traverse(x1, y1, x2, y2 float64, callback func(x, y int) bool) bool {
	t := NewGridTraverserFloat(x1, y1, x2, y2)
	for t.Next() {
		if !callback(t.Pos()) {
			return false
		}
	}
	return true
}
