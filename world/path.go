package world

import (
	"context"
	"strings"

	"github.com/lixenwraith/tileworld/config"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/navigation"
	"github.com/lixenwraith/tileworld/vmath"
)

// classNames maps configuration names to node classes
var classNames = map[string]navigation.NodeClass{
	"closed": navigation.ClassClosed,
	"open":   navigation.ClassOpen,
	"water":  ClassWater,
}

// ClassByName resolves a configured class name, case-insensitive
func ClassByName(name string) (navigation.NodeClass, bool) {
	c, ok := classNames[strings.ToLower(name)]
	return c, ok
}

// QueryFromConfig builds a traversal table from configured class costs; unknown names are skipped
func QueryFromConfig(pc config.PathfindingConfig) navigation.Query {
	q := navigation.Query{
		Costs:      make(map[navigation.NodeClass]float64, len(pc.Classes)),
		DoorAccess: pc.DoorAccess,
	}
	for name, cost := range pc.Classes {
		if c, ok := ClassByName(name); ok {
			q.Costs[c] = cost
		}
	}
	return q
}

// FindPath requests a route over the state as of this call
func (w *World) FindPath(ctx context.Context, start, goal grid.Cell, q navigation.Query) *navigation.Pending {
	return w.nav.FindPath(ctx, start, goal, q)
}

// IsLineWalkable reports whether a walker can move in a straight line between the centers of a and b
// Every cell transition along the segment must be a legal step under q
func (w *World) IsLineWalkable(a, b grid.Cell, q navigation.Query) bool {
	prev := a
	first := true
	return vmath.Traverse(float64(a.X)+0.5, float64(a.Y)+0.5, float64(b.X)+0.5, float64(b.Y)+0.5, func(x, y int) bool {
		cur := grid.Cell{X: x, Y: y}
		if first {
			first = false
			return true
		}
		if !w.nav.CanStep(prev, cur, q) {
			return false
		}
		prev = cur
		return true
	})
}

// SegmentClear adapts IsLineWalkable to the path simplifier
func (w *World) SegmentClear(q navigation.Query) navigation.SegmentClear {
	return func(a, b grid.Cell) bool { return w.IsLineWalkable(a, b, q) }
}

// Simplify removes waypoints that a straight walk makes unnecessary
func (w *World) Simplify(path navigation.Path, q navigation.Query) navigation.Path {
	return navigation.Simplify(path, w.SegmentClear(q))
}

// ValidatePath reports whether every node and step of path is still legal under q
func (w *World) ValidatePath(path navigation.Path, q navigation.Query) bool {
	if len(path) == 0 {
		return false
	}
	if !w.bounds.InCells(path[0]) || !q.Allows(w.nav.Class(path[0])) {
		return false
	}
	for i := 1; i < len(path); i++ {
		if !w.nav.CanStep(path[i-1], path[i], q) {
			return false
		}
	}
	return true
}
