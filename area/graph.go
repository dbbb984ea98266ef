// Package area partitions cells into named regions connected by doors
package area

import (
	"math/rand"
	"slices"
	"sort"

	"github.com/pkg/errors"

	"github.com/lixenwraith/tileworld/grid"
)

var (
	ErrEmptyArea     = errors.New("area: no cells")
	ErrUnknownArea   = errors.New("area: unknown id")
	ErrDuplicateArea = errors.New("area: duplicate id")
)

// Door is a wall slot offered as a connection; only slots with IsDoor connect areas
type Door struct {
	Slot   grid.Slot
	IsDoor bool
}

// Area is one named region and the doors linking it to its neighbors
type Area struct {
	ID          string
	Highlighted bool

	cells       []grid.Cell
	connections map[string][]grid.Slot
}

// Cells returns the member cells
func (a *Area) Cells() []grid.Cell { return slices.Clone(a.cells) }

// Len returns the number of member cells
func (a *Area) Len() int { return len(a.cells) }

// Neighbors returns the ids of connected areas in sorted order
func (a *Area) Neighbors() []string {
	ids := make([]string, 0, len(a.connections))
	for id := range a.connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Doors returns the door slots connecting to neighbor, nil when not connected
func (a *Area) Doors(neighbor string) []grid.Slot {
	return slices.Clone(a.connections[neighbor])
}

// Graph holds every area and the symmetric door adjacency between them
type Graph struct {
	areas  map[string]*Area
	order  []string
	byCell map[grid.Cell]string
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		areas:  make(map[string]*Area),
		byCell: make(map[grid.Cell]string),
	}
}

// Add registers an area over cells; a cell already owned by another area moves to the new one
// Links of the previous owners through doors that no longer border them are dropped
func (g *Graph) Add(id string, cells []grid.Cell) (*Area, error) {
	if _, ok := g.areas[id]; ok {
		return nil, errors.Wrap(ErrDuplicateArea, id)
	}
	a := &Area{
		ID:          id,
		connections: make(map[string][]grid.Slot),
	}
	g.areas[id] = a
	g.order = append(g.order, id)

	losers := make(map[string]struct{})
	for _, c := range cells {
		if prev, ok := g.byCell[c]; ok {
			if prev == id {
				continue
			}
			owner := g.areas[prev]
			owner.cells = slices.DeleteFunc(owner.cells, func(x grid.Cell) bool { return x == c })
			losers[prev] = struct{}{}
		}
		g.byCell[c] = id
		a.cells = append(a.cells, c)
	}
	for prev := range losers {
		g.pruneStale(prev)
	}
	return a, nil
}

// pruneStale drops every link of area id whose door no longer separates id from that neighbor
func (g *Graph) pruneStale(id string) {
	a := g.areas[id]
	for n, doors := range a.connections {
		for _, d := range slices.Clone(doors) {
			if g.separates(d, id, n) {
				continue
			}
			removeDoor(a, n, d)
			if other, ok := g.areas[n]; ok {
				removeDoor(other, id, d)
			}
		}
	}
}

// separates reports whether slot s lies between a cell of area a and a cell of area b
func (g *Graph) separates(s grid.Slot, a, b string) bool {
	ca, _, cb, _ := s.Sides()
	oa, ob := g.byCell[ca], g.byCell[cb]
	return oa == a && ob == b || oa == b && ob == a
}

// Get returns the area with id
func (g *Graph) Get(id string) (*Area, bool) {
	a, ok := g.areas[id]
	return a, ok
}

// AreaAt returns the id of the area owning cell c
func (g *Graph) AreaAt(c grid.Cell) (string, bool) {
	id, ok := g.byCell[c]
	return id, ok
}

// Areas returns area ids in insertion order
func (g *Graph) Areas() []string { return slices.Clone(g.order) }

// Len returns the number of areas
func (g *Graph) Len() int { return len(g.order) }

// Remove deletes an area, its cell ownership and every connection to it
func (g *Graph) Remove(id string) {
	a, ok := g.areas[id]
	if !ok {
		return
	}
	for n := range a.connections {
		g.Disconnect(id, n, nil)
	}
	for _, c := range a.cells {
		if g.byCell[c] == id {
			delete(g.byCell, c)
		}
	}
	delete(g.areas, id)
	g.order = slices.DeleteFunc(g.order, func(x string) bool { return x == id })
}

// Reset drops every area
func (g *Graph) Reset() {
	clear(g.areas)
	clear(g.byCell)
	g.order = g.order[:0]
}

// Connect records door as a link between a and b in both directions
// Non-doors, self-loops, unknown areas and already-listed doors are ignored; returns true when a link was added
func (g *Graph) Connect(a, b string, door Door) bool {
	if !door.IsDoor || a == b {
		return false
	}
	aa, ok1 := g.areas[a]
	bb, ok2 := g.areas[b]
	if !ok1 || !ok2 {
		return false
	}
	if slices.Contains(aa.connections[b], door.Slot) {
		return false
	}
	aa.connections[b] = append(aa.connections[b], door.Slot)
	bb.connections[a] = append(bb.connections[a], door.Slot)
	return true
}

// Disconnect removes door from the link between a and b, pruning the link when it empties
// A nil door removes the whole link regardless of door count
func (g *Graph) Disconnect(a, b string, door *Door) {
	aa, ok1 := g.areas[a]
	bb, ok2 := g.areas[b]
	if !ok1 || !ok2 {
		return
	}
	if door == nil {
		delete(aa.connections, b)
		delete(bb.connections, a)
		return
	}
	removeDoor(aa, b, door.Slot)
	removeDoor(bb, a, door.Slot)
}

func removeDoor(a *Area, neighbor string, s grid.Slot) {
	doors, ok := a.connections[neighbor]
	if !ok {
		return
	}
	doors = slices.DeleteFunc(doors, func(x grid.Slot) bool { return x == s })
	if len(doors) == 0 {
		delete(a.connections, neighbor)
		return
	}
	a.connections[neighbor] = doors
}

// Connected reports whether a and b share at least one door
func (g *Graph) Connected(a, b string) bool {
	aa, ok := g.areas[a]
	if !ok {
		return false
	}
	_, ok = aa.connections[b]
	return ok
}

// Doors returns the door slots between a and b
func (g *Graph) Doors(a, b string) []grid.Slot {
	aa, ok := g.areas[a]
	if !ok {
		return nil
	}
	return aa.Doors(b)
}

// RandomPositionIn returns a uniformly chosen member cell of area id
func (g *Graph) RandomPositionIn(id string, rng *rand.Rand) (grid.Cell, error) {
	a, ok := g.areas[id]
	if !ok {
		return grid.Cell{}, errors.Wrap(ErrUnknownArea, id)
	}
	if len(a.cells) == 0 {
		return grid.Cell{}, errors.Wrap(ErrEmptyArea, id)
	}
	return a.cells[rng.Intn(len(a.cells))], nil
}

// Validate checks the adjacency invariants: no self links, no empty links, symmetric door lists,
// every listed door between a cell of each linked area
func (g *Graph) Validate() error {
	for _, id := range g.order {
		a := g.areas[id]
		for n, doors := range a.connections {
			if n == id {
				return errors.Errorf("area %s linked to itself", id)
			}
			if len(doors) == 0 {
				return errors.Errorf("area %s has empty link to %s", id, n)
			}
			other, ok := g.areas[n]
			if !ok {
				return errors.Errorf("area %s linked to unknown %s", id, n)
			}
			back := other.connections[id]
			for _, d := range doors {
				if !g.separates(d, id, n) {
					return errors.Errorf("door %v listed %s->%s does not separate them", d, id, n)
				}
				if !slices.Contains(back, d) {
					return errors.Errorf("door %v listed %s->%s but not back", d, id, n)
				}
			}
			if len(back) != len(doors) {
				return errors.Errorf("door count %s->%s is %d, back is %d", id, n, len(doors), len(back))
			}
		}
	}
	return nil
}
