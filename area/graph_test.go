package area

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/tileworld/grid"
)

func door(x, y int) Door {
	return Door{Slot: grid.Slot{Cell: grid.Cell{X: x, Y: y}, Orientation: grid.Vertical}, IsDoor: true}
}

func newPair(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	if _, err := g.Add("A", []grid.Cell{{X: 0, Y: 0}, {X: 0, Y: 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Add("B", []grid.Cell{{X: 1, Y: 0}, {X: 1, Y: 1}}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestConnectRules(t *testing.T) {
	g := newPair(t)

	if g.Connect("A", "B", Door{Slot: door(1, 0).Slot}) {
		t.Error("Expected plain wall to be ignored")
	}
	if g.Connect("A", "A", door(1, 0)) {
		t.Error("Expected self-loop to be ignored")
	}
	if !g.Connect("A", "B", door(1, 0)) {
		t.Fatal("Expected door to connect")
	}
	if g.Connect("B", "A", door(1, 0)) {
		t.Error("Expected duplicate door to be ignored")
	}
	if got := g.Doors("B", "A"); len(got) != 1 {
		t.Errorf("Expected 1 door back from B, got %v", got)
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
}

func TestConnectDisconnectRoundTrip(t *testing.T) {
	g := newPair(t)
	g.Connect("A", "B", door(1, 0))
	before := snapshot(g)

	d := door(1, 1)
	g.Connect("A", "B", d)
	g.Disconnect("A", "B", &d)

	if after := snapshot(g); !reflect.DeepEqual(before, after) {
		t.Errorf("Round trip changed adjacency:\nbefore %s\nafter %s", spew.Sdump(before), spew.Sdump(after))
	}

	// Last door removal prunes the entry entirely
	first := door(1, 0)
	g.Disconnect("B", "A", &first)
	if g.Connected("A", "B") || g.Connected("B", "A") {
		t.Error("Expected no connection after last door removed")
	}
	a, _ := g.Get("A")
	if len(a.Neighbors()) != 0 {
		t.Errorf("Expected empty neighbor map, got %v", a.Neighbors())
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
}

func TestDisconnectWholeLink(t *testing.T) {
	g := newPair(t)
	g.Connect("A", "B", door(1, 0))
	g.Connect("A", "B", door(1, 1))
	g.Disconnect("B", "A", nil)
	if g.Connected("A", "B") || g.Connected("B", "A") {
		t.Error("Expected link removed in both directions")
	}
}

func TestRemoveAreaDropsLinks(t *testing.T) {
	g := newPair(t)
	g.Connect("A", "B", door(1, 0))
	g.Remove("B")
	if g.Connected("A", "B") {
		t.Error("Expected link to removed area to be gone")
	}
	if _, ok := g.AreaAt(grid.Cell{X: 1, Y: 0}); ok {
		t.Error("Expected removed area to release its cells")
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
}

func TestRandomPosition(t *testing.T) {
	g := newPair(t)
	rng := rand.New(rand.NewSource(1))
	counts := map[grid.Cell]int{}
	for i := 0; i < 200; i++ {
		c, err := g.RandomPositionIn("A", rng)
		if err != nil {
			t.Fatal(err)
		}
		counts[c]++
	}
	if len(counts) != 2 {
		t.Errorf("Expected both member cells to be drawn, got %v", counts)
	}

	g.Add("empty", nil)
	if _, err := g.RandomPositionIn("empty", rng); !errors.Is(err, ErrEmptyArea) {
		t.Errorf("Expected ErrEmptyArea, got %v", err)
	}
	if _, err := g.RandomPositionIn("nope", rng); !errors.Is(err, ErrUnknownArea) {
		t.Errorf("Expected ErrUnknownArea, got %v", err)
	}
}

func TestAddMovesCellOwnership(t *testing.T) {
	g := newPair(t)
	if _, err := g.Add("A", nil); !errors.Is(err, ErrDuplicateArea) {
		t.Errorf("Expected ErrDuplicateArea, got %v", err)
	}
	g.Add("C", []grid.Cell{{X: 0, Y: 0}})
	if id, _ := g.AreaAt(grid.Cell{X: 0, Y: 0}); id != "C" {
		t.Errorf("Expected cell owned by C, got %s", id)
	}
	a, _ := g.Get("A")
	if a.Len() != 1 {
		t.Errorf("Expected A to shrink to 1 cell, got %d", a.Len())
	}
}

func TestPartition(t *testing.T) {
	// A vertical wall between columns 1 and 2 splits a 4x2 grid in two
	regions := Partition(4, 2, func(a, b grid.Cell) bool {
		return !(min(a.X, b.X) == 1 && max(a.X, b.X) == 2)
	})
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(regions))
	}
	if len(regions[0]) != 4 || len(regions[1]) != 4 {
		t.Errorf("Expected 4 cells each, got %d and %d", len(regions[0]), len(regions[1]))
	}
	if regions[0][0] != (grid.Cell{X: 0, Y: 0}) || regions[1][0] != (grid.Cell{X: 2, Y: 0}) {
		t.Errorf("Unexpected region order: %v", regions)
	}
}

func snapshot(g *Graph) map[string]map[string][]grid.Slot {
	out := make(map[string]map[string][]grid.Slot)
	for _, id := range g.Areas() {
		a, _ := g.Get(id)
		m := make(map[string][]grid.Slot)
		for _, n := range a.Neighbors() {
			m[n] = a.Doors(n)
		}
		out[id] = m
	}
	return out
}

func TestAddDropsLinksOfMovedDoorCells(t *testing.T) {
	g := newPair(t)
	g.Connect("A", "B", door(1, 0))
	g.Connect("A", "B", door(1, 1))

	// [0,0] borders door(1,0); the A-B link keeps only door(1,1)
	g.Add("C", []grid.Cell{{X: 0, Y: 0}})
	if got := g.Doors("A", "B"); len(got) != 1 || got[0] != door(1, 1).Slot {
		t.Errorf("Expected only the lower door between A and B, got %v", got)
	}
	if g.Connected("C", "B") {
		t.Error("Expected Add to leave linking the new owner to the caller")
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}

	g.Add("D", []grid.Cell{{X: 0, Y: 1}})
	if g.Connected("A", "B") || g.Connected("B", "A") {
		t.Error("Expected the link pruned once no door borders A")
	}
}

func TestValidateRejectsMisplacedDoor(t *testing.T) {
	g := newPair(t)
	// door(0,0) lies on the west edge, not between A and B
	g.Connect("A", "B", door(0, 0))
	if err := g.Validate(); err == nil {
		t.Error("Expected a door that does not separate the areas to fail validation")
	}
}
