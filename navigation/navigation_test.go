package navigation

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/status"
)

const classWater NodeClass = ClassUser

var walkable = Query{Costs: map[NodeClass]float64{ClassOpen: 1}}

func cell(x, y int) grid.Cell { return grid.Cell{X: x, Y: y} }

func wait(t *testing.T, p *Pending) Path {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	path, err := p.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return path
}

// wallBetween blocks entry across the edge shared by cardinal neighbors a and b
func wallBetween(g *Grid, a, b grid.Cell, door bool) {
	sa := grid.SidesToward(b.X-a.X, b.Y-a.Y)
	sb := sa.Opposite()
	if door {
		_, ga := g.Blocks(a)
		_, gb := g.Blocks(b)
		g.SetGate(a, ga|sa)
		g.SetGate(b, gb|sb)
		return
	}
	ba, _ := g.Blocks(a)
	bb, _ := g.Blocks(b)
	g.SetDirectionalBlock(a, ba|sa)
	g.SetDirectionalBlock(b, bb|sb)
}

func TestInvalidRequestsResolveImmediately(t *testing.T) {
	g := NewGrid(4, 4)
	g.SetTraversalClass(cell(3, 3), ClassClosed)

	tests := []struct {
		name        string
		start, goal grid.Cell
	}{
		{"start out of range", cell(-1, 0), cell(1, 1)},
		{"goal out of range", cell(0, 0), cell(4, 0)},
		{"goal class not allowed", cell(0, 0), cell(3, 3)},
		{"same cell", cell(1, 1), cell(1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := g.FindPath(context.Background(), tt.start, tt.goal, walkable)
			if !p.Ready() {
				t.Fatal("Expected immediate resolution")
			}
			if path, found := p.Result(); found || path != nil {
				t.Errorf("Expected no path, got %v", path)
			}
		})
	}
}

func TestStraightPath(t *testing.T) {
	g := NewGrid(5, 1)
	path := wait(t, g.FindPath(context.Background(), cell(0, 0), cell(4, 0), walkable))
	want := Path{cell(0, 0), cell(1, 0), cell(2, 0), cell(3, 0), cell(4, 0)}
	if !slices.Equal(path, want) {
		t.Errorf("Expected %v, got %v", want, path)
	}
}

func TestWallAndDoorGate(t *testing.T) {
	g := NewGrid(2, 1)
	wallBetween(g, cell(0, 0), cell(1, 0), false)
	if path := wait(t, g.FindPath(context.Background(), cell(0, 0), cell(1, 0), walkable)); path != nil {
		t.Fatalf("Expected no path across wall, got %v", path)
	}

	g.SetDirectionalBlock(cell(0, 0), grid.NoSides)
	g.SetDirectionalBlock(cell(1, 0), grid.NoSides)
	wallBetween(g, cell(0, 0), cell(1, 0), true)
	if path := wait(t, g.FindPath(context.Background(), cell(0, 0), cell(1, 0), walkable)); path != nil {
		t.Errorf("Expected gate to block without door access, got %v", path)
	}

	withDoors := Query{Costs: walkable.Costs, DoorAccess: true}
	path := wait(t, g.FindPath(context.Background(), cell(0, 0), cell(1, 0), withDoors))
	if !slices.Equal(path, Path{cell(0, 0), cell(1, 0)}) {
		t.Errorf("Expected path through door, got %v", path)
	}
}

func TestNoCornerCutting(t *testing.T) {
	g := NewGrid(2, 2)
	g.SetTraversalClass(cell(1, 0), ClassClosed)
	path := wait(t, g.FindPath(context.Background(), cell(0, 0), cell(1, 1), walkable))
	want := Path{cell(0, 0), cell(0, 1), cell(1, 1)}
	if !slices.Equal(path, want) {
		t.Errorf("Expected %v, got %v", want, path)
	}
}

func TestDiagonalRespectsDirectionalBlocks(t *testing.T) {
	g := NewGrid(2, 2)
	wallBetween(g, cell(0, 0), cell(0, 1), false)
	if g.CanStep(cell(0, 0), cell(1, 1), walkable) {
		t.Error("Expected diagonal past a wall end to be rejected")
	}
	path := wait(t, g.FindPath(context.Background(), cell(0, 0), cell(1, 1), walkable))
	want := Path{cell(0, 0), cell(1, 0), cell(1, 1)}
	if !slices.Equal(path, want) {
		t.Errorf("Expected %v, got %v", want, path)
	}
}

func TestCostsSteerAroundExpensiveNodes(t *testing.T) {
	g := NewGrid(3, 3)
	g.SetTraversalClass(cell(1, 1), classWater)
	q := Query{Costs: map[NodeClass]float64{ClassOpen: 1, classWater: 10}}

	path := wait(t, g.FindPath(context.Background(), cell(0, 1), cell(2, 1), q))
	if len(path) != 3 || path[1] == cell(1, 1) {
		t.Errorf("Expected detour around water, got %v", path)
	}

	// Water not acceptable at all: still reachable around it
	path = wait(t, g.FindPath(context.Background(), cell(0, 1), cell(2, 1), walkable))
	if slices.Contains(path, cell(1, 1)) || len(path) == 0 {
		t.Errorf("Expected route avoiding water, got %v", path)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	g := NewGrid(3, 1)
	p := g.FindPath(context.Background(), cell(0, 0), cell(2, 0), walkable)
	g.SetTraversalClass(cell(1, 0), ClassClosed)

	if path := wait(t, p); len(path) != 3 {
		t.Errorf("Expected in-flight search to use request-time state, got %v", path)
	}
	if path := wait(t, g.FindPath(context.Background(), cell(0, 0), cell(2, 0), walkable)); path != nil {
		t.Errorf("Expected later request to see the closed node, got %v", path)
	}
}

func TestReachabilitySymmetric(t *testing.T) {
	g := NewGrid(5, 3)
	// Single corridor along row 1 with a gap at column 4
	for x := 0; x < 5; x++ {
		g.SetTraversalClass(cell(x, 0), ClassClosed)
		if x != 4 {
			g.SetTraversalClass(cell(x, 2), ClassClosed)
		}
	}
	forward := wait(t, g.FindPath(context.Background(), cell(0, 1), cell(4, 2), walkable))
	backward := wait(t, g.FindPath(context.Background(), cell(4, 2), cell(0, 1), walkable))
	if forward == nil || backward == nil {
		t.Fatalf("Expected both directions reachable, got %v and %v", forward, backward)
	}
	slices.Reverse(backward)
	if !slices.Equal(forward, backward) {
		t.Errorf("Expected same node set:\n%s", spew.Sdump(forward, backward))
	}
}

func TestMetricsCounted(t *testing.T) {
	reg := status.NewRegistry()
	g := NewGrid(3, 1, WithMetrics(reg), WithMaxConcurrent(1))
	wait(t, g.FindPath(context.Background(), cell(0, 0), cell(2, 0), walkable))
	wait(t, g.FindPath(context.Background(), cell(0, 0), cell(0, 0), walkable))

	if got := reg.Ints.Get(status.PathRequests).Load(); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
	if got := reg.Ints.Get(status.PathFound).Load(); got != 1 {
		t.Errorf("Expected 1 found, got %d", got)
	}
	if got := reg.Ints.Get(status.PathNone).Load(); got != 1 {
		t.Errorf("Expected 1 none, got %d", got)
	}
}

func TestWaitHonorsContext(t *testing.T) {
	p := newPending(cell(0, 0), cell(1, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); err == nil {
		t.Error("Expected context error for unresolved request")
	}
	if path, found := p.Result(); path != nil || found {
		t.Error("Expected empty result while unresolved")
	}
}

func TestMarkPath(t *testing.T) {
	g := NewGrid(3, 3)
	g.MarkPath(Path{cell(0, 0), cell(1, 1)})
	if g.DebugClass(cell(1, 1)) != ClassPath || g.Class(cell(1, 1)) != ClassOpen {
		t.Error("Expected marking to be reported by DebugClass only")
	}
	g.MarkPath(nil)
	if g.OnMarkedPath(cell(0, 0)) {
		t.Error("Expected marks cleared")
	}
	if g.IsClosed(cell(9, 9)) {
		t.Error("Expected out-of-range cell not closed")
	}
}

func TestVersionBumpsOnlyOnChange(t *testing.T) {
	g := NewGrid(2, 2)
	v := g.Version()
	g.SetTraversalClass(cell(0, 0), ClassOpen)
	if g.Version() != v {
		t.Error("Expected no version change for identical class")
	}
	g.SetGate(cell(0, 0), grid.East)
	if g.Version() == v {
		t.Error("Expected version change for new gate")
	}
}

func TestSimplify(t *testing.T) {
	always := func(a, b grid.Cell) bool { return true }
	never := func(a, b grid.Cell) bool { return false }

	short := Path{cell(0, 0), cell(1, 1)}
	if got := Simplify(short, never); !slices.Equal(got, short) {
		t.Errorf("Expected short path unchanged, got %v", got)
	}

	long := Path{cell(0, 0), cell(1, 0), cell(2, 0), cell(3, 1), cell(4, 2)}
	if got := Simplify(long, always); !slices.Equal(got, Path{cell(0, 0), cell(4, 2)}) {
		t.Errorf("Expected [start end], got %v", got)
	}
	if got := Simplify(long, never); !slices.Equal(got, long) {
		t.Errorf("Expected fully obstructed path unchanged, got %v", got)
	}

	// Only the corner at (2,0) is needed
	corner := func(a, b grid.Cell) bool { return a.Y == b.Y || a == cell(2, 0) }
	if got := Simplify(long, corner); !slices.Equal(got, Path{cell(0, 0), cell(2, 0), cell(4, 2)}) {
		t.Errorf("Expected anchor at corner, got %v", got)
	}
}
