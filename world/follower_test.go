package world

import (
	"context"
	"testing"
	"time"

	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
)

// settle blocks until the follower's in-flight request has resolved
func settle(t *testing.T, f *Follower) {
	t.Helper()
	if f.pending == nil {
		return
	}
	select {
	case <-f.pending.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for path")
	}
}

func TestFollowerWalksToGoal(t *testing.T) {
	events := event.NewEventQueue()
	w := newWorld(t, 5, 1, WithEvents(events))
	f := w.NewFollower(walkers())
	ctx := context.Background()

	pos := cell(0, 0)
	f.MoveTo(ctx, pos, cell(4, 0))
	if f.State() != FollowWaiting {
		t.Fatalf("Expected waiting, got %v", f.State())
	}
	settle(t, f)

	for steps := 0; steps < 10; steps++ {
		next, ok := f.Update(ctx, pos)
		if !ok {
			break
		}
		pos = next
	}
	if pos != cell(4, 0) || f.State() != FollowArrived {
		t.Errorf("Expected arrival at [4,0], got %v in state %v", pos, f.State())
	}
	if !w.Navigation().OnMarkedPath(cell(2, 0)) {
		t.Error("Expected accepted path to be marked")
	}

	resolved := 0
	for _, ev := range events.Consume() {
		if ev.Type == event.EventPathResolved {
			resolved++
		}
	}
	if resolved != 1 {
		t.Errorf("Expected 1 path event, got %d", resolved)
	}
}

func TestFollowerRevalidatesAfterEdit(t *testing.T) {
	w := newWorld(t, 5, 1)
	f := w.NewFollower(walkers())
	ctx := context.Background()

	f.MoveTo(ctx, cell(0, 0), cell(4, 0))
	settle(t, f)
	next, ok := f.Update(ctx, cell(0, 0))
	if !ok || next != cell(1, 0) {
		t.Fatalf("Expected first step to [1,0], got %v %v", next, ok)
	}

	// Unrelated-looking edit ahead of the walker breaks the corridor
	w.PlaceWall(grid.Slot{Cell: cell(3, 0), Orientation: grid.Vertical}, "")
	if _, ok := f.Update(ctx, cell(1, 0)); ok {
		t.Fatal("Expected held path to be dropped")
	}
	if f.Requests() != 2 || f.State() != FollowWaiting {
		t.Fatalf("Expected a re-request, got %d requests in state %v", f.Requests(), f.State())
	}
	settle(t, f)
	f.Update(ctx, cell(1, 0))
	if f.State() != FollowUnreachable {
		t.Errorf("Expected unreachable, got %v", f.State())
	}
}

func TestFollowerDropsSupersededRequest(t *testing.T) {
	w := newWorld(t, 6, 6)
	f := w.NewFollower(walkers())
	ctx := context.Background()

	f.MoveTo(ctx, cell(0, 0), cell(5, 5))
	f.MoveTo(ctx, cell(0, 0), cell(5, 0))
	settle(t, f)
	f.Update(ctx, cell(0, 0))

	path := f.Path()
	if len(path) == 0 || path[len(path)-1] != cell(5, 0) {
		t.Errorf("Expected path to the latest goal, got %v", path)
	}
	if wp := f.Waypoints(cell(0, 0)); len(wp) != 2 {
		t.Errorf("Expected straight waypoints, got %v", wp)
	}
}
