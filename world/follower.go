package world

import (
	"context"

	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/navigation"
	"github.com/lixenwraith/tileworld/parameter"
)

// FollowState is the lifecycle of a Follower
type FollowState uint8

const (
	FollowIdle FollowState = iota
	FollowWaiting
	FollowMoving
	FollowArrived
	FollowUnreachable
)

var followStateNames = [...]string{"idle", "waiting", "moving", "arrived", "unreachable"}

func (s FollowState) String() string {
	if int(s) < len(followStateNames) {
		return followStateNames[s]
	}
	return "unknown"
}

// Follower walks one entity along a requested path, re-validating it after world edits
// Driven from the edit goroutine by Update; a superseded request's result is dropped
type Follower struct {
	world *World
	query navigation.Query

	goal    grid.Cell
	path    navigation.Path
	next    int
	pending *navigation.Pending
	state   FollowState

	checkedVersion uint64
	sinceCheck     int
	requests       int
}

// NewFollower creates an idle follower using q for every request
func (w *World) NewFollower(q navigation.Query) *Follower {
	return &Follower{world: w, query: q}
}

// State returns the current lifecycle state
func (f *Follower) State() FollowState { return f.state }

// Goal returns the current destination
func (f *Follower) Goal() grid.Cell { return f.goal }

// Path returns the held path, nil while none is held
func (f *Follower) Path() navigation.Path { return f.path }

// Requests returns the number of searches issued, re-requests included
func (f *Follower) Requests() int { return f.requests }

// Waypoints returns the remaining route from pos reduced by line of sight
func (f *Follower) Waypoints(pos grid.Cell) navigation.Path {
	if f.path == nil || f.next >= len(f.path) {
		return nil
	}
	rest := append(navigation.Path{pos}, f.path[f.next:]...)
	return f.world.Simplify(rest, f.query)
}

// MoveTo requests a new route from pos to goal, superseding any in-flight request
func (f *Follower) MoveTo(ctx context.Context, pos, goal grid.Cell) {
	f.goal = goal
	f.path = nil
	f.next = 0
	f.request(ctx, pos)
}

func (f *Follower) request(ctx context.Context, pos grid.Cell) {
	f.requests++
	f.pending = f.world.FindPath(ctx, pos, f.goal, f.query)
	f.state = FollowWaiting
}

// Stop drops the held path and any in-flight request
func (f *Follower) Stop() {
	f.path = nil
	f.pending = nil
	f.state = FollowIdle
}

// Update advances the follower for an entity standing on pos and returns the next cell to walk to
// ok is false while waiting, after arrival, or when the goal is unreachable
func (f *Follower) Update(ctx context.Context, pos grid.Cell) (next grid.Cell, ok bool) {
	if f.pending != nil {
		if !f.pending.Ready() {
			return grid.Cell{}, false
		}
		f.accept(pos)
	}
	if f.state != FollowMoving {
		return grid.Cell{}, false
	}

	for f.next < len(f.path) && f.path[f.next] == pos {
		f.next++
	}
	if f.next >= len(f.path) {
		f.path = nil
		f.state = FollowArrived
		return grid.Cell{}, false
	}

	f.sinceCheck++
	if v := f.world.Version(); v != f.checkedVersion || f.sinceCheck >= parameter.FollowRevalidateEvery {
		f.checkedVersion = v
		f.sinceCheck = 0
		rest := append(navigation.Path{pos}, f.path[f.next:]...)
		if !f.world.ValidatePath(rest, f.query) {
			f.world.log.WithField("goal", f.goal).Debug("held path invalidated, re-requesting")
			f.path = nil
			f.request(ctx, pos)
			return grid.Cell{}, false
		}
	}
	return f.path[f.next], true
}

func (f *Follower) accept(pos grid.Cell) {
	path, found := f.pending.Result()
	p := f.pending
	f.pending = nil
	f.world.publish(event.EventPathResolved, &event.PathResolvedPayload{
		Start: p.Start, Goal: p.Goal, Found: found, Length: len(path),
	})
	if !found {
		f.state = FollowUnreachable
		if pos == f.goal {
			f.state = FollowArrived
		}
		return
	}
	f.path = path
	f.next = 0
	f.state = FollowMoving
	f.checkedVersion = f.world.Version()
	f.sinceCheck = 0
	f.world.nav.MarkPath(path)
}
