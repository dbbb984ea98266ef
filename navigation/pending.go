package navigation

import (
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/status"
)

// Pending is a path request that resolves once; the caller discards it to supersede
type Pending struct {
	Start, Goal grid.Cell

	done  chan struct{}
	path  Path
	found bool
}

func newPending(start, goal grid.Cell) *Pending {
	return &Pending{Start: start, Goal: goal, done: make(chan struct{})}
}

func (p *Pending) resolve(path Path, found bool) {
	p.path = path
	p.found = found
	close(p.done)
}

// Done is closed when the request has resolved
func (p *Pending) Done() <-chan struct{} { return p.done }

// Ready reports whether the request has resolved
func (p *Pending) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the resolved path and whether one was found; nil, false while unresolved
func (p *Pending) Result() (Path, bool) {
	if !p.Ready() {
		return nil, false
	}
	return slices.Clone(p.path), p.found
}

// Wait blocks until the request resolves or ctx ends; a nil path means no route
func (p *Pending) Wait(ctx context.Context) (Path, error) {
	select {
	case <-p.done:
		return slices.Clone(p.path), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FindPath requests a route from start to goal
// Invalid requests resolve immediately with no path; others are solved in a goroutine over a snapshot of the current state
func (g *Grid) FindPath(ctx context.Context, start, goal grid.Cell, q Query) *Pending {
	p := newPending(start, goal)
	m := g.metrics
	m.Ints.Get(status.PathRequests).Add(1)

	if !g.bounds.InCells(start) || !g.bounds.InCells(goal) ||
		!q.Allows(g.Class(start)) || !q.Allows(g.Class(goal)) || start == goal {
		m.Ints.Get(status.PathNone).Add(1)
		p.resolve(nil, false)
		return p
	}

	snap := g.snapshot()
	key := resultKey(snap.version, start, goal, q)
	if hit, ok := g.cachedPath(key); ok {
		m.Ints.Get(status.PathCacheHits).Add(1)
		g.count(hit.found)
		p.resolve(hit.path, hit.found)
		return p
	}

	inFlight := m.Ints.Get(status.PathInFlight)
	inFlight.Add(1)
	go func() {
		defer inFlight.Add(-1)
		if err := g.sem.Acquire(ctx, 1); err != nil {
			g.log.WithError(err).WithFields(logrus.Fields{"start": start, "goal": goal}).Debug("path search abandoned")
			g.count(false)
			p.resolve(nil, false)
			return
		}
		defer g.sem.Release(1)

		began := time.Now()
		path, found := snap.search(ctx, start, goal, q)
		elapsed := time.Since(began)
		m.Floats.Get(status.PathLastMillis).Set(float64(elapsed.Microseconds()) / 1000)

		if ctx.Err() == nil {
			g.storePath(key, path, found)
		}
		g.count(found)
		g.log.WithFields(logrus.Fields{
			"start":   start,
			"goal":    goal,
			"found":   found,
			"length":  len(path),
			"version": snap.version,
			"elapsed": elapsed,
		}).Trace("path search")
		p.resolve(path, found)
	}()
	return p
}

func (g *Grid) count(found bool) {
	if found {
		g.metrics.Ints.Get(status.PathFound).Add(1)
	} else {
		g.metrics.Ints.Get(status.PathNone).Add(1)
	}
}
