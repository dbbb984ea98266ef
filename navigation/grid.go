// Package navigation is the weighted 8-directional path search over the cell grid
// Mutations are applied to a live node array; searches run over an immutable snapshot taken at request time
package navigation

import (
	"strconv"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/status"
)

// NodeClass is the traversal class of a node; values from ClassUser up are caller-defined
type NodeClass uint8

const (
	ClassClosed NodeClass = 0
	ClassOpen   NodeClass = 1
	// ClassPath is reported by DebugClass for cells on the last marked route, never stored
	ClassPath NodeClass = 2
	ClassUser NodeClass = 3
)

func (c NodeClass) String() string {
	switch c {
	case ClassClosed:
		return "closed"
	case ClassOpen:
		return "open"
	case ClassPath:
		return "path"
	}
	return "class-" + strconv.Itoa(int(c))
}

// Path is an ordered cell sequence from start to goal inclusive
type Path []grid.Cell

// node is the per-cell search state
// blocked: sides entry is always forbidden from (walls)
// gated: sides entry is forbidden from unless the query has door access
type node struct {
	class   NodeClass
	blocked grid.Side
	gated   grid.Side
}

const (
	defaultMaxConcurrent = 4
	cacheCounters        = 1 << 14
	cacheMaxCost         = 1 << 20
)

// Grid holds the node classes and directional blocks of a cols x rows cell grid
type Grid struct {
	bounds grid.Bounds
	nodes  []node
	marked []bool

	// Bumped on every effective mutation; keys snapshots and cached results
	version uint64
	snap    *snapshot

	sem     *semaphore.Weighted
	cache   *ristretto.Cache[string, *cachedResult]
	metrics *status.Registry
	log     *logrus.Entry

	maxConcurrent int64
}

// GridOption configures a Grid
type GridOption func(*Grid)

// WithMaxConcurrent bounds the number of searches running at once
func WithMaxConcurrent(n int) GridOption {
	return func(g *Grid) {
		if n > 0 {
			g.maxConcurrent = int64(n)
		}
	}
}

// WithMetrics attaches a metrics registry
func WithMetrics(r *status.Registry) GridOption {
	return func(g *Grid) { g.metrics = r }
}

// WithLogger attaches a logger
func WithLogger(e *logrus.Entry) GridOption {
	return func(g *Grid) { g.log = e }
}

// NewGrid creates a grid with every node Open and no blocks
func NewGrid(cols, rows int, opts ...GridOption) *Grid {
	b := grid.Bounds{Cols: max(1, cols), Rows: max(1, rows)}
	g := &Grid{
		bounds:        b,
		nodes:         make([]node, b.Cols*b.Rows),
		marked:        make([]bool, b.Cols*b.Rows),
		maxConcurrent: defaultMaxConcurrent,
	}
	for i := range g.nodes {
		g.nodes[i].class = ClassOpen
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = status.NewRegistry()
	}
	if g.log == nil {
		g.log = logrus.NewEntry(logrus.StandardLogger())
	}
	g.sem = semaphore.NewWeighted(g.maxConcurrent)
	g.cache = newResultCache()
	return g
}

// Bounds returns the grid dimensions
func (g *Grid) Bounds() grid.Bounds { return g.bounds }

// Version returns the mutation counter
func (g *Grid) Version() uint64 { return g.version }

// --- Node state ---

// SetTraversalClass sets the class of cell c; out-of-range cells are ignored
func (g *Grid) SetTraversalClass(c grid.Cell, class NodeClass) {
	if !g.bounds.InCells(c) || class == ClassPath {
		return
	}
	n := &g.nodes[g.bounds.CellIndex(c)]
	if n.class != class {
		n.class = class
		g.touch()
	}
}

// Class returns the class of cell c, ClassClosed when out of range
func (g *Grid) Class(c grid.Cell) NodeClass {
	if !g.bounds.InCells(c) {
		return ClassClosed
	}
	return g.nodes[g.bounds.CellIndex(c)].class
}

// IsClosed reports whether c is a closed node; out-of-range cells are not
func (g *Grid) IsClosed(c grid.Cell) bool {
	return g.bounds.InCells(c) && g.nodes[g.bounds.CellIndex(c)].class == ClassClosed
}

// SetDirectionalBlock replaces the set of sides entry into c is forbidden from
func (g *Grid) SetDirectionalBlock(c grid.Cell, sides grid.Side) {
	if !g.bounds.InCells(c) {
		return
	}
	n := &g.nodes[g.bounds.CellIndex(c)]
	if n.blocked != sides {
		n.blocked = sides
		g.touch()
	}
}

// SetGate replaces the set of sides entry into c requires door access from
func (g *Grid) SetGate(c grid.Cell, sides grid.Side) {
	if !g.bounds.InCells(c) {
		return
	}
	n := &g.nodes[g.bounds.CellIndex(c)]
	if n.gated != sides {
		n.gated = sides
		g.touch()
	}
}

// Blocks returns the wall and door side masks of c
func (g *Grid) Blocks(c grid.Cell) (blocked, gated grid.Side) {
	if !g.bounds.InCells(c) {
		return grid.NoSides, grid.NoSides
	}
	n := g.nodes[g.bounds.CellIndex(c)]
	return n.blocked, n.gated
}

// Reset reopens every node and clears blocks and marks
func (g *Grid) Reset() {
	for i := range g.nodes {
		g.nodes[i] = node{class: ClassOpen}
		g.marked[i] = false
	}
	g.touch()
}

func (g *Grid) touch() {
	g.version++
	g.snap = nil
}

// --- Debug marking ---

// MarkPath replaces the transient route marking with path
func (g *Grid) MarkPath(path Path) {
	clear(g.marked)
	for _, c := range path {
		if g.bounds.InCells(c) {
			g.marked[g.bounds.CellIndex(c)] = true
		}
	}
}

// OnMarkedPath reports whether c lies on the marked route
func (g *Grid) OnMarkedPath(c grid.Cell) bool {
	return g.bounds.InCells(c) && g.marked[g.bounds.CellIndex(c)]
}

// DebugClass returns ClassPath for marked cells and the stored class otherwise
func (g *Grid) DebugClass(c grid.Cell) NodeClass {
	if g.OnMarkedPath(c) {
		return ClassPath
	}
	return g.Class(c)
}

// --- Edge checks ---

// CanStep reports whether a single move between 8-adjacent cells is legal under q against the live state
func (g *Grid) CanStep(from, to grid.Cell, q Query) bool {
	return canStep(g.bounds, g.nodes, from, to, q)
}

// snapshot is a frozen copy of node state shared by concurrent searches
type snapshot struct {
	version uint64
	bounds  grid.Bounds
	nodes   []node
}

func (g *Grid) snapshot() *snapshot {
	if g.snap == nil {
		nodes := make([]node, len(g.nodes))
		copy(nodes, g.nodes)
		g.snap = &snapshot{version: g.version, bounds: g.bounds, nodes: nodes}
	}
	return g.snap
}

func canStep(b grid.Bounds, nodes []node, from, to grid.Cell, q Query) bool {
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
		return false
	}
	if dx == 0 || dy == 0 {
		return canEnter(b, nodes, from, to, q)
	}
	// Diagonal: both orthogonal detours must be fully passable
	h := from.Add(dx, 0)
	v := from.Add(0, dy)
	return canEnter(b, nodes, from, h, q) && canEnter(b, nodes, h, to, q) &&
		canEnter(b, nodes, from, v, q) && canEnter(b, nodes, v, to, q)
}

// canEnter checks a cardinal move into to
func canEnter(b grid.Bounds, nodes []node, from, to grid.Cell, q Query) bool {
	if !b.InCells(to) {
		return false
	}
	n := nodes[b.CellIndex(to)]
	if _, ok := q.cost(n.class); !ok {
		return false
	}
	side := grid.SidesToward(from.X-to.X, from.Y-to.Y)
	if n.blocked.Any(side) {
		return false
	}
	if !q.DoorAccess && n.gated.Any(side) {
		return false
	}
	return true
}
