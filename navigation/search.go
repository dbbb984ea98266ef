package navigation

import (
	"context"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/lixenwraith/tileworld/grid"
)

// Query is the per-request traversal table
// Costs maps every acceptable class to the cost of entering a node of that class
// DoorAccess lets the search pass door gates
type Query struct {
	Costs      map[NodeClass]float64
	DoorAccess bool
}

// cost returns the entry cost of class, false when the class is not acceptable
func (q Query) cost(class NodeClass) (float64, bool) {
	c, ok := q.Costs[class]
	if !ok || c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, false
	}
	return c, true
}

// Allows reports whether nodes of class are acceptable
func (q Query) Allows(class NodeClass) bool {
	_, ok := q.cost(class)
	return ok
}

// fingerprint is a stable key for the query contents
func (q Query) fingerprint() string {
	classes := make([]int, 0, len(q.Costs))
	for c := range q.Costs {
		classes = append(classes, int(c))
	}
	slices.Sort(classes)
	var sb strings.Builder
	for _, c := range classes {
		sb.WriteString(strconv.Itoa(c))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatFloat(q.Costs[NodeClass(c)], 'g', -1, 64))
		sb.WriteByte(',')
	}
	if q.DoorAccess {
		sb.WriteByte('d')
	}
	return sb.String()
}

func (q Query) minCost() float64 {
	best := math.Inf(1)
	for class := range q.Costs {
		if c, ok := q.cost(class); ok && c < best {
			best = c
		}
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}

// Step distance factors: cardinal = 1, diagonal = √2
var dirFactors = [8]float64{
	1, math.Sqrt2, 1, math.Sqrt2,
	1, math.Sqrt2, 1, math.Sqrt2,
}

// --- Min-heap for A* ---

type heapEntry struct {
	idx int     // Flat grid index (y*width + x)
	f   float64 // g + heuristic
	seq uint64  // Insertion order, breaks ties deterministically
}

type minHeap []heapEntry

func (e heapEntry) less(o heapEntry) bool {
	if e.f != o.f {
		return e.f < o.f
	}
	return e.seq < o.seq
}

func (h *minHeap) push(e heapEntry) {
	*h = append(*h, e)
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !(*h)[i].less((*h)[parent]) {
			break
		}
		(*h)[parent], (*h)[i] = (*h)[i], (*h)[parent]
		i = parent
	}
}

func (h *minHeap) pop() heapEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]

	i := 0
	for {
		left := 2*i + 1
		if left >= len(*h) {
			break
		}
		smallest := left
		if right := left + 1; right < len(*h) && (*h)[right].less((*h)[left]) {
			smallest = right
		}
		if !(*h)[smallest].less((*h)[i]) {
			break
		}
		(*h)[i], (*h)[smallest] = (*h)[smallest], (*h)[i]
		i = smallest
	}
	return e
}

// octile distance scaled by the cheapest acceptable class keeps the heuristic admissible
func octile(a, b grid.Cell, scale float64) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	return (math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)) * scale
}

// ctxCheckInterval is the number of expansions between cancellation checks
const ctxCheckInterval = 1024

// search runs weighted A* from start to goal over the snapshot
// Returns false when goal is unreachable or ctx ends first
func (s *snapshot) search(ctx context.Context, start, goal grid.Cell, q Query) (Path, bool) {
	b := s.bounds
	size := b.Cols * b.Rows
	scale := q.minCost()

	dist := make([]float64, size)
	parent := make([]int32, size)
	closed := make([]bool, size)
	for i := range dist {
		dist[i] = math.Inf(1)
		parent[i] = -1
	}

	startIdx := b.CellIndex(start)
	goalIdx := b.CellIndex(goal)
	dist[startIdx] = 0

	var seq uint64
	h := make(minHeap, 0, size/4+1)
	h.push(heapEntry{idx: startIdx, f: octile(start, goal, scale)})

	expanded := 0
	for len(h) > 0 {
		entry := h.pop()
		if closed[entry.idx] {
			continue // Stale entry
		}
		if entry.idx == goalIdx {
			return s.trace(parent, goalIdx), true
		}
		closed[entry.idx] = true

		expanded++
		if expanded%ctxCheckInterval == 0 && ctx.Err() != nil {
			return nil, false
		}

		cur := grid.Cell{X: entry.idx % b.Cols, Y: entry.idx / b.Cols}
		for dir, vec := range grid.DirVectors {
			next := cur.Add(vec[0], vec[1])
			if !canStep(b, s.nodes, cur, next, q) {
				continue
			}
			nIdx := b.CellIndex(next)
			if closed[nIdx] {
				continue
			}
			enter, _ := q.cost(s.nodes[nIdx].class)
			d := dist[entry.idx] + dirFactors[dir]*enter
			if d < dist[nIdx] {
				dist[nIdx] = d
				parent[nIdx] = int32(entry.idx)
				seq++
				h.push(heapEntry{idx: nIdx, f: d + octile(next, goal, scale), seq: seq})
			}
		}
	}
	return nil, false
}

func (s *snapshot) trace(parent []int32, goalIdx int) Path {
	var rev Path
	for idx := int32(goalIdx); idx >= 0; idx = parent[idx] {
		rev = append(rev, grid.Cell{X: int(idx) % s.bounds.Cols, Y: int(idx) / s.bounds.Cols})
	}
	slices.Reverse(rev)
	return rev
}
