// Package maze generates wall layouts for a cols x rows world
// The layout is carved on a (2*cols+1) x (2*rows+1) lattice: odd/odd nodes are cells,
// mixed-parity nodes are wall slots and even/even nodes are wall junctions
package maze

import (
	"math/rand"
	"time"

	"github.com/lixenwraith/tileworld/grid"
)

// Lattice node states
const (
	Wall    = true
	Passage = false
)

type Config struct {
	Cols, Rows int

	// Braiding: 0.0 (perfect maze, one route between any two cells) to 1.0 (no dead ends)
	// Plaza and pillar constraints take precedence
	Braiding float64

	// Border keeps the outer ring of slots in Walls
	Border bool

	Seed int64 // 0 = random
}

// Layout is a generated wall set with a reference route from Start to End
type Layout struct {
	Cols, Rows int
	Walls      []grid.Slot // closed slots in lattice scan order
	Start, End grid.Cell
	Solution   []grid.Cell // cardinal cell route, nil when End is unreachable
}

type node struct {
	X, Y int
}

// Generate carves a maze with a recursive backtracker, then braids dead ends
func Generate(cfg Config) Layout {
	cols, rows := max(1, cfg.Cols), max(1, cfg.Rows)
	lat := newLattice(2*cols+1, 2*rows+1)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := node{1, 1}
	end := node{2*cols - 1, 2*rows - 1}

	recursiveBacktracker(lat, start, rng)
	if cfg.Braiding > 0 {
		applySmartBraiding(lat, cfg.Braiding, rng)
	}

	out := Layout{
		Cols:  cols,
		Rows:  rows,
		Start: toCell(start),
		End:   toCell(end),
	}
	for y := range lat {
		for x := range lat[y] {
			if (x+y)%2 == 0 || lat[y][x] == Passage {
				continue
			}
			border := x == 0 || y == 0 || x == len(lat[0])-1 || y == len(lat)-1
			if border && !cfg.Border {
				continue
			}
			out.Walls = append(out.Walls, toSlot(node{x, y}))
		}
	}
	for _, n := range solveBFS(lat, start, end) {
		if n.X%2 == 1 && n.Y%2 == 1 {
			out.Solution = append(out.Solution, toCell(n))
		}
	}
	return out
}

func newLattice(w, h int) [][]bool {
	lat := make([][]bool, h)
	for i := range lat {
		lat[i] = make([]bool, w)
		for j := range lat[i] {
			lat[i][j] = Wall
		}
	}
	return lat
}

func toCell(n node) grid.Cell { return grid.Cell{X: n.X / 2, Y: n.Y / 2} }

// toSlot maps a mixed-parity node to its slot: even x is a vertical slot, even y a horizontal one
func toSlot(n node) grid.Slot {
	if n.X%2 == 0 {
		return grid.Slot{Cell: grid.Cell{X: n.X / 2, Y: n.Y / 2}, Orientation: grid.Vertical}
	}
	return grid.Slot{Cell: grid.Cell{X: n.X / 2, Y: n.Y / 2}, Orientation: grid.Horizontal}
}

// --- Core algorithms ---

var jumps = [4]node{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}

var ortho = [4]node{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

func recursiveBacktracker(lat [][]bool, start node, rng *rand.Rand) {
	rows, cols := len(lat), len(lat[0])

	stack := []node{start}
	lat[start.Y][start.X] = Passage
	candidates := make([]node, 0, 4)

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates = candidates[:0]

		for _, d := range jumps {
			nx, ny := curr.X+d.X, curr.Y+d.Y
			// Leave the outer ring as wall
			if nx > 0 && nx < cols-1 && ny > 0 && ny < rows-1 && lat[ny][nx] == Wall {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		d := candidates[rng.Intn(len(candidates))]
		lat[curr.Y+d.Y/2][curr.X+d.X/2] = Passage
		next := node{curr.X + d.X, curr.Y + d.Y}
		lat[next.Y][next.X] = Passage
		stack = append(stack, next)
	}
}

// applySmartBraiding opens one wall at each dead end with the given probability, creating cycles
func applySmartBraiding(lat [][]bool, probability float64, rng *rand.Rand) {
	rows, cols := len(lat), len(lat[0])
	candidates := make([]node, 0, 4)

	for y := 1; y < rows-1; y += 2 {
		for x := 1; x < cols-1; x += 2 {
			exits := 0
			for _, d := range ortho {
				if lat[y+d.Y][x+d.X] == Passage {
					exits++
				}
			}
			if exits != 1 || rng.Float64() >= probability {
				continue
			}

			candidates = candidates[:0]
			for _, jd := range jumps {
				nx, ny := x+jd.X, y+jd.Y
				wx, wy := x+jd.X/2, y+jd.Y/2
				if nx <= 0 || nx >= cols-1 || ny <= 0 || ny >= rows-1 {
					continue
				}
				if lat[ny][nx] == Passage && lat[wy][wx] == Wall && canSafelyRemoveWall(lat, wx, wy) {
					candidates = append(candidates, node{wx, wy})
				}
			}
			if len(candidates) > 0 {
				c := candidates[rng.Intn(len(candidates))]
				lat[c.Y][c.X] = Passage
			}
		}
	}
}

// canSafelyRemoveWall reports whether opening (x, y) avoids plazas (2x2 open) and pillars (isolated junctions)
func canSafelyRemoveWall(lat [][]bool, x, y int) bool {
	rows, cols := len(lat), len(lat[0])

	isP := func(tx, ty int) bool {
		if tx < 0 || tx >= cols || ty < 0 || ty >= rows {
			return false
		}
		return lat[ty][tx] == Passage
	}

	// Plazas: each quadrant containing (x, y)
	if isP(x-1, y-1) && isP(x, y-1) && isP(x-1, y) ||
		isP(x, y-1) && isP(x+1, y-1) && isP(x+1, y) ||
		isP(x-1, y) && isP(x-1, y+1) && isP(x, y+1) ||
		isP(x+1, y) && isP(x, y+1) && isP(x+1, y+1) {
		return false
	}

	// Pillars: a neighboring wall must keep another wall connection once (x, y) opens
	for _, d := range ortho {
		nx, ny := x+d.X, y+d.Y
		if nx < 0 || nx >= cols || ny < 0 || ny >= rows || lat[ny][nx] == Passage {
			continue
		}
		connections := 0
		for _, d2 := range ortho {
			mx, my := nx+d2.X, ny+d2.Y
			if mx == x && my == y {
				continue
			}
			if mx >= 0 && mx < cols && my >= 0 && my < rows && lat[my][mx] == Wall {
				connections++
			}
		}
		if connections == 0 {
			return false
		}
	}
	return true
}

func solveBFS(lat [][]bool, start, end node) []node {
	rows, cols := len(lat), len(lat[0])
	if lat[start.Y][start.X] == Wall || lat[end.Y][end.X] == Wall {
		return nil
	}

	queue := []node{start}
	cameFrom := make(map[node]node)
	visited := map[node]bool{start: true}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == end {
			var path []node
			for curr != start {
				path = append(path, curr)
				curr = cameFrom[curr]
			}
			path = append(path, start)
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}

		for _, d := range ortho {
			next := node{curr.X + d.X, curr.Y + d.Y}
			if next.X < 0 || next.X >= cols || next.Y < 0 || next.Y >= rows {
				continue
			}
			if lat[next.Y][next.X] == Passage && !visited[next] {
				visited[next] = true
				cameFrom[next] = curr
				queue = append(queue, next)
			}
		}
	}
	return nil
}
