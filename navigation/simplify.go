package navigation

import "github.com/lixenwraith/tileworld/grid"

// SegmentClear reports whether the straight segment between the centers of a and b is walkable
type SegmentClear func(a, b grid.Cell) bool

// Simplify drops waypoints the walker can skip by line of sight
// An intermediate node is dropped when the segment from the current anchor to the node after it is clear;
// otherwise it becomes the new anchor. Paths under 3 nodes are returned unchanged; endpoints are always kept
func Simplify(path Path, clear SegmentClear) Path {
	if len(path) < 3 {
		return path
	}
	out := Path{path[0]}
	anchor := path[0]
	for i := 1; i < len(path)-1; i++ {
		if !clear(anchor, path[i+1]) {
			out = append(out, path[i])
			anchor = path[i]
		}
	}
	return append(out, path[len(path)-1])
}
