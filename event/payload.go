package event

import "github.com/lixenwraith/tileworld/grid"

// ElevationChangedPayload lists the points an edit committed, target first
type ElevationChangedPayload struct {
	Center grid.Point
	Points []grid.Point
	Radius int
}

// WaterChangedPayload lists cells whose water flag flipped
type WaterChangedPayload struct {
	Cells []grid.Cell
}

// WallChangedPayload describes one slot change
type WallChangedPayload struct {
	Slot    grid.Slot
	Asset   string
	Present bool
}

// DoorChangedPayload describes a door appearing or disappearing in a slot
type DoorChangedPayload struct {
	Slot grid.Slot
	Door bool
}

// AreasChangedPayload names the pair whose link changed; empty A and B mean a full rebuild
type AreasChangedPayload struct {
	A, B      string
	Connected bool
}

// ObjectChangedPayload describes a tile object placement or removal
type ObjectChangedPayload struct {
	Cell    grid.Cell
	Name    string
	Present bool
}

// PathResolvedPayload summarizes a delivered path
type PathResolvedPayload struct {
	Start, Goal grid.Cell
	Found       bool
	Length      int
}
