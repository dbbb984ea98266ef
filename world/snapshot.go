package world

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/terrain"
	"github.com/lixenwraith/tileworld/wall"
)

var ErrSnapshotShape = errors.New("world: snapshot does not match world size")

// AreaRecord is the persisted form of one area
type AreaRecord struct {
	ID          string
	Highlighted bool
	Cells       []grid.Cell
}

// Snapshot is the raw persisted state; navigation and adjacency are re-derived on import
type Snapshot struct {
	Cols, Rows int
	Levels     []terrain.Level // (Cols+1) x (Rows+1) points, row-major
	Walls      []wall.Wall     // grid.Bounds.SlotIndex order
	Objects    []Object        // Cols x Rows cells, row-major
	Areas      []AreaRecord
}

// Export copies the raw state
func (w *World) Export() Snapshot {
	s := Snapshot{
		Cols:    w.bounds.Cols,
		Rows:    w.bounds.Rows,
		Levels:  w.terrain.Levels(),
		Walls:   w.walls.Records(),
		Objects: slices.Clone(w.objects),
	}
	for _, id := range w.areas.Areas() {
		a, _ := w.areas.Get(id)
		s.Areas = append(s.Areas, AreaRecord{ID: id, Highlighted: a.Highlighted, Cells: a.Cells()})
	}
	return s
}

// Import replaces the whole world with s; the world is unchanged when s is rejected
// A snapshot without areas gets areas rebuilt from its walls
func (w *World) Import(s Snapshot) error {
	if s.Cols != w.bounds.Cols || s.Rows != w.bounds.Rows {
		return errors.Wrapf(ErrSnapshotShape, "snapshot %dx%d, world %dx%d", s.Cols, s.Rows, w.bounds.Cols, w.bounds.Rows)
	}
	if len(s.Objects) != len(w.objects) {
		return errors.Wrapf(ErrSnapshotShape, "expected %d objects, got %d", len(w.objects), len(s.Objects))
	}

	// Dry run on scratch layers so a bad snapshot leaves the world untouched
	scratch := terrain.New(s.Cols, s.Rows, w.terrain.Step(), nil, nil)
	if err := scratch.Load(s.Levels); err != nil {
		return err
	}
	if err := wall.New(s.Cols, s.Rows, scratch, nil).Load(s.Walls); err != nil {
		return err
	}
	seen := make(map[string]bool, len(s.Areas))
	owner := make(map[grid.Cell]string)
	for _, rec := range s.Areas {
		if rec.ID == "" || seen[rec.ID] {
			return errors.Errorf("world: bad area id %q", rec.ID)
		}
		seen[rec.ID] = true
		for _, c := range rec.Cells {
			if !w.bounds.InCells(c) {
				return errors.Wrapf(ErrSnapshotShape, "area %s cell %v out of range", rec.ID, c)
			}
			if prev, ok := owner[c]; ok {
				return errors.Wrapf(ErrSnapshotShape, "cell %v in both %s and %s", c, prev, rec.ID)
			}
			owner[c] = rec.ID
		}
	}

	w.loading = true
	w.areas.Reset()
	_ = w.terrain.Load(s.Levels)
	_ = w.walls.Load(s.Walls)
	w.loading = false
	copy(w.objects, s.Objects)
	w.syncAll()

	if len(s.Areas) == 0 {
		w.RebuildAreas()
	} else {
		for _, rec := range s.Areas {
			a, _ := w.areas.Add(rec.ID, rec.Cells)
			a.Highlighted = rec.Highlighted
		}
		w.linkAllDoors()
	}

	w.version++
	w.publish(event.EventWorldReset, nil)
	return nil
}
