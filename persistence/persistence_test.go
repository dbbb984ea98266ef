package persistence

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/tileworld/config"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/log"
	"github.com/lixenwraith/tileworld/terrain"
	"github.com/lixenwraith/tileworld/world"
)

func newWorld(t *testing.T, cols, rows int) *world.World {
	t.Helper()
	w := world.New(config.WorldConfig{Cols: cols, Rows: rows, ElevationStep: terrain.DefaultStep, Border: true, Seed: 1})
	t.Cleanup(w.Close)
	return w
}

// furnished builds a world exercising every snapshot field
func furnished(t *testing.T) *world.World {
	t.Helper()
	w := newWorld(t, 6, 4)
	if !w.SetElevation(grid.Point{X: 3, Y: 2}, terrain.Hill) {
		t.Fatal("Expected hill")
	}
	if !w.SetElevation(grid.Point{X: 5, Y: 3}, terrain.Water) {
		t.Fatal("Expected water")
	}
	if !w.PlaceWall(grid.Slot{Cell: grid.Cell{X: 2, Y: 1}, Orientation: grid.Vertical}, "hedge") {
		t.Fatal("Expected wall")
	}
	if !w.PlaceDoor(grid.Slot{Cell: grid.Cell{X: 1, Y: 2}, Orientation: grid.Horizontal}, "gate") {
		t.Fatal("Expected door")
	}
	if !w.PlaceObject(grid.Cell{X: 0, Y: 0}, world.Object{Name: "crate", Solid: true}) {
		t.Fatal("Expected object")
	}
	w.HighlightArea("area-0", true)
	return w
}

func TestCodecRoundTrip(t *testing.T) {
	want := furnished(t).Export()
	data, err := Marshal(want)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\ngot %s\nwant %s", spew.Sdump(got), spew.Sdump(want))
	}
}

func TestDecodeRejectsCorruption(t *testing.T) {
	data, err := Marshal(furnished(t).Export())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"empty", func(b []byte) []byte { return nil }, ErrBadSnapshot},
		{"magic", func(b []byte) []byte { b[0] = 'X'; return b }, ErrBadSnapshot},
		{"version", func(b []byte) []byte { b[5] = 9; return b }, ErrSnapshotVersion},
		{"zero cols", func(b []byte) []byte { copy(b[8:12], []byte{0, 0, 0, 0}); return b }, ErrBadSnapshot},
		{"bad level", func(b []byte) []byte { b[HeaderSize+8] = 7; return b }, ErrBadSnapshot},
		{"truncated", func(b []byte) []byte { return b[:len(b)-3] }, ErrBadSnapshot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.mutate(append([]byte(nil), data...))
			if _, err := Unmarshal(b); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEncodeRejectsShape(t *testing.T) {
	s := newWorld(t, 3, 3).Export()
	s.Levels = s.Levels[:4]
	if _, err := Marshal(s); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("Expected ErrBadSnapshot, got %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir(), log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	src := furnished(t)
	if err := SaveWorld(ctx, st, "alpha", src); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := SaveWorld(ctx, st, "beta", newWorld(t, 6, 4)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	slots, err := st.List(ctx)
	if err != nil || !reflect.DeepEqual(slots, []string{"alpha", "beta"}) {
		t.Errorf("Expected [alpha beta], got %v %v", slots, err)
	}

	dst := newWorld(t, 6, 4)
	if err := LoadWorld(ctx, st, "alpha", dst); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, want := dst.Export(), src.Export(); !reflect.DeepEqual(got, want) {
		t.Errorf("Loaded world differs:\ngot %s\nwant %s", spew.Sdump(got), spew.Sdump(want))
	}
	if !dst.IsSolid(grid.Cell{X: 0, Y: 0}) {
		t.Error("Expected loaded object to close its cell")
	}

	if err := st.Delete(ctx, "beta"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, err := st.Load(ctx, "beta"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Expected ErrSlotNotFound, got %v", err)
	}
	if err := st.Delete(ctx, "beta"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("Expected ErrSlotNotFound on second delete, got %v", err)
	}
}

func TestFileStoreRejectsSlotNames(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir(), log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	for _, slot := range []string{"", "../escape", "a/b", "dot.name"} {
		if err := st.Save(ctx, slot, world.Snapshot{}); !errors.Is(err, ErrInvalidSlot) {
			t.Errorf("Expected ErrInvalidSlot for %q, got %v", slot, err)
		}
	}
}

func TestLoadWorldShapeMismatch(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir(), log.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if err := SaveWorld(ctx, st, "small", newWorld(t, 3, 3)); err != nil {
		t.Fatal(err)
	}
	dst := newWorld(t, 6, 4)
	before := dst.Export()
	if err := LoadWorld(ctx, st, "small", dst); !errors.Is(err, world.ErrSnapshotShape) {
		t.Errorf("Expected ErrSnapshotShape, got %v", err)
	}
	if !reflect.DeepEqual(dst.Export(), before) {
		t.Error("Expected rejected load to leave the world unchanged")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, config.StorageConfig{Driver: config.StorageNone}, nil); !errors.Is(err, ErrNoStorage) {
		t.Errorf("Expected ErrNoStorage, got %v", err)
	}
	if _, err := Open(ctx, config.StorageConfig{Driver: "tape"}, nil); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	st, err := Open(ctx, config.StorageConfig{Driver: config.StorageFile, Path: t.TempDir()}, log.Discard())
	if err != nil {
		t.Fatalf("Open file store failed: %v", err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Errorf("Expected *FileStore, got %T", st)
	}
}
