package terrain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/tileworld/grid"
)

const eps = 1e-9

// fakeConstraints is a table-driven Constraints for edit legality tests
type fakeConstraints struct {
	noSlope map[grid.Cell]bool
	noWater map[grid.Cell]bool
	doors   map[grid.Slot]bool
	walls   map[grid.Slot]bool
}

func (f *fakeConstraints) ForbidsSlope(c grid.Cell) bool { return f.noSlope[c] }
func (f *fakeConstraints) ForbidsWater(c grid.Cell) bool { return f.noWater[c] }
func (f *fakeConstraints) HasDoor(s grid.Slot) bool      { return f.doors[s] }
func (f *fakeConstraints) HasWall(s grid.Slot) bool      { return f.walls[s] || f.doors[s] }

type recorder struct {
	changes []Change
}

func (r *recorder) ElevationChanged(ch Change) { r.changes = append(r.changes, ch) }

func TestFlatCellHasConstantHeight(t *testing.T) {
	for _, l := range []Level{Water, Flat, Hill} {
		if v := Classify(l, l, l, l); v != SlopeFlat {
			t.Errorf("Classify(%v x4) = %v, expected flat", l, v)
		}
	}
	g := New(2, 2, DefaultStep, nil, nil)
	for _, pos := range [][2]float64{{0, 0}, {0.3, 0.7}, {0.99, 0.01}, {1.5, 1.5}, {2, 2}} {
		if h := g.HeightAt(pos[0], pos[1]); h != 0 {
			t.Errorf("HeightAt(%v) = %v, expected 0", pos, h)
		}
	}
}

// TestRiseExactAtCorners checks every two-level corner pattern maps to a distinct variant whose rise matches the corners
func TestRiseExactAtCorners(t *testing.T) {
	seen := make(map[SlopeVariant][4]Level)
	for mask := 0; mask < 16; mask++ {
		var lv [4]Level
		for i := 0; i < 4; i++ {
			if mask&(1<<i) != 0 {
				lv[i] = Hill
			}
		}
		v := Classify(lv[0], lv[1], lv[2], lv[3])
		if mask != 0 && mask != 15 {
			if v == SlopeFlat {
				t.Fatalf("Pattern %v classified flat", lv)
			}
			if prev, dup := seen[v]; dup {
				t.Fatalf("Patterns %v and %v both classified %v", prev, lv, v)
			}
			seen[v] = lv
		}
		corners := [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
		for i, c := range corners {
			got := v.Rise(c[0], c[1])
			if math.Abs(got-float64(lv[i])) > eps {
				t.Errorf("Variant %v at corner %v = %v, expected %v", v, c, got, lv[i])
			}
		}
	}
	if len(seen) != 14 {
		t.Errorf("Expected 14 non-flat variants, got %d", len(seen))
	}
}

func TestRaisedPointShapesSurroundingCells(t *testing.T) {
	rec := &recorder{}
	g := New(4, 4, DefaultStep, nil, rec)
	center := grid.Point{X: 2, Y: 2}
	if !g.CanSetElevation(center, Hill) {
		t.Fatal("Expected raise to be legal")
	}
	if !g.SetElevation(center, Hill) {
		t.Fatal("Expected raise to apply")
	}

	want := map[grid.Cell]SlopeVariant{
		{X: 1, Y: 1}: CornerHighSE,
		{X: 2, Y: 1}: CornerHighSW,
		{X: 1, Y: 2}: CornerHighNE,
		{X: 2, Y: 2}: CornerHighNW,
	}
	distinct := make(map[SlopeVariant]bool)
	for c, v := range want {
		got := g.SlopeVariantAt(c)
		if got != v {
			t.Errorf("SlopeVariantAt(%v) = %v, expected %v", c, got, v)
		}
		distinct[got] = true
	}
	if len(distinct) != 4 {
		t.Errorf("Expected 4 distinct variants, got %d", len(distinct))
	}
	for _, c := range []grid.Cell{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 3}, {X: 3, Y: 3}} {
		if v := g.SlopeVariantAt(c); v != SlopeFlat {
			t.Errorf("Corner cell %v = %v, expected flat", c, v)
		}
	}

	if h := g.HeightAt(2, 2); math.Abs(h-DefaultStep) > eps {
		t.Errorf("HeightAt raised point = %v, expected %v", h, DefaultStep)
	}
	if len(rec.changes) != 1 || len(rec.changes[0].Points) != 1 {
		t.Errorf("Expected one change with one point, got %s", spew.Sdump(rec.changes))
	}
}

func TestHeightContinuousAcrossCells(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := New(8, 8, DefaultStep, nil, nil)
	for i := 0; i < 60; i++ {
		p := grid.Point{X: rng.Intn(9), Y: rng.Intn(9)}
		g.SetElevation(p, Level(rng.Intn(3)-1))
	}

	for y := 0; y <= 8; y++ {
		for x := 0; x <= 8; x++ {
			got := g.HeightAt(float64(x), float64(y))
			want := float64(g.ElevationAt(grid.Point{X: x, Y: y})) * DefaultStep
			if math.Abs(got-want) > eps {
				t.Errorf("HeightAt corner (%d,%d) = %v, expected %v", x, y, got, want)
			}
		}
	}

	// Approach each interior vertical boundary from both sides
	const d = 1e-7
	for y := 0.05; y < 8; y += 0.37 {
		for x := 1; x < 8; x++ {
			left := g.HeightAt(float64(x)-d, y)
			right := g.HeightAt(float64(x)+d, y)
			if math.Abs(left-right) > 1e-5 {
				t.Errorf("Discontinuity at x=%d y=%.2f: %v vs %v", x, y, left, right)
			}
		}
	}
}

func TestEditsNeverLeaveOppositeNeighbors(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := New(10, 10, DefaultStep, nil, nil)
	for i := 0; i < 500; i++ {
		p := grid.Point{X: rng.Intn(11), Y: rng.Intn(11)}
		l := Level(rng.Intn(3) - 1)
		can := g.CanSetElevation(p, l)
		applied := g.SetElevation(p, l)
		if can != applied {
			t.Fatalf("CanSetElevation %v disagrees with SetElevation %v at %v", can, applied, p)
		}
		if applied && g.ElevationAt(p) != l {
			t.Fatalf("ElevationAt(%v) = %v after setting %v", p, g.ElevationAt(p), l)
		}
	}
	for y := 0; y <= 10; y++ {
		for x := 0; x <= 10; x++ {
			p := grid.Point{X: x, Y: y}
			l := g.ElevationAt(p)
			if l == Flat {
				continue
			}
			for _, n := range p.Adjacent8() {
				if g.ElevationAt(n) == -l {
					t.Fatalf("Opposite levels at %v and %v", p, n)
				}
			}
		}
	}
}

func TestHillFlattensAdjacentWater(t *testing.T) {
	rec := &recorder{}
	g := New(4, 4, DefaultStep, nil, rec)
	g.SetElevation(grid.Point{X: 1, Y: 1}, Water)
	if !g.IsWater(grid.Cell{X: 1, Y: 1}) || !g.IsWater(grid.Cell{X: 0, Y: 0}) {
		t.Fatal("Expected cells touching the water point to be water")
	}

	if !g.SetElevation(grid.Point{X: 2, Y: 2}, Hill) {
		t.Fatal("Expected hill to apply")
	}
	if l := g.ElevationAt(grid.Point{X: 1, Y: 1}); l != Flat {
		t.Errorf("Diagonal water point = %v, expected flat", l)
	}
	if g.IsWater(grid.Cell{X: 0, Y: 0}) {
		t.Error("Expected cell to return to land after flattening")
	}
	last := rec.changes[len(rec.changes)-1]
	if len(last.Points) != 2 || last.Points[0] != (grid.Point{X: 2, Y: 2}) {
		t.Errorf("Expected target then flattened point, got %v", last.Points)
	}
	if len(last.WaterFlipped) != 4 {
		t.Errorf("Expected 4 flipped cells, got %v", last.WaterFlipped)
	}
}

func TestDoorRejectsWholeCascade(t *testing.T) {
	fc := &fakeConstraints{doors: map[grid.Slot]bool{
		// Door touching the water point that the hill would flatten
		{Cell: grid.Cell{X: 1, Y: 1}, Orientation: grid.Horizontal}: true,
	}}
	g := New(4, 4, DefaultStep, fc, nil)
	if err := g.Load(levelsWith(g, map[grid.Point]Level{{X: 1, Y: 1}: Water})); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	before := g.Levels()

	if g.SetElevation(grid.Point{X: 2, Y: 2}, Hill) {
		t.Fatal("Expected edit to be rejected")
	}
	after := g.Levels()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("Rejected edit changed index %d", i)
		}
	}
}

func TestConstraintRules(t *testing.T) {
	p := grid.Point{X: 2, Y: 2}
	tests := []struct {
		name  string
		fc    *fakeConstraints
		level Level
		want  bool
	}{
		{"unconstrained hill", &fakeConstraints{}, Hill, true},
		{"slope forbidden", &fakeConstraints{noSlope: map[grid.Cell]bool{{X: 1, Y: 1}: true}}, Hill, false},
		{"slope forbidden elsewhere", &fakeConstraints{noSlope: map[grid.Cell]bool{{X: 0, Y: 0}: true}}, Hill, true},
		{"door at point", &fakeConstraints{doors: map[grid.Slot]bool{{Cell: grid.Cell{X: 2, Y: 1}, Orientation: grid.Vertical}: true}}, Hill, false},
		{"water under object", &fakeConstraints{noWater: map[grid.Cell]bool{{X: 2, Y: 2}: true}}, Water, false},
		{"water object allows hill", &fakeConstraints{noWater: map[grid.Cell]bool{{X: 2, Y: 2}: true}}, Hill, true},
		{"water at wall", &fakeConstraints{walls: map[grid.Slot]bool{{Cell: grid.Cell{X: 1, Y: 2}, Orientation: grid.Horizontal}: true}}, Water, false},
		{"wall allows hill", &fakeConstraints{walls: map[grid.Slot]bool{{Cell: grid.Cell{X: 1, Y: 2}, Orientation: grid.Horizontal}: true}}, Hill, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(4, 4, DefaultStep, tt.fc, nil)
			if got := g.CanSetElevation(p, tt.level); got != tt.want {
				t.Errorf("CanSetElevation = %v, expected %v", got, tt.want)
			}
			if got := g.SetElevation(p, tt.level); got != tt.want {
				t.Errorf("SetElevation = %v, expected %v", got, tt.want)
			}
			if !tt.want && g.ElevationAt(p) != Flat {
				t.Error("Rejected edit must not change the point")
			}
		})
	}
}

func TestOutOfRange(t *testing.T) {
	g := New(3, 3, DefaultStep, nil, nil)
	if l := g.ElevationAt(grid.Point{X: -1, Y: 0}); l != Flat {
		t.Errorf("Expected flat, got %v", l)
	}
	if g.SetElevation(grid.Point{X: 4, Y: 0}, Hill) {
		t.Error("Expected out-of-range edit to be rejected")
	}
	if h := g.HeightAt(-0.5, 1); h != 0 {
		t.Errorf("Expected 0, got %v", h)
	}
	if g.IsWater(grid.Cell{X: 9, Y: 9}) {
		t.Error("Expected out-of-range cell to be land")
	}
}

func TestCircleBrush(t *testing.T) {
	g := New(10, 10, DefaultStep, nil, nil)
	n := g.SetElevationInCircle(5, 5, 1.5, Hill)
	if n != 9 {
		t.Errorf("Expected 9 points raised, got %d", n)
	}
	if g.ElevationAt(grid.Point{X: 5, Y: 5}) != Hill || g.ElevationAt(grid.Point{X: 6, Y: 6}) != Hill {
		t.Error("Expected points inside the circle to be raised")
	}
	if g.ElevationAt(grid.Point{X: 7, Y: 5}) != Flat {
		t.Error("Expected point outside the circle to stay flat")
	}
}

func TestLoadRejectsOppositeNeighbors(t *testing.T) {
	g := New(3, 3, DefaultStep, nil, nil)
	bad := levelsWith(g, map[grid.Point]Level{{X: 1, Y: 1}: Hill, {X: 2, Y: 2}: Water})
	if err := g.Load(bad); err == nil {
		t.Error("Expected Load to reject opposite neighbors")
	}
	if err := g.Load(make([]Level, 3)); err == nil {
		t.Error("Expected Load to reject short array")
	}
}

func levelsWith(g *Grid, set map[grid.Point]Level) []Level {
	lv := make([]Level, len(g.levels))
	for p, l := range set {
		lv[g.bounds.PointIndex(p)] = l
	}
	return lv
}
