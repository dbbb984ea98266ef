// Package world ties the terrain, wall, area and navigation layers together
// Components never reference each other: they report to World through narrow listener interfaces,
// and World applies the cross-component cascade before the edit call returns
package world

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tileworld/area"
	"github.com/lixenwraith/tileworld/config"
	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/navigation"
	"github.com/lixenwraith/tileworld/parameter"
	"github.com/lixenwraith/tileworld/status"
	"github.com/lixenwraith/tileworld/terrain"
	"github.com/lixenwraith/tileworld/wall"
)

// ClassWater is the node class of cells whose base lies below ground
const ClassWater = navigation.ClassUser

// Object is a tile object occupying one cell; the zero value means no object
type Object struct {
	Name             string
	Solid            bool
	CanPlaceOnSlopes bool
	CanPlaceInWater  bool
}

// Exists reports whether o is a real object
func (o Object) Exists() bool { return o.Name != "" }

// World is the single owner of all grid state
// Not safe for concurrent mutation: edits and queries run on one goroutine, only path searches run elsewhere
type World struct {
	cfg    config.WorldConfig
	bounds grid.Bounds

	terrain *terrain.Grid
	walls   *wall.Layer
	areas   *area.Graph
	nav     *navigation.Grid
	objects []Object

	query   navigation.Query
	navOpts []navigation.GridOption
	events  *event.EventQueue
	metrics *status.Registry
	log     *logrus.Entry
	rng     *rand.Rand

	version uint64

	// Set while a bulk load runs; cascades skip area bookkeeping
	loading bool
}

// Option configures a World
type Option func(*World)

// WithEvents publishes change notifications to q
func WithEvents(q *event.EventQueue) Option {
	return func(w *World) { w.events = q }
}

// WithMetrics attaches a metrics registry shared with the path search
func WithMetrics(r *status.Registry) Option {
	return func(w *World) { w.metrics = r }
}

// WithLogger attaches a logger
func WithLogger(l *logrus.Logger) Option {
	return func(w *World) { w.log = l.WithField("component", "world") }
}

// WithPathfinding sets search concurrency and the default query from configuration
func WithPathfinding(pc config.PathfindingConfig) Option {
	return func(w *World) {
		w.query = QueryFromConfig(pc)
		w.navOpts = append(w.navOpts, navigation.WithMaxConcurrent(pc.MaxConcurrent))
	}
}

// New builds an all-flat world of cfg.Cols x cfg.Rows cells with a single area
func New(cfg config.WorldConfig, opts ...Option) *World {
	w := &World{
		cfg:   cfg,
		query: QueryFromConfig(config.Default().Pathfinding),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.metrics == nil {
		w.metrics = status.NewRegistry()
	}
	if w.log == nil {
		w.log = logrus.StandardLogger().WithField("component", "world")
	}
	w.rng = rand.New(rand.NewSource(cfg.Seed))

	step := cfg.ElevationStep
	if step <= 0 {
		step = parameter.ElevationStep
	}
	w.terrain = terrain.New(cfg.Cols, cfg.Rows, step, w, w)
	w.bounds = w.terrain.Bounds()
	w.walls = wall.New(w.bounds.Cols, w.bounds.Rows, w, w)
	w.areas = area.NewGraph()
	w.objects = make([]Object, w.bounds.Cols*w.bounds.Rows)

	navOpts := append([]navigation.GridOption{
		navigation.WithMetrics(w.metrics),
		navigation.WithLogger(w.log.WithField("component", "navigation")),
	}, w.navOpts...)
	w.nav = navigation.NewGrid(w.bounds.Cols, w.bounds.Rows, navOpts...)

	if cfg.Border {
		w.placeBorder()
	}
	w.RebuildAreas()
	return w
}

// Close releases the path search resources
func (w *World) Close() {
	w.nav.Close()
}

func (w *World) placeBorder() {
	b := w.bounds
	for x := 0; x < b.Cols; x++ {
		w.walls.PlaceIndestructible(grid.Slot{Cell: grid.Cell{X: x, Y: 0}, Orientation: grid.Horizontal}, parameter.BorderAsset)
		w.walls.PlaceIndestructible(grid.Slot{Cell: grid.Cell{X: x, Y: b.Rows}, Orientation: grid.Horizontal}, parameter.BorderAsset)
	}
	for y := 0; y < b.Rows; y++ {
		w.walls.PlaceIndestructible(grid.Slot{Cell: grid.Cell{X: 0, Y: y}, Orientation: grid.Vertical}, parameter.BorderAsset)
		w.walls.PlaceIndestructible(grid.Slot{Cell: grid.Cell{X: b.Cols, Y: y}, Orientation: grid.Vertical}, parameter.BorderAsset)
	}
}

// --- Queries ---

// Bounds returns the cell dimensions
func (w *World) Bounds() grid.Bounds { return w.bounds }

// Version counts committed edits; followers compare it to decide when to re-validate
func (w *World) Version() uint64 { return w.version }

// Metrics returns the shared registry
func (w *World) Metrics() *status.Registry { return w.metrics }

// DefaultQuery returns the configured traversal table
func (w *World) DefaultQuery() navigation.Query { return w.query }

// ElevationAt returns the level of point p, Flat when out of range
func (w *World) ElevationAt(p grid.Point) terrain.Level { return w.terrain.ElevationAt(p) }

// Step returns the world height of one elevation level
func (w *World) Step() float64 { return w.terrain.Step() }

// HeightAt returns the interpolated ground height at world position (x, y)
func (w *World) HeightAt(x, y float64) float64 { return w.terrain.HeightAt(x, y) }

// SlopeVariantAt returns the slope shape of cell c
func (w *World) SlopeVariantAt(c grid.Cell) terrain.SlopeVariant { return w.terrain.SlopeVariantAt(c) }

// IsWater reports whether c is classified as water
func (w *World) IsWater(c grid.Cell) bool { return w.terrain.IsWater(c) }

// CanSetElevation reports whether SetElevation(p, level) would be accepted
func (w *World) CanSetElevation(p grid.Point, level terrain.Level) bool {
	return w.terrain.CanSetElevation(p, level)
}

// WallAt returns the wall in slot s
func (w *World) WallAt(s grid.Slot) (wall.Wall, bool) { return w.walls.WallAt(s) }

// WallAtSide returns the wall on side of cell c
func (w *World) WallAtSide(c grid.Cell, side grid.Side) (wall.Wall, bool) {
	return w.walls.WallAtSide(c, side)
}

// Geometry returns the derived geometry of the wall in slot s
func (w *World) Geometry(s grid.Slot) (wall.Geometry, bool) { return w.walls.Geometry(s) }

// EachWall visits every occupied slot
func (w *World) EachWall(fn func(s grid.Slot, wl wall.Wall)) { w.walls.Each(fn) }

// ObjectAt returns the object on cell c
func (w *World) ObjectAt(c grid.Cell) (Object, bool) {
	if !w.bounds.InCells(c) {
		return Object{}, false
	}
	o := w.objects[w.bounds.CellIndex(c)]
	return o, o.Exists()
}

// IsSolid reports whether c holds a solid object; out-of-range cells are not solid
func (w *World) IsSolid(c grid.Cell) bool {
	o, ok := w.ObjectAt(c)
	return ok && o.Solid
}

// NodeClass returns the navigation class of cell c
func (w *World) NodeClass(c grid.Cell) navigation.NodeClass { return w.nav.Class(c) }

// Navigation exposes the search grid for read-only inspection and debug marking
func (w *World) Navigation() *navigation.Grid { return w.nav }

// Areas exposes the area graph for read-only inspection
func (w *World) Areas() *area.Graph { return w.areas }

// AreaAt returns the id of the area containing c
func (w *World) AreaAt(c grid.Cell) (string, bool) { return w.areas.AreaAt(c) }

// RandomPositionIn returns a uniformly chosen cell of area id
func (w *World) RandomPositionIn(id string) (grid.Cell, error) {
	return w.areas.RandomPositionIn(id, w.rng)
}

// --- Notifications ---

func (w *World) publish(et event.EventType, payload any) {
	if w.events == nil {
		return
	}
	w.events.Push(event.WorldEvent{Type: et, Payload: payload, Seq: w.version})
}

func (w *World) count(key string) {
	w.metrics.Ints.Get(key).Add(1)
}

func (w *World) reject(op, reason string, fields logrus.Fields) {
	w.metrics.Strings.Get(status.LastRejected).Store(op + ": " + reason)
	w.log.WithFields(fields).WithField("reason", reason).Debug(op + " rejected")
}
