// Package status is the metrics facade of the world model
// Components resolve metric pointers once at construction and write atomics on the hot path
package status

import "sync/atomic"

// Metric keys written by the world model
const (
	TerrainApplied  = "terrain.applied"
	TerrainRejected = "terrain.rejected"
	WallPlaced      = "wall.placed"
	WallRemoved     = "wall.removed"
	WallRejected    = "wall.rejected"
	DoorToggled     = "door.toggled"
	ObjectPlaced    = "object.placed"
	AreasRebuilt    = "areas.rebuilt"
	PathRequests    = "path.requests"
	PathFound       = "path.found"
	PathNone        = "path.none"
	PathCacheHits   = "path.cache_hits"
	PathInFlight    = "path.in_flight"
	PathLastMillis  = "path.last_ms"
	LastRejected    = "edit.last_rejected"
)

// Registry groups metric maps by value type
type Registry struct {
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot flattens every metric into a key/value map, used for structured log fields
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any, r.TotalCount())
	r.Ints.Range(func(k string, v *atomic.Int64) { out[k] = v.Load() })
	r.Floats.Range(func(k string, v *AtomicFloat) { out[k] = v.Get() })
	r.Strings.Range(func(k string, v *AtomicString) { out[k] = v.Load() })
	return out
}
