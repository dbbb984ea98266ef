// Package event carries world change notifications from the edit thread to observers
package event

// EventType represents the kind of world change
type EventType int

const (
	// EventElevationChanged signals committed elevation edits
	// Trigger: world.SetElevation, SetElevationInCircle | Payload: *ElevationChangedPayload
	EventElevationChanged EventType = iota + 1

	// EventWaterChanged signals cells that flipped between land and water
	// Trigger: elevation cascade | Payload: *WaterChangedPayload
	EventWaterChanged

	// EventWallChanged signals a wall placed, removed or restyled
	// Trigger: wall.Layer mutations | Payload: *WallChangedPayload
	EventWallChanged

	// EventDoorChanged signals a slot gaining or losing its door
	// Trigger: door placement, toggle, removal | Payload: *DoorChangedPayload
	EventDoorChanged

	// EventAreasChanged signals area adjacency or membership change
	// Trigger: door cascade, RebuildAreas | Payload: *AreasChangedPayload
	EventAreasChanged

	// EventObjectChanged signals a tile object placed or removed
	// Trigger: world.PlaceObject, RemoveObject | Payload: *ObjectChangedPayload
	EventObjectChanged

	// EventWorldReset signals the whole world was cleared or imported
	// Trigger: world.Reset, Import | Payload: nil
	EventWorldReset

	// EventPathResolved signals a follower received a path result
	// Trigger: world.Follower | Payload: *PathResolvedPayload
	EventPathResolved
)

// WorldEvent is a single queued notification
type WorldEvent struct {
	Type    EventType
	Payload any
	// Seq is the world version the change produced
	Seq uint64
}
