package event

import "strings"

var (
	nameToType = make(map[string]EventType)
	typeToName = make(map[EventType]string)
)

// RegisterType maps a display name to an EventType
func RegisterType(name string, et EventType) {
	nameToType[strings.ToLower(name)] = et
	typeToName[et] = name
}

// GetEventType returns the EventType for a name, case-insensitive
func GetEventType(name string) (EventType, bool) {
	et, ok := nameToType[strings.ToLower(name)]
	return et, ok
}

// String returns the registered name
func (et EventType) String() string {
	if name, ok := typeToName[et]; ok {
		return name
	}
	return "Unknown"
}

func init() {
	RegisterType("ElevationChanged", EventElevationChanged)
	RegisterType("WaterChanged", EventWaterChanged)
	RegisterType("WallChanged", EventWallChanged)
	RegisterType("DoorChanged", EventDoorChanged)
	RegisterType("AreasChanged", EventAreasChanged)
	RegisterType("ObjectChanged", EventObjectChanged)
	RegisterType("WorldReset", EventWorldReset)
	RegisterType("PathResolved", EventPathResolved)
}
