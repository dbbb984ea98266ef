package wall

import (
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/terrain"
)

// Category is the slope relationship between the two endpoints of a slot
type Category uint8

const (
	Level     Category = iota // Endpoints share a level
	HighWest                  // Horizontal slot, west endpoint higher
	HighEast                  // Horizontal slot, east endpoint higher
	HighNorth                 // Vertical slot, north endpoint higher
	HighSouth                 // Vertical slot, south endpoint higher
)

// Variant is the visual wall variant consumed by rendering
type Variant uint8

const (
	VariantHorizontal Variant = iota
	VariantVertical
	VariantDoorHorizontal
	VariantDoorVertical
	VariantHillEast
	VariantHillWest
	VariantHillNorth
	VariantHillSouth
)

var variantNames = [...]string{
	"horizontal", "vertical", "door-horizontal", "door-vertical",
	"hill-east", "hill-west", "hill-north", "hill-south",
}

func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "unknown"
}

// Geometry is the derived shape of a wall in its slot
type Geometry struct {
	Category Category
	Variant  Variant
	Base     float64 // Visual base height
}

// Heights is the read side of the terrain a wall layer needs
type Heights interface {
	ElevationAt(p grid.Point) terrain.Level
	Step() float64
}

// Classify computes the slope category from the endpoint levels of a slot
// a is the west (horizontal) or north (vertical) endpoint
func Classify(o grid.Orientation, a, b terrain.Level) Category {
	switch {
	case a == b:
		return Level
	case o == grid.Horizontal && a > b:
		return HighWest
	case o == grid.Horizontal:
		return HighEast
	case a > b:
		return HighNorth
	default:
		return HighSouth
	}
}

// categoryVariants maps slope category to the variant of a plain wall
var categoryVariants = [...]Variant{
	HighWest:  VariantHillWest,
	HighEast:  VariantHillEast,
	HighNorth: VariantHillNorth,
	HighSouth: VariantHillSouth,
}

// VariantFor maps a category to the visual variant; doors always use their straight variant
func VariantFor(cat Category, o grid.Orientation, door bool) Variant {
	switch {
	case door && o == grid.Horizontal:
		return VariantDoorHorizontal
	case door:
		return VariantDoorVertical
	case cat == Level && o == grid.Horizontal:
		return VariantHorizontal
	case cat == Level:
		return VariantVertical
	}
	return categoryVariants[cat]
}

// Derive computes the geometry of a wall in slot s
func Derive(s grid.Slot, door bool, h Heights) Geometry {
	pa, pb := s.Endpoints()
	a, b := h.ElevationAt(pa), h.ElevationAt(pb)
	cat := Classify(s.Orientation, a, b)
	base := float64(min(a, b)) * h.Step()
	// A vertical wall rising south is anchored on its lower end but drawn from the raised one
	if cat == HighSouth {
		base += h.Step()
	}
	return Geometry{
		Category: cat,
		Variant:  VariantFor(cat, s.Orientation, door),
		Base:     base,
	}
}
