package terrain

import "math"

// Level is the discrete elevation of a grid point
type Level int8

const (
	Water Level = -1
	Flat  Level = 0
	Hill  Level = 1
)

// Valid reports whether l is one of the three elevation levels
func (l Level) Valid() bool { return l >= Water && l <= Hill }

func (l Level) String() string {
	switch l {
	case Water:
		return "water"
	case Flat:
		return "flat"
	case Hill:
		return "hill"
	}
	return "invalid"
}

// DefaultStep is the height of one elevation level in world units
const DefaultStep = 0.5

// SlopeVariant is one of the 15 canonical corner patterns of a cell
// Corner names refer to the raised (High) or lowered (Low) corner relative to the other three
type SlopeVariant uint8

const (
	SlopeFlat SlopeVariant = iota

	// Simple slopes, named by the direction the surface rises toward
	SlopeRisingSouth
	SlopeRisingNorth
	SlopeRisingEast
	SlopeRisingWest

	// Convex corners: one corner above the other three
	CornerHighNW
	CornerHighNE
	CornerHighSW
	CornerHighSE

	// Concave corners: one corner below the other three
	CornerLowNW
	CornerLowNE
	CornerLowSW
	CornerLowSE

	// Saddles: diagonal corners share a level
	SaddleNWSE // NW and SE raised
	SaddleNESW // NE and SW raised

	SlopeVariantCount
)

var slopeNames = [SlopeVariantCount]string{
	"flat",
	"rising-south", "rising-north", "rising-east", "rising-west",
	"high-nw", "high-ne", "high-sw", "high-se",
	"low-nw", "low-ne", "low-sw", "low-se",
	"saddle-nwse", "saddle-nesw",
}

func (v SlopeVariant) String() string {
	if v < SlopeVariantCount {
		return slopeNames[v]
	}
	return "unknown"
}

// Classify derives the slope variant from the four corner levels
// Corner sets that span more than one level step fall back to SlopeFlat
func Classify(nw, ne, sw, se Level) SlopeVariant {
	switch {
	case nw == ne && nw == sw && nw == se:
		return SlopeFlat
	case nw == ne && sw == se && nw < sw:
		return SlopeRisingSouth
	case nw == ne && sw == se && nw > sw:
		return SlopeRisingNorth
	case nw == sw && ne == se && nw < ne:
		return SlopeRisingEast
	case nw == sw && ne == se && nw > ne:
		return SlopeRisingWest
	case ne == sw && ne == se && nw > se:
		return CornerHighNW
	case nw == sw && nw == se && ne > nw:
		return CornerHighNE
	case nw == ne && nw == se && sw > nw:
		return CornerHighSW
	case nw == ne && nw == sw && se > nw:
		return CornerHighSE
	case ne == sw && ne == se && nw < se:
		return CornerLowNW
	case nw == sw && nw == se && ne < nw:
		return CornerLowNE
	case nw == ne && nw == se && sw < nw:
		return CornerLowSW
	case nw == ne && nw == sw && se < nw:
		return CornerLowSE
	case nw == se && ne == sw && nw > ne:
		return SaddleNWSE
	case nw == se && ne == sw && nw < ne:
		return SaddleNESW
	}
	return SlopeFlat
}

// Rise returns the height above the cell base, in level steps, at fractional in-cell position (fx, fy)
// fx grows east and fy grows south, both in [0,1]
func (v SlopeVariant) Rise(fx, fy float64) float64 {
	switch v {
	case SlopeRisingSouth:
		return fy
	case SlopeRisingNorth:
		return 1 - fy
	case SlopeRisingEast:
		return fx
	case SlopeRisingWest:
		return 1 - fx
	case CornerHighNW:
		return math.Max(1-fx-fy, 0)
	case CornerHighNE:
		return math.Max(fx-fy, 0)
	case CornerHighSW:
		return math.Max(fy-fx, 0)
	case CornerHighSE:
		return math.Max(fx+fy-1, 0)
	case CornerLowNW:
		return math.Max(fx, fy)
	case CornerLowNE:
		return math.Max(1-fx, fy)
	case CornerLowSW:
		return math.Max(fx, 1-fy)
	case CornerLowSE:
		return math.Max(1-fx, 1-fy)
	case SaddleNWSE:
		return math.Max(1-fx-fy, fx+fy-1)
	case SaddleNESW:
		return math.Max(fx-fy, fy-fx)
	}
	return 0
}
