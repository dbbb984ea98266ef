package parameter

// World Dimensions
const (
	// DefaultCols is the default number of cells per row
	DefaultCols = 48

	// DefaultRows is the default number of cell rows
	DefaultRows = 24

	// ElevationStep is the world height of one elevation level
	ElevationStep = 0.5
)

// Edit Cascades
const (
	// GeometryRefreshRadius is the Chebyshev point radius around an elevation edit whose walls are re-derived
	GeometryRefreshRadius = 2

	// BrushRadius is the default circle brush radius for the hill tool (points)
	BrushRadius = 1.5

	// WallAsset is the asset name used by tools when none is given
	WallAsset = "fence"

	// BorderAsset marks the indestructible map boundary
	BorderAsset = "border"
)

// Area naming
const (
	// AreaPrefix prefixes generated area ids, followed by the scan-order index
	AreaPrefix = "area-"
)
