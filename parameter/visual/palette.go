// Package visual holds the xterm 256-palette indices used by the sandbox renderer
package visual

// Terrain256 maps elevation level + 1 (water, flat, hill) to palette indices
var Terrain256 = [3]uint8{
	25,  // Water: deep blue (0,1,3)
	64,  // Flat: grass (1,2,0)
	136, // Hill: ochre (3,2,0)
}

// Slope256 is the background for sloped flat-based cells
const Slope256 = 101

// Feature palette indices
const (
	Wall256        = 252 // Light grey
	Border256      = 244 // Mid grey
	Door256        = 172 // Orange
	Object256      = 231 // White
	Path256        = 51  // Cyan
	Cursor256      = 226 // Bright yellow
	Highlight256   = 219 // Pink for the highlighted area
	StatusFg256    = 250
	StatusBg256    = 235
	RejectFlash256 = 196 // Red
)
