// FILE: cmd/world-sandbox/draw.go
package main

import (
	"fmt"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/parameter/visual"
	"github.com/lixenwraith/tileworld/status"
	"github.com/lixenwraith/tileworld/terrain"
)

const statusLines = 2

var pointRunes = [3]rune{'~', '·', '^'}

var slopeRunes = [terrain.SlopeVariantCount]rune{
	' ',
	'↓', '↑', '→', '←',
	'◤', '◥', '◣', '◢',
	'▘', '▝', '▖', '▗',
	'╲', '╱',
}

func color(idx uint8) tcell.Color { return tcell.PaletteColor(int(idx)) }

func terrainColor(l terrain.Level) tcell.Color { return color(visual.Terrain256[l+1]) }

// viewOffset scrolls so pos stays visible within a window of size span over length total
func viewOffset(pos, total, span int) int {
	if span <= 0 || total <= span {
		return 0
	}
	return max(0, min(total-span, pos-span/2))
}

func (s *Sandbox) draw() {
	s.screen.Clear()
	w, h := s.screen.Size()
	viewH := h - statusLines
	b := s.world.Bounds()
	latW, latH := 2*b.Cols+1, 2*b.Rows+1
	offX := viewOffset(s.cursorX, latW, w)
	offY := viewOffset(s.cursorY, latH, viewH)

	for sy := 0; sy < viewH && sy+offY < latH; sy++ {
		for sx := 0; sx < w && sx+offX < latW; sx++ {
			r, style := s.glyph(sx+offX, sy+offY)
			s.screen.SetContent(sx, sy, r, nil, style)
		}
	}

	if s.anchored {
		r, style := s.glyph(s.anchorX, s.anchorY)
		s.screen.SetContent(s.anchorX-offX, s.anchorY-offY, r, nil, style.Background(color(visual.Cursor256)).Foreground(tcell.ColorBlack))
	}

	if s.cursorError && time.Since(s.cursorErrorTime).Milliseconds() > errorBlinkMs {
		s.cursorError = false
	}
	r, style := s.glyph(s.cursorX, s.cursorY)
	if s.cursorError {
		style = style.Background(color(visual.RejectFlash256)).Foreground(tcell.ColorWhite)
	} else {
		style = style.Reverse(true)
	}
	s.screen.SetContent(s.cursorX-offX, s.cursorY-offY, r, nil, style)

	s.drawStatus(w, h)
	s.screen.Show()
}

// glyph renders one lattice position
func (s *Sandbox) glyph(x, y int) (rune, tcell.Style) {
	base := tcell.StyleDefault
	switch {
	case x%2 == 0 && y%2 == 0:
		p := grid.Point{X: x / 2, Y: y / 2}
		st := base.Background(terrainColor(s.world.ElevationAt(p))).Foreground(tcell.ColorBlack)
		for _, sl := range grid.SlotsTouching(p) {
			if _, ok := s.world.WallAt(sl); ok {
				return '┼', st.Foreground(color(visual.Wall256))
			}
		}
		return pointRunes[s.world.ElevationAt(p)+1], st

	case x%2 == 1 && y%2 == 1:
		return s.cellGlyph(grid.Cell{X: x / 2, Y: y / 2})
	}

	sl := slotAt(x, y)
	a, _ := sl.Endpoints()
	st := base.Background(terrainColor(s.world.ElevationAt(a)))
	wl, ok := s.world.WallAt(sl)
	if !ok {
		return ' ', st
	}
	fg := color(visual.Wall256)
	switch {
	case wl.Door:
		fg = color(visual.Door256)
	case wl.Indestructible:
		fg = color(visual.Border256)
	}
	st = st.Foreground(fg).Bold(true)
	switch {
	case sl.Orientation == grid.Horizontal && wl.Door:
		return '┄', st
	case sl.Orientation == grid.Horizontal:
		return '─', st
	case wl.Door:
		return '┆', st
	}
	return '│', st
}

func (s *Sandbox) cellGlyph(c grid.Cell) (rune, tcell.Style) {
	variant := s.world.SlopeVariantAt(c)
	var bg tcell.Color
	switch {
	case s.world.IsWater(c):
		bg = terrainColor(terrain.Water)
	case variant != terrain.SlopeFlat:
		bg = color(visual.Slope256)
	default:
		bg = terrainColor(s.world.ElevationAt(grid.Point{X: c.X, Y: c.Y}))
	}
	if id, ok := s.world.AreaAt(c); ok {
		if a, _ := s.world.Areas().Get(id); a != nil && a.Highlighted {
			bg = color(visual.Highlight256)
		}
	}
	st := tcell.StyleDefault.Background(bg).Foreground(tcell.ColorBlack)

	if s.hasWalker && c == s.walker {
		return '@', st.Foreground(color(visual.Cursor256)).Bold(true)
	}
	if o, ok := s.world.ObjectAt(c); ok {
		return unicode.ToUpper([]rune(o.Name)[0]), st.Foreground(color(visual.Object256))
	}
	if s.world.Navigation().OnMarkedPath(c) {
		return '•', st.Foreground(color(visual.Path256))
	}
	return slopeRunes[variant], st
}

func (s *Sandbox) drawStatus(w, h int) {
	st := tcell.StyleDefault.Background(color(visual.StatusBg256)).Foreground(color(visual.StatusFg256))

	ints := s.metrics.Ints
	line1 := fmt.Sprintf(" [%s] %s | areas %d | ver %d | paths %d/%d/%d %.1fms | walker %s",
		s.mode, s.describeCursor(), s.world.Areas().Len(), s.world.Version(),
		ints.Get(status.PathRequests).Load(), ints.Get(status.PathFound).Load(), ints.Get(status.PathNone).Load(),
		s.metrics.Floats.Get(status.PathLastMillis).Get(), s.follower.State())
	drawText(s.screen, 0, h-2, w, line1, st)
	drawText(s.screen, 0, h-1, w, " "+s.message, st)
}

func (s *Sandbox) describeCursor() string {
	x, y := s.cursorX, s.cursorY
	switch {
	case s.onPoint():
		p := grid.Point{X: x / 2, Y: y / 2}
		return fmt.Sprintf("point %v %s", p, s.world.ElevationAt(p))
	case s.onSlot():
		sl := slotAt(x, y)
		if wl, ok := s.world.WallAt(sl); ok {
			return fmt.Sprintf("slot %v %s door=%v", sl, wl.Asset, wl.Door)
		}
		return fmt.Sprintf("slot %v empty", sl)
	}
	c := grid.Cell{X: x / 2, Y: y / 2}
	id, _ := s.world.AreaAt(c)
	return fmt.Sprintf("cell %v %s h=%.2f %s %s", c, s.world.SlopeVariantAt(c),
		s.world.HeightAt(float64(c.X)+0.5, float64(c.Y)+0.5), s.world.NodeClass(c), id)
}

// drawText fills row y with text padded to width w
func drawText(screen tcell.Screen, x, y, w int, text string, style tcell.Style) {
	if y < 0 {
		return
	}
	col := x
	for _, r := range text {
		if col >= w {
			return
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < w; col++ {
		screen.SetContent(col, y, ' ', nil, style)
	}
}
