// FILE: cmd/world-sandbox/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/tileworld/config"
	"github.com/lixenwraith/tileworld/event"
	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/log"
	"github.com/lixenwraith/tileworld/persistence"
	"github.com/lixenwraith/tileworld/status"
	"github.com/lixenwraith/tileworld/terrain"
	"github.com/lixenwraith/tileworld/tool"
	"github.com/lixenwraith/tileworld/world"
)

const (
	tickMs       = 33
	walkEvery    = 4 // ticks per walker step
	errorBlinkMs = 500
	defaultLog   = "world-sandbox.log"
	mazeBraiding = 0.2
)

// Mode is the active editing tool
type Mode uint8

const (
	ModeRaise Mode = iota
	ModeLower
	ModeFlatten
	ModeWall
	ModeDoor
	ModeDelete
	ModeObject
	ModeWalk
	modeCount
)

var modeNames = [modeCount]string{"raise", "lower", "flatten", "wall", "door", "delete", "object", "walk"}

func (m Mode) String() string { return modeNames[m] }

var crate = world.Object{Name: "crate", Solid: true}

type Sandbox struct {
	screen tcell.Screen
	cfg    *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	log    *logrus.Entry

	world   *world.World
	events  *event.EventQueue
	metrics *status.Registry
	store   persistence.Storage

	hill, lower, flatten *tool.HillTool
	walls                *tool.WallTool
	doors                *tool.DoorTool
	del                  *tool.DeleteTool
	stamp                *tool.ObjectTool

	mode Mode

	// Cursor on the render lattice: even/even is a point, odd/odd a cell, mixed a wall slot
	cursorX, cursorY int
	anchorX, anchorY int
	anchored         bool

	cursorError     bool
	cursorErrorTime time.Time
	message         string

	walker    grid.Cell
	hasWalker bool
	follower  *world.Follower
	lastState world.FollowState
	ticks     int

	audioInit bool
}

func NewSandbox(cfg *config.Config, logger *logrus.Logger) (*Sandbox, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sandbox{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		log:     log.Component(logger, "sandbox"),
		events:  event.NewEventQueue(),
		metrics: status.NewRegistry(),
	}

	s.world = world.New(cfg.World,
		world.WithEvents(s.events),
		world.WithMetrics(s.metrics),
		world.WithLogger(logger),
		world.WithPathfinding(cfg.Pathfinding),
	)
	s.follower = s.world.NewFollower(s.world.DefaultQuery())

	s.hill = tool.NewHillTool(s.world, terrain.Hill)
	s.lower = tool.NewHillTool(s.world, terrain.Water)
	s.flatten = tool.NewHillTool(s.world, terrain.Flat)
	s.walls = tool.NewWallTool(s.world)
	s.doors = tool.NewDoorTool(s.world)
	s.del = &tool.DeleteTool{World: s.world}
	s.stamp = &tool.ObjectTool{World: s.world, Object: crate}

	store, err := persistence.Open(ctx, cfg.Storage, logger)
	switch {
	case errors.Is(err, persistence.ErrNoStorage):
	case err != nil:
		// Non-fatal, the sandbox runs without save slots
		s.log.WithError(err).Warn("storage unavailable")
	default:
		s.store = store
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		s.shutdown()
		return nil, err
	}
	if err := screen.Init(); err != nil {
		s.shutdown()
		return nil, err
	}
	s.screen = screen

	b := s.world.Bounds()
	s.cursorX, s.cursorY = b.Cols|1, b.Rows|1

	if cfg.Sandbox.Sound {
		if err := s.initAudio(); err != nil {
			// Non-fatal, sandbox can run without sound
			s.log.WithError(err).Warn("audio initialization failed")
		}
	}
	s.message = "1-8 tool, space apply, ? help"
	return s, nil
}

func (s *Sandbox) initAudio() error {
	sampleRate := beep.SampleRate(44100)
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		s.audioInit = true
	}
	return err
}

func (s *Sandbox) playRejectSound() {
	if !s.audioInit {
		return
	}

	sampleRate := beep.SampleRate(44100)
	duration := sampleRate.N(80 * time.Millisecond)
	sine, err := generators.SineTone(sampleRate, 220)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(duration, sine))
}

// reject flashes the cursor, plays the error tone and reports why
func (s *Sandbox) reject(msg string) {
	s.cursorError = true
	s.cursorErrorTime = time.Now()
	if last := s.metrics.Strings.Get(status.LastRejected).Load(); last != "" && msg == "" {
		msg = last
	}
	s.message = "rejected: " + msg
	s.playRejectSound()
}

// --- Lattice addressing ---

func (s *Sandbox) onPoint() bool { return s.cursorX%2 == 0 && s.cursorY%2 == 0 }

func (s *Sandbox) onSlot() bool { return (s.cursorX+s.cursorY)%2 == 1 }

// cellAt returns the cell under lattice position (x, y), using the cell south-east of points and slots
func (s *Sandbox) cellAt(x, y int) grid.Cell {
	b := s.world.Bounds()
	return grid.Cell{X: min(x/2, b.Cols-1), Y: min(y/2, b.Rows-1)}
}

func slotAt(x, y int) grid.Slot {
	if x%2 == 0 {
		return grid.Slot{Cell: grid.Cell{X: x / 2, Y: y / 2}, Orientation: grid.Vertical}
	}
	return grid.Slot{Cell: grid.Cell{X: x / 2, Y: y / 2}, Orientation: grid.Horizontal}
}

// slotSide maps a slot to a bounding cell and the side of that cell it lies on
func (s *Sandbox) slotSide(sl grid.Slot) (grid.Cell, grid.Side) {
	b := s.world.Bounds()
	if sl.Orientation == grid.Horizontal {
		if sl.Cell.Y >= b.Rows {
			return sl.Cell.Add(0, -1), grid.South
		}
		return sl.Cell, grid.North
	}
	if sl.Cell.X >= b.Cols {
		return sl.Cell.Add(-1, 0), grid.East
	}
	return sl.Cell, grid.West
}

func (s *Sandbox) moveCursor(dx, dy int) {
	b := s.world.Bounds()
	s.cursorX = max(0, min(2*b.Cols, s.cursorX+dx))
	s.cursorY = max(0, min(2*b.Rows, s.cursorY+dy))
}

// --- Actions ---

func (s *Sandbox) apply() {
	x, y := s.cursorX, s.cursorY
	fx, fy := float64(x)/2, float64(y)/2

	switch s.mode {
	case ModeRaise, ModeLower, ModeFlatten:
		if n := s.brush().Apply(fx, fy); n == 0 {
			s.reject("")
		} else {
			s.message = fmt.Sprintf("%s: %d points", s.mode, n)
		}

	case ModeWall:
		if !s.onSlot() {
			s.reject("move onto a wall slot")
			return
		}
		if !s.anchored {
			s.setAnchor("wall run")
			return
		}
		from := slotAt(s.anchorX, s.anchorY)
		to := slotAt(x, y)
		s.anchored = false
		if from.Orientation != to.Orientation {
			s.reject("run must keep one orientation")
			return
		}
		fromCell, side := s.slotSide(from)
		toCell, _ := s.slotSide(to)
		if n := s.walls.Apply(fromCell, toCell, side); n == 0 {
			s.reject("")
		} else {
			s.message = fmt.Sprintf("placed %d walls, %d areas", n, s.world.Areas().Len())
		}

	case ModeDoor:
		if !s.onSlot() {
			s.reject("move onto a wall slot")
			return
		}
		if !s.doors.Toggle(slotAt(x, y)) {
			s.reject("")
		}

	case ModeDelete:
		if !s.anchored {
			s.setAnchor("delete box")
			return
		}
		s.anchored = false
		n := s.del.Apply(s.cellAt(s.anchorX, s.anchorY), s.cellAt(x, y))
		s.message = fmt.Sprintf("removed %d", n)

	case ModeObject:
		c := s.cellAt(x, y)
		if _, ok := s.world.ObjectAt(c); ok {
			s.world.RemoveObject(c)
			return
		}
		if !s.stamp.Apply(c) {
			s.reject("")
		}

	case ModeWalk:
		c := s.cellAt(x, y)
		if !s.hasWalker {
			if s.world.IsSolid(c) {
				s.reject("cell is solid")
				return
			}
			s.walker, s.hasWalker = c, true
			s.message = "walker placed, pick a goal"
			return
		}
		s.follower.MoveTo(s.ctx, s.walker, c)
		s.message = fmt.Sprintf("walking to %v", c)
	}
}

func (s *Sandbox) brush() *tool.HillTool {
	switch s.mode {
	case ModeLower:
		return s.lower
	case ModeFlatten:
		return s.flatten
	}
	return s.hill
}

func (s *Sandbox) setAnchor(what string) {
	s.anchorX, s.anchorY, s.anchored = s.cursorX, s.cursorY, true
	s.message = what + ": move and press space again, esc cancels"
}

func (s *Sandbox) highlightArea() {
	id, ok := s.world.AreaAt(s.cellAt(s.cursorX, s.cursorY))
	if !ok {
		return
	}
	a, _ := s.world.Areas().Get(id)
	s.world.HighlightArea(id, !a.Highlighted)
	s.message = fmt.Sprintf("%s: %d cells, neighbors %v", id, a.Len(), a.Neighbors())
}

func (s *Sandbox) save() {
	if s.store == nil {
		s.reject("storage disabled")
		return
	}
	if err := persistence.SaveWorld(s.ctx, s.store, s.cfg.Storage.Slot, s.world); err != nil {
		s.log.WithError(err).Error("save failed")
		s.reject(err.Error())
		return
	}
	s.message = "saved " + s.cfg.Storage.Slot
}

func (s *Sandbox) load() {
	if s.store == nil {
		s.reject("storage disabled")
		return
	}
	if err := persistence.LoadWorld(s.ctx, s.store, s.cfg.Storage.Slot, s.world); err != nil {
		s.log.WithError(err).Error("load failed")
		s.reject(err.Error())
		return
	}
	s.follower.Stop()
	s.hasWalker = false
	s.message = "loaded " + s.cfg.Storage.Slot
}

// maze resets the world, lays a braided maze and sends a walker from its start to its end
func (s *Sandbox) maze() {
	s.world.Reset()
	layout, n := (&tool.MazeTool{World: s.world, Braiding: mazeBraiding}).Apply()
	s.walker, s.hasWalker = layout.Start, true
	s.follower.MoveTo(s.ctx, layout.Start, layout.End)
	s.message = fmt.Sprintf("maze: %d walls, reference route %d cells", n, len(layout.Solution))
}

// --- Loop ---

func (s *Sandbox) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC:
			return false
		case tcell.KeyEscape:
			if !s.anchored {
				return false
			}
			s.anchored = false
			s.message = "cancelled"
		case tcell.KeyUp:
			s.moveCursor(0, -1)
		case tcell.KeyDown:
			s.moveCursor(0, 1)
		case tcell.KeyLeft:
			s.moveCursor(-1, 0)
		case tcell.KeyRight:
			s.moveCursor(1, 0)
		case tcell.KeyEnter:
			s.apply()
		case tcell.KeyTab:
			s.mode = (s.mode + 1) % modeCount
			s.anchored = false
		case tcell.KeyRune:
			return s.handleRune(ev.Rune())
		}

	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

func (s *Sandbox) handleRune(r rune) bool {
	switch {
	case r >= '1' && r < '1'+rune(modeCount):
		s.mode = Mode(r - '1')
		s.anchored = false
		s.message = "tool: " + s.mode.String()
		return true
	}

	switch r {
	case 'q':
		return false
	case 'h':
		s.moveCursor(-1, 0)
	case 'j':
		s.moveCursor(0, 1)
	case 'k':
		s.moveCursor(0, -1)
	case 'l':
		s.moveCursor(1, 0)
	case 'H':
		s.moveCursor(-2, 0)
	case 'J':
		s.moveCursor(0, 2)
	case 'K':
		s.moveCursor(0, -2)
	case 'L':
		s.moveCursor(2, 0)
	case ' ':
		s.apply()
	case 'a':
		s.highlightArea()
	case 'r':
		s.world.RebuildAreas()
		s.message = fmt.Sprintf("%d areas", s.world.Areas().Len())
	case 's':
		s.save()
	case 'o':
		s.load()
	case 'X':
		s.world.Reset()
		s.follower.Stop()
		s.hasWalker = false
	case 'm':
		s.maze()
	case 'w':
		s.follower.Stop()
		s.hasWalker = false
		s.message = "walker removed"
	case '?':
		s.message = "hjkl/HJKL move, space apply, tab tool, a area, r rebuild, m maze, s save, o load, X reset, q quit"
	}
	return true
}

// update drains world events and steps the walker
func (s *Sandbox) update() {
	for _, ev := range s.events.Consume() {
		switch p := ev.Payload.(type) {
		case *event.PathResolvedPayload:
			if p.Found {
				s.message = fmt.Sprintf("path %v -> %v: %d cells", p.Start, p.Goal, p.Length)
			} else {
				s.message = fmt.Sprintf("no path %v -> %v", p.Start, p.Goal)
			}
		case *event.AreasChangedPayload:
			if p.A != "" {
				s.message = fmt.Sprintf("%s <-> %s connected=%v", p.A, p.B, p.Connected)
			}
		}
		s.log.WithFields(logrus.Fields{"event": ev.Type.String(), "seq": ev.Seq}).Trace("world event")
	}

	s.ticks++
	if !s.hasWalker || s.ticks%walkEvery != 0 {
		return
	}
	if next, ok := s.follower.Update(s.ctx, s.walker); ok {
		s.walker = next
	}
	if st := s.follower.State(); st != s.lastState {
		if st == world.FollowUnreachable {
			s.reject("goal unreachable")
		}
		s.lastState = st
	}
}

func (s *Sandbox) run() {
	ticker := time.NewTicker(tickMs * time.Millisecond)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !s.handleInput(ev) {
				return
			}
		case <-ticker.C:
			s.update()
			s.draw()
		}
	}
}

func (s *Sandbox) shutdown() {
	s.cancel()
	s.world.Close()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.WithError(err).Warn("storage close failed")
		}
	}
	if s.audioInit {
		speaker.Close()
	}
	if s.screen != nil {
		s.screen.Fini()
	}
	s.log.WithFields(logrus.Fields(s.metrics.Snapshot())).Info("sandbox closed")
}

func main() {
	configPath := flag.String("config", "", "Path to tileworld.toml (default ./tileworld.toml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Log lines on stderr would corrupt the screen
	if cfg.Log.File == "" {
		cfg.Log.File = defaultLog
	}
	logger, err := log.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	log.SetDefault(logger)

	sandbox, err := NewSandbox(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer sandbox.shutdown()

	sandbox.run()
}
