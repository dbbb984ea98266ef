// Package persistence encodes world snapshots and stores them by slot name
package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/lixenwraith/tileworld/grid"
	"github.com/lixenwraith/tileworld/terrain"
	"github.com/lixenwraith/tileworld/wall"
	"github.com/lixenwraith/tileworld/world"
)

var (
	ErrBadSnapshot     = errors.New("persistence: malformed snapshot")
	ErrSnapshotVersion = errors.New("persistence: unsupported snapshot version")
)

// Header precedes every snapshot
// Fixed 8 bytes: [Magic:4][Version:2][Flags:2]
const HeaderSize = 8

const (
	// FormatVersion is written by Encode; Decode accepts only this version
	FormatVersion uint16 = 1

	// MaxDimension bounds cols and rows read from untrusted input
	MaxDimension = 1 << 12

	maxString = 1<<16 - 1
)

var magic = [4]byte{'T', 'W', 'L', 'D'}

// Slot and object record flags
const (
	flagExists uint8 = 1 << iota
	flagDoor
	flagIndestructible
	flagSolid
	flagSlopes
	flagWater
	flagHighlighted
)

// Marshal encodes s into a new byte slice
func Marshal(s world.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot from data
func Unmarshal(data []byte) (world.Snapshot, error) {
	return Decode(bytes.NewReader(data))
}

// Encode writes s in the current format
func Encode(w io.Writer, s world.Snapshot) error {
	b := grid.Bounds{Cols: s.Cols, Rows: s.Rows}
	switch {
	case s.Cols <= 0 || s.Rows <= 0 || s.Cols > MaxDimension || s.Rows > MaxDimension:
		return errors.Wrapf(ErrBadSnapshot, "dimensions %dx%d", s.Cols, s.Rows)
	case len(s.Levels) != (s.Cols+1)*(s.Rows+1):
		return errors.Wrapf(ErrBadSnapshot, "expected %d levels, got %d", (s.Cols+1)*(s.Rows+1), len(s.Levels))
	case len(s.Walls) != b.SlotCount():
		return errors.Wrapf(ErrBadSnapshot, "expected %d slots, got %d", b.SlotCount(), len(s.Walls))
	case len(s.Objects) != s.Cols*s.Rows:
		return errors.Wrapf(ErrBadSnapshot, "expected %d objects, got %d", s.Cols*s.Rows, len(s.Objects))
	}

	e := &encoder{w: bufio.NewWriter(w)}
	header := make([]byte, HeaderSize)
	copy(header[0:4], magic[:])
	binary.BigEndian.PutUint16(header[4:6], FormatVersion)
	e.bytes(header)

	e.u32(uint32(s.Cols))
	e.u32(uint32(s.Rows))
	for _, l := range s.Levels {
		e.u8(uint8(l))
	}

	for _, wl := range s.Walls {
		var f uint8
		if wl.Exists() {
			f |= flagExists
		}
		if wl.Door {
			f |= flagDoor
		}
		if wl.Indestructible {
			f |= flagIndestructible
		}
		e.u8(f)
		if wl.Exists() {
			e.str(wl.Asset)
		}
	}

	for _, o := range s.Objects {
		var f uint8
		if o.Exists() {
			f |= flagExists
		}
		if o.Solid {
			f |= flagSolid
		}
		if o.CanPlaceOnSlopes {
			f |= flagSlopes
		}
		if o.CanPlaceInWater {
			f |= flagWater
		}
		e.u8(f)
		if o.Exists() {
			e.str(o.Name)
		}
	}

	e.u32(uint32(len(s.Areas)))
	for _, a := range s.Areas {
		e.str(a.ID)
		var f uint8
		if a.Highlighted {
			f |= flagHighlighted
		}
		e.u8(f)
		e.u32(uint32(len(a.Cells)))
		for _, c := range a.Cells {
			e.u16(uint16(c.X))
			e.u16(uint16(c.Y))
		}
	}

	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// Decode reads a snapshot, validating the header and every length against the decoded dimensions
func Decode(r io.Reader) (world.Snapshot, error) {
	d := &decoder{r: bufio.NewReader(r)}

	header := d.bytes(HeaderSize)
	if d.err != nil {
		return world.Snapshot{}, d.err
	}
	if !bytes.Equal(header[0:4], magic[:]) {
		return world.Snapshot{}, errors.Wrap(ErrBadSnapshot, "magic")
	}
	if v := binary.BigEndian.Uint16(header[4:6]); v != FormatVersion {
		return world.Snapshot{}, errors.Wrapf(ErrSnapshotVersion, "got %d, want %d", v, FormatVersion)
	}

	cols, rows := int(d.u32()), int(d.u32())
	if d.err != nil {
		return world.Snapshot{}, d.err
	}
	if cols <= 0 || rows <= 0 || cols > MaxDimension || rows > MaxDimension {
		return world.Snapshot{}, errors.Wrapf(ErrBadSnapshot, "dimensions %dx%d", cols, rows)
	}
	b := grid.Bounds{Cols: cols, Rows: rows}
	s := world.Snapshot{
		Cols:    cols,
		Rows:    rows,
		Levels:  make([]terrain.Level, (cols+1)*(rows+1)),
		Walls:   make([]wall.Wall, b.SlotCount()),
		Objects: make([]world.Object, cols*rows),
	}

	for i := range s.Levels {
		l := terrain.Level(int8(d.u8()))
		if d.err == nil && !l.Valid() {
			d.fail("level %d at point %d", l, i)
		}
		s.Levels[i] = l
	}

	for i := range s.Walls {
		f := d.u8()
		if f&flagExists == 0 {
			if f != 0 {
				d.fail("flags %#x on empty slot %d", f, i)
			}
			continue
		}
		s.Walls[i] = wall.Wall{
			Asset:          d.str(),
			Door:           f&flagDoor != 0,
			Indestructible: f&flagIndestructible != 0,
		}
		if d.err == nil && s.Walls[i].Asset == "" {
			d.fail("empty asset in slot %d", i)
		}
	}

	for i := range s.Objects {
		f := d.u8()
		if f&flagExists == 0 {
			continue
		}
		s.Objects[i] = world.Object{
			Name:             d.str(),
			Solid:            f&flagSolid != 0,
			CanPlaceOnSlopes: f&flagSlopes != 0,
			CanPlaceInWater:  f&flagWater != 0,
		}
		if d.err == nil && s.Objects[i].Name == "" {
			d.fail("empty object name at cell %d", i)
		}
	}

	n := int(d.u32())
	if d.err == nil && n > cols*rows {
		d.fail("%d areas exceed %d cells", n, cols*rows)
	}
	for i := 0; i < n && d.err == nil; i++ {
		rec := world.AreaRecord{ID: d.str()}
		rec.Highlighted = d.u8()&flagHighlighted != 0
		count := int(d.u32())
		if d.err == nil && count > cols*rows {
			d.fail("area %q lists %d cells", rec.ID, count)
			break
		}
		if count > 0 {
			rec.Cells = make([]grid.Cell, 0, count)
		}
		for j := 0; j < count && d.err == nil; j++ {
			c := grid.Cell{X: int(d.u16()), Y: int(d.u16())}
			if d.err == nil && !b.InCells(c) {
				d.fail("area %q cell %v out of range", rec.ID, c)
			}
			rec.Cells = append(rec.Cells, c)
		}
		s.Areas = append(s.Areas, rec)
	}

	if d.err != nil {
		return world.Snapshot{}, d.err
	}
	return s, nil
}

// --- Primitive readers and writers with sticky errors ---

type encoder struct {
	w   *bufio.Writer
	buf [4]byte
	err error
}

func (e *encoder) bytes(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) u8(v uint8) {
	if e.err != nil {
		return
	}
	e.err = e.w.WriteByte(v)
}

func (e *encoder) u16(v uint16) {
	binary.BigEndian.PutUint16(e.buf[:2], v)
	e.bytes(e.buf[:2])
}

func (e *encoder) u32(v uint32) {
	binary.BigEndian.PutUint32(e.buf[:4], v)
	e.bytes(e.buf[:4])
}

func (e *encoder) str(s string) {
	if len(s) > maxString {
		if e.err == nil {
			e.err = errors.Wrapf(ErrBadSnapshot, "string of %d bytes", len(s))
		}
		return
	}
	e.u16(uint16(len(s)))
	e.bytes([]byte(s))
}

type decoder struct {
	r   *bufio.Reader
	buf [4]byte
	err error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = errors.Wrapf(ErrBadSnapshot, format, args...)
	}
}

func (d *decoder) read(p []byte) {
	if d.err != nil {
		return
	}
	if _, err := io.ReadFull(d.r, p); err != nil {
		d.err = errors.Wrap(ErrBadSnapshot, err.Error())
	}
}

func (d *decoder) bytes(n int) []byte {
	p := make([]byte, n)
	d.read(p)
	return p
}

func (d *decoder) u8() uint8 {
	d.read(d.buf[:1])
	if d.err != nil {
		return 0
	}
	return d.buf[0]
}

func (d *decoder) u16() uint16 {
	d.read(d.buf[:2])
	if d.err != nil {
		return 0
	}
	return binary.BigEndian.Uint16(d.buf[:2])
}

func (d *decoder) u32() uint32 {
	d.read(d.buf[:4])
	if d.err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(d.buf[:4])
}

func (d *decoder) str() string {
	n := int(d.u16())
	if d.err != nil || n == 0 {
		return ""
	}
	return string(d.bytes(n))
}
