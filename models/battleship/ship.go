package battleship

import (
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const (
	MinShipSize = 1
	MaxShipSize = 4
)

type Orientation uint8

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (o Orientation) Rotate() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

type SegmentState uint8

const (
	SegmentIntact SegmentState = iota
	SegmentDamaged
	SegmentDestroyed
)

func (s SegmentState) String() string {
	switch s {
	case SegmentIntact:
		return "intact"
	case SegmentDamaged:
		return "damaged"
	case SegmentDestroyed:
		return "destroyed"
	default:
		return "invalid"
	}
}

type Ship struct {
	start             Position
	orientation       Orientation
	segments          []SegmentState
	number            int
	destroyedSegments int
	hits              int
}

func NewShip(start Position, orientation Orientation, size, number int) (*Ship, error) {
	if size < MinShipSize || size > MaxShipSize {
		return nil, cerr.ErrShipSize(size)
	}

	return &Ship{
		start:       start,
		orientation: orientation,
		segments:    make([]SegmentState, size),
		number:      number,
	}, nil
}

func (sh *Ship) Size() int                { return len(sh.segments) }
func (sh *Ship) Start() Position          { return sh.start }
func (sh *Ship) Orientation() Orientation { return sh.orientation }
func (sh *Ship) Number() int              { return sh.number }
func (sh *Ship) Hits() int                { return sh.hits }
func (sh *Ship) DestroyedSegments() int   { return sh.destroyedSegments }

func (sh *Ship) Segments() []SegmentState {
	segments := make([]SegmentState, len(sh.segments))
	copy(segments, sh.segments)
	return segments
}

// Returns the state of segment idx. Out of range
// indexes report false.
func (sh *Ship) SegmentState(idx int) (SegmentState, bool) {
	if idx < 0 || idx >= len(sh.segments) {
		return SegmentIntact, false
	}
	return sh.segments[idx], true
}

// Locates the segment sitting on pos by walking the ship axis.
// Returns -1 if pos is not part of the ship footprint.
func (sh *Ship) SegmentIndex(pos Position) int {
	var idx int
	if sh.orientation == Horizontal {
		if pos.Y != sh.start.Y {
			return -1
		}
		idx = pos.X - sh.start.X
	} else {
		if pos.X != sh.start.X {
			return -1
		}
		idx = pos.Y - sh.start.Y
	}

	if idx < 0 || idx >= len(sh.segments) {
		return -1
	}
	return idx
}

func (sh *Ship) SegmentPosition(idx int) Position {
	if idx < 0 || idx >= len(sh.segments) {
		return NoPosition
	}
	if sh.orientation == Horizontal {
		return NewPosition(sh.start.X+idx, sh.start.Y)
	}
	return NewPosition(sh.start.X, sh.start.Y+idx)
}

// Returns every cell of the ship footprint in segment order
func (sh *Ship) Cells() []Position {
	return shipCells(sh.start, len(sh.segments), sh.orientation)
}

func shipCells(start Position, size int, orientation Orientation) []Position {
	cells := make([]Position, 0, size)
	for i := 0; i < size; i++ {
		if orientation == Horizontal {
			cells = append(cells, NewPosition(start.X+i, start.Y))
		} else {
			cells = append(cells, NewPosition(start.X, start.Y+i))
		}
	}
	return cells
}

// Hit applies damage to segment idx. An intact segment becomes
// damaged, or destroyed straight away if damage is 2 or more.
// A damaged segment is always finalized. Destroyed segments
// do not change. Reports whether the segment changed.
func (sh *Ship) Hit(idx, damage int) bool {
	if idx < 0 || idx >= len(sh.segments) {
		return false
	}

	switch sh.segments[idx] {
	case SegmentIntact:
		sh.hits++
		if damage >= 2 {
			sh.segments[idx] = SegmentDestroyed
			sh.destroyedSegments++
			return true
		}
		sh.segments[idx] = SegmentDamaged
		return true

	case SegmentDamaged:
		sh.hits++
		sh.segments[idx] = SegmentDestroyed
		sh.destroyedSegments++
		return true
	}

	return false
}

func (sh *Ship) IsDestroyed() bool {
	return sh.destroyedSegments == len(sh.segments)
}

// Idempotent
func (sh *Ship) MarkFullyDestroyed() {
	for i := range sh.segments {
		sh.segments[i] = SegmentDestroyed
	}
	sh.destroyedSegments = len(sh.segments)
}

func (sh *Ship) reset() {
	for i := range sh.segments {
		sh.segments[i] = SegmentIntact
	}
	sh.destroyedSegments = 0
	sh.hits = 0
}

func (sh *Ship) clone() *Ship {
	cp := *sh
	cp.segments = sh.Segments()
	return &cp
}

// Used by the decoder; keeps the destroyed counter
// consistent with the segment states.
func (sh *Ship) setSegments(states []SegmentState) {
	copy(sh.segments, states)
	sh.destroyedSegments = 0
	for _, s := range sh.segments {
		if s == SegmentDestroyed {
			sh.destroyedSegments++
		}
	}
}
