package battleship

// ShotResult is the outcome of resolving one shot on a field.
type ShotResult uint8

const (
	ShotMiss ShotResult = iota
	ShotHit
	ShotSunk
	ShotAlreadyResolved
	ShotOutOfBounds
)

func (sr ShotResult) String() string {
	switch sr {
	case ShotMiss:
		return "miss"
	case ShotHit:
		return "hit"
	case ShotSunk:
		return "sunk"
	case ShotAlreadyResolved:
		return "already resolved"
	case ShotOutOfBounds:
		return "out of bounds"
	default:
		return "invalid"
	}
}

// Reports whether the shot damaged a ship.
func (sr ShotResult) IsHit() bool {
	return sr == ShotHit || sr == ShotSunk
}

// Damage resolves a shot of the given magnitude at (x, y).
//
// Water turns the visible cell Empty once, a ship cell gets its segment
// hit and revealed. When the hit sinks the ship every segment is revealed
// and every unknown cell around the hull is marked as water.
func (pf *PlayingField) Damage(x, y, damage int) ShotResult {
	if !pf.IsValid(x, y) {
		return ShotOutOfBounds
	}

	realCell := pf.real[y][x]
	if !realCell.IsShip() {
		if !pf.visible[y][x].IsUnknown() {
			return ShotAlreadyResolved
		}
		pf.visible[y][x].setEmpty()
		return ShotMiss
	}

	shipIdx, segmentIdx := realCell.ShipIndex, realCell.SegmentIndex
	if shipIdx < 0 || shipIdx >= len(pf.ships) {
		return ShotAlreadyResolved
	}

	ship := pf.ships[shipIdx]
	if state, ok := ship.SegmentState(segmentIdx); !ok || state == SegmentDestroyed {
		return ShotAlreadyResolved
	}

	ship.Hit(segmentIdx, damage)
	pf.visible[y][x].setShip(shipIdx, segmentIdx)

	if !ship.IsDestroyed() {
		return ShotHit
	}

	ship.MarkFullyDestroyed()
	pf.revealSunkShip(shipIdx, ship)
	return ShotSunk
}

func (pf *PlayingField) revealSunkShip(shipIdx int, ship *Ship) {
	cells := ship.Cells()
	for i, c := range cells {
		if pf.IsValid(c.X, c.Y) {
			pf.visible[c.Y][c.X].setShip(shipIdx, i)
		}
	}

	for _, c := range cells {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				wx, wy := c.X+dx, c.Y+dy
				if pf.IsValid(wx, wy) && pf.visible[wy][wx].IsUnknown() {
					pf.visible[wy][wx].setEmpty()
				}
			}
		}
	}
}
