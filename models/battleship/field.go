package battleship

import (
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const DefaultMaxPlacementAttempts = 10000

// PlayingField owns one side of the game: the real grid holding
// the ships, the visible grid built up by resolved shots and the
// scan overlay written by the Scanner ability.
type PlayingField struct {
	width   int
	height  int
	real    Grid
	visible Grid
	scanned [][]bool

	ships []*Ship

	// Ships pulled out with ClearShip, waiting to be placed again
	removed         []*Ship
	replacementMode bool

	orientation Orientation
}

func NewPlayingField(width, height int) *PlayingField {
	return &PlayingField{
		width:   width,
		height:  height,
		real:    NewGrid(width, height, CellEmpty),
		visible: NewGrid(width, height, CellUnknown),
		scanned: newOverlay(width, height),
		ships:   make([]*Ship, 0, 10),
	}
}

func (pf *PlayingField) Width() int  { return pf.width }
func (pf *PlayingField) Height() int { return pf.height }
func (pf *PlayingField) Count() int  { return len(pf.ships) }

func (pf *PlayingField) IsValid(x, y int) bool {
	return isValid(x, y, pf.width, pf.height)
}

func (pf *PlayingField) Orientation() Orientation { return pf.orientation }

func (pf *PlayingField) RotateOrientation() {
	pf.orientation = pf.orientation.Rotate()
}

func (pf *PlayingField) IsInReplacementMode() bool { return pf.replacementMode }

func (pf *PlayingField) HasShipsToReplace() bool { return len(pf.removed) != 0 }

// Size of the ship that the next PlaceShip call re-inserts.
// Returns false when nothing waits for replacement.
func (pf *PlayingField) PendingShipSize() (int, bool) {
	if len(pf.removed) == 0 {
		return 0, false
	}
	return pf.removed[len(pf.removed)-1].Size(), true
}

// validatePlacement runs every check before anything is written,
// a rejected placement leaves the field as it was.
func (pf *PlayingField) validatePlacement(x, y, size int, orientation Orientation) error {
	if size < MinShipSize || size > MaxShipSize {
		return cerr.ErrShipSize(size)
	}

	cells := shipCells(NewPosition(x, y), size, orientation)
	for _, c := range cells {
		if !pf.IsValid(c.X, c.Y) {
			return cerr.ErrShipOutOfBounds(c.X, c.Y, pf.width, pf.height)
		}
		if pf.real[c.Y][c.X].IsShip() {
			return cerr.ErrShipsOverlap(c.X, c.Y)
		}
	}

	for _, c := range cells {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				adjX, adjY := c.X+dx, c.Y+dy
				if pf.IsValid(adjX, adjY) && pf.real[adjY][adjX].IsShip() {
					return cerr.ErrShipsTooClose(c.X, c.Y, adjX, adjY)
				}
			}
		}
	}
	return nil
}

// PlaceShip puts a ship with its bow at (x, y). In replacement mode the
// most recently cleared ship is re-inserted instead of creating a new one.
func (pf *PlayingField) PlaceShip(x, y, size int, orientation Orientation) error {
	if pf.replacementMode && len(pf.removed) != 0 {
		return pf.placeRemovedShip(x, y, size, orientation)
	}
	return pf.placeNewShip(x, y, size, orientation)
}

func (pf *PlayingField) placeNewShip(x, y, size int, orientation Orientation) error {
	if err := pf.validatePlacement(x, y, size, orientation); err != nil {
		return err
	}

	ship, err := NewShip(NewPosition(x, y), orientation, size, len(pf.ships))
	if err != nil {
		return err
	}
	pf.putOnGrid(ship)
	return nil
}

func (pf *PlayingField) placeRemovedShip(x, y, size int, orientation Orientation) error {
	ship := pf.removed[len(pf.removed)-1]
	if size != ship.Size() {
		return cerr.ErrShipSize(size)
	}
	if err := pf.validatePlacement(x, y, size, orientation); err != nil {
		return err
	}

	ship.start = NewPosition(x, y)
	ship.orientation = orientation
	ship.number = len(pf.ships)
	pf.putOnGrid(ship)

	pf.removed = pf.removed[:len(pf.removed)-1]
	if len(pf.removed) == 0 {
		pf.replacementMode = false
	}
	return nil
}

func (pf *PlayingField) putOnGrid(ship *Ship) {
	for i, c := range ship.Cells() {
		pf.real[c.Y][c.X].setShip(ship.number, i)
	}
	pf.ships = append(pf.ships, ship)
}

// SetRandomShips places every ship of the fleet at random positions.
// Each ship gets up to maxAttempts draws; if one runs out the error
// is returned and the ships placed so far stay on the field. The
// caller is expected to ClearField and retry.
func (pf *PlayingField) SetRandomShips(fleet Fleet, rng Rand, maxAttempts int) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxPlacementAttempts
	}

	for i := 0; i < fleet.Count(); i++ {
		size, _ := fleet.ShipSize(i)

		placed := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			x := rng.Intn(pf.width)
			y := rng.Intn(pf.height)
			orientation := Horizontal
			if rng.Intn(2) == 1 {
				orientation = Vertical
			}

			if err := pf.PlaceShip(x, y, size, orientation); err == nil {
				placed = true
				break
			}
		}

		if !placed {
			return cerr.ErrCannotPlaceFleet(i, size, maxAttempts)
		}
	}
	return nil
}

// ClearShip pulls the ship covering (x, y) off the field onto the
// removal stack. Remaining ships are renumbered to stay contiguous.
func (pf *PlayingField) ClearShip(x, y int) error {
	if !pf.IsValid(x, y) {
		return cerr.ErrShipOutOfBounds(x, y, pf.width, pf.height)
	}
	cell := pf.real[y][x]
	if !cell.IsShip() {
		return cerr.ErrNoShipAtPosition(x, y)
	}

	shipIdx := cell.ShipIndex
	ship := pf.ships[shipIdx]
	for _, c := range ship.Cells() {
		pf.real[c.Y][c.X].setEmpty()
	}

	pf.removed = append(pf.removed, ship)
	pf.ships = append(pf.ships[:shipIdx], pf.ships[shipIdx+1:]...)
	pf.renumberAfterRemoval(shipIdx)

	pf.replacementMode = true
	return nil
}

func (pf *PlayingField) renumberAfterRemoval(removedIdx int) {
	for y := range pf.real {
		for x := range pf.real[y] {
			c := &pf.real[y][x]
			if c.IsShip() && c.ShipIndex > removedIdx {
				c.ShipIndex--
			}
		}
	}
	for i := removedIdx; i < len(pf.ships); i++ {
		pf.ships[i].number = i
	}
}

func (pf *PlayingField) IsShipCell(x, y int) bool {
	if !pf.IsValid(x, y) {
		return false
	}
	return pf.real[y][x].IsShip()
}

// MarkScanned records reconnaissance on the overlay only,
// the visible grid is left alone.
func (pf *PlayingField) MarkScanned(x, y int) {
	if pf.IsValid(x, y) {
		pf.scanned[y][x] = true
	}
}

func (pf *PlayingField) IsScanned(x, y int) bool {
	if !pf.IsValid(x, y) {
		return false
	}
	return pf.scanned[y][x]
}

func (pf *PlayingField) VisibleCell(x, y int) (Cell, error) {
	if !pf.IsValid(x, y) {
		return Cell{}, cerr.ErrShipOutOfBounds(x, y, pf.width, pf.height)
	}
	return pf.visible[y][x], nil
}

func (pf *PlayingField) RealCell(x, y int) (Cell, error) {
	if !pf.IsValid(x, y) {
		return Cell{}, cerr.ErrShipOutOfBounds(x, y, pf.width, pf.height)
	}
	return pf.real[y][x], nil
}

// Returns a copy of the visible grid
func (pf *PlayingField) VisibleGrid() Grid {
	return pf.visible.clone()
}

func (pf *PlayingField) Ship(idx int) (*Ship, error) {
	if idx < 0 || idx >= len(pf.ships) {
		return nil, cerr.ErrShipIndex(idx)
	}
	return pf.ships[idx], nil
}

// Ships returns copies of the active ships in ship-number order.
func (pf *PlayingField) Ships() []Ship {
	ships := make([]Ship, len(pf.ships))
	for i, s := range pf.ships {
		ships[i] = *s.clone()
	}
	return ships
}

// ShipAt finds the ship and segment sitting on (x, y).
func (pf *PlayingField) ShipAt(x, y int) (*Ship, int, bool) {
	if !pf.IsShipCell(x, y) {
		return nil, -1, false
	}
	c := pf.real[y][x]
	return pf.ships[c.ShipIndex], c.SegmentIndex, true
}

// False for a field with no ships at all.
func (pf *PlayingField) IsAllShipsDestroyed() bool {
	if len(pf.ships) == 0 {
		return false
	}
	for _, s := range pf.ships {
		if !s.IsDestroyed() {
			return false
		}
	}
	return true
}

func (pf *PlayingField) DestroyedShips() int {
	var n int
	for _, s := range pf.ships {
		if s.IsDestroyed() {
			n++
		}
	}
	return n
}

// ClearField removes every ship, including the ones
// waiting for replacement, and forgets all shots.
func (pf *PlayingField) ClearField() {
	pf.real.fill(CellEmpty)
	pf.visible.fill(CellUnknown)
	pf.scanned = newOverlay(pf.width, pf.height)
	pf.ships = pf.ships[:0]
	pf.removed = nil
	pf.replacementMode = false
}

// ReturnStartState keeps the ship layout but forgets every shot,
// scan and damage. Used to replay a layout in the next round.
func (pf *PlayingField) ReturnStartState() {
	pf.visible.fill(CellUnknown)
	pf.scanned = newOverlay(pf.width, pf.height)
	for _, s := range pf.ships {
		s.reset()
	}
}

func (pf *PlayingField) Clone() *PlayingField {
	cp := &PlayingField{
		width:           pf.width,
		height:          pf.height,
		real:            pf.real.clone(),
		visible:         pf.visible.clone(),
		scanned:         newOverlay(pf.width, pf.height),
		ships:           make([]*Ship, len(pf.ships)),
		removed:         make([]*Ship, len(pf.removed)),
		replacementMode: pf.replacementMode,
		orientation:     pf.orientation,
	}
	for y := range pf.scanned {
		copy(cp.scanned[y], pf.scanned[y])
	}
	for i, s := range pf.ships {
		cp.ships[i] = s.clone()
	}
	for i, s := range pf.removed {
		cp.removed[i] = s.clone()
	}
	return cp
}
