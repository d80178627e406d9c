package battleship

import (
	"errors"
	"testing"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type placement struct {
	x, y, size  int
	orientation Orientation
}

// Standard fleet laid out on a 10x10 field, largest ship first
var standardLayout = []placement{
	{0, 0, 4, Horizontal},
	{5, 0, 3, Horizontal},
	{0, 2, 3, Horizontal},
	{4, 2, 2, Horizontal},
	{7, 2, 2, Horizontal},
	{0, 4, 2, Horizontal},
	{3, 4, 1, Horizontal},
	{5, 4, 1, Horizontal},
	{7, 4, 1, Horizontal},
	{9, 4, 1, Horizontal},
}

func newLaidOutField(t *testing.T, layout []placement) *PlayingField {
	t.Helper()
	pf := NewPlayingField(10, 10)
	for _, p := range layout {
		if err := pf.PlaceShip(p.x, p.y, p.size, p.orientation); err != nil {
			t.Fatalf("failed to lay out ship %+v: %v", p, err)
		}
	}
	return pf
}

// assertNoTouchingShips checks that every cell around a ship cell is
// either water or part of the same ship.
func assertNoTouchingShips(t *testing.T, pf *PlayingField) {
	t.Helper()
	for y := 0; y < pf.Height(); y++ {
		for x := 0; x < pf.Width(); x++ {
			cell := pf.real[y][x]
			if !cell.IsShip() {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if !pf.IsValid(nx, ny) || !pf.real[ny][nx].IsShip() {
						continue
					}
					if pf.real[ny][nx].ShipIndex != cell.ShipIndex {
						t.Fatalf("ships %d and %d touch at %d,%d", cell.ShipIndex, pf.real[ny][nx].ShipIndex, x, y)
					}
				}
			}
		}
	}
}

func TestPlaceShipValidation(t *testing.T) {
	tests := []struct {
		name        string
		p           placement
		expectedErr error
	}{
		{name: "valid far away", p: placement{6, 6, 3, Vertical}},
		{name: "out of bounds right", p: placement{8, 6, 3, Horizontal}, expectedErr: cerr.ErrOutOfBounds},
		{name: "out of bounds bottom", p: placement{6, 8, 3, Vertical}, expectedErr: cerr.ErrOutOfBounds},
		{name: "negative start", p: placement{-1, 0, 1, Horizontal}, expectedErr: cerr.ErrOutOfBounds},
		{name: "overlap", p: placement{1, 1, 2, Vertical}, expectedErr: cerr.ErrOverlap},
		{name: "touches side", p: placement{4, 2, 1, Horizontal}, expectedErr: cerr.ErrTooClose},
		{name: "touches diagonally", p: placement{4, 3, 2, Vertical}, expectedErr: cerr.ErrTooClose},
		{name: "invalid size", p: placement{6, 6, 5, Horizontal}, expectedErr: cerr.ErrInvalidShipSize},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pf := NewPlayingField(10, 10)
			if err := pf.PlaceShip(1, 2, 3, Horizontal); err != nil {
				t.Fatal(err)
			}

			err := pf.PlaceShip(test.p.x, test.p.y, test.p.size, test.p.orientation)
			if !errors.Is(err, test.expectedErr) {
				t.Fatalf("expected err: %v\t got: %v", test.expectedErr, err)
			}

			expectedCount := 1
			if test.expectedErr == nil {
				expectedCount = 2
			}
			if pf.Count() != expectedCount {
				t.Fatalf("expected ship count: %d\t got: %d", expectedCount, pf.Count())
			}
			assertNoTouchingShips(t, pf)
		})
	}
}

func TestRejectedPlacementLeavesFieldUntouched(t *testing.T) {
	pf := newLaidOutField(t, standardLayout[:2])
	before := pf.Clone()

	if err := pf.PlaceShip(3, 0, 1, Horizontal); err == nil {
		t.Fatal("expected placement next to a ship to fail")
	}

	for y := range pf.real {
		for x := range pf.real[y] {
			if pf.real[y][x] != before.real[y][x] {
				t.Fatalf("cell %d,%d changed after rejected placement", x, y)
			}
		}
	}
}

func TestClearShipAndReplace(t *testing.T) {
	pf := newLaidOutField(t, standardLayout[:3])

	if err := pf.ClearShip(6, 0); err != nil {
		t.Fatal(err)
	}
	if pf.Count() != 2 {
		t.Fatalf("expected ship count: 2\t got: %d", pf.Count())
	}
	if !pf.IsInReplacementMode() {
		t.Fatal("expected replacement mode after clearing a ship")
	}
	if size, ok := pf.PendingShipSize(); !ok || size != 3 {
		t.Fatalf("expected pending size: 3\t got: %d", size)
	}

	// The ship on row 2 used to be number 2 and moves down to 1
	cell, _ := pf.RealCell(0, 2)
	if cell.ShipIndex != 1 {
		t.Fatalf("expected renumbered ship index: 1\t got: %d", cell.ShipIndex)
	}
	if ship, _ := pf.Ship(1); ship.Number() != 1 {
		t.Fatalf("expected ship number: 1\t got: %d", ship.Number())
	}

	if err := pf.PlaceShip(0, 6, 2, Horizontal); !errors.Is(err, cerr.ErrInvalidShipSize) {
		t.Fatalf("expected size mismatch error, got: %v", err)
	}

	if err := pf.PlaceShip(0, 6, 3, Vertical); err != nil {
		t.Fatal(err)
	}
	if pf.IsInReplacementMode() || pf.HasShipsToReplace() {
		t.Fatal("expected replacement mode to end after re-placing the last removed ship")
	}
	replaced, _ := pf.Ship(2)
	if replaced.Number() != 2 || replaced.Start() != NewPosition(0, 6) || replaced.Orientation() != Vertical {
		t.Fatalf("unexpected replaced ship: number %d start %v orientation %s", replaced.Number(), replaced.Start(), replaced.Orientation())
	}
}

func TestClearShipErrors(t *testing.T) {
	pf := newLaidOutField(t, standardLayout[:1])

	if err := pf.ClearShip(9, 9); !errors.Is(err, cerr.ErrNoShipAt) {
		t.Fatalf("expected no ship error, got: %v", err)
	}
	if err := pf.ClearShip(10, 0); !errors.Is(err, cerr.ErrOutOfBounds) {
		t.Fatalf("expected out of bounds error, got: %v", err)
	}
}

func TestDamage(t *testing.T) {
	pf := newLaidOutField(t, standardLayout)

	tests := []struct {
		name     string
		x, y     int
		damage   int
		expected ShotResult
	}{
		{name: "water", x: 9, y: 9, damage: 1, expected: ShotMiss},
		{name: "water again", x: 9, y: 9, damage: 1, expected: ShotAlreadyResolved},
		{name: "out of bounds", x: 10, y: 0, damage: 1, expected: ShotOutOfBounds},
		{name: "damage segment", x: 0, y: 0, damage: 1, expected: ShotHit},
		{name: "finish segment", x: 0, y: 0, damage: 1, expected: ShotHit},
		{name: "destroyed segment", x: 0, y: 0, damage: 1, expected: ShotAlreadyResolved},
		{name: "single deck double damage", x: 3, y: 4, damage: 2, expected: ShotSunk},
		{name: "sunk ship again", x: 3, y: 4, damage: 1, expected: ShotAlreadyResolved},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := pf.Damage(test.x, test.y, test.damage); got != test.expected {
				t.Fatalf("expected result: %s\t got: %s", test.expected, got)
			}
		})
	}
}

func TestSinkRevealsSurroundingWater(t *testing.T) {
	pf := newLaidOutField(t, standardLayout)

	pf.Damage(3, 4, 1)
	if res := pf.Damage(3, 4, 1); res != ShotSunk {
		t.Fatalf("expected sunk\t got: %s", res)
	}

	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			cell, err := pf.VisibleCell(3+dx, 4+dy)
			if err != nil {
				t.Fatal(err)
			}
			if dx == 0 && dy == 0 {
				if !cell.IsShip() {
					t.Fatal("expected sunk segment to be revealed")
				}
				continue
			}
			if !cell.IsEmpty() {
				t.Fatalf("expected water around sunk ship at %d,%d\t got: %s", 3+dx, 4+dy, cell.State)
			}
		}
	}

	// Nothing further away is revealed
	if cell, _ := pf.VisibleCell(3, 6); !cell.IsUnknown() {
		t.Fatalf("expected far cell to stay unknown\t got: %s", cell.State)
	}
}

func TestSinkingEveryShip(t *testing.T) {
	pf := newLaidOutField(t, standardLayout)

	sunk := 0
	for _, ship := range pf.Ships() {
		for _, c := range ship.Cells() {
			for i := 0; i < 2; i++ {
				if pf.Damage(c.X, c.Y, 1) == ShotSunk {
					sunk++
				}
			}
		}
	}

	if sunk != len(standardLayout) {
		t.Fatalf("expected sunk ships: %d\t got: %d", len(standardLayout), sunk)
	}
	if !pf.IsAllShipsDestroyed() {
		t.Fatal("expected all ships destroyed")
	}
	if pf.DestroyedShips() != len(standardLayout) {
		t.Fatalf("expected destroyed ships: %d\t got: %d", len(standardLayout), pf.DestroyedShips())
	}
}

func TestEmptyFieldIsNotDestroyed(t *testing.T) {
	if NewPlayingField(5, 5).IsAllShipsDestroyed() {
		t.Fatal("expected empty field not to count as destroyed")
	}
}

func TestSetRandomShipsNeverTouch(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		pf := NewPlayingField(10, 10)
		if err := pf.SetRandomShips(StandardFleet(), NewRand(seed), 0); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if pf.Count() != StandardFleet().Count() {
			t.Fatalf("seed %d: expected ship count: %d\t got: %d", seed, StandardFleet().Count(), pf.Count())
		}
		assertNoTouchingShips(t, pf)
	}
}

func TestSetRandomShipsImpossibleFleet(t *testing.T) {
	fleet, _ := ParseFleet("4,4,4,4,4,4,4,4")
	pf := NewPlayingField(5, 5)

	err := pf.SetRandomShips(fleet, NewRand(7), 200)
	if !errors.Is(err, cerr.ErrImpossibleFleet) {
		t.Fatalf("expected impossible fleet error, got: %v", err)
	}
}

func TestReturnStartState(t *testing.T) {
	pf := newLaidOutField(t, standardLayout)
	pf.Damage(0, 0, 2)
	pf.Damage(9, 9, 1)
	pf.MarkScanned(5, 5)

	pf.ReturnStartState()

	if pf.Count() != len(standardLayout) {
		t.Fatalf("expected layout to be kept, got %d ships", pf.Count())
	}
	if cell, _ := pf.VisibleCell(9, 9); !cell.IsUnknown() {
		t.Fatal("expected visible grid to be reset")
	}
	if pf.IsScanned(5, 5) {
		t.Fatal("expected scan overlay to be reset")
	}
	if ship, _ := pf.Ship(0); ship.Hits() != 0 || ship.DestroyedSegments() != 0 {
		t.Fatal("expected ship damage to be reset")
	}
}
