package error

import (
	"errors"
	"fmt"
)

const (
	ConstErrAttackFailed  = "attack operation failed"
	ConstErrAbilityFailed = "ability operation failed"
	ConstErrPlaceFailed   = "ship placement failed"
)

// Placement errors. None of them leaves the field modified.
var (
	ErrOutOfBounds     = errors.New("coordinates out of field bounds")
	ErrOverlap         = errors.New("ships overlap")
	ErrTooClose        = errors.New("ships are too close")
	ErrImpossibleFleet = errors.New("fleet cannot be placed on this field")
	ErrInvalidShipSize = errors.New("ship size must be between 1 and 4")
	ErrInvalidFleet    = errors.New("invalid fleet")
	ErrNoShipAt        = errors.New("no ship at this position")
	ErrAllShipsPlaced  = errors.New("all ships are already placed")
)

// Ability errors.
var (
	ErrEmptyQueue = errors.New("ability queue is empty")
	ErrNoTargets  = errors.New("no targets available")
)

// Session errors.
var (
	ErrInvalidStatus   = errors.New("action is not allowed in current game status")
	ErrCorruptSave     = errors.New("corrupt save data")
	ErrInvalidSettings = errors.New("invalid game settings")
)

func ErrShipOutOfBounds(x, y, width, height int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d\tfield: %dx%d", ErrOutOfBounds, x, y, width, height)
}

func ErrShipsOverlap(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrOverlap, x, y)
}

func ErrShipsTooClose(x, y, adjX, adjY int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d\tneighbour x: %d\tneighbour y: %d", ErrTooClose, x, y, adjX, adjY)
}

func ErrShipSize(size int) error {
	return fmt.Errorf("%w\tgot: %d", ErrInvalidShipSize, size)
}

func ErrFleet(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFleet, reason)
}

func ErrCannotPlaceFleet(shipIdx, size, attempts int) error {
	return fmt.Errorf("%w\tship no. %d of size %d failed after %d attempts", ErrImpossibleFleet, shipIdx, size, attempts)
}

func ErrNoShipAtPosition(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrNoShipAt, x, y)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("%w: incoming x or y is out of game grid bound\tx: %d\ty: %d", ErrOutOfBounds, x, y)
}

func ErrShipIndex(idx int) error {
	return fmt.Errorf("ship index out of range: %d", idx)
}

func ErrStatus(action string, status fmt.Stringer) error {
	return fmt.Errorf("%w\taction: %s\tstatus: %s", ErrInvalidStatus, action, status)
}

func ErrSaveData(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptSave, fmt.Sprintf(format, args...))
}

func ErrSettings(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSettings, reason)
}

// AbilityApplicationError is the only error a failed ability use
// produces. Err holds the underlying cause.
type AbilityApplicationError struct {
	Ability string
	Err     error
}

func NewAbilityApplicationError(ability string, err error) *AbilityApplicationError {
	return &AbilityApplicationError{Ability: ability, Err: err}
}

func (e *AbilityApplicationError) Error() string {
	return fmt.Sprintf("failed to apply ability '%s' - %v", e.Ability, e.Err)
}

func (e *AbilityApplicationError) Unwrap() error {
	return e.Err
}

// Connection and lookup errors used by the websocket layer.

var (
	ErrSignalAbsent = errors.New("incoming payload must contain 'code' field")
	ErrNoSlot       = errors.New("save slot does not exist")
	ErrSlotName     = errors.New("invalid save slot name")
)

func ErrGameNotExists(gameUuid string) error {
	return fmt.Errorf("game with this uuid does not exist, uuid: %s", gameUuid)
}

func ErrGameIsNil(sessionId string) error {
	return fmt.Errorf("session has no game yet, session id: %s", sessionId)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session is nil, id: %s", sessionId)
}

func ErrSlotNotFound(name string) error {
	return fmt.Errorf("%w, name: %s", ErrNoSlot, name)
}

func ErrInvalidSlotName(name string) error {
	return fmt.Errorf("%w: %q", ErrSlotName, name)
}

func ErrUnknownSlotStore(kind string) error {
	return fmt.Errorf("unknown slot store: %s", kind)
}
