package battleship

import (
	"strings"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const (
	MinFieldSize     = 5
	DefaultFieldSize = 10
	DefaultEnemyName = "Computer"
	DefaultHumanName = "Player"
)

type PlacementMode uint8

const (
	PlacementAuto PlacementMode = iota
	PlacementManual
)

func (m PlacementMode) String() string {
	if m == PlacementManual {
		return "manual"
	}
	return "auto"
}

func ParsePlacementMode(s string) (PlacementMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "automatic":
		return PlacementAuto, nil
	case "manual":
		return PlacementManual, nil
	}
	return PlacementAuto, cerr.ErrSettings("unknown placement mode " + s)
}

type Settings struct {
	PlayerName           string
	EnemyName            string
	FieldSize            int
	Fleet                Fleet
	PlacementMode        PlacementMode
	MaxPlacementAttempts int

	// Replay the same ship layouts in the next round
	KeepLayout bool
}

func DefaultSettings() Settings {
	return Settings{
		PlayerName:           DefaultHumanName,
		EnemyName:            DefaultEnemyName,
		FieldSize:            DefaultFieldSize,
		Fleet:                StandardFleet(),
		PlacementMode:        PlacementAuto,
		MaxPlacementAttempts: DefaultMaxPlacementAttempts,
	}
}

// Validate fills in missing names and attempts and rejects field sizes
// and fleets that can never fit on the field.
func (s *Settings) Validate() error {
	if s.FieldSize < MinFieldSize || s.FieldSize > MaxFieldSize {
		return cerr.ErrSettings("field size must be between 5 and 26")
	}
	if s.Fleet.IsZero() {
		s.Fleet = StandardFleet()
	}
	if s.PlayerName == "" {
		s.PlayerName = DefaultHumanName
	}
	if s.EnemyName == "" {
		s.EnemyName = DefaultEnemyName
	}
	if s.MaxPlacementAttempts <= 0 {
		s.MaxPlacementAttempts = DefaultMaxPlacementAttempts
	}

	// Every ship needs its cells plus a one cell margin on the far side,
	// on a (n+1)x(n+1) board that makes (size+1)*2 cells per ship.
	var needed int
	for _, size := range s.Fleet.Sizes() {
		if size > s.FieldSize {
			return cerr.ErrFleet("ship of size larger than the field")
		}
		needed += (size + 1) * 2
	}
	if needed > (s.FieldSize+1)*(s.FieldSize+1) {
		return cerr.ErrImpossibleFleet
	}
	return nil
}
