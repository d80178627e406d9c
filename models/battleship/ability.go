package battleship

import (
	"fmt"
	"strings"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type AbilityKind uint8

const (
	AbilityDoubleDamage AbilityKind = iota
	AbilityScanner
	AbilityShelling

	abilityKindCount
)

const (
	scannerRange     = 1
	shellingMaxTries = 5
)

// abilitySpec is one row of the dispatch table. use receives the
// ability being resolved so it can record where it landed.
type abilitySpec struct {
	name        string
	description string
	use         func(am *AbilityManager, a *Ability, enemy *PlayingField, x, y int) error
}

var abilityTable = [abilityKindCount]abilitySpec{
	AbilityDoubleDamage: {
		name:        "Double Damage",
		description: "The attack deals 2 damage and destroys the segment it lands on.",
		use:         useDoubleDamage,
	},
	AbilityScanner: {
		name:        "Scanner",
		description: "Reveals whether ships are present in the 3x3 area around the target.",
		use:         useScanner,
	},
	AbilityShelling: {
		name:        "Shelling",
		description: "Deals 1 damage to a random segment of a living enemy ship.",
		use:         useShelling,
	},
}

func (k AbilityKind) IsValid() bool { return k < abilityKindCount }

func (k AbilityKind) String() string {
	if !k.IsValid() {
		return "invalid"
	}
	return abilityTable[k].name
}

func (k AbilityKind) Description() string {
	if !k.IsValid() {
		return ""
	}
	return abilityTable[k].description
}

// AbilityKindByName matches a stored ability name back to its kind.
func AbilityKindByName(name string) (AbilityKind, bool) {
	name = strings.TrimSpace(name)
	for k := AbilityKind(0); k < abilityKindCount; k++ {
		if strings.EqualFold(abilityTable[k].name, name) {
			return k, true
		}
	}
	return 0, false
}

type Ability struct {
	kind   AbilityKind
	coords Position
}

func NewAbility(kind AbilityKind) Ability {
	return Ability{kind: kind, coords: NoPosition}
}

func (a Ability) Kind() AbilityKind     { return a.kind }
func (a Ability) Name() string          { return a.kind.String() }
func (a Ability) Description() string   { return a.kind.Description() }
func (a Ability) Coordinates() Position { return a.coords }

// Use resolves the ability against the enemy field. Any failure comes
// back as *cerr.AbilityApplicationError.
func (a *Ability) Use(am *AbilityManager, enemy *PlayingField, x, y int) error {
	if !a.kind.IsValid() {
		return cerr.NewAbilityApplicationError(a.Name(), fmt.Errorf("unknown ability kind %d", a.kind))
	}
	if err := abilityTable[a.kind].use(am, a, enemy, x, y); err != nil {
		return cerr.NewAbilityApplicationError(a.Name(), err)
	}
	return nil
}

func useDoubleDamage(am *AbilityManager, a *Ability, enemy *PlayingField, x, y int) error {
	a.coords = NewPosition(x, y)

	res := am.damageEnemy(enemy, x, y, 2)
	if res == ShotOutOfBounds {
		return cerr.ErrShipOutOfBounds(x, y, enemy.Width(), enemy.Height())
	}
	return nil
}

// Cells of the area that fall off the field are skipped. The scan only
// fails when none of them is on the field.
func useScanner(_ *AbilityManager, a *Ability, enemy *PlayingField, x, y int) error {
	scanned := 0
	for dy := -scannerRange; dy <= scannerRange; dy++ {
		for dx := -scannerRange; dx <= scannerRange; dx++ {
			if enemy.IsValid(x+dx, y+dy) {
				enemy.MarkScanned(x+dx, y+dy)
				scanned++
			}
		}
	}
	if scanned == 0 {
		return cerr.ErrShipOutOfBounds(x, y, enemy.Width(), enemy.Height())
	}

	a.coords = NewPosition(x, y)
	return nil
}

func useShelling(am *AbilityManager, a *Ability, enemy *PlayingField, _, _ int) error {
	targets := collectAliveTargets(enemy)
	if len(targets) == 0 {
		return cerr.ErrNoTargets
	}

	maxTries := min(shellingMaxTries, len(targets))
	for attempt := 0; attempt < maxTries && len(targets) > 0; attempt++ {
		idx := am.rng.Intn(len(targets))
		target := targets[idx]

		switch am.damageEnemy(enemy, target.X, target.Y, 1) {
		case ShotHit, ShotSunk:
			a.coords = target
			return nil
		}

		// Not expected with fresh targets; drop it and try another one
		targets = append(targets[:idx], targets[idx+1:]...)
	}

	return cerr.ErrNoTargets
}

func collectAliveTargets(enemy *PlayingField) []Position {
	targets := make([]Position, 0, 32)
	for _, ship := range enemy.ships {
		if ship.IsDestroyed() {
			continue
		}
		for i, state := range ship.segments {
			if state == SegmentDestroyed {
				continue
			}
			targets = append(targets, ship.SegmentPosition(i))
		}
	}
	return targets
}
