package battleship

import (
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type PlayerKind uint8

const (
	PlayerHuman PlayerKind = iota
	PlayerAI
)

type Player struct {
	name      string
	kind      PlayerKind
	field     *PlayingField
	fleet     Fleet
	abilities *AbilityManager

	destroyedShips int
	hits           int
	shots          int
}

// The ability manager is only given to the human player,
// pass nil for the computer.
func NewPlayer(name string, kind PlayerKind, fleet Fleet, width, height int, abilities *AbilityManager) *Player {
	return &Player{
		name:      name,
		kind:      kind,
		field:     NewPlayingField(width, height),
		fleet:     fleet,
		abilities: abilities,
	}
}

func (p *Player) Name() string                 { return p.name }
func (p *Player) Kind() PlayerKind             { return p.kind }
func (p *Player) IsHuman() bool                { return p.kind == PlayerHuman }
func (p *Player) Field() *PlayingField         { return p.field }
func (p *Player) Fleet() Fleet                 { return p.fleet }
func (p *Player) Abilities() *AbilityManager   { return p.abilities }
func (p *Player) DestroyedShips() int          { return p.destroyedShips }
func (p *Player) Hits() int                    { return p.hits }
func (p *Player) Shots() int                   { return p.shots }
func (p *Player) setField(field *PlayingField) { p.field = field }

func (p *Player) setCounters(destroyed, hits, shots int) {
	p.destroyedShips = destroyed
	p.hits = hits
	p.shots = shots
}

func (p *Player) Accuracy() float64 {
	if p.shots == 0 {
		return 0
	}
	return float64(p.hits) / float64(p.shots) * 100
}

func (p *Player) RemainingShips() int {
	return p.fleet.Count() - p.field.DestroyedShips()
}

func (p *Player) IsAllShipsPlaced() bool {
	return p.field.Count() == p.fleet.Count() && !p.field.HasShipsToReplace()
}

func (p *Player) IsAllShipsDestroyed() bool {
	return p.field.IsAllShipsDestroyed()
}

// MakeMove fires one regular shot at the opponent. A redundant shot on
// an already resolved cell is reported but not counted.
func (p *Player) MakeMove(opponent *Player, x, y int) (ShotResult, error) {
	target := opponent.field
	if !target.IsValid(x, y) {
		return ShotOutOfBounds, cerr.ErrXorYOutOfGridBound(x, y)
	}

	res := target.Damage(x, y, 1)
	p.recordShot(res)
	return res, nil
}

func (p *Player) recordShot(res ShotResult) {
	if res == ShotAlreadyResolved || res == ShotOutOfBounds {
		return
	}

	p.shots++
	if !res.IsHit() {
		return
	}

	p.hits++
	if res == ShotSunk {
		p.destroyedShips++
		if p.abilities != nil {
			p.abilities.AddNextAbility()
		}
	}
}

// UseAbility applies the next queued ability to the opponent field.
func (p *Player) UseAbility(opponent *Player, x, y int) (AbilityResult, error) {
	if p.abilities == nil || !p.abilities.HasAbilities() {
		return AbilityResult{Coords: NoPosition}, cerr.ErrEmptyQueue
	}

	before := opponent.field.DestroyedShips()
	res, err := p.abilities.ApplyNextAbility(opponent.field, x, y)
	if sunk := opponent.field.DestroyedShips() - before; sunk > 0 {
		p.destroyedShips += sunk
	}
	return res, err
}

func (p *Player) PlaceShipsRandomly(rng Rand, maxAttempts int) error {
	return p.field.SetRandomShips(p.fleet, rng, maxAttempts)
}
