package battleship

import (
	"strings"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type AbilityResult struct {
	Ability string
	Kind    AbilityKind
	Coords  Position
}

// AbilityManager keeps the FIFO queue of abilities of the human player.
// It does not hold on to any field; the enemy field is handed to each
// ApplyNextAbility call.
type AbilityManager struct {
	queue []Ability
	rng   Rand
}

// Seeds the queue with one ability of each kind in random order
func NewAbilityManager(rng Rand) *AbilityManager {
	am := &AbilityManager{rng: rng}
	am.Reset()
	return am
}

// Reset drops the queue and deals the three starting abilities again.
func (am *AbilityManager) Reset() {
	am.queue = make([]Ability, 0, int(abilityKindCount))
	for k := AbilityKind(0); k < abilityKindCount; k++ {
		am.queue = append(am.queue, NewAbility(k))
	}
	am.rng.Shuffle(len(am.queue), func(i, j int) {
		am.queue[i], am.queue[j] = am.queue[j], am.queue[i]
	})
}

func (am *AbilityManager) Len() int { return len(am.queue) }

func (am *AbilityManager) HasAbilities() bool { return len(am.queue) != 0 }

// AddNextAbility appends one ability of a random kind.
func (am *AbilityManager) AddNextAbility() {
	kind := AbilityKind(am.rng.Intn(int(abilityKindCount)))
	am.queue = append(am.queue, NewAbility(kind))
}

// ApplyNextAbility dequeues the front ability and uses it against the
// enemy field. The ability is consumed even when it fails.
func (am *AbilityManager) ApplyNextAbility(enemy *PlayingField, x, y int) (AbilityResult, error) {
	if len(am.queue) == 0 {
		return AbilityResult{Coords: NoPosition}, cerr.ErrEmptyQueue
	}

	ability := am.queue[0]
	am.queue = am.queue[1:]

	res := AbilityResult{Ability: ability.Name(), Kind: ability.Kind(), Coords: NoPosition}
	if err := ability.Use(am, enemy, x, y); err != nil {
		return res, err
	}

	res.Coords = ability.Coordinates()
	return res, nil
}

// damageEnemy resolves ability damage; a sink earns a new ability
// just like a regular shot does.
func (am *AbilityManager) damageEnemy(enemy *PlayingField, x, y, damage int) ShotResult {
	res := enemy.Damage(x, y, damage)
	if res == ShotSunk {
		am.AddNextAbility()
	}
	return res
}

// Returns the front ability, if any
func (am *AbilityManager) Peek() (Ability, bool) {
	if len(am.queue) == 0 {
		return Ability{}, false
	}
	return am.queue[0], true
}

func (am *AbilityManager) PeekNextAbility() string {
	ability, ok := am.Peek()
	if !ok {
		return "No abilities"
	}
	return ability.Name() + ": " + ability.Description()
}

func (am *AbilityManager) Kinds() []AbilityKind {
	kinds := make([]AbilityKind, len(am.queue))
	for i, a := range am.queue {
		kinds[i] = a.kind
	}
	return kinds
}

func (am *AbilityManager) Names() []string {
	names := make([]string, len(am.queue))
	for i, a := range am.queue {
		names[i] = a.Name()
	}
	return names
}

func (am *AbilityManager) String() string {
	if len(am.queue) == 0 {
		return "No abilities available."
	}
	return "Available abilities: " + strings.Join(am.Names(), ", ")
}

// SetQueue replaces the queue, used when a saved game is restored.
func (am *AbilityManager) SetQueue(kinds []AbilityKind) {
	am.queue = make([]Ability, 0, len(kinds))
	for _, k := range kinds {
		am.queue = append(am.queue, NewAbility(k))
	}
}
