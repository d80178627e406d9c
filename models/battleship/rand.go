package battleship

import (
	"math/rand"
	"time"
)

// Rand is the random source used for ship placement, AI targeting
// and ability selection. *rand.Rand satisfies it, tests pass a
// seeded one.
type Rand interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func newTimeSeededRand() *rand.Rand {
	return NewRand(time.Now().UnixNano())
}
