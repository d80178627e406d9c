package battleship

import (
	"fmt"
	"strconv"
	"strings"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

const MaxFleetShips = 16

// Fleet is the ordered list of hull sizes each side has to place.
type Fleet struct {
	sizes []int
}

func NewFleet(sizes ...int) (Fleet, error) {
	if len(sizes) == 0 {
		return Fleet{}, cerr.ErrFleet("fleet is empty")
	}
	if len(sizes) > MaxFleetShips {
		return Fleet{}, cerr.ErrFleet(fmt.Sprintf("at most %d ships allowed, got %d", MaxFleetShips, len(sizes)))
	}
	for _, size := range sizes {
		if size < MinShipSize || size > MaxShipSize {
			return Fleet{}, cerr.ErrShipSize(size)
		}
	}

	cp := make([]int, len(sizes))
	copy(cp, sizes)
	return Fleet{sizes: cp}, nil
}

// 1x4, 2x3, 3x2, 4x1
func StandardFleet() Fleet {
	return Fleet{sizes: []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}}
}

// Parses a comma separated list such as "4,3,3,2".
// Blank entries are skipped.
func ParseFleet(line string) (Fleet, error) {
	var sizes []int
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		size, err := strconv.Atoi(tok)
		if err != nil {
			return Fleet{}, cerr.ErrFleet(fmt.Sprintf("invalid size %q", tok))
		}
		sizes = append(sizes, size)
	}
	return NewFleet(sizes...)
}

func (f Fleet) Count() int { return len(f.sizes) }

func (f Fleet) ShipSize(idx int) (int, error) {
	if idx < 0 || idx >= len(f.sizes) {
		return 0, cerr.ErrShipIndex(idx)
	}
	return f.sizes[idx], nil
}

func (f Fleet) Sizes() []int {
	cp := make([]int, len(f.sizes))
	copy(cp, f.sizes)
	return cp
}

func (f Fleet) TotalCells() int {
	var total int
	for _, s := range f.sizes {
		total += s
	}
	return total
}

func (f Fleet) IsZero() bool { return len(f.sizes) == 0 }

// Summary groups the fleet by hull size, largest first,
// e.g. ["1x4", "2x3", "3x2", "4x1"].
func (f Fleet) Summary() []string {
	var counts [MaxShipSize + 1]int
	for _, s := range f.sizes {
		counts[s]++
	}

	summary := make([]string, 0, MaxShipSize)
	for size := MaxShipSize; size >= MinShipSize; size-- {
		if counts[size] == 0 {
			continue
		}
		summary = append(summary, fmt.Sprintf("%dx%d", counts[size], size))
	}
	return summary
}

func (f Fleet) String() string {
	parts := make([]string, len(f.sizes))
	for i, s := range f.sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}
