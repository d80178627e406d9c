package battleship

type CellState uint8

const (
	CellUnknown CellState = iota
	CellEmpty
	CellShip
)

func (cs CellState) String() string {
	switch cs {
	case CellUnknown:
		return "unknown"
	case CellEmpty:
		return "empty"
	case CellShip:
		return "ship"
	default:
		return "invalid"
	}
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewPosition(x, y int) Position {
	return Position{X: x, Y: y}
}

// Used for "no coordinates" results such as a
// Shelling ability that never found a target.
var NoPosition = Position{X: -1, Y: -1}

// Cell is one slot of a grid. ShipIndex and SegmentIndex
// are only meaningful when State is CellShip, they stay
// -1 otherwise.
type Cell struct {
	State        CellState `json:"state"`
	ShipIndex    int       `json:"ship_index"`
	SegmentIndex int       `json:"segment_index"`
}

func NewCell(state CellState) Cell {
	return Cell{State: state, ShipIndex: -1, SegmentIndex: -1}
}

func (c Cell) IsUnknown() bool { return c.State == CellUnknown }
func (c Cell) IsEmpty() bool   { return c.State == CellEmpty }
func (c Cell) IsShip() bool    { return c.State == CellShip }

func (c *Cell) setShip(shipIdx, segmentIdx int) {
	c.State = CellShip
	c.ShipIndex = shipIdx
	c.SegmentIndex = segmentIdx
}

func (c *Cell) setEmpty() {
	*c = NewCell(CellEmpty)
}

func (c *Cell) setUnknown() {
	*c = NewCell(CellUnknown)
}

// Grid is indexed as grid[y][x].
type Grid [][]Cell

// Creates a new grid with every cell
// set to the given state
func NewGrid(width, height int, state CellState) Grid {
	grid := make(Grid, height)

	for y := 0; y < height; y++ {
		grid[y] = make([]Cell, width)
		for x := range grid[y] {
			grid[y][x] = NewCell(state)
		}
	}
	return grid
}

func (g Grid) clone() Grid {
	cp := make(Grid, len(g))
	for y := range g {
		cp[y] = make([]Cell, len(g[y]))
		copy(cp[y], g[y])
	}
	return cp
}

func (g Grid) fill(state CellState) {
	for y := range g {
		for x := range g[y] {
			g[y][x] = NewCell(state)
		}
	}
}

func newOverlay(width, height int) [][]bool {
	overlay := make([][]bool, height)
	for y := range overlay {
		overlay[y] = make([]bool, width)
	}
	return overlay
}

func isValid(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}
