package battleship

// ChooseTarget picks the next cell the computer fires at on the
// opponent field. It only looks at what the visible grid reveals and
// keeps no state between turns.
//
// Priority: revealed damaged segments first, then unknown cells next
// to revealed ship cells, then any unknown cell. Returns false when
// nothing is left to shoot at.
func ChooseTarget(field *PlayingField, rng Rand) (Position, bool) {
	width, height := field.Width(), field.Height()

	damaged := make([]Position, 0, width*height/8)
	frontier := make([]Position, 0, width*height/2)
	unknown := make([]Position, 0, width*height)

	isUnknown := func(x, y int) bool {
		return field.IsValid(x, y) && field.visible[y][x].IsUnknown()
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			vis := field.visible[y][x]

			switch {
			case vis.IsShip():
				// The cell is revealed so reading its segment state is fair
				if ship, seg, ok := field.ShipAt(x, y); ok {
					if state, _ := ship.SegmentState(seg); state == SegmentDamaged {
						damaged = append(damaged, NewPosition(x, y))
					}
				}

				// Duplicates are kept on purpose, cells next to several
				// hits are more likely to hold the rest of a ship
				for _, d := range [4]Position{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					if isUnknown(x+d.X, y+d.Y) {
						frontier = append(frontier, NewPosition(x+d.X, y+d.Y))
					}
				}

			case vis.IsUnknown():
				unknown = append(unknown, NewPosition(x, y))
			}
		}
	}

	switch {
	case len(damaged) != 0:
		return damaged[rng.Intn(len(damaged))], true
	case len(frontier) != 0:
		return frontier[rng.Intn(len(frontier))], true
	case len(unknown) != 0:
		return unknown[rng.Intn(len(unknown))], true
	}
	return NoPosition, false
}
