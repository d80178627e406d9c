package connection

import (
	"strings"

	mb "github.com/saeidalz13/seabattle/models/battleship"
)

// Cell symbols of the text field view
const (
	SymbolUnknown     = "?"
	SymbolWater       = "~"
	SymbolMiss        = "o"
	SymbolIntact      = "#"
	SymbolDamaged     = "x"
	SymbolDestroyed   = "X"
	SymbolScannedShip = "+"
	SymbolScannedNone = "-"
)

func segmentSymbol(state mb.SegmentState) string {
	switch state {
	case mb.SegmentDamaged:
		return SymbolDamaged
	case mb.SegmentDestroyed:
		return SymbolDestroyed
	default:
		return SymbolIntact
	}
}

// OwnFieldRows renders the player's own field with every ship shown.
func OwnFieldRows(pf *mb.PlayingField) []string {
	rows := make([]string, pf.Height())
	var sb strings.Builder

	for y := range rows {
		sb.Reset()
		for x := 0; x < pf.Width(); x++ {
			if ship, seg, ok := pf.ShipAt(x, y); ok {
				state, _ := ship.SegmentState(seg)
				sb.WriteString(segmentSymbol(state))
				continue
			}
			if cell, _ := pf.VisibleCell(x, y); cell.IsEmpty() {
				sb.WriteString(SymbolMiss)
			} else {
				sb.WriteString(SymbolWater)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// EnemyFieldRows renders what the player knows about the enemy field.
// Scanned cells that are still unknown leak only ship presence.
func EnemyFieldRows(pf *mb.PlayingField) []string {
	rows := make([]string, pf.Height())
	var sb strings.Builder

	for y := range rows {
		sb.Reset()
		for x := 0; x < pf.Width(); x++ {
			cell, _ := pf.VisibleCell(x, y)
			switch {
			case cell.IsEmpty():
				sb.WriteString(SymbolWater)

			case cell.IsShip():
				ship, seg, _ := pf.ShipAt(x, y)
				state, _ := ship.SegmentState(seg)
				sb.WriteString(segmentSymbol(state))

			case pf.IsScanned(x, y) && pf.IsShipCell(x, y):
				sb.WriteString(SymbolScannedShip)

			case pf.IsScanned(x, y):
				sb.WriteString(SymbolScannedNone)

			default:
				sb.WriteString(SymbolUnknown)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

func NewRespFieldView(g *mb.Game) RespFieldView {
	return RespFieldView{
		Status: g.Status().String(),
		Cursor: g.Cursor(),
		Player: OwnFieldRows(g.PlayerField()),
		Enemy:  EnemyFieldRows(g.EnemyField()),
	}
}
