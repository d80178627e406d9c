package connection

import (
	"testing"

	mb "github.com/saeidalz13/seabattle/models/battleship"
)

func TestEnemyFieldRows(t *testing.T) {
	pf := mb.NewPlayingField(5, 1)
	if err := pf.PlaceShip(0, 0, 2, mb.Horizontal); err != nil {
		t.Fatal(err)
	}

	if rows := EnemyFieldRows(pf); rows[0] != "?????" {
		t.Fatalf("expected hidden row\t got: %s", rows[0])
	}

	pf.Damage(0, 0, 1)
	pf.Damage(4, 0, 1)
	pf.MarkScanned(1, 0)
	pf.MarkScanned(3, 0)

	if rows := EnemyFieldRows(pf); rows[0] != "x+?-~" {
		t.Fatalf("expected row: x+?-~\t got: %s", rows[0])
	}

	pf.Damage(0, 0, 1)
	pf.Damage(1, 0, 2)
	if rows := EnemyFieldRows(pf); rows[0] != "XX~-~" {
		t.Fatalf("expected row: XX~-~\t got: %s", rows[0])
	}
}

func TestOwnFieldRows(t *testing.T) {
	pf := mb.NewPlayingField(4, 2)
	if err := pf.PlaceShip(0, 0, 2, mb.Horizontal); err != nil {
		t.Fatal(err)
	}
	pf.Damage(1, 0, 1)
	pf.Damage(3, 1, 1)

	rows := OwnFieldRows(pf)
	expected := []string{"#x~~", "~~~o"}
	for i := range expected {
		if rows[i] != expected[i] {
			t.Fatalf("row %d expected: %s\t got: %s", i, expected[i], rows[i])
		}
	}
}
