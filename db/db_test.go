package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/saeidalz13/seabattle/db/sqlc"
	cerr "github.com/saeidalz13/seabattle/internal/error"
)

func TestSQLiteSlotStore(t *testing.T) {
	conn, err := ConnectSQLite(filepath.Join(t.TempDir(), "slots.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	slots := sqlc.NewSlotManager(sqlc.NewWithDialect(conn, sqlc.DialectSQLite))
	ctx := context.Background()

	if err := slots.Save(ctx, "alpha", []byte("first"), "2024-05-17 21:03:00"); err != nil {
		t.Fatal(err)
	}
	if err := slots.Save(ctx, "alpha", []byte("second"), "2024-05-18 10:00:00"); err != nil {
		t.Fatal(err)
	}

	data, err := slots.Load(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Fatalf("expected overwritten slot: second\t got: %s", data)
	}

	list, err := slots.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].SavedAt != "2024-05-18 10:00:00" {
		t.Fatalf("unexpected slot list: %+v", list)
	}

	if err := slots.Delete(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := slots.Load(ctx, "alpha"); !errors.Is(err, cerr.ErrNoSlot) {
		t.Fatalf("expected missing slot error, got: %v", err)
	}
}
