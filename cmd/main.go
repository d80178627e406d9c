package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/saeidalz13/seabattle/api"
	"github.com/saeidalz13/seabattle/db"
	"github.com/saeidalz13/seabattle/db/sqlc"
	"github.com/saeidalz13/seabattle/internal/config"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

func mustOpenSlotDb(cfg config.Config) (*sql.DB, sqlc.Querier) {
	switch cfg.SlotStore {
	case config.SlotStorePostgres:
		conn := db.MustConnectToDb(cfg.DatabaseUrl, db.MigrationDir)
		return conn, sqlc.New(conn)

	default:
		conn, err := db.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			panic(err)
		}
		return conn, sqlc.NewWithDialect(conn, sqlc.DialectSQLite)
	}
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic(err)
	}

	conn, queries := mustOpenSlotDb(cfg)
	defer conn.Close()
	log.Printf("save slots stored in %s\n", cfg.SlotStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bsm := mc.NewBattleshipSessionManager()
	go bsm.CleanupPeriodically(ctx)

	bgm := mb.NewBattleshipGameManager()
	rp := api.NewRequestProcessor(bsm, bgm, sqlc.NewDbManager(queries), api.WithDefaultSettings(cfg.Game))

	server := api.NewServer(api.NewRouter(rp), api.WithPort(cfg.Port), api.WithStage(cfg.Stage))
	if err := server.Run(ctx); err != nil {
		log.Fatalln(err)
	}
	log.Println("server stopped")
}
