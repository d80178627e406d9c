package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/seabattle/db/sqlc"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

func TestAnalyticsThroughDbManager(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rp := NewRequestProcessor(
		mc.NewBattleshipSessionManager(),
		mb.NewBattleshipGameManager(),
		sqlc.NewDbManager(sqlc.New(db)),
	)
	if rp.slots == nil {
		t.Fatal("expected save slots from the db manager")
	}

	ipNet := rp.GetIpNet()
	serverIp := pqtype.Inet{IPNet: ipNet, Valid: true}

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(ipNet.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, rounds_played\)`).
		WithArgs(ipNet.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rp.countGameCreated(serverIp)
	rp.countRoundPlayed(serverIp)

	mock.ExpectQuery(`SELECT games_created FROM game_server_analytics`).
		WithArgs(ipNet.String()).
		WillReturnRows(sqlmock.NewRows([]string{"games_created"}).AddRow(3))
	mock.ExpectQuery(`SELECT rounds_played FROM game_server_analytics`).
		WithArgs(ipNet.String()).
		WillReturnError(sql.ErrNoRows)

	rec := httptest.NewRecorder()
	NewRouter(rp).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status: %d\t got: %d", http.StatusOK, rec.Code)
	}

	var health respHealth
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.GamesCreated == nil || *health.GamesCreated != 3 {
		t.Fatalf("expected games created: 3\t got: %v", health.GamesCreated)
	}
	if health.RoundsPlayed == nil || *health.RoundsPlayed != 0 {
		t.Fatalf("expected rounds played: 0\t got: %v", health.RoundsPlayed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyticsOffWithoutDbManager(t *testing.T) {
	rp := NewRequestProcessor(mc.NewBattleshipSessionManager(), mb.NewBattleshipGameManager(), sqlc.DbManager{})

	// Nothing to count into
	rp.countGameCreated(pqtype.Inet{IPNet: rp.GetIpNet(), Valid: true})

	rec := httptest.NewRecorder()
	NewRouter(rp).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var health respHealth
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.GamesCreated != nil || health.RoundsPlayed != nil {
		t.Fatalf("expected no analytics\t got: %+v", health)
	}
}
