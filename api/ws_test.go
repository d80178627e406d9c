package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/saeidalz13/seabattle/db/sqlc"
	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

type memSlots struct {
	mu    sync.Mutex
	slots map[string]sqlc.SaveSlot
}

func newMemSlots() *memSlots {
	return &memSlots{slots: make(map[string]sqlc.SaveSlot)}
}

func (m *memSlots) Save(_ context.Context, name string, data []byte, savedAt string) error {
	if err := sqlc.ValidateSlotName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[name] = sqlc.SaveSlot{Name: name, Data: string(data), SavedAt: savedAt}
	return nil
}

func (m *memSlots) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[name]
	if !ok {
		return nil, cerr.ErrSlotNotFound(name)
	}
	return []byte(slot.Data), nil
}

func (m *memSlots) List(_ context.Context) ([]sqlc.ListSaveSlotsRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]sqlc.ListSaveSlotsRow, 0, len(m.slots))
	for _, s := range m.slots {
		rows = append(rows, sqlc.ListSaveSlotsRow{Name: s.Name, SavedAt: s.SavedAt})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (m *memSlots) Delete(_ context.Context, name string) error {
	if err := sqlc.ValidateSlotName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[name]; !ok {
		return cerr.ErrSlotNotFound(name)
	}
	delete(m.slots, name)
	return nil
}

type testEnv struct {
	server *httptest.Server
	slots  *memSlots
	bsm    *mc.BattleshipSessionManager
	bgm    *mb.BattleshipGameManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		slots: newMemSlots(),
		bsm:   mc.NewBattleshipSessionManager(),
		bgm:   mb.NewBattleshipGameManager(),
	}
	rp := NewRequestProcessor(env.bsm, env.bgm, sqlc.DbManager{}, WithSlotStore(env.slots))
	env.server = httptest.NewServer(NewRouter(rp))
	t.Cleanup(env.server.Close)
	return env
}

func (env *testEnv) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/battleship" + query
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, code uint8, payload interface{}) {
	t.Helper()
	msg := map[string]interface{}{"code": code}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}
}

func receive[T any](t *testing.T, conn *websocket.Conn, expectedCode uint8) mc.Message[T] {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg mc.Message[T]
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Code != expectedCode {
		t.Fatalf("expected code: %d\t got: %d (error: %+v)", expectedCode, msg.Code, msg.Error)
	}
	return msg
}

func startSession(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	conn := env.dial(t, "")
	msg := receive[mc.RespSessionId](t, conn, mc.CodeSessionID)
	if msg.Payload.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return conn
}

func TestSessionRequiresGame(t *testing.T) {
	env := newTestEnv(t)
	conn := startSession(t, env)

	send(t, conn, mc.CodeAttack, mc.ReqCoordinates{X: 0, Y: 0})
	msg := receive[json.RawMessage](t, conn, mc.CodeAttack)
	if msg.Error == nil {
		t.Fatal("expected an error without a game")
	}

	if err := conn.WriteJSON(map[string]string{"action": "attack"}); err != nil {
		t.Fatal(err)
	}
	receive[json.RawMessage](t, conn, mc.CodeSignalAbsent)

	send(t, conn, 200, nil)
	receive[json.RawMessage](t, conn, mc.CodeInvalidSignal)

	send(t, conn, mc.CodeHelp, nil)
	help := receive[mc.RespHelp](t, conn, mc.CodeHelp)
	if !strings.Contains(help.Payload.Text, "ABILITIES") {
		t.Fatal("expected help text")
	}
}

func TestPlayOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	conn := startSession(t, env)

	send(t, conn, mc.CodeNewGame, mc.ReqNewGame{PlayerName: "Nadia", FieldSize: 10})
	newGame := receive[mc.RespNewGame](t, conn, mc.CodeNewGame)
	if newGame.Payload.Status != mb.StatusPlayerTurn.String() || len(newGame.Payload.Abilities) != 3 {
		t.Fatalf("unexpected new game: %+v", newGame.Payload)
	}
	if env.bgm.Len() != 1 {
		t.Fatalf("expected games: 1\t got: %d", env.bgm.Len())
	}

	send(t, conn, mc.CodeAttack, mc.ReqCoordinates{X: 0, Y: 0})
	attack := receive[mc.RespAttack](t, conn, mc.CodeAttack)
	if attack.Error != nil {
		t.Fatalf("unexpected attack error: %+v", attack.Error)
	}
	if len(attack.Payload.EnemyShots) != 1 || !attack.Payload.IsTurn {
		t.Fatalf("expected one enemy reply and the turn back: %+v", attack.Payload)
	}

	// Same cell again is redundant and keeps the turn
	send(t, conn, mc.CodeAttack, mc.ReqCoordinates{X: 0, Y: 0})
	again := receive[mc.RespAttack](t, conn, mc.CodeAttack)
	if again.Payload.Result != mb.ShotAlreadyResolved.String() || len(again.Payload.EnemyShots) != 0 {
		t.Fatalf("unexpected redundant shot reply: %+v", again.Payload)
	}

	send(t, conn, mc.CodeAttack, mc.ReqCoordinates{X: 10, Y: 0})
	if oob := receive[json.RawMessage](t, conn, mc.CodeAttack); oob.Error == nil {
		t.Fatal("expected out of bounds shot to fail")
	}

	// The cursor is clamped to the enemy field
	send(t, conn, mc.CodeMoveCursor, mc.ReqCursor{Dx: -3, Dy: 2})
	cursor := receive[mc.RespCursor](t, conn, mc.CodeMoveCursor)
	if cursor.Payload.Cursor != mb.NewPosition(0, 2) {
		t.Fatalf("expected cursor: 0,2\t got: %v", cursor.Payload.Cursor)
	}

	send(t, conn, mc.CodeFieldView, nil)
	view := receive[mc.RespFieldView](t, conn, mc.CodeFieldView)
	if len(view.Payload.Enemy) != 10 || view.Payload.Enemy[0][0] == '?' {
		t.Fatalf("expected the shot cell to be resolved: %v", view.Payload.Enemy)
	}
	if view.Payload.Cursor != cursor.Payload.Cursor {
		t.Fatalf("expected field view cursor: %v\t got: %v", cursor.Payload.Cursor, view.Payload.Cursor)
	}

	send(t, conn, mc.CodeStatistics, nil)
	stats := receive[mc.RespStatistics](t, conn, mc.CodeStatistics)
	if stats.Payload.Stats.Player.Shots != 1 || stats.Payload.Stats.Enemy.Shots != 1 {
		t.Fatalf("unexpected statistics: %+v", stats.Payload.Stats)
	}

	send(t, conn, mc.CodeFleetSummary, nil)
	if fleet := receive[mc.RespFleetSummary](t, conn, mc.CodeFleetSummary); len(fleet.Payload.Lines) == 0 {
		t.Fatal("expected fleet summary lines")
	}
}

func TestManualPlacementOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	conn := startSession(t, env)

	send(t, conn, mc.CodeNewGame, mc.ReqNewGame{FieldSize: 5, Fleet: "2,1", PlacementMode: "manual"})
	newGame := receive[mc.RespNewGame](t, conn, mc.CodeNewGame)
	if newGame.Payload.Status != mb.StatusPlacingShips.String() {
		t.Fatalf("expected placing ships\t got: %s", newGame.Payload.Status)
	}

	send(t, conn, mc.CodeRotateShip, nil)
	rotated := receive[mc.RespPlaceShip](t, conn, mc.CodeRotateShip)
	if rotated.Payload.Orientation != mb.Vertical.String() || rotated.Payload.NextSize != 2 {
		t.Fatalf("unexpected rotation reply: %+v", rotated.Payload)
	}

	send(t, conn, mc.CodePlaceShip, mc.ReqCoordinates{X: 0, Y: 0})
	placed := receive[mc.RespPlaceShip](t, conn, mc.CodePlaceShip)
	if placed.Payload.NextSize != 1 || placed.Payload.Field[1][0] != '#' {
		t.Fatalf("unexpected placement reply: %+v", placed.Payload)
	}

	// Touching the first ship is rejected
	send(t, conn, mc.CodePlaceShip, mc.ReqCoordinates{X: 1, Y: 1})
	if rejected := receive[json.RawMessage](t, conn, mc.CodePlaceShip); rejected.Error == nil {
		t.Fatal("expected touching placement to fail")
	}

	send(t, conn, mc.CodePlaceShip, mc.ReqCoordinates{X: 4, Y: 4})
	last := receive[mc.RespPlaceShip](t, conn, mc.CodePlaceShip)
	if last.Payload.Status != mb.StatusPlayerTurn.String() {
		t.Fatalf("expected battle to start\t got: %s", last.Payload.Status)
	}
}

func TestSaveAndLoadOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	conn := startSession(t, env)

	send(t, conn, mc.CodeNewGame, mc.ReqNewGame{})
	receive[mc.RespNewGame](t, conn, mc.CodeNewGame)

	send(t, conn, mc.CodeAttack, mc.ReqCoordinates{X: 3, Y: 3})
	receive[mc.RespAttack](t, conn, mc.CodeAttack)

	send(t, conn, mc.CodeSave, mc.ReqSave{Slot: "first"})
	saved := receive[mc.RespSave](t, conn, mc.CodeSave)
	if saved.Error != nil || saved.Payload.Bytes == 0 {
		t.Fatalf("unexpected save reply: %+v %+v", saved.Payload, saved.Error)
	}

	send(t, conn, mc.CodeSave, mc.ReqSave{Slot: "../bad"})
	if bad := receive[json.RawMessage](t, conn, mc.CodeSave); bad.Error == nil {
		t.Fatal("expected invalid slot name to fail")
	}

	// Loading in the middle of a turn is refused
	send(t, conn, mc.CodeLoad, mc.ReqLoad{Slot: "first"})
	if refused := receive[json.RawMessage](t, conn, mc.CodeLoad); refused.Error == nil {
		t.Fatal("expected load during a turn to fail")
	}

	send(t, conn, mc.CodeTogglePause, nil)
	paused := receive[mc.RespStatus](t, conn, mc.CodeTogglePause)
	if paused.Payload.Status != mb.StatusPaused.String() {
		t.Fatalf("expected paused\t got: %s", paused.Payload.Status)
	}

	send(t, conn, mc.CodeLoad, mc.ReqLoad{Slot: "missing"})
	if missing := receive[json.RawMessage](t, conn, mc.CodeLoad); missing.Error == nil {
		t.Fatal("expected missing slot to fail")
	}

	send(t, conn, mc.CodeLoad, mc.ReqLoad{Slot: "first"})
	loaded := receive[mc.RespLoad](t, conn, mc.CodeLoad)
	if loaded.Error != nil || loaded.Payload.Status != mb.StatusPlayerTurn.String() {
		t.Fatalf("unexpected load reply: %+v %+v", loaded.Payload, loaded.Error)
	}

	// A fresh session restores the slot without starting a game first
	other := startSession(t, env)
	send(t, other, mc.CodeLoad, mc.ReqLoad{Slot: "first"})
	restored := receive[mc.RespLoad](t, other, mc.CodeLoad)
	if restored.Error != nil || restored.Payload.Round != 1 {
		t.Fatalf("unexpected restore reply: %+v %+v", restored.Payload, restored.Error)
	}

	res, err := http.Get(env.server.URL + "/slots")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	var slots respSlots
	if err := json.NewDecoder(res.Body).Decode(&slots); err != nil {
		t.Fatal(err)
	}
	if len(slots.Slots) != 1 || slots.Slots[0].Name != "first" {
		t.Fatalf("unexpected slots: %+v", slots.Slots)
	}
}

func TestReconnectUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t, "?"+URLQuerySessionIDKeyword+"=unknown")
	receive[json.RawMessage](t, conn, mc.CodeReceivedInvalidSessionID)
}

func TestRestRoutes(t *testing.T) {
	env := newTestEnv(t)
	if err := env.slots.Save(context.Background(), "old", []byte("data"), "2024-05-17 21:03:00"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		expectedBody   string
	}{
		{name: "health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK, expectedBody: `"status":"ok"`},
		{name: "help", method: http.MethodGet, path: "/help", expectedStatus: http.StatusOK, expectedBody: "OBJECTIVE"},
		{name: "slots", method: http.MethodGet, path: "/slots", expectedStatus: http.StatusOK, expectedBody: `"name":"old"`},
		{name: "delete slot", method: http.MethodDelete, path: "/slots/old", expectedStatus: http.StatusNoContent},
		{name: "slots after delete", method: http.MethodGet, path: "/slots", expectedStatus: http.StatusOK, expectedBody: `"slots":[]`},
		{name: "delete missing slot", method: http.MethodDelete, path: "/slots/old", expectedStatus: http.StatusNotFound},
		{name: "delete bad slot name", method: http.MethodDelete, path: "/slots/bad.name", expectedStatus: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodPost, path: "/help", expectedStatus: http.StatusMethodNotAllowed},
		{name: "unknown", method: http.MethodGet, path: "/nope", expectedStatus: http.StatusNotFound},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req, err := http.NewRequest(test.method, env.server.URL+test.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			res, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer res.Body.Close()

			if res.StatusCode != test.expectedStatus {
				t.Fatalf("expected status: %d\t got: %d", test.expectedStatus, res.StatusCode)
			}
			body, _ := io.ReadAll(res.Body)
			if !strings.Contains(string(body), test.expectedBody) {
				t.Fatalf("expected body to contain %q\t got: %s", test.expectedBody, body)
			}
		})
	}
}
