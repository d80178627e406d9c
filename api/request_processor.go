package api

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sqlc-dev/pqtype"

	"github.com/saeidalz13/seabattle/db/sqlc"
	cerr "github.com/saeidalz13/seabattle/internal/error"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var upgrader = websocket.Upgrader{
	// good average time since this is not a high-latency operation such as video streaming
	HandshakeTimeout: time.Second * 5,

	// a field view of the largest board fits comfortably
	ReadBufferSize:  2048,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SlotStore keeps serialised games under a name.
type SlotStore interface {
	Save(ctx context.Context, name string, data []byte, savedAt string) error
	Load(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]sqlc.ListSaveSlotsRow, error)
	Delete(ctx context.Context, name string) error
}

var _ SlotStore = (*sqlc.SlotManager)(nil)

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	slots          SlotStore
	defaults       mb.Settings
	ipnet          net.IPNet
}

type ProcessorOption func(*RequestProcessor)

func WithSlotStore(slots SlotStore) ProcessorOption {
	return func(rp *RequestProcessor) {
		rp.slots = slots
	}
}

func WithDefaultSettings(settings mb.Settings) ProcessorOption {
	return func(rp *RequestProcessor) {
		rp.defaults = settings
	}
}

// NewRequestProcessor wires the websocket loop. A DbManager without
// analytics turns counting off; without slots, saving needs WithSlotStore.
func NewRequestProcessor(
	sessionManager mc.SessionManager,
	gameManager mb.GameManager,
	dbManager sqlc.DbManager,
	opts ...ProcessorOption,
) RequestProcessor {
	rp := RequestProcessor{
		sessionManager: sessionManager,
		gameManager:    gameManager,
		analytics:      dbManager.Analytics,
		defaults:       mb.DefaultSettings(),
	}
	if dbManager.Slots != nil {
		rp.slots = dbManager.Slots
	}
	for _, opt := range opts {
		opt(&rp)
	}

	rp.ipnet = getServerIpNet()
	return rp
}

// getServerIpNet picks the first non-loopback IPv4 address of the
// host and falls back to loopback.
func getServerIpNet() net.IPNet {
	loopback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Println("failed to list interfaces:", err)
		return loopback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if ok && ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return *ipnet
			}
		}
	}
	return loopback
}

// Expose this method to use it in testing
func (rp RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	if sessionIdQuery == "" {
		log.Println("a new connection established\tRemote Addr: ", conn.RemoteAddr().String())
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))
		return
	}

	// The session loop waiting out the grace period takes the new conn over
	if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
		log.Println(err)
		_ = conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID))
		conn.Close()
	}
}

func (rp RequestProcessor) countGameCreated(serverIp pqtype.Inet) {
	if rp.analytics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()
	if err := rp.analytics.IncrementGamesCreatedCount(ctx, serverIp); err != nil {
		// analytics never stops a game
		log.Println(err)
	}
}

func (rp RequestProcessor) countRoundPlayed(serverIp pqtype.Inet) {
	if rp.analytics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()
	if err := rp.analytics.IncrementRoundsPlayedCount(ctx, serverIp); err != nil {
		log.Println(err)
	}
}

// requiresGame lists the codes that act on an existing game.
var requiresGame = map[uint8]bool{
	mc.CodePlaceShip:    true,
	mc.CodeRotateShip:   true,
	mc.CodeClearShip:    true,
	mc.CodeRandomShips:  true,
	mc.CodeAttack:       true,
	mc.CodeUseAbility:   true,
	mc.CodeAdvanceRound: true,
	mc.CodeTogglePause:  true,
	mc.CodeExit:         true,
	mc.CodeSave:         true,
	mc.CodeStatistics:   true,
	mc.CodeFleetSummary: true,
	mc.CodeFieldView:    true,
	mc.CodeShipsInfo:    true,
	mc.CodeMoveCursor:   true,
}

func (rp RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()

	defer func() {
		if game := rp.sessionManager.GetSessionGame(session); game != nil {
			rp.gameManager.TerminateGame(game.Uuid)
		}
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
		log.Printf("session closed: %s\n", sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

	serverPqtypeInet := pqtype.Inet{IPNet: rp.ipnet, Valid: true}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// Retries are exhausted by now
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewErrMessage(mc.CodeSignalAbsent, cerr.ErrSignalAbsent, "")
			if err := rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		game := rp.sessionManager.GetSessionGame(session)
		gameUuid := ""
		if game != nil {
			gameUuid = game.Uuid
		}
		out := mc.NewOutbox(sessionId, gameUuid)

		if requiresGame[code] && game == nil {
			out.Push(mc.NewErrMessage(code, cerr.ErrGameIsNil(sessionId), "start a new game first"))
			if !rp.flush(session, out) {
				break sessionLoop
			}
			continue sessionLoop
		}

		req := NewRequest(payload)

		switch code {
		case mc.CodeNewGame:
			newGame, msg := req.HandleNewGame(rp.gameManager, rp.defaults)
			out.Push(msg)
			if newGame != nil {
				if game != nil {
					rp.gameManager.TerminateGame(game.Uuid)
				}
				rp.sessionManager.SetSessionGame(session, newGame)
				rp.countGameCreated(serverPqtypeInet)
				log.Printf("new game %s for session %s\n", newGame.Uuid, sessionId)
			}

		case mc.CodePlaceShip:
			out.Push(req.HandlePlaceShip(game))

		case mc.CodeRotateShip:
			out.Push(req.HandleRotateShip(game))

		case mc.CodeClearShip:
			out.Push(req.HandleClearShip(game))

		case mc.CodeRandomShips:
			out.Push(req.HandleRandomShips(game))

		case mc.CodeAttack:
			msg := req.HandleAttack(game)
			out.Push(msg)
			if !msg.Failed() {
				rp.pushRoundEnded(out, game, serverPqtypeInet)
			}

		case mc.CodeUseAbility:
			msg := req.HandleUseAbility(game)
			out.Push(msg)
			if !msg.Failed() {
				rp.pushRoundEnded(out, game, serverPqtypeInet)
			}

		case mc.CodeAdvanceRound:
			out.Push(req.HandleAdvanceRound(game))

		case mc.CodeTogglePause:
			out.Push(req.HandleTogglePause(game))

		case mc.CodeExit:
			out.Push(req.HandleExit(game))

		case mc.CodeSave:
			ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
			out.Push(req.HandleSave(ctx, game, rp.slots))
			cancel()

		case mc.CodeLoad:
			ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
			loaded, msg := req.HandleLoad(ctx, rp.gameManager, game, rp.slots, rp.defaults)
			cancel()
			out.Push(msg)
			if loaded != nil && loaded != game {
				rp.sessionManager.SetSessionGame(session, loaded)
			}

		case mc.CodeStatistics:
			out.Push(req.HandleStatistics(game))

		case mc.CodeHelp:
			out.Push(req.HandleHelp())

		case mc.CodeFleetSummary:
			out.Push(req.HandleFleetSummary(game))

		case mc.CodeFieldView:
			out.Push(req.HandleFieldView(game))

		case mc.CodeShipsInfo:
			out.Push(req.HandleShipsInfo(game))

		case mc.CodeMoveCursor:
			out.Push(req.HandleMoveCursor(game))

		default:
			respInvalidSignal := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			respInvalidSignal.AddError("", "invalid code in the incoming payload")
			out.Push(respInvalidSignal)
		}

		if !rp.flush(session, out) {
			break sessionLoop
		}
	}
}

func (rp RequestProcessor) pushRoundEnded(out *mc.Outbox, game *mb.Game, serverIp pqtype.Inet) {
	msg, ended := roundEnded(game)
	if !ended {
		return
	}
	out.Push(msg)
	rp.countRoundPlayed(serverIp)
	log.Printf("game %s: round %d won by %s\n", game.Uuid, msg.Payload.Round, msg.Payload.Winner)
}

// flush writes the queued replies in order. False means the
// connection is gone.
func (rp RequestProcessor) flush(session *mc.Session, out *mc.Outbox) bool {
	for _, m := range out.Messages() {
		if err := rp.sessionManager.WriteToSessionConn(session, m.Payload, m.PayloadType); err != nil {
			return false
		}
	}
	return true
}
