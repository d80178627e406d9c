package connection

import (
	"errors"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	mb "github.com/saeidalz13/seabattle/models/battleship"
)

const (
	maxWriteWsRetries uint8         = 2
	backOffFactor     uint8         = 2
	gracePeriod       time.Duration = time.Minute * 2
)

const (
	MessageTypeBytes uint8 = iota
	MessageTypeJSON
)

type ConnectionHandler interface {
	reconnectionAfterAbnormalClosure(conn *websocket.Conn)
	handleReadFromConnErr(err error, retries uint8) uint8
	writeToConnWithRetry(msg interface{}, msgType uint8) error
	onConnErr(err error) uint8
}

// Session binds one websocket connection to one game against the computer.
type Session struct {
	id                     string
	conn                   *websocket.Conn
	game                   *mb.Game
	reconnectionSignalChan chan bool
	createdAt              time.Time
	// unix nanos, written by the session loop and read by cleanup
	lastActive atomic.Int64

	// gorilla/websocket allows a single concurrent writer
	writeMu sync.Mutex
}

func NewSession(id string, conn *websocket.Conn) *Session {
	now := time.Now()
	s := &Session{
		id:                     id,
		conn:                   conn,
		reconnectionSignalChan: make(chan bool),
		createdAt:              now,
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn
}

func (s *Session) Game() *mb.Game {
	return s.game
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

type closeRule struct {
	codes  []int
	label  string
	action uint8
}

// Checked in order, the first matching rule wins.
var closeRules = []closeRule{
	{codes: []int{websocket.CloseTryAgainLater}, label: "high server load/traffic error", action: ConnLoopRetry},
	// Happens if a mobile client goes to background
	{codes: []int{websocket.CloseAbnormalClosure}, label: "abnormal closure error", action: ConnLoopAbnormalClosureRetry},
	{codes: []int{websocket.CloseGoingAway, websocket.CloseNormalClosure}, label: "close error", action: ConnLoopBreak},
	{
		codes:  []int{websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension},
		label:  "critical error",
		action: ConnLoopBreak,
	},
	// Client is probably not ours; stop reading invalid payloads
	{
		codes: []int{
			websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig,
			websocket.ClosePolicyViolation, websocket.CloseServiceRestart, websocket.CloseNoStatusReceived,
		},
		label:  "non-critical error",
		action: ConnLoopBreak,
	},
}

func classifyConnErr(err error) (uint8, string) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ConnLoopRetry, "timeout error"
	}

	for _, rule := range closeRules {
		if websocket.IsCloseError(err, rule.codes...) {
			return rule.action, rule.label
		}
	}
	return ConnLoopBreak, "unexpected error"
}

func (s *Session) onConnErr(err error) uint8 {
	action, label := classifyConnErr(err)
	log.Printf("%s [%s]: %s\n", label, s.id, err)
	return action
}

// Writes to the connection of that session. It also
// handles the abnormal or other types of errors of
// writing to a websocket connection.
func (s *Session) writeToConnWithRetry(msg interface{}, msgType uint8) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var retries uint8

writeLoop:
	for {
		var err error

		switch msgType {
		case MessageTypeJSON:
			err = s.conn.WriteJSON(msg)

		case MessageTypeBytes:
			respBytes, ok := msg.([]byte)
			if !ok {
				return NewConnErr(ConnInvalidMsgType).AddDesc("msg type expected: []byte got invalid")
			}
			err = s.conn.WriteMessage(websocket.TextMessage, respBytes)

		default:
			return NewConnErr(ConnInvalidMsgType).AddDesc("invalid message type to write with retry")
		}

		if err == nil {
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWriteWsRetries {
				retries++
				log.Printf("writing to ws [%s] failed; retrying... (retry no. %d)\n", s.conn.RemoteAddr().String(), retries)
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue writeLoop
			}
			log.Printf("max retries reached for writing to ws [%s]: %s", s.conn.RemoteAddr().String(), err)
			return NewConnErr(ConnLoopBreak).AddCause(err)

		case ConnLoopAbnormalClosureRetry:
			return NewConnErr(ConnLoopAbnormalClosureRetry).AddCause(err)

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking write loop").AddCause(err)
		}
	}
}

// Handles the errors that occur when reading from the
// ws connection. `ConnLoopContinue` asks the caller to
// read again; everything else ends the session loop.
func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	switch s.onConnErr(err) {
	case ConnLoopAbnormalClosureRetry:
		return ConnLoopAbnormalClosureRetry

	case ConnLoopRetry:
		if retries < maxWriteWsRetries {
			log.Printf("failed to read from ws conn [%s]; retrying... (retry no. %d)\n", s.conn.RemoteAddr().String(), retries)
			time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
			return ConnLoopContinue
		}
		return ConnLoopBreak

	default:
		log.Printf("break ws conn loop [%s] due to: %s\n", s.conn.RemoteAddr().String(), err)
		return ConnLoopBreak
	}
}

func (s *Session) reconnectionSignal() <-chan bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.reconnectionSignalChan
}

func (s *Session) reconnectionAfterAbnormalClosure(conn *websocket.Conn) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Signal for reconnection
	close(s.reconnectionSignalChan)

	s.conn = conn
	s.reconnectionSignalChan = make(chan bool)
	s.touch()
}

var _ ConnectionHandler = (*Session)(nil)
