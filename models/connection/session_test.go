package connection

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	cerr "github.com/saeidalz13/seabattle/internal/error"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyConnErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected uint8
	}{
		{name: "timeout", err: timeoutErr{}, expected: ConnLoopRetry},
		{name: "wrapped timeout", err: fmt.Errorf("read: %w", timeoutErr{}), expected: ConnLoopRetry},
		{name: "try again later", err: &websocket.CloseError{Code: websocket.CloseTryAgainLater}, expected: ConnLoopRetry},
		{name: "abnormal closure", err: &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, expected: ConnLoopAbnormalClosureRetry},
		{name: "normal closure", err: &websocket.CloseError{Code: websocket.CloseNormalClosure}, expected: ConnLoopBreak},
		{name: "unsupported data", err: &websocket.CloseError{Code: websocket.CloseUnsupportedData}, expected: ConnLoopBreak},
		{name: "unexpected", err: errors.New("boom"), expected: ConnLoopBreak},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got, _ := classifyConnErr(test.err); got != test.expected {
				t.Fatalf("expected code: %d\t got: %d", test.expected, got)
			}
		})
	}
}

func TestConnErrUnwrap(t *testing.T) {
	cause := errors.New("broken pipe")
	err := NewConnErr(ConnLoopBreak).AddDesc("write failed").AddCause(cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected conn err to wrap its cause")
	}
	if err.Code() != ConnLoopBreak {
		t.Fatalf("expected code: %d\t got: %d", ConnLoopBreak, err.Code())
	}
}

func TestSessionManagerLifecycle(t *testing.T) {
	bsm := NewBattleshipSessionManager(WithCleanupInterval(time.Millisecond))

	session := bsm.GenerateNewSession(nil)
	if bsm.Len() != 1 {
		t.Fatalf("expected sessions: 1\t got: %d", bsm.Len())
	}

	found, err := bsm.FindSession(session.Id())
	if err != nil || found != session {
		t.Fatalf("expected to find session %s: %v", session.Id(), err)
	}

	bsm.TerminateSession(session.Id())
	if _, err := bsm.FindSession(session.Id()); err == nil {
		t.Fatal("expected terminated session to be gone")
	}

	if err := bsm.ReconnectSession("missing", nil); err == nil {
		t.Fatal("expected reconnecting an unknown session to fail")
	}

	stale := bsm.GenerateNewSession(nil)
	stale.lastActive.Store(time.Now().Add(-time.Hour).UnixNano())
	bsm.cleanup()
	if _, err := bsm.FindSession(stale.Id()); err == nil {
		t.Fatal("expected stale session to be cleaned up")
	}
}

// Run with -race: the session loop marks activity while cleanup scans
func TestTouchDuringCleanup(t *testing.T) {
	bsm := NewBattleshipSessionManager(WithCleanupInterval(time.Hour))
	session := bsm.GenerateNewSession(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			session.touch()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			bsm.cleanup()
		}
	}()
	wg.Wait()

	if _, err := bsm.FindSession(session.Id()); err != nil {
		t.Fatalf("expected active session to survive cleanup: %v", err)
	}
	if time.Since(session.LastActive()) > time.Minute {
		t.Fatalf("expected recent activity\t got: %s", session.LastActive())
	}
}

func TestAbnormalClosureGracePeriod(t *testing.T) {
	bsm := NewBattleshipSessionManager(WithGracePeriod(time.Second))
	session := bsm.GenerateNewSession(nil)

	// Without a game there is nothing to wait for
	err := bsm.HandleAbnormalClosureSession(session)
	var connErr ConnErr
	if !errors.As(err, &connErr) || connErr.Code() != ConnLoopBreak {
		t.Fatalf("expected loop break, got: %v", err)
	}
}

func TestFetchCodeFromMsg(t *testing.T) {
	bsm := NewBattleshipSessionManager()

	tests := []struct {
		name        string
		payload     string
		expected    uint8
		expectedErr bool
	}{
		{name: "attack", payload: `{"code": 7, "payload": {"x": 1, "y": 2}}`, expected: CodeAttack},
		{name: "zero code", payload: `{"code": 0}`, expected: CodeSessionID},
		{name: "no code", payload: `{"payload": {}}`, expected: CodeSignalAbsent, expectedErr: true},
		{name: "not json", payload: `attack`, expected: CodeSignalAbsent, expectedErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, err := bsm.FetchCodeFromMsg([]byte(test.payload))
			if (err != nil) != test.expectedErr {
				t.Fatalf("unexpected err: %v", err)
			}
			if code != test.expected {
				t.Fatalf("expected code: %d\t got: %d", test.expected, code)
			}
		})
	}

	if _, err := bsm.FetchCodeFromMsg([]byte(`{}`)); !errors.Is(err, cerr.ErrSignalAbsent) {
		t.Fatalf("expected signal absent error, got: %v", err)
	}
}
