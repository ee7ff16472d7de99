package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableServer accepts one socket, pushes greeting, and forwards whatever the
// client writes to received.
type tableServer struct {
	*httptest.Server
	received chan string
	greeting string
	closeNow bool
}

func newTableServer(t *testing.T, greeting string, closeNow bool) *tableServer {
	t.Helper()
	ts := &tableServer{received: make(chan string, 16), greeting: greeting, closeNow: closeNow}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		if ts.greeting != "" {
			_ = conn.Write(r.Context(), websocket.MessageText, []byte(ts.greeting))
		}
		if ts.closeNow {
			_ = conn.Close(websocket.StatusNormalClosure, "table closed")
			return
		}
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}
			ts.received <- string(data)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tableServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/"
}

type events struct {
	opens    atomic.Int32
	closes   atomic.Int32
	opened   chan struct{}
	messages chan []byte
	closed   chan error
	errs     chan error
}

func newEvents() *events {
	return &events{
		opened:   make(chan struct{}, 1),
		messages: make(chan []byte, 16),
		closed:   make(chan error, 1),
		errs:     make(chan error, 16),
	}
}

func (e *events) callbacks() Callbacks {
	return Callbacks{
		OnOpen: func() {
			e.opens.Add(1)
			e.opened <- struct{}{}
		},
		OnMessage: func(data []byte) { e.messages <- data },
		OnClose: func(err error) {
			e.closes.Add(1)
			e.closed <- err
		},
		OnError: func(err error) { e.errs <- err },
	}
}

func recv[T any](t *testing.T, ch <-chan T, within time.Duration) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out after %v", within)
		var zero T
		return zero
	}
}

func TestAdapter_OpenMessageSendClose(t *testing.T) {
	ts := newTableServer(t, `[{"type":"playerNumber","payload":{"playerNumber":1}}]`, false)
	ev := newEvents()
	a := New(ts.wsURL(), ev.callbacks(), nil)

	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(context.Background()) }()

	recv(t, ev.opened, time.Second)
	assert.Equal(t, StateOpen, a.State())

	msg := recv(t, ev.messages, time.Second)
	assert.JSONEq(t, `[{"type":"playerNumber","payload":{"playerNumber":1}}]`, string(msg))

	a.Send(`{"type":"SelectComponent","payload":{"component_id":1}}`)
	got := recv(t, ts.received, time.Second)
	assert.JSONEq(t, `{"type":"SelectComponent","payload":{"component_id":1}}`, got)

	require.NoError(t, a.Close())
	require.NoError(t, recv(t, runErr, 5*time.Second))
	assert.NoError(t, recv(t, ev.closed, time.Second))

	assert.Equal(t, int32(1), ev.opens.Load())
	assert.Equal(t, int32(1), ev.closes.Load())
	assert.Equal(t, StateClosed, a.State())
}

func TestAdapter_SendBeforeOpenIsDropped(t *testing.T) {
	a := New("ws://127.0.0.1:1/ws/", Callbacks{}, nil)

	a.Send("ignored")
	if err := a.TrySend("ignored"); !errors.Is(err, ErrNotOpen) {
		t.Fatalf("want ErrNotOpen, got %v", err)
	}
	assert.Empty(t, a.out)
}

func TestAdapter_DialFailureReportsErrorAndClose(t *testing.T) {
	ts := newTableServer(t, "", false)
	url := ts.wsURL()
	ts.Close()

	ev := newEvents()
	a := New(url, ev.callbacks(), nil)
	err := a.Run(context.Background())
	require.Error(t, err)

	assert.Error(t, recv(t, ev.errs, time.Second))
	assert.Error(t, recv(t, ev.closed, time.Second))
	assert.Equal(t, int32(0), ev.opens.Load())
	assert.Equal(t, int32(1), ev.closes.Load())
	assert.Equal(t, StateClosed, a.State())
	assert.ErrorIs(t, a.TrySend("late"), ErrNotOpen)
}

func TestAdapter_ServerCloseIsClean(t *testing.T) {
	ts := newTableServer(t, "", true)
	ev := newEvents()
	a := New(ts.wsURL(), ev.callbacks(), nil)

	err := a.Run(context.Background())
	require.NoError(t, err)
	assert.NoError(t, recv(t, ev.closed, time.Second))
	assert.Equal(t, int32(1), ev.closes.Load())
}

func TestAdapter_ServerFailureReportsErrorThenClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Close(websocket.StatusInternalError, "table crashed")
	}))
	t.Cleanup(srv.Close)

	var order []string
	var mu sync.Mutex
	note := func(what string) {
		mu.Lock()
		order = append(order, what)
		mu.Unlock()
	}
	ev := newEvents()
	cb := ev.callbacks()
	onError, onClose := cb.OnError, cb.OnClose
	cb.OnError = func(err error) { note("error"); onError(err) }
	cb.OnClose = func(err error) { note("close"); onClose(err) }

	a := New("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/", cb, nil)
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, websocket.StatusInternalError, websocket.CloseStatus(err))

	assert.Error(t, recv(t, ev.errs, time.Second))
	closeErr := recv(t, ev.closed, time.Second)
	require.Error(t, closeErr)
	assert.Equal(t, websocket.StatusInternalError, websocket.CloseStatus(closeErr))

	assert.Len(t, ev.errs, 0, "exactly one error")
	assert.Equal(t, int32(1), ev.opens.Load())
	assert.Equal(t, int32(1), ev.closes.Load())
	mu.Lock()
	assert.Equal(t, []string{"error", "close"}, order)
	mu.Unlock()
	assert.Equal(t, StateClosed, a.State())
}

func TestAdapter_RunOnlyOnce(t *testing.T) {
	ts := newTableServer(t, "", true)
	a := New(ts.wsURL(), Callbacks{}, nil)
	_ = a.Run(context.Background())

	assert.ErrorIs(t, a.Run(context.Background()), ErrAlreadyUsed)
}
