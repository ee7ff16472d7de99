// Package transport owns the single WebSocket connection to the table server.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var (
	ErrNotOpen     = errors.New("connection is not open")
	ErrBufferFull  = errors.New("send buffer full")
	ErrAlreadyUsed = errors.New("adapter already ran")
)

const (
	readLimit    = 1 << 20
	writeTimeout = 3 * time.Second
	sendBuffer   = 64
)

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Callbacks are invoked from the adapter's goroutines. OnOpen and OnClose
// fire at most once each; OnMessage and OnError may fire any number of times.
// OnClose receives nil for a clean close.
type Callbacks struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnClose   func(err error)
	OnError   func(err error)
}

type Adapter struct {
	url string
	cb  Callbacks
	log *zap.Logger

	state   atomic.Int32
	started atomic.Bool
	closing atomic.Bool
	out     chan string

	mu   sync.Mutex
	conn *websocket.Conn

	openOnce  sync.Once
	closeOnce sync.Once
}

func New(url string, cb Callbacks, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		url: url,
		cb:  cb,
		log: log.With(zap.String("url", url)),
		out: make(chan string, sendBuffer),
	}
}

func (a *Adapter) State() State { return State(a.state.Load()) }

// Run dials once and serves the connection until it closes or ctx is done.
// There is no reconnect; a new Adapter is needed for a new connection.
func (a *Adapter) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyUsed
	}
	a.state.Store(int32(StateConnecting))

	conn, _, err := websocket.Dial(ctx, a.url, nil)
	if err != nil {
		a.state.Store(int32(StateClosed))
		err = fmt.Errorf("dial: %w", err)
		a.log.Error("connect failed", zap.Error(err))
		a.fireError(err)
		a.fireClose(err)
		return err
	}
	conn.SetReadLimit(readLimit)

	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()
	a.state.Store(int32(StateOpen))
	a.log.Info("connected")
	a.fireOpen()

	runCtx, cancel := context.WithCancel(ctx)
	writerDone := make(chan struct{})
	go a.writer(runCtx, conn, writerDone)

	err = a.readLoop(runCtx, conn)

	a.state.Store(int32(StateClosed))
	cancel()
	<-writerDone
	_ = conn.Close(websocket.StatusNormalClosure, "bye")

	if a.closing.Load() || isCleanClose(ctx, err) {
		a.log.Info("disconnected")
		a.fireClose(nil)
		return nil
	}
	a.log.Error("connection lost", zap.Error(err))
	a.fireError(err)
	a.fireClose(err)
	return err
}

func (a *Adapter) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if a.cb.OnMessage != nil {
			a.cb.OnMessage(data)
		}
	}
}

func (a *Adapter) writer(ctx context.Context, conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, []byte(msg))
			cancel()
			if err != nil && ctx.Err() == nil {
				a.log.Warn("write failed", zap.Error(err))
				a.fireError(fmt.Errorf("write: %w", err))
			}
		}
	}
}

// Send queues msg for the writer. Anything sent while the connection is not
// open, or while the buffer is full, is discarded.
func (a *Adapter) Send(msg string) {
	if err := a.TrySend(msg); err != nil {
		a.log.Debug("send dropped", zap.Error(err))
	}
}

// TrySend is Send that reports why a message was discarded.
func (a *Adapter) TrySend(msg string) error {
	if a.State() != StateOpen {
		return ErrNotOpen
	}
	select {
	case a.out <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close closes the socket with a normal status. Run then returns nil.
func (a *Adapter) Close() error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return ErrNotOpen
	}
	a.closing.Store(true)
	return conn.Close(websocket.StatusNormalClosure, "client closing")
}

func (a *Adapter) fireOpen() {
	a.openOnce.Do(func() {
		if a.cb.OnOpen != nil {
			a.cb.OnOpen()
		}
	})
}

func (a *Adapter) fireClose(err error) {
	a.closeOnce.Do(func() {
		if a.cb.OnClose != nil {
			a.cb.OnClose(err)
		}
	})
}

func (a *Adapter) fireError(err error) {
	if a.cb.OnError != nil {
		a.cb.OnError(err)
	}
}

func isCleanClose(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
