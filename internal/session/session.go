// Package session is the client's single event loop. Inbound frames, pointer
// input, connection events and timer fires are all serialized through one
// inbox, so the mirror, the gesture machine and the throttles are only ever
// touched by the loop goroutine.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/tablesim-client/internal/gesture"
	"github.com/DoyleJ11/tablesim-client/internal/protocol"
	"github.com/DoyleJ11/tablesim-client/internal/remote"
	"github.com/DoyleJ11/tablesim-client/internal/store"
	"github.com/DoyleJ11/tablesim-client/internal/throttle"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	DefaultMoveInterval = 50 * time.Millisecond
	DefaultHandInterval = 50 * time.Millisecond
)

type Options struct {
	DragDelay    time.Duration
	MoveInterval time.Duration
	HandInterval time.Duration
	Clock        clockwork.Clock
}

type Session struct {
	id      string
	inbox   chan Msg
	store   *store.Store
	gesture *gesture.Disambiguator
	moveTh  *throttle.Heartbeat
	handTh  *throttle.Heartbeat
	remote  *remote.Remote
	status  Status
	version int
	clients map[string]chan View
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(parent context.Context, opts Options, tx remote.Sender, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.MoveInterval <= 0 {
		opts.MoveInterval = DefaultMoveInterval
	}
	if opts.HandInterval <= 0 {
		opts.HandInterval = DefaultHandInterval
	}

	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()
	log = log.With(zap.String("session", id))

	s := &Session{
		id:      id,
		inbox:   make(chan Msg, 64),
		store:   store.New(log.Named("store")),
		moveTh:  throttle.New(opts.Clock, opts.MoveInterval),
		handTh:  throttle.New(opts.Clock, opts.HandInterval),
		remote:  remote.New(tx, log.Named("remote")),
		status:  StatusConnecting,
		clients: make(map[string]chan View),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.gesture = gesture.New(opts.Clock, opts.DragDelay, func(e gesture.Expire) {
		s.Post(armExpired{Seq: e.Seq})
	})

	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Inbox exposes the raw inbox for callers that want to send directly.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Post delivers m unless the session has stopped.
func (s *Session) Post(m Msg) {
	select {
	case s.inbox <- m:
	case <-s.ctx.Done():
	}
}

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// State returns the current view without racing the loop.
func (s *Session) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case s.inbox <- GetState{Reply: reply}:
	case <-s.ctx.Done():
		return View{}, errors.New("session stopped")
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		return View{}, errors.New("session stopped")
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ID] = msg.Outbox
				select {
				case msg.Outbox <- s.view():
				default:
				}

			case Leave:
				delete(s.clients, msg.ID)

			case GetState:
				msg.Reply <- s.view()

			case Shutdown:
				s.shutdown()
				return

			default:
				if s.handle(m) {
					s.version++
					s.broadcast(s.view())
				}
			}
		}
	}
}

// handle applies one message and reports whether subscribers need a new view.
func (s *Session) handle(m Msg) bool {
	switch msg := m.(type) {
	case Frame:
		return s.onFrame(msg.Data)

	case ConnOpened:
		s.log.Info("connection open")
		s.status = StatusOpen
		return true

	case ConnFailed:
		s.log.Error("connection error", zap.Error(msg.Err))
		if s.status == StatusConnecting {
			s.status = StatusFailed
			return true
		}
		return false

	case ConnClosed:
		if msg.Err != nil {
			s.log.Error("connection closed", zap.Error(msg.Err))
			s.status = StatusFailed
		} else {
			s.log.Info("connection closed")
			s.status = StatusClosed
		}
		_, _ = s.gesture.Handle(gesture.Cancel{})
		return true

	case PointerDown:
		return s.onPointerDown(msg)

	case PointerMove:
		moved := s.broadcastHand(msg.X, msg.Y)
		dragged := s.step(gesture.Move{X: msg.X, Y: msg.Y})
		return moved || dragged

	case PointerUp:
		return s.step(gesture.Up{X: msg.X, Y: msg.Y})

	case armExpired:
		return s.step(gesture.Expire{Seq: msg.Seq})
	}
	s.log.Warn("unhandled message", zap.Any("msg", m))
	return false
}

func (s *Session) onFrame(data []byte) bool {
	notes, err := protocol.DecodeFrame(data)
	if err != nil {
		s.log.Warn("discarding frame", zap.Error(err), zap.Int("bytes", len(data)))
		return false
	}
	changed := false
	for _, n := range notes {
		if _, err := s.store.Dispatch(store.ActionFor(n)); err == nil {
			changed = true
		}
	}
	return changed
}

func (s *Session) onPointerDown(msg PointerDown) bool {
	snap := s.store.Snapshot()
	c, ok := snap.ComponentAt(msg.X, msg.Y)
	if !ok {
		return false
	}
	if !c.OwnedBy(snap.PlayerNumber) {
		s.log.Debug("component owned by another player", zap.Int("component", c.ID))
		return false
	}
	return s.step(gesture.Down{Target: c.ID, Button: msg.Button})
}

// step feeds the gesture machine and acts on whatever it resolves.
func (s *Session) step(in gesture.Input) bool {
	outs, err := s.gesture.Handle(in)
	if errors.Is(err, gesture.ErrBusy) {
		s.log.Debug("pointer down ignored while another target is armed")
		return false
	}
	if err != nil {
		s.log.Warn("gesture", zap.Error(err))
		return false
	}

	changed := false
	for _, o := range outs {
		switch ev := o.(type) {
		case gesture.Click:
			s.click(ev)
		case gesture.DragStart:
			s.moveTh.Reset()
			changed = true
		case gesture.DragUpdate:
			if x, y, ok := s.moveLocal(ev.Target, ev.X, ev.Y); ok {
				if s.moveTh.Allow() {
					s.remote.MoveComponent(ev.Target, x, y)
				}
				changed = true
			}
		case gesture.DragEnd:
			if x, y, ok := s.moveLocal(ev.Target, ev.X, ev.Y); ok {
				s.moveTh.Force()
				s.remote.MoveComponent(ev.Target, x, y)
			}
			changed = true
		}
	}
	return changed
}

// click routes a resolved click to the command for the component's role.
// Local state is left alone; the server echoes the result.
func (s *Session) click(ev gesture.Click) {
	c, ok := s.store.Snapshot().Components[ev.Target]
	if !ok {
		return
	}
	switch c.Role {
	case protocol.RoleText:
		switch ev.Button {
		case gesture.ButtonLeft:
			if !c.Selectability {
				return
			}
			if c.IsSelected {
				s.remote.UnselectComponent(c.ID)
			} else {
				s.remote.SelectComponent(c.ID)
			}
		case gesture.ButtonRight:
			if c.IsOpened {
				s.remote.CloseComponent(c.ID)
			} else {
				s.remote.OpenComponent(c.ID)
			}
		}
	case protocol.RoleCounter:
		switch ev.Button {
		case gesture.ButtonLeft:
			s.remote.IncrementComponent(c.ID)
		case gesture.ButtonRight:
			s.remote.DecrementComponent(c.ID)
		}
	}
}

// moveLocal centres the dragged component on the pointer in the mirror and
// returns its new top-left corner.
func (s *Session) moveLocal(id int, px, py float64) (float64, float64, bool) {
	c, ok := s.store.Snapshot().Components[id]
	if !ok {
		s.log.Debug("dragged component vanished", zap.Int("component", id))
		return 0, 0, false
	}
	c.X = px - c.W/2
	c.Y = py - c.H/2
	s.store.Dispatch(store.UpdateComponent{ID: id, Component: c})
	return c.X, c.Y, true
}

// broadcastHand reports whether the own hand moved in the mirror.
func (s *Session) broadcastHand(x, y float64) bool {
	if s.handTh.Allow() {
		s.remote.MoveOwnHand(x, y)
	}
	snap := s.store.Snapshot()
	if _, ok := snap.Hands[snap.PlayerNumber]; !ok {
		return false
	}
	_, err := s.store.Dispatch(store.MoveHand{Player: snap.PlayerNumber, X: x, Y: y})
	return err == nil
}

func (s *Session) view() View {
	st := s.gesture.State()
	v := View{
		SessionID: s.id,
		Version:   s.version,
		Status:    s.status,
		Snapshot:  s.store.Snapshot(),
	}
	if st.Phase == gesture.Dragging {
		v.Dragging = true
		v.DragTarget = st.Target
	}
	return v
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch) // Tell subscriber no more views
		delete(s.clients, id)
	}
	s.gesture.Close()
	s.cancel()
}

func (s *Session) broadcast(v View) {
	for id, ch := range s.clients {
		select {
		case ch <- v:
			//ok
		default:
			// Subscriber is slow/full - drop them.
			s.log.Warn("dropping slow subscriber", zap.String("subscriber", id))
			close(ch)
			delete(s.clients, id)
		}
	}
}
