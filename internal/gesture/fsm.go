// Package gesture splits a pointer down/move/up stream into clicks and drags.
//
// A pointer-down arms the target and starts a timer. If the pointer is
// released first the interaction is a click. If the timer fires first the
// target becomes the drag target, every following move is a drag update and
// the release is the single drag end.
package gesture

import (
	"errors"
	"time"
)

var ErrBusy = errors.New("another target is already armed")

const DefaultDelay = 100 * time.Millisecond

type Phase int

const (
	Idle Phase = iota
	Pending
	Dragging
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// State is the whole machine. Seq identifies the current arm so a timer from
// an earlier arm can be told apart and ignored.
type State struct {
	Phase    Phase
	Target   int
	Button   Button
	Deadline time.Time
	Seq      uint64
}

type Input interface{ isInput() }

type Down struct {
	Target int
	Button Button
	At     time.Time
}

type Move struct{ X, Y float64 }

type Up struct{ X, Y float64 }

// Expire is the arm timer firing for arm Seq.
type Expire struct{ Seq uint64 }

// Cancel drops whatever is armed or dragging without emitting anything.
type Cancel struct{}

func (Down) isInput()   {}
func (Move) isInput()   {}
func (Up) isInput()     {}
func (Expire) isInput() {}
func (Cancel) isInput() {}

type Output interface{ isOutput() }

// Armed asks the owner to start a timer that reports Expire{Seq} at Deadline.
type Armed struct {
	Target   int
	Seq      uint64
	Deadline time.Time
}

type Click struct {
	Target int
	Button Button
	X, Y   float64
}

type DragStart struct{ Target int }

type DragUpdate struct {
	Target int
	X, Y   float64
}

type DragEnd struct {
	Target int
	X, Y   float64
}

func (Armed) isOutput()      {}
func (Click) isOutput()      {}
func (DragStart) isOutput()  {}
func (DragUpdate) isOutput() {}
func (DragEnd) isOutput()    {}

// Step is the transition function. It never has side effects; on error the
// state is returned unchanged.
func Step(s State, in Input, delay time.Duration) (State, []Output, error) {
	switch ev := in.(type) {
	case Down:
		if s.Phase != Idle {
			return s, nil, ErrBusy
		}
		next := State{
			Phase:    Pending,
			Target:   ev.Target,
			Button:   ev.Button,
			Deadline: ev.At.Add(delay),
			Seq:      s.Seq + 1,
		}
		return next, []Output{Armed{Target: next.Target, Seq: next.Seq, Deadline: next.Deadline}}, nil

	case Expire:
		if s.Phase != Pending || ev.Seq != s.Seq {
			return s, nil, nil // stale or already resolved
		}
		next := s
		next.Phase = Dragging
		next.Deadline = time.Time{}
		return next, []Output{DragStart{Target: s.Target}}, nil

	case Move:
		if s.Phase != Dragging {
			return s, nil, nil
		}
		return s, []Output{DragUpdate{Target: s.Target, X: ev.X, Y: ev.Y}}, nil

	case Up:
		switch s.Phase {
		case Pending:
			return idle(s), []Output{Click{Target: s.Target, Button: s.Button, X: ev.X, Y: ev.Y}}, nil
		case Dragging:
			return idle(s), []Output{DragEnd{Target: s.Target, X: ev.X, Y: ev.Y}}, nil
		}
		return s, nil, nil

	case Cancel:
		return idle(s), nil, nil
	}
	return s, nil, nil
}

func idle(s State) State {
	return State{Phase: Idle, Seq: s.Seq}
}
