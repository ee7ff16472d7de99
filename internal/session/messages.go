package session

import (
	"github.com/DoyleJ11/tablesim-client/internal/gesture"
	"github.com/DoyleJ11/tablesim-client/internal/store"
)

type Msg interface{ isSessionMsg() }

// Frame is one raw inbound WebSocket message.
type Frame struct{ Data []byte }

func (Frame) isSessionMsg() {}

type ConnOpened struct{}

func (ConnOpened) isSessionMsg() {}

// ConnClosed reports the end of the connection; Err is nil for a clean close.
type ConnClosed struct{ Err error }

func (ConnClosed) isSessionMsg() {}

type ConnFailed struct{ Err error }

func (ConnFailed) isSessionMsg() {}

// Pointer positions are in table pixels.
type PointerDown struct {
	X, Y   float64
	Button gesture.Button
}

func (PointerDown) isSessionMsg() {}

type PointerMove struct{ X, Y float64 }

func (PointerMove) isSessionMsg() {}

type PointerUp struct {
	X, Y   float64
	Button gesture.Button
}

func (PointerUp) isSessionMsg() {}

type armExpired struct{ Seq uint64 }

func (armExpired) isSessionMsg() {}

type Join struct {
	ID     string
	Outbox chan View // where this subscriber wants to receive views
}

func (Join) isSessionMsg() {}

type Leave struct{ ID string }

func (Leave) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type Status string

const (
	StatusConnecting Status = "connecting"
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
	StatusFailed     Status = "failed"
)

// Lost reports whether the connection is gone for good.
func (s Status) Lost() bool { return s == StatusClosed || s == StatusFailed }

// View is what subscribers render.
type View struct {
	SessionID  string         `json:"session_id"`
	Version    int            `json:"version"`
	Status     Status         `json:"status"`
	Snapshot   store.Snapshot `json:"snapshot"`
	Dragging   bool           `json:"dragging"`
	DragTarget int            `json:"drag_target,omitempty"`
}
