package store

import (
	"errors"
	"maps"
	"slices"

	"github.com/DoyleJ11/tablesim-client/internal/protocol"
	"go.uber.org/zap"
)

var ErrUnknownAction = errors.New("unknown action")
var ErrUnknownHand = errors.New("no hand for player")

type ActionType string

const (
	ActSetPlayerNumber  ActionType = "setPlayerNumber"
	ActSetComponents    ActionType = "setComponents"
	ActUpdateComponent  ActionType = "updateComponent"
	ActSetHands         ActionType = "setHands"
	ActConnectPlayer    ActionType = "connectPlayer"
	ActDisconnectPlayer ActionType = "disconnectPlayer"
	ActMoveHand         ActionType = "moveHand"
)

// Snapshot is the mirrored table. Values are never mutated after Reduce
// returns them, so a snapshot can be handed to readers without copying.
type Snapshot struct {
	PlayerNumber int                        `json:"playerNumber"`
	Components   map[int]protocol.Component `json:"components"`
	Hands        map[int]protocol.Hand      `json:"hands"`
}

func NewEmptySnapshot() Snapshot {
	return Snapshot{
		Components: map[int]protocol.Component{},
		Hands:      map[int]protocol.Hand{},
	}
}

type Action interface{ Type() ActionType }

type SetPlayerNumber struct{ Number int }

type SetComponents struct {
	Components map[int]protocol.Component
}

type UpdateComponent struct {
	ID        int
	Component protocol.Component
}

type SetHands struct {
	Hands map[int]protocol.Hand
}

type ConnectPlayer struct {
	Player int
	Hand   protocol.Hand
}

type DisconnectPlayer struct{ Player int }

type MoveHand struct {
	Player int
	X, Y   float64
}

// Unknown wraps a notification tag with no matching action.
type Unknown struct{ Name string }

func (SetPlayerNumber) Type() ActionType  { return ActSetPlayerNumber }
func (SetComponents) Type() ActionType    { return ActSetComponents }
func (UpdateComponent) Type() ActionType  { return ActUpdateComponent }
func (SetHands) Type() ActionType         { return ActSetHands }
func (ConnectPlayer) Type() ActionType    { return ActConnectPlayer }
func (DisconnectPlayer) Type() ActionType { return ActDisconnectPlayer }
func (MoveHand) Type() ActionType         { return ActMoveHand }
func (u Unknown) Type() ActionType        { return ActionType(u.Name) }

// Reduce applies one action. Each action touches exactly one top-level
// field; maps are cloned before writing so s stays valid for its holders.
// On error the input snapshot is returned unchanged.
func Reduce(s Snapshot, a Action) (Snapshot, error) {
	next := s

	switch act := a.(type) {
	case SetPlayerNumber:
		next.PlayerNumber = act.Number

	case SetComponents:
		next.Components = cloneOrEmpty(act.Components)

	case UpdateComponent:
		components := cloneOrEmpty(s.Components)
		components[act.ID] = act.Component
		next.Components = components

	case SetHands:
		next.Hands = cloneOrEmpty(act.Hands)

	case ConnectPlayer:
		hands := cloneOrEmpty(s.Hands)
		hands[act.Player] = act.Hand
		next.Hands = hands

	case DisconnectPlayer:
		if _, ok := s.Hands[act.Player]; !ok {
			return s, nil
		}
		hands := maps.Clone(s.Hands)
		delete(hands, act.Player)
		next.Hands = hands

	case MoveHand:
		prev, ok := s.Hands[act.Player]
		if !ok {
			return s, ErrUnknownHand
		}
		hands := maps.Clone(s.Hands)
		prev.X, prev.Y = act.X, act.Y
		hands[act.Player] = prev
		next.Hands = hands

	default:
		return s, ErrUnknownAction
	}

	return next, nil
}

func cloneOrEmpty[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return maps.Clone(m)
}

// Store holds the current snapshot. It is owned by a single goroutine (the
// session loop) and is not safe for concurrent use; share Snapshot values
// instead.
type Store struct {
	current Snapshot
	log     *zap.Logger
}

func New(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{current: NewEmptySnapshot(), log: log}
}

func (st *Store) Snapshot() Snapshot { return st.current }

// Dispatch reduces a into the current snapshot and returns the result.
// Rejected actions are logged, leave the snapshot as it was and report the
// rejection as the error.
func (st *Store) Dispatch(a Action) (Snapshot, error) {
	next, err := Reduce(st.current, a)
	switch {
	case errors.Is(err, ErrUnknownAction):
		name := "<nil>"
		if a != nil {
			name = string(a.Type())
		}
		st.log.Warn("unknown action", zap.String("type", name))
	case errors.Is(err, ErrUnknownHand):
		mv := a.(MoveHand)
		st.log.Debug("ignoring move for absent hand", zap.Int("player", mv.Player))
	case err == nil:
		st.log.Debug("applied action", zap.String("type", string(a.Type())))
	}
	st.current = next
	return next, err
}

// Sorted returns components in render order (ascending id, later on top).
func (s Snapshot) Sorted() []protocol.Component {
	out := slices.Collect(maps.Values(s.Components))
	slices.SortFunc(out, func(a, b protocol.Component) int { return a.ID - b.ID })
	return out
}

// ComponentAt returns the topmost component under the pixel point.
func (s Snapshot) ComponentAt(x, y float64) (protocol.Component, bool) {
	sorted := s.Sorted()
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Contains(x, y) {
			return sorted[i], true
		}
	}
	return protocol.Component{}, false
}
