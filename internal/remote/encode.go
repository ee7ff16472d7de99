// Package remote turns local intents into outbound wire commands.
package remote

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/tablesim-client/internal/protocol"
)

var ErrUnknownIntent = errors.New("unknown intent")

type Intent string

const (
	IntentSelect    Intent = "select"
	IntentUnselect  Intent = "unselect"
	IntentOpen      Intent = "open"
	IntentClose     Intent = "close"
	IntentIncrement Intent = "increment"
	IntentDecrement Intent = "decrement"
	IntentMove      Intent = "move"
	IntentMoveHand  Intent = "moveHand"
)

var refTags = map[Intent]string{
	IntentSelect:    protocol.TagSelectComponent,
	IntentUnselect:  protocol.TagUnselectComponent,
	IntentOpen:      protocol.TagOpenComponent,
	IntentClose:     protocol.TagCloseComponent,
	IntentIncrement: protocol.TagIncrementComponent,
	IntentDecrement: protocol.TagDecrementComponent,
}

// Encode maps an intent to its command. x and y are only read for move
// intents; id is ignored for the hand broadcast.
func Encode(intent Intent, id int, x, y float64) (protocol.Command, error) {
	if tag, ok := refTags[intent]; ok {
		return protocol.Command{Type: tag, Payload: protocol.ComponentRef{ComponentID: id}}, nil
	}
	switch intent {
	case IntentMove:
		return protocol.Command{
			Type:    protocol.TagMoveComponent,
			Payload: protocol.MoveComponentPayload{ComponentID: id, X: x, Y: y},
		}, nil
	case IntentMoveHand:
		return protocol.Command{
			Type:    protocol.TagMoveOwnHand,
			Payload: protocol.MoveOwnHandPayload{X: x, Y: y},
		}, nil
	}
	return protocol.Command{}, fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
}
