package store

import "github.com/DoyleJ11/tablesim-client/internal/protocol"

// ActionFor maps a decoded server notification onto the store action it
// describes. Arrays from the wire are keyed by their id here.
func ActionFor(n protocol.Notification) Action {
	switch v := n.(type) {
	case protocol.PlayerNumber:
		return SetPlayerNumber{Number: v.PlayerNumber}

	case protocol.SetComponents:
		components := make(map[int]protocol.Component, len(v.Components))
		for _, c := range v.Components {
			components[c.ID] = c
		}
		return SetComponents{Components: components}

	case protocol.UpdateComponent:
		return UpdateComponent{ID: v.ComponentID, Component: v.Component}

	case protocol.SetHands:
		hands := make(map[int]protocol.Hand, len(v.Hands))
		for _, h := range v.Hands {
			hands[h.ID] = h
		}
		return SetHands{Hands: hands}

	case protocol.ConnectPlayer:
		return ConnectPlayer{Player: v.PlayerNumber, Hand: v.Hand}

	case protocol.DisconnectPlayer:
		return DisconnectPlayer{Player: v.PlayerNumber}

	case protocol.MoveHand:
		return MoveHand{Player: v.PlayerNumber, X: v.X, Y: v.Y}

	case nil:
		return Unknown{Name: "<nil>"}

	default:
		return Unknown{Name: n.Tag()}
	}
}
