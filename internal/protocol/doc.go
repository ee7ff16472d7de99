// Package protocol is the wire schema spoken with the table server.
//
// Schema version 2. Server -> Client frames are a JSON array of envelopes,
// camelCase tags and camelCase payload keys:
//
//	playerNumber:     { playerNumber: number }
//	setComponents:    { components: Component[] }
//	updateComponent:  { componentId: number, component: Component }
//	setHands:         { hands: Hand[] }
//	connectPlayer:    { playerNumber: number, hand: Hand }
//	disconnectPlayer: { playerNumber: number }
//	moveHand:         { playerNumber: number, x: number, y: number }
//
//	Component: { id, role, selectability, isOpened, isSelected, user (null | number),
//	             hideOthers, text, number, image (null | string), x, y, w, h }
//	Hand:      { id (player number), x, y }
//
// Client -> Server frames are a single envelope, PascalCase tags and
// snake_case payload keys:
//
//	SelectComponent / UnselectComponent / OpenComponent / CloseComponent /
//	IncrementComponent / DecrementComponent: { component_id: number }
//	MoveComponent: { component_id: number, x: number, y: number }
//	MoveOwnHand:   { x: number, y: number }
//
// Version 1 tags (PlayerNumber, Table, UpdateComponent with snake_case keys)
// are not accepted and decode as Unknown.
package protocol
