package protocol

import "encoding/json"

const Version = 2

// Inbound notification tags.
const (
	TagPlayerNumber     = "playerNumber"
	TagSetComponents    = "setComponents"
	TagUpdateComponent  = "updateComponent"
	TagSetHands         = "setHands"
	TagConnectPlayer    = "connectPlayer"
	TagDisconnectPlayer = "disconnectPlayer"
	TagMoveHand         = "moveHand"
)

// Outbound command tags.
const (
	TagSelectComponent    = "SelectComponent"
	TagUnselectComponent  = "UnselectComponent"
	TagOpenComponent      = "OpenComponent"
	TagCloseComponent     = "CloseComponent"
	TagMoveComponent      = "MoveComponent"
	TagIncrementComponent = "IncrementComponent"
	TagDecrementComponent = "DecrementComponent"
	TagMoveOwnHand        = "MoveOwnHand"
)

type Role string

const (
	RoleCursor  Role = "cursor"
	RoleBuilder Role = "builder"
	RoleText    Role = "text"
	RoleCounter Role = "counter"
	RoleImage   Role = "image"
)

type Component struct {
	ID            int     `json:"id"`
	Role          Role    `json:"role"`
	Selectability bool    `json:"selectability"`
	IsOpened      bool    `json:"isOpened"`
	IsSelected    bool    `json:"isSelected"`
	User          *int    `json:"user"` // nil = public
	HideOthers    bool    `json:"hideOthers"`
	Text          string  `json:"text"`
	Number        int64   `json:"number"`
	Image         *string `json:"image"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	W             float64 `json:"w"`
	H             float64 `json:"h"`
}

// OwnedBy reports whether player may act on the component: public components
// are open to everyone.
func (c Component) OwnedBy(player int) bool {
	return c.User == nil || *c.User == player
}

// HiddenFrom reports whether player only gets the redacted view.
func (c Component) HiddenFrom(player int) bool {
	return c.HideOthers && (c.User == nil || *c.User != player)
}

// Contains reports whether the pixel point lies inside the component.
func (c Component) Contains(x, y float64) bool {
	return x >= c.X && x < c.X+c.W && y >= c.Y && y < c.Y+c.H
}

// Hand is a player's cursor; ID is the player number.
type Hand struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Notification is one decoded server -> client message.
type Notification interface{ Tag() string }

type PlayerNumber struct {
	PlayerNumber int `json:"playerNumber"`
}

type SetComponents struct {
	Components []Component `json:"components"`
}

type UpdateComponent struct {
	ComponentID int       `json:"componentId"`
	Component   Component `json:"component"`
}

type SetHands struct {
	Hands []Hand `json:"hands"`
}

type ConnectPlayer struct {
	PlayerNumber int  `json:"playerNumber"`
	Hand         Hand `json:"hand"`
}

type DisconnectPlayer struct {
	PlayerNumber int `json:"playerNumber"`
}

type MoveHand struct {
	PlayerNumber int     `json:"playerNumber"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
}

// Unknown carries a tag this client does not understand.
type Unknown struct {
	Type string
}

func (PlayerNumber) Tag() string     { return TagPlayerNumber }
func (SetComponents) Tag() string    { return TagSetComponents }
func (UpdateComponent) Tag() string  { return TagUpdateComponent }
func (SetHands) Tag() string         { return TagSetHands }
func (ConnectPlayer) Tag() string    { return TagConnectPlayer }
func (DisconnectPlayer) Tag() string { return TagDisconnectPlayer }
func (MoveHand) Tag() string         { return TagMoveHand }
func (u Unknown) Tag() string        { return u.Type }

// Command is one client -> server message.
type Command struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ComponentRef struct {
	ComponentID int `json:"component_id"`
}

type MoveComponentPayload struct {
	ComponentID int     `json:"component_id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

type MoveOwnHandPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
