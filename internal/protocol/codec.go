package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedFrame = errors.New("malformed frame")

// DecodeFrame parses a whole server frame. Either every notification decodes
// or none is returned, so callers never apply half a frame.
func DecodeFrame(data []byte) ([]Notification, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformedFrame)
	}
	var envs []Envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	out := make([]Notification, 0, len(envs))
	for i, env := range envs {
		n, err := decodeEnvelope(env)
		if err != nil {
			return nil, fmt.Errorf("%w: notification %d (%q): %v", ErrMalformedFrame, i, env.Type, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeEnvelope(env Envelope) (Notification, error) {
	switch env.Type {
	case TagPlayerNumber:
		return decodePayload[PlayerNumber](env, "playerNumber")
	case TagSetComponents:
		return decodePayload[SetComponents](env, "components")
	case TagUpdateComponent:
		return decodePayload[UpdateComponent](env, "componentId", "component")
	case TagSetHands:
		return decodePayload[SetHands](env, "hands")
	case TagConnectPlayer:
		return decodePayload[ConnectPlayer](env, "playerNumber", "hand")
	case TagDisconnectPlayer:
		return decodePayload[DisconnectPlayer](env, "playerNumber")
	case TagMoveHand:
		return decodePayload[MoveHand](env, "playerNumber", "x", "y")
	case "":
		return nil, errors.New("missing type")
	default:
		return Unknown{Type: env.Type}, nil
	}
}

// decodePayload rejects a payload that is absent, null, or lacks one of the
// required keys, so a broken notification never decodes to a zero value.
func decodePayload[T Notification](env Envelope, required ...string) (Notification, error) {
	if isNull(env.Payload) {
		return nil, fmt.Errorf("empty payload for type %q", env.Type)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(env.Payload, &fields); err != nil {
		return nil, err
	}
	for _, key := range required {
		if isNull(fields[key]) {
			return nil, fmt.Errorf("payload for type %q missing %q", env.Type, key)
		}
	}
	if err := checkEntities(fields); err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(env.Payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// checkEntities requires an id on every component and hand in the payload.
func checkEntities(fields map[string]json.RawMessage) error {
	for _, key := range []string{"components", "hands"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		for i, item := range items {
			if err := requireID(item); err != nil {
				return fmt.Errorf("%s[%d]: %w", key, i, err)
			}
		}
	}
	for _, key := range []string{"component", "hand"} {
		if raw, ok := fields[key]; ok {
			if err := requireID(raw); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}

func requireID(raw json.RawMessage) error {
	var obj map[string]json.RawMessage
	if isNull(raw) {
		return errors.New("null entity")
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	if isNull(obj["id"]) {
		return errors.New("missing id")
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// EncodeCommand marshals an outbound command.
func EncodeCommand(cmd Command) ([]byte, error) {
	if cmd.Type == "" {
		return nil, errors.New("trying to encode command without type")
	}
	return json.Marshal(cmd)
}
