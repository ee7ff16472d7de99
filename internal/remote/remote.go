package remote

import (
	"github.com/DoyleJ11/tablesim-client/internal/protocol"
	"go.uber.org/zap"
)

// Sender is the outbound half of the transport. Send never blocks and never
// reports failure; a closed socket drops the message.
type Sender interface {
	Send(msg string)
}

// Remote encodes intents and hands them to a Sender.
type Remote struct {
	tx  Sender
	log *zap.Logger
}

func New(tx Sender, log *zap.Logger) *Remote {
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{tx: tx, log: log}
}

func (r *Remote) SelectComponent(id int)    { r.emit(IntentSelect, id, 0, 0) }
func (r *Remote) UnselectComponent(id int)  { r.emit(IntentUnselect, id, 0, 0) }
func (r *Remote) OpenComponent(id int)      { r.emit(IntentOpen, id, 0, 0) }
func (r *Remote) CloseComponent(id int)     { r.emit(IntentClose, id, 0, 0) }
func (r *Remote) IncrementComponent(id int) { r.emit(IntentIncrement, id, 0, 0) }
func (r *Remote) DecrementComponent(id int) { r.emit(IntentDecrement, id, 0, 0) }

func (r *Remote) MoveComponent(id int, x, y float64) { r.emit(IntentMove, id, x, y) }

func (r *Remote) MoveOwnHand(x, y float64) { r.emit(IntentMoveHand, 0, x, y) }

func (r *Remote) emit(intent Intent, id int, x, y float64) {
	cmd, err := Encode(intent, id, x, y)
	if err != nil {
		r.log.Error("encode intent", zap.String("intent", string(intent)), zap.Error(err))
		return
	}
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		r.log.Error("marshal command", zap.String("type", cmd.Type), zap.Error(err))
		return
	}
	r.log.Debug("send", zap.String("type", cmd.Type), zap.Int("component", id))
	r.tx.Send(string(data))
}
