package gesture

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Disambiguator owns the machine state and its arm timer. It is driven from
// one goroutine; the timer never touches state itself, it hands Expire to
// fire, which the owner must feed back through Handle on that goroutine.
type Disambiguator struct {
	clock clockwork.Clock
	delay time.Duration
	fire  func(Expire)

	state State
	timer clockwork.Timer
}

func New(clock clockwork.Clock, delay time.Duration, fire func(Expire)) *Disambiguator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Disambiguator{clock: clock, delay: delay, fire: fire}
}

func (d *Disambiguator) State() State { return d.state }

// Handle steps the machine. Armed outputs start the timer and are not
// returned; leaving Pending stops it.
func (d *Disambiguator) Handle(in Input) ([]Output, error) {
	if down, ok := in.(Down); ok && down.At.IsZero() {
		down.At = d.clock.Now()
		in = down
	}

	prev := d.state
	next, outs, err := Step(prev, in, d.delay)
	if err != nil {
		return nil, err
	}
	d.state = next

	if prev.Phase == Pending && next.Phase != Pending {
		d.stopTimer()
	}

	filtered := outs[:0]
	for _, o := range outs {
		if a, ok := o.(Armed); ok {
			d.arm(a)
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered, nil
}

func (d *Disambiguator) arm(a Armed) {
	d.stopTimer()
	seq := a.Seq
	d.timer = d.clock.AfterFunc(d.clock.Until(a.Deadline), func() {
		if d.fire != nil {
			d.fire(Expire{Seq: seq})
		}
	})
}

func (d *Disambiguator) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Close cancels any pending arm and returns to Idle.
func (d *Disambiguator) Close() {
	d.stopTimer()
	d.state = idle(d.state)
}
