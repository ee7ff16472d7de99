package view

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/DoyleJ11/tablesim-client/internal/gesture"
	"github.com/DoyleJ11/tablesim-client/internal/session"
	"github.com/nsf/termbox-go"
	"go.uber.org/zap"
)

// Source is the session as the terminal sees it.
type Source interface {
	Post(m session.Msg)
	Done() <-chan struct{}
}

// termbox only asks for motion while a button is held; any-motion tracking
// also reports hover so the own hand follows the pointer.
const (
	anyMotionOn  = "\x1b[?1003h"
	anyMotionOff = "\x1b[?1003l"
)

type Terminal struct {
	cellW, cellH int
	in           input
	tty          io.Writer
	log          *zap.Logger
}

// Open takes over the terminal. Close must be called to restore it.
func Open(cellW, cellH int, log *zap.Logger) (*Terminal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := termbox.Init(); err != nil {
		return nil, err
	}
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	t := &Terminal{cellW: cellW, cellH: cellH, tty: os.Stdout, log: log}
	if _, err := io.WriteString(t.tty, anyMotionOn); err != nil {
		log.Warn("hover tracking unavailable", zap.Error(err))
	}
	return t, nil
}

func (t *Terminal) Close() {
	_, _ = io.WriteString(t.tty, anyMotionOff)
	termbox.Close()
}

func (t *Terminal) Viewport() Viewport {
	cols, rows := termbox.Size()
	return Viewport{Cols: cols, Rows: rows, CellW: t.cellW, CellH: t.cellH}
}

func (t *Terminal) Draw(c Canvas) error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	for y := 0; y < c.H; y++ {
		for x := 0; x < c.W; x++ {
			cell := c.At(x, y)
			if cell.Ch == 0 {
				continue
			}
			termbox.SetCell(x, y, cell.Ch, attr(cell.Fg), attr(cell.Bg))
		}
	}
	return termbox.Flush()
}

// Run draws every view the session publishes and forwards mouse input until
// the user quits, ctx is done or the session stops.
func (t *Terminal) Run(ctx context.Context, src Source) error {
	events := make(chan termbox.Event, 16)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			ev := termbox.PollEvent()
			if ev.Type == termbox.EventInterrupt {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()
	defer termbox.Interrupt()

	views := t.subscribe(src)
	var last session.View
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-src.Done():
			return nil

		case v, ok := <-views:
			if !ok {
				// dropped for being slow; catch up with a fresh subscription
				t.log.Debug("view subscription dropped, rejoining")
				views = t.subscribe(src)
				continue
			}
			last = v
			if err := t.Draw(Render(v, t.Viewport())); err != nil {
				return err
			}

		case ev := <-events:
			switch ev.Type {
			case termbox.EventError:
				return ev.Err
			case termbox.EventResize:
				if err := t.Draw(Render(last, t.Viewport())); err != nil {
					return err
				}
			default:
				msg, quit := t.in.translate(ev, t.Viewport())
				if quit {
					return nil
				}
				if msg != nil {
					src.Post(msg)
				}
			}
		}
	}
}

func (t *Terminal) subscribe(src Source) chan session.View {
	out := make(chan session.View, 16)
	src.Post(session.Join{ID: "terminal", Outbox: out})
	return out
}

// input turns termbox events into pointer messages. termbox reports a release
// without its button, so the held button is remembered here.
type input struct {
	held   bool
	button gesture.Button
}

var errNotMouse = errors.New("not a mouse key")

func (in *input) translate(ev termbox.Event, vp Viewport) (session.Msg, bool) {
	switch ev.Type {
	case termbox.EventKey:
		if ev.Key == termbox.KeyEsc || ev.Key == termbox.KeyCtrlC || ev.Ch == 'q' {
			return nil, true
		}
		return nil, false

	case termbox.EventMouse:
		x, y := vp.ToPixel(ev.MouseX, ev.MouseY)
		if ev.Key == termbox.MouseRelease && ev.Mod&termbox.ModMotion != 0 {
			// motion with no button held
			return session.PointerMove{X: x, Y: y}, false
		}
		if ev.Key == termbox.MouseRelease {
			if !in.held {
				return nil, false
			}
			in.held = false
			return session.PointerUp{X: x, Y: y, Button: in.button}, false
		}
		b, err := buttonFor(ev.Key)
		if err != nil {
			return nil, false
		}
		if ev.Mod&termbox.ModMotion != 0 || in.held {
			return session.PointerMove{X: x, Y: y}, false
		}
		in.held = true
		in.button = b
		return session.PointerDown{X: x, Y: y, Button: b}, false
	}
	return nil, false
}

func buttonFor(k termbox.Key) (gesture.Button, error) {
	switch k {
	case termbox.MouseLeft:
		return gesture.ButtonLeft, nil
	case termbox.MouseMiddle:
		return gesture.ButtonMiddle, nil
	case termbox.MouseRight:
		return gesture.ButtonRight, nil
	}
	return 0, errNotMouse
}

func attr(c Color) termbox.Attribute {
	switch c {
	case ColorWhite:
		return termbox.ColorWhite
	case ColorRed:
		return termbox.ColorRed
	case ColorGreen:
		return termbox.ColorGreen
	case ColorBlue:
		return termbox.ColorBlue
	case ColorYellow:
		return termbox.ColorYellow
	case ColorBlack:
		return termbox.ColorBlack
	}
	return termbox.ColorDefault
}
