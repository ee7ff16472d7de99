package view

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/DoyleJ11/tablesim-client/internal/protocol"
	"github.com/DoyleJ11/tablesim-client/internal/session"
	"github.com/mattn/go-runewidth"
)

const (
	statusRows  = 1
	handMarker  = '@'
	faceDown    = "#"
	hiddenLabel = "?"
	lostBanner  = " connection lost "
)

// Viewport maps table pixels onto terminal cells. Row 0 is the status line;
// the table starts on the row below it.
type Viewport struct {
	Cols, Rows   int
	CellW, CellH int
}

// ToCell returns the cell containing pixel (x, y).
func (vp Viewport) ToCell(x, y float64) (int, int) {
	return int(math.Floor(x / float64(vp.CellW))), statusRows + int(math.Floor(y/float64(vp.CellH)))
}

// ToPixel returns the centre of cell (col, row) in table pixels.
func (vp Viewport) ToPixel(col, row int) (float64, float64) {
	x := (float64(col) + 0.5) * float64(vp.CellW)
	y := (float64(row-statusRows) + 0.5) * float64(vp.CellH)
	return x, y
}

// Render lays out one view. It is pure: the same view and viewport always
// give the same canvas.
func Render(v session.View, vp Viewport) Canvas {
	c := NewCanvas(vp.Cols, vp.Rows)
	if vp.CellW <= 0 || vp.CellH <= 0 {
		return c
	}
	me := v.Snapshot.PlayerNumber

	for _, comp := range v.Snapshot.Sorted() {
		drawComponent(c, vp, comp, me, v.Dragging && v.DragTarget == comp.ID)
	}
	for _, id := range slices.Sorted(maps.Keys(v.Snapshot.Hands)) {
		h := v.Snapshot.Hands[id]
		col, row := vp.ToCell(h.X, h.Y)
		if row >= statusRows {
			c.Set(col, row, handMarker, PlayerColor(h.ID), ColorDefault)
		}
	}

	drawStatus(c, v)
	if v.Status.Lost() {
		drawBanner(c)
	}
	return c
}

func drawStatus(c Canvas, v session.View) {
	line := fmt.Sprintf("player %d | %s | %d components | %d hands",
		v.Snapshot.PlayerNumber, v.Status, len(v.Snapshot.Components), len(v.Snapshot.Hands))
	if v.Dragging {
		line += fmt.Sprintf(" | dragging #%d", v.DragTarget)
	}
	for x := 0; x < c.W; x++ {
		c.Set(x, 0, ' ', ColorBlack, ColorWhite)
	}
	c.Text(0, 0, line, c.W, ColorBlack, ColorWhite)
}

func drawBanner(c Canvas) {
	w := runewidth.StringWidth(lostBanner)
	x := (c.W - w) / 2
	if x < 0 {
		x = 0
	}
	c.Text(x, c.H/2, lostBanner, c.W, ColorWhite, ColorRed)
}

func drawComponent(c Canvas, vp Viewport, comp protocol.Component, me int, dragging bool) {
	x0, y0 := vp.ToCell(comp.X, comp.Y)
	x1, y1 := vp.ToCell(comp.X+comp.W, comp.Y+comp.H)
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	border := ColorWhite
	if comp.User != nil {
		border = PlayerColor(*comp.User)
	}
	fill := ColorDefault
	switch {
	case dragging:
		fill = ColorYellow
	case comp.IsSelected:
		fill = ColorBlue
	}

	for y := y0; y < y1; y++ {
		if y < statusRows {
			continue
		}
		for x := x0; x < x1; x++ {
			ch := ' '
			switch {
			case (y == y0 || y == y1-1) && (x == x0 || x == x1-1):
				ch = '+'
			case y == y0 || y == y1-1:
				ch = '-'
			case x == x0 || x == x1-1:
				ch = '|'
			}
			fg := ColorDefault
			if ch != ' ' {
				fg = border
			}
			c.Set(x, y, ch, fg, fill)
		}
	}

	innerW := x1 - x0 - 2
	if innerW < 1 || y1-y0 < 3 || y0+1 < statusRows {
		return
	}
	c.Text(x0+1, y0+1, Label(comp, me), innerW, ColorWhite, fill)
}

// Label is the text shown on a component for player me.
func Label(comp protocol.Component, me int) string {
	if comp.HiddenFrom(me) {
		return hiddenLabel
	}
	switch comp.Role {
	case protocol.RoleText:
		if !comp.IsOpened {
			return faceDown
		}
		return comp.Text
	case protocol.RoleCounter:
		return strconv.FormatInt(comp.Number, 10)
	case protocol.RoleImage:
		if comp.Image != nil {
			return "[" + *comp.Image + "]"
		}
		return "[image]"
	}
	return string(comp.Role)
}
