// Package view draws the table mirror as a grid of terminal cells and turns
// terminal mouse input back into session pointer messages.
package view

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type Color uint8

const (
	ColorDefault Color = iota
	ColorWhite
	ColorRed
	ColorGreen
	ColorBlue
	ColorYellow
	ColorBlack
)

// PlayerColor maps players 1..3 to red, green and blue.
func PlayerColor(player int) Color {
	switch player {
	case 1:
		return ColorRed
	case 2:
		return ColorGreen
	case 3:
		return ColorBlue
	}
	return ColorWhite
}

// Cell is one terminal cell. Ch is 0 for the right half of a wide rune.
type Cell struct {
	Ch     rune
	Fg, Bg Color
}

type Canvas struct {
	W, H  int
	Cells []Cell
}

func NewCanvas(w, h int) Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := Canvas{W: w, H: h, Cells: make([]Cell, w*h)}
	for i := range c.Cells {
		c.Cells[i].Ch = ' '
	}
	return c
}

func (c Canvas) inside(x, y int) bool { return x >= 0 && y >= 0 && x < c.W && y < c.H }

func (c Canvas) At(x, y int) Cell {
	if !c.inside(x, y) {
		return Cell{}
	}
	return c.Cells[y*c.W+x]
}

func (c Canvas) Set(x, y int, ch rune, fg, bg Color) {
	if c.inside(x, y) {
		c.Cells[y*c.W+x] = Cell{Ch: ch, Fg: fg, Bg: bg}
	}
}

// Text writes s from (x, y) and stops at maxW columns. It returns the number
// of columns used. A wide rune that would straddle the limit is dropped.
func (c Canvas) Text(x, y int, s string, maxW int, fg, bg Color) int {
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if used+w > maxW {
			break
		}
		c.Set(x+used, y, r, fg, bg)
		if w == 2 {
			c.Set(x+used+1, y, 0, fg, bg)
		}
		used += w
	}
	return used
}

// Row returns line y as a string, for tests and logs.
func (c Canvas) Row(y int) string {
	var b strings.Builder
	for x := 0; x < c.W; x++ {
		if ch := c.At(x, y).Ch; ch != 0 {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
