package view

import (
	"strings"
	"testing"

	"github.com/DoyleJ11/tablesim-client/internal/protocol"
	"github.com/DoyleJ11/tablesim-client/internal/session"
	"github.com/DoyleJ11/tablesim-client/internal/store"
	"github.com/stretchr/testify/assert"
)

var vp = Viewport{Cols: 40, Rows: 12, CellW: 10, CellH: 10}

func intp(v int) *int { return &v }

func viewWith(comps ...protocol.Component) session.View {
	snap := store.NewEmptySnapshot()
	snap.PlayerNumber = 1
	for _, c := range comps {
		snap.Components[c.ID] = c
	}
	return session.View{Status: session.StatusOpen, Snapshot: snap}
}

func TestRender_StatusLine(t *testing.T) {
	v := viewWith()
	v.Dragging = true
	v.DragTarget = 4

	c := Render(v, vp)
	row := c.Row(0)
	if !strings.HasPrefix(row, "player 1 | open | 0 components | 0 hands") {
		t.Fatalf("unexpected status line %q", row)
	}
	assert.Equal(t, ColorWhite, c.At(39, 0).Bg)
}

func TestRender_ComponentBoxAndLabel(t *testing.T) {
	v := viewWith(protocol.Component{ID: 1, Role: protocol.RoleText, IsOpened: true, Text: "ace", X: 0, Y: 0, W: 80, H: 30})
	c := Render(v, vp)

	// table row 0 is canvas row 1
	assert.Equal(t, "+------+", strings.TrimRight(c.Row(1), " "))
	assert.Equal(t, "|ace   |", strings.TrimRight(c.Row(2), " "))
	assert.Equal(t, "+------+", strings.TrimRight(c.Row(3), " "))
	assert.Equal(t, ColorWhite, c.At(0, 1).Fg, "public components get a white border")
}

func TestRender_Labels(t *testing.T) {
	img := "queen.png"
	cases := []struct {
		name string
		comp protocol.Component
		want string
	}{
		{"open text", protocol.Component{Role: protocol.RoleText, IsOpened: true, Text: "hi"}, "hi"},
		{"closed text is face down", protocol.Component{Role: protocol.RoleText, Text: "hi"}, "#"},
		{"counter", protocol.Component{Role: protocol.RoleCounter, Number: -3}, "-3"},
		{"image", protocol.Component{Role: protocol.RoleImage, Image: &img}, "[queen.png]"},
		{"hidden from me", protocol.Component{Role: protocol.RoleText, IsOpened: true, Text: "secret", HideOthers: true, User: intp(2)}, "?"},
		{"hidden but mine", protocol.Component{Role: protocol.RoleText, IsOpened: true, Text: "secret", HideOthers: true, User: intp(1)}, "secret"},
		{"unknown role", protocol.Component{Role: "dice"}, "dice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Label(tc.comp, 1))
		})
	}
}

func TestRender_OwnerColoursAndDragFill(t *testing.T) {
	v := viewWith(protocol.Component{ID: 2, Role: protocol.RoleCounter, User: intp(3), X: 0, Y: 0, W: 50, H: 30})
	v.Dragging = true
	v.DragTarget = 2

	c := Render(v, vp)
	assert.Equal(t, ColorBlue, c.At(0, 1).Fg)
	assert.Equal(t, ColorYellow, c.At(2, 2).Bg)
}

func TestRender_LaterComponentsOnTop(t *testing.T) {
	v := viewWith(
		protocol.Component{ID: 1, Role: protocol.RoleText, IsOpened: true, Text: "under", X: 0, Y: 0, W: 100, H: 30},
		protocol.Component{ID: 2, Role: protocol.RoleText, IsOpened: true, Text: "over", X: 0, Y: 0, W: 100, H: 30},
	)
	c := Render(v, vp)
	assert.Contains(t, c.Row(2), "over")
	assert.NotContains(t, c.Row(2), "under")
}

func TestRender_HandsUsePlayerColour(t *testing.T) {
	v := viewWith()
	v.Snapshot.Hands = map[int]protocol.Hand{1: {ID: 1, X: 25, Y: 5}, 2: {ID: 2, X: 105, Y: 35}}

	c := Render(v, vp)
	assert.Equal(t, Cell{Ch: '@', Fg: ColorRed}, c.At(2, 1))
	assert.Equal(t, Cell{Ch: '@', Fg: ColorGreen}, c.At(10, 4))
}

func TestRender_ConnectionLostBanner(t *testing.T) {
	for _, st := range []session.Status{session.StatusClosed, session.StatusFailed} {
		v := viewWith()
		v.Status = st
		c := Render(v, vp)
		assert.Contains(t, c.Row(vp.Rows/2), "connection lost", "status %s", st)
	}

	c := Render(viewWith(), vp)
	for y := 0; y < vp.Rows; y++ {
		assert.NotContains(t, c.Row(y), "connection lost")
	}
}

func TestCanvas_WideRunes(t *testing.T) {
	c := NewCanvas(6, 1)
	used := c.Text(0, 0, "日本語", 5, ColorWhite, ColorDefault)

	assert.Equal(t, 4, used, "third glyph would straddle the limit")
	assert.Equal(t, "日本  ", c.Row(0))
	assert.Equal(t, rune(0), c.At(1, 0).Ch)
}

func TestRender_ClipsToViewport(t *testing.T) {
	v := viewWith(protocol.Component{ID: 1, Role: protocol.RoleText, X: 350, Y: 100, W: 500, H: 500})
	c := Render(v, vp)
	assert.Len(t, c.Cells, vp.Cols*vp.Rows)
	assert.Equal(t, '+', c.At(35, 11).Ch)
}
