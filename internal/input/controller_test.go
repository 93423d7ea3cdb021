package input

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/grid"
	"github.com/jmylchreest/appdrawer/internal/model"
	"github.com/jmylchreest/appdrawer/internal/surface"
)

type fakeLauncher struct {
	launched []string
	err      error
}

func (l *fakeLauncher) Launch(e model.Entry) error {
	l.launched = append(l.launched, e.ID)
	return l.err
}

func fixture() []model.Entry {
	return []model.Entry{
		{ID: "calendar.desktop", Name: "Calendar", Command: []string{"gnome-calendar"}},
		{ID: "camera.desktop", Name: "Camera", Command: []string{"snapshot"}},
		{ID: "files.desktop", Name: "Files", Command: []string{"nautilus"}},
	}
}

func newController(t *testing.T, entries []model.Entry) (*Controller, *grid.State, *fakeLauncher) {
	t.Helper()
	g := grid.New(grid.Options{CellSize: 96, IconSize: 64})
	g.SetLayout(surface.Size{W: 800, H: 480}, 2)
	g.SetEntries(entries)
	l := &fakeLauncher{}
	return New(g, l, Options{}), g, l
}

func typeText(c *Controller, s string) {
	for _, r := range s {
		c.Key(KeyRune(r))
	}
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "a", KeyRune('a').String())
	assert.Equal(t, "esc", Named("esc").String())
	assert.Empty(t, Key{}.String())
	assert.True(t, KeyRune('x').Printable())
	assert.False(t, KeyRune('\b').Printable())
	assert.False(t, Named("up").Printable())
}

func TestController_FilterTyping(t *testing.T) {
	c, g, _ := newController(t, fixture())

	typeText(c, "cal")
	assert.Equal(t, Filtering, c.State())
	assert.Equal(t, "cal", c.Text())
	require.Equal(t, 1, g.Len())
	assert.Equal(t, "Calendar", g.Entries()[0].Name)

	res := c.Key(Named("backspace"))
	assert.True(t, res.Redraw)
	assert.Equal(t, "ca", c.Text())
	assert.Equal(t, 2, g.Len())

	c.Key(Named("backspace"))
	c.Key(Named("backspace"))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 3, g.Len())

	res = c.Key(Named("backspace"))
	assert.False(t, res.Redraw, "nothing to delete")
}

func TestController_Escape(t *testing.T) {
	c, g, _ := newController(t, fixture())

	typeText(c, "fi")
	res := c.Key(Named("esc"))
	assert.False(t, res.Hide)
	assert.True(t, res.Redraw)
	assert.Empty(t, c.Text())
	assert.Equal(t, 3, g.Len())

	res = c.Key(Named("esc"))
	assert.True(t, res.Hide, "escape with an empty filter hides")
}

func TestController_NavigateAndActivate(t *testing.T) {
	c, g, l := newController(t, fixture())

	c.Key(Named("right"))
	assert.Equal(t, Navigating, c.State())
	assert.Equal(t, 0, g.Focus())
	c.Key(Named("right"))
	c.Key(Named("right"))
	c.Key(Named("right"))
	assert.Equal(t, 2, g.Focus(), "navigation clamps at the end")

	res := c.Key(Named("enter"))
	require.NotNil(t, res.Launched)
	assert.Equal(t, "files.desktop", res.Launched.ID)
	assert.True(t, res.Hide)
	assert.NoError(t, res.Err)
	assert.Equal(t, []string{"files.desktop"}, l.launched)
	assert.Equal(t, Idle, c.State())
}

func TestController_ActivateWithoutFocus(t *testing.T) {
	c, _, l := newController(t, fixture())
	res := c.Key(Named("enter"))
	assert.Nil(t, res.Launched)
	assert.Empty(t, l.launched)
}

func TestController_LaunchFailureReturnsToIdle(t *testing.T) {
	c, g, l := newController(t, fixture())
	l.err = errors.New("exec: not found")

	typeText(c, "cam")
	res := c.Key(Named("enter"))
	require.NotNil(t, res.Launched)
	assert.ErrorContains(t, res.Err, "not found")
	assert.False(t, res.Hide, "drawer stays up after a failed launch")
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, "cam", c.Text())
	assert.Equal(t, 1, g.Len())
}

func TestController_MotionFocus(t *testing.T) {
	c, g, _ := newController(t, fixture())

	res := c.Motion(20, 10)
	assert.True(t, res.Redraw)
	assert.Equal(t, 0, g.Focus())

	res = c.Motion(21, 11)
	assert.False(t, res.Redraw, "same cell")

	c.Motion(20, 300)
	assert.Equal(t, grid.NoFocus, g.Focus(), "miss clears focus")

	c.Motion(20, 10)
	c.Leave()
	assert.Equal(t, grid.NoFocus, g.Focus())
}

func TestController_Tap(t *testing.T) {
	c, _, l := newController(t, fixture())

	c.PointerDown(113, 10)
	c.PointerMove(115, 12)
	res := c.PointerUp(115, 12)
	require.NotNil(t, res.Launched)
	assert.Equal(t, "camera.desktop", res.Launched.ID)
	assert.Equal(t, []string{"camera.desktop"}, l.launched)
}

func TestController_TapReleasedElsewhere(t *testing.T) {
	c, _, l := newController(t, fixture())

	c.PointerDown(20, 10)
	res := c.PointerUp(20, 300)
	assert.Nil(t, res.Launched)
	assert.Empty(t, l.launched)
}

func many(n int) []model.Entry {
	entries := make([]model.Entry, n)
	for i := range entries {
		entries[i] = model.Entry{ID: fmt.Sprintf("app%03d.desktop", i), Name: fmt.Sprintf("App %03d", i), Command: []string{"app"}}
	}
	return entries
}

func TestController_DragScrollsWithoutActivating(t *testing.T) {
	c, g, l := newController(t, many(100))

	c.PointerDown(20, 400)
	c.PointerMove(20, 395)
	assert.Zero(t, g.Scroll(), "within tap slop")

	res := c.PointerMove(20, 380)
	assert.True(t, res.Redraw)
	assert.Equal(t, 40, g.Scroll(), "20 logical pixels at scale 2")

	res = c.PointerUp(20, 380)
	assert.Nil(t, res.Launched, "drag never activates")
	assert.Empty(t, l.launched)
}

func TestController_WheelScroll(t *testing.T) {
	c, g, _ := newController(t, many(100))

	res := c.Scroll(1)
	assert.True(t, res.Redraw)
	assert.Equal(t, int(DefaultScrollStep*2), g.Scroll())

	c.Scroll(-10)
	assert.Zero(t, g.Scroll())
}

func TestController_Reset(t *testing.T) {
	c, g, _ := newController(t, fixture())
	typeText(c, "files")
	c.PointerDown(20, 10)

	c.Reset()
	assert.Empty(t, c.Text())
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, grid.NoFocus, g.Focus())
	assert.Equal(t, Idle, c.State())
}
