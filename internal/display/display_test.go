package display

import (
	"image"
	"image/color"
	"testing"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/surface"
)

func TestMonitorIndex(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		available  uint
		wantIndex  uint
		wantOK     bool
	}{
		{name: "compositor choice", configured: 0, available: 2, wantOK: false},
		{name: "negative", configured: -1, available: 2, wantOK: false},
		{name: "first", configured: 1, available: 2, wantIndex: 0, wantOK: true},
		{name: "second", configured: 2, available: 2, wantIndex: 1, wantOK: true},
		{name: "unplugged", configured: 3, available: 2, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, ok := monitorIndex(tt.configured, tt.available)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIndex, index)
		})
	}
}

func TestARGB32Swizzle(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40})
	src.SetRGBA(1, 0, color.RGBA{R: 0xff, A: 0xff})

	buf := make([]byte, 8)
	toARGB32(buf, 8, src)
	assert.Equal(t, []byte{0x30, 0x20, 0x10, 0x40, 0x00, 0x00, 0xff, 0xff}, buf)

	back := fromARGB32(buf, 8, 2, 1)
	assert.Equal(t, src.Pix, back.Pix)
}

func TestARGB32Stride(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 2))
	src.SetRGBA(0, 1, color.RGBA{G: 0xaa, A: 0xff})

	// Padded rows are left untouched.
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xee
	}
	toARGB32(buf, 8, src)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[0:4])
	assert.Equal(t, []byte{0xee, 0xee, 0xee, 0xee}, buf[4:8])
	assert.Equal(t, []byte{0x00, 0xaa, 0x00, 0xff}, buf[8:12])
}

func TestPixbufImage(t *testing.T) {
	t.Run("rgba", func(t *testing.T) {
		pix := []byte{0xff, 0x00, 0x00, 0x80, 0, 0, 0, 0}
		img, err := pixbufImage(pix, 1, 1, 8, 4, true)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{R: 0xff, A: 0x80}, img.At(0, 0))
	})

	t.Run("rgb", func(t *testing.T) {
		pix := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
		img, err := pixbufImage(pix, 2, 1, 6, 3, false)
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{R: 0x04, G: 0x05, B: 0x06, A: 0xff}, img.At(1, 0))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := pixbufImage(nil, 1, 1, 2, 2, false)
		assert.Error(t, err)
	})
}

func TestLayerAndKeyboardMode(t *testing.T) {
	assert.Equal(t, layershell.LayerShellLayerTop, layerFor("top"))
	assert.Equal(t, layershell.LayerShellLayerOverlay, layerFor("overlay"))
	assert.Equal(t, layershell.LayerShellLayerOverlay, layerFor(""))

	assert.Equal(t, layershell.LayerShellKeyboardModeNone, keyboardModeFor("none"))
	assert.Equal(t, layershell.LayerShellKeyboardModeOnDemand, keyboardModeFor("on-demand"))
	assert.Equal(t, layershell.LayerShellKeyboardModeExclusive, keyboardModeFor("exclusive"))
}

func TestDisplayError(t *testing.T) {
	cause := assert.AnError
	err := &DisplayError{Op: "prepare gl", Err: ErrNoGL, Cause: cause}
	assert.Equal(t, "display prepare gl: OpenGL unavailable: "+cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrNoGL)

	bind := &DisplayError{Op: "bind", Err: ErrNoDisplay}
	assert.Equal(t, "display bind: no display available", bind.Error())
	assert.ErrorIs(t, bind, ErrNoDisplay)
	assert.NotErrorIs(t, bind, ErrNoGL)
}

func TestHeldScale(t *testing.T) {
	t.Run("stretches previous frame over grown drawable", func(t *testing.T) {
		sx, sy, ok := heldScale(surface.Size{W: 400, H: 300}, surface.Size{W: 800, H: 450})
		require.True(t, ok)
		assert.InDelta(t, 2.0, sx, 1e-9)
		assert.InDelta(t, 1.5, sy, 1e-9)
	})

	t.Run("same size is identity", func(t *testing.T) {
		sx, sy, ok := heldScale(surface.Size{W: 640, H: 480}, surface.Size{W: 640, H: 480})
		require.True(t, ok)
		assert.Equal(t, 1.0, sx)
		assert.Equal(t, 1.0, sy)
	})

	t.Run("empty sizes have nothing to show", func(t *testing.T) {
		_, _, ok := heldScale(surface.Size{}, surface.Size{W: 10, H: 10})
		assert.False(t, ok)
		_, _, ok = heldScale(surface.Size{W: 10, H: 10}, surface.Size{})
		assert.False(t, ok)
	})
}
