package theme

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/grid"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{input: "#ff0000", want: color.RGBA{R: 0xff, A: 0xff}},
		{input: " #3584e440 ", want: color.RGBA{R: 0x35, G: 0x84, B: 0xe4, A: 0x40}},
		{input: "#fff", want: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}},
		{input: "red", wantErr: true},
		{input: "#12345", wantErr: true},
		{input: "#123456zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPalette(t *testing.T) {
	css := `
@define-color drawer_background #101010;
@define-color drawer_label #eeeeee;
@define-color drawer_label_dark #ffffff;
@define-color unrelated #000000;
`
	light, err := Palette(css, false, grid.LightPalette)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}, light.Background)
	assert.Equal(t, color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}, light.Label)
	assert.Equal(t, grid.LightPalette.Focus, light.Focus, "missing entries keep the fallback")

	dark, err := Palette(css, true, grid.DarkPalette)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, dark.Label)
	assert.Equal(t, light.Background, dark.Background, "no dark variant falls back to the plain name")
}

func TestPalette_InvalidEntry(t *testing.T) {
	css := "@define-color drawer_focus bogus;\n@define-color drawer_label #000000;"
	p, err := Palette(css, false, grid.LightPalette)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drawer_focus")
	assert.Equal(t, grid.LightPalette.Focus, p.Focus)
	assert.Equal(t, color.RGBA{A: 0xff}, p.Label, "valid entries still apply")
}

func TestDefineColors_LaterWins(t *testing.T) {
	colors := DefineColors("@define-color a #111111;\n@define-color a #222222;")
	assert.Equal(t, "#222222", colors["a"])
}
