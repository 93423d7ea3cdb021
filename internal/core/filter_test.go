package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/appdrawer/internal/model"
)

func fixture() []model.Entry {
	return []model.Entry{
		{ID: "org.gnome.Camera.desktop", Name: "Camera", Command: []string{"snapshot"}},
		{ID: "org.gnome.Calendar.desktop", Name: "Calendar", Command: []string{"gnome-calendar"}},
		{ID: "org.gnome.Nautilus.desktop", Name: "Files", Command: []string{"nautilus", "--new-window"}, Terminal: false},
		{ID: "htop.desktop", Name: "htop", Command: []string{"htop"}, Terminal: true},
	}
}

func names(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestFilter_Empty(t *testing.T) {
	result := Filter(nil, "x")
	assert.Len(t, result, 0)
}

func TestFilter_EmptyTextRestoresAll(t *testing.T) {
	entries := fixture()
	assert.Equal(t, names(entries), names(Filter(entries, "")))
}

func TestFilter_CaseInsensitive(t *testing.T) {
	entries := fixture()

	tests := []struct {
		text string
		want []string
	}{
		{"cal", []string{"Calendar"}},
		{"CAL", []string{"Calendar"}},
		{"ca", []string{"Camera", "Calendar"}},
		{"e", []string{"Camera", "Calendar", "Files"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Filter(entries, tt.text)))
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	entries := fixture()
	once := Filter(entries, "a")
	twice := Filter(once, "a")
	assert.Equal(t, once, twice)
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	entries := fixture()
	all := Filter(entries, "")
	all[0].Name = "changed"
	assert.Equal(t, "Camera", entries[0].Name)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
		wantLen int
	}{
		{"empty", "", false, 0},
		{"name contains", "name~cal", false, 1},
		{"exec equal", "exec=htop", false, 1},
		{"compound", "name~a, terminal=false", false, 2},
		{"regex", `id~=^org\.gnome\.`, false, 1},
		{"bad regex", "id~=(", true, 0},
		{"unknown field", "urgency=low", true, 0},
		{"missing operator", "name", true, 0},
		{"terminal contains", "terminal~t", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseFilter(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, expr.Conditions, tt.wantLen)
		})
	}
}

func TestFilterWithExpr(t *testing.T) {
	entries := fixture()

	tests := []struct {
		expr string
		want []string
	}{
		{"name~CAL", []string{"Calendar"}},
		{"exec=nautilus", []string{"Files"}},
		{"exec~new-window", []string{"Files"}},
		{"terminal=true", []string{"htop"}},
		{"terminal!=true", []string{"Camera", "Calendar", "Files"}},
		{`id~=^org\.gnome\.C`, []string{"Camera", "Calendar"}},
		{"name!=htop,name~a", []string{"Camera", "Calendar"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := ParseFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(FilterWithExpr(entries, expr)))
		})
	}
}

func TestFilterWithExpr_Nil(t *testing.T) {
	entries := fixture()
	assert.Equal(t, entries, FilterWithExpr(entries, nil))
}
