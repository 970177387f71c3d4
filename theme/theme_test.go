package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfplug/surface"
)

func TestLookup(t *testing.T) {
	p := &Palette{Colors: []surface.Color{{0, 0, 0}, {255, 255, 255}}}

	assert.Equal(t, surface.Color{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, surface.Color{255, 255, 255}, p.Lookup(1.5))

	mid := p.Lookup(0.5)
	assert.Greater(t, mid[0], uint8(50))
	assert.Less(t, mid[0], uint8(200))
	assert.InDelta(t, float64(mid[0]), float64(mid[1]), 2, "grey stays grey")
}

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	require.NoError(t, os.WriteFile(path, []byte(`GIMP Palette
Name: Test
Columns: 2
# comment
255   0   0	red
  0 255   0	green
300   0   0	out of range
`), 0o644))

	p, err := LoadGPL(path)
	require.NoError(t, err)
	assert.Equal(t, "Test", p.Name)
	assert.Equal(t, []surface.Color{{255, 0, 0}, {0, 255, 0}}, p.Colors)

	empty := filepath.Join(t.TempDir(), "empty.gpl")
	require.NoError(t, os.WriteFile(empty, []byte("GIMP Palette\n"), 0o644))
	_, err = LoadGPL(empty)
	assert.ErrorContains(t, err, "no colors")
}

func TestLevel(t *testing.T) {
	th := Default()
	assert.Equal(t, '▁', th.Level(0))
	assert.Equal(t, '█', th.Level(1))
	assert.Equal(t, '▄', th.Level(0.4))
}

func TestRoles(t *testing.T) {
	th := Default()
	assert.Equal(t, Lipgloss(th.Palette.Colors[0]), Lipgloss(th.Palette.Lookup(0)))
	assert.Equal(t, Lipgloss(surface.ColorFromInt(0xf0f921)), th.Success())
}
