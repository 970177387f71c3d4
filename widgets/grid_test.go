package widgets

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfplug/surface"
	"surfplug/theme"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

func state(t surface.Type, group, index int, c surface.Color, claimed bool) surface.State {
	return surface.State{
		ID:      surface.ID{Coord: surface.Coord{Group: group, Index: index}, Type: t},
		Color:   c,
		Claimed: claimed,
	}
}

func TestRenderControl(t *testing.T) {
	th := theme.Default()
	red := surface.ColorFromInt(0xFF0000)

	assert.Equal(t, "·", plain(RenderControl(th, state(surface.TypePad, 0, 0, red, false))))
	assert.Equal(t, "■", plain(RenderControl(th, state(surface.TypePad, 0, 0, red, true))))
	assert.Equal(t, "□", plain(RenderControl(th, state(surface.TypePad, 0, 0, surface.ColorOff, true))))

	fader := state(surface.TypeFader, 0, 0, surface.ColorOff, true)
	fader.Value = 1
	assert.Equal(t, "█", plain(RenderControl(th, fader)))
}

func TestGridRender(t *testing.T) {
	th := theme.Default()
	red := surface.ColorFromInt(0xFF0000)
	g := NewGrid([]surface.State{
		state(surface.TypePad, 0, 0, red, true),
		state(surface.TypePad, 0, 2, red, false),
		state(surface.TypeSwitch, 1, 0, surface.ColorOff, true),
	})

	assert.Equal(t, []int{1, 0}, g.Groups)
	assert.Equal(t, 3, g.Width)
	s, ok := g.At(surface.Coord{Group: 1, Index: 0})
	require.True(t, ok)
	assert.Equal(t, surface.TypeSwitch, s.ID.Type)

	lines := strings.Split(plain(g.Render(th, nil)), "\n")
	assert.Equal(t, []string{"□    ", "■   ·"}, lines)

	cursor := surface.Coord{Group: 0, Index: 2}
	lines = strings.Split(plain(g.Render(th, &cursor)), "\n")
	assert.Equal(t, "■   ◉", lines[1])
}

func TestRenderAnnotations(t *testing.T) {
	th := theme.Default()
	states := []surface.State{
		state(surface.TypeFader, 0, 0, surface.ColorBound, true),
		state(surface.TypeFader, 0, 1, surface.ColorBound, true),
		state(surface.TypeFader, 0, 2, surface.ColorBound, false),
	}
	states[0].Annotation = "Cutoff"
	states[1].Annotation = "Resonance"
	states[2].Annotation = "stale"

	out := plain(RenderAnnotations(th, states, 1))
	assert.Contains(t, out, "Cutoff")
	assert.NotContains(t, out, "Resonance")
	assert.NotContains(t, out, "stale")
	assert.Contains(t, out, "...")
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{Title: "Surface", Keys: []KeyBinding{{Key: "space", Desc: "press"}}}})
	assert.Equal(t, "Surface\n  space        press", out)
}
