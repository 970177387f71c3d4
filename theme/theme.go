package theme

import (
	"github.com/charmbracelet/lipgloss"

	"surfplug/surface"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Solid    rune // ■ claimed and lit
	Empty    rune // □ claimed, dark
	Free     rune // · not claimed by any plugin
	Cursor   rune // ◉ cursor on a control
	Levels   []rune
	Selected rune // ▶ focused target
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid:    '■',
			Empty:    '□',
			Free:     '·',
			Cursor:   '◉',
			Levels:   []rune("▁▂▃▄▅▆▇█"),
			Selected: '▶',
		},
	}
}

// Default is the plasma theme.
func Default() *Theme {
	return New(Plasma())
}

// Color roles mapped to palette positions (0-1)
const (
	RoleMuted   = 0.2
	RoleFG      = 0.4
	RoleAccent  = 0.5
	RoleCursor  = 0.6
	RoleWarning = 0.8
	RoleSuccess = 1.0
)

func (t *Theme) FG() lipgloss.Color      { return Lipgloss(t.Palette.Lookup(RoleFG)) }
func (t *Theme) Accent() lipgloss.Color  { return Lipgloss(t.Palette.Lookup(RoleAccent)) }
func (t *Theme) Muted() lipgloss.Color   { return Lipgloss(t.Palette.Lookup(RoleMuted)) }
func (t *Theme) Cursor() lipgloss.Color  { return Lipgloss(t.Palette.Lookup(RoleCursor)) }
func (t *Theme) Warning() lipgloss.Color { return Lipgloss(t.Palette.Lookup(RoleWarning)) }
func (t *Theme) Success() lipgloss.Color { return Lipgloss(t.Palette.Lookup(RoleSuccess)) }

// Level returns the bar glyph for a value in [0, 1].
func (t *Theme) Level(v float64) rune {
	n := len(t.Symbols.Levels)
	i := int(v * float64(n))
	return t.Symbols.Levels[min(max(i, 0), n-1)]
}

// Lipgloss converts a control color for terminal output.
func Lipgloss(c surface.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
