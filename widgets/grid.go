package widgets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"surfplug/surface"
	"surfplug/theme"
)

// RenderControl renders a single control: a colored block for lit controls,
// a level bar for faders and knobs, a dot for controls no plugin claimed.
func RenderControl(th *theme.Theme, s surface.State) string {
	if !s.Claimed {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.Free))
	}
	if s.ID.Type.Is(surface.TypeFader) || s.ID.Type.Is(surface.TypeKnob) || s.ID.Type.Is(surface.TypeWheel) {
		c := s.Color
		if c.IsOff() {
			c = surface.ColorBound
		}
		return lipgloss.NewStyle().Foreground(theme.Lipgloss(c)).Render(string(th.Level(s.Value)))
	}
	if s.Color.IsOff() {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.Empty))
	}
	return lipgloss.NewStyle().Foreground(theme.Lipgloss(s.Color)).Render(string(th.Symbols.Solid))
}

// Grid is a set of control states laid out by coordinate.
type Grid struct {
	Groups []int // descending, top line first
	Width  int   // highest index + 1
	cells  map[surface.Coord]surface.State
}

// NewGrid indexes states by coordinate.
func NewGrid(states []surface.State) *Grid {
	g := &Grid{cells: make(map[surface.Coord]surface.State, len(states))}
	seen := make(map[int]bool)
	for _, s := range states {
		c := s.ID.Coord
		g.cells[c] = s
		if !seen[c.Group] {
			seen[c.Group] = true
			g.Groups = append(g.Groups, c.Group)
		}
		g.Width = max(g.Width, c.Index+1)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(g.Groups)))
	return g
}

// At returns the state at c.
func (g *Grid) At(c surface.Coord) (surface.State, bool) {
	s, ok := g.cells[c]
	return s, ok
}

// Render draws one line per group, highest group on top (row 0 of a
// Launchpad is the bottom row). cursor, when non-nil, is highlighted.
func (g *Grid) Render(th *theme.Theme, cursor *surface.Coord) string {
	cursorStyle := lipgloss.NewStyle().Foreground(th.Cursor())
	var lines []string
	for _, group := range g.Groups {
		var line strings.Builder
		for idx := 0; idx < g.Width; idx++ {
			if idx > 0 {
				line.WriteString(" ")
			}
			c := surface.Coord{Group: group, Index: idx}
			s, ok := g.cells[c]
			switch {
			case cursor != nil && *cursor == c:
				line.WriteString(cursorStyle.Render(string(th.Symbols.Cursor)))
			case ok:
				line.WriteString(RenderControl(th, s))
			default:
				line.WriteString(" ")
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderAnnotations lists annotated controls, at most limit lines.
func RenderAnnotations(th *theme.Theme, states []surface.State, limit int) string {
	var lines []string
	for _, s := range states {
		if !s.Claimed || s.Annotation == "" {
			continue
		}
		if len(lines) == limit {
			lines = append(lines, lipgloss.NewStyle().Foreground(th.Muted()).Render("  ..."))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s %-22s %s", RenderControl(th, s), s.ID.String(), s.Annotation))
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
