// Package tui shows the control surface in the terminal and simulates it:
// the cursor picks a control and keys send the raw events the hardware
// would.
//
// The model never touches the host or the device's visual state. It reads
// snapshots from the host's update channel and writes raw events and target
// changes to the channels the host loop drains.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"surfplug/plug"
	"surfplug/surface"
	"surfplug/theme"
	"surfplug/widgets"
)

// Options wires a Model to the host loop.
type Options struct {
	Device  *surface.Device
	Updates <-chan []surface.State
	Events  chan<- surface.RawEvent
	Targets chan<- plug.Target

	// Focusable targets, selected with keys 1-9.
	Choices []plug.Target
	Theme   *theme.Theme
}

// UpdateMsg carries a new snapshot of every control.
type UpdateMsg []surface.State

// DeviceMsg reports a hardware controller coming or going.
type DeviceMsg struct {
	ID        string
	Connected bool
}

type Model struct {
	opts     Options
	states   []surface.State
	grid     *widgets.Grid
	cursor   surface.Coord
	target   int // index into Choices, -1 for none
	devices  []string
	status   string
	quitting bool
}

func NewModel(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = theme.Default()
	}
	states := opts.Device.Snapshot()
	m := Model{
		opts:   opts,
		states: states,
		grid:   widgets.NewGrid(states),
		target: -1,
	}
	if len(m.grid.Groups) > 0 {
		m.cursor = surface.Coord{Group: m.grid.Groups[0]}
	}
	return m
}

// ListenForUpdates waits for the next snapshot.
func ListenForUpdates(updates <-chan []surface.State) tea.Cmd {
	return func() tea.Msg {
		states, ok := <-updates
		if !ok {
			return nil
		}
		return UpdateMsg(states)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.opts.Updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		m.states = msg
		m.grid = widgets.NewGrid(m.states)
		return m, ListenForUpdates(m.opts.Updates)

	case DeviceMsg:
		if msg.Connected {
			m.devices = append(m.devices, msg.ID)
			m.status = "connected " + msg.ID
		} else {
			m.devices = remove(m.devices, msg.ID)
			m.status = "disconnected " + msg.ID
		}
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "h", "left":
		m.move(0, -1)
	case "l", "right":
		m.move(0, 1)
	case "k", "up":
		m.move(-1, 0)
	case "j", "down":
		m.move(1, 0)

	case " ", "enter":
		// press and release
		m.send(1)
		m.send(0)
	case "+", "=":
		m.nudge(1.0 / 16)
	case "-", "_":
		m.nudge(-1.0 / 16)

	case "0":
		m.target = -1
		m.focus(plug.Target{})

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i := int(key[0] - '1')
		if i < len(m.opts.Choices) {
			m.target = i
			m.focus(m.opts.Choices[i])
		}
	}
	return m, nil
}

// move steps the cursor through groups (dr) or indices (dc), skipping
// holes in the layout.
func (m *Model) move(dr, dc int) {
	groups := m.grid.Groups
	if len(groups) == 0 {
		return
	}
	if dc != 0 {
		for idx := m.cursor.Index + dc; idx >= 0 && idx < m.grid.Width; idx += dc {
			c := surface.Coord{Group: m.cursor.Group, Index: idx}
			if _, ok := m.grid.At(c); ok {
				m.cursor = c
				return
			}
		}
		return
	}
	row := 0
	for i, g := range groups {
		if g == m.cursor.Group {
			row = i
		}
	}
	for r := row + dr; r >= 0 && r < len(groups); r += dr {
		c := surface.Coord{Group: groups[r], Index: m.cursor.Index}
		if _, ok := m.grid.At(c); ok {
			m.cursor = c
			return
		}
	}
}

func (m *Model) control() (*surface.Control, bool) {
	s, ok := m.grid.At(m.cursor)
	if !ok {
		return nil, false
	}
	return m.opts.Device.Lookup(s.ID)
}

func (m *Model) send(v float64) {
	c, ok := m.control()
	if !ok || c.Pattern().IsZero() {
		return
	}
	raw := c.Pattern().Raw(v)
	select {
	case m.opts.Events <- raw:
		m.status = fmt.Sprintf("sent %s to %s", raw, c)
	default:
		m.status = "host busy, event dropped"
	}
}

// nudge moves a continuous control by delta from its displayed value.
func (m *Model) nudge(delta float64) {
	s, ok := m.grid.At(m.cursor)
	if !ok {
		return
	}
	m.send(min(max(s.Value+delta, 0), 1))
}

func (m *Model) focus(t plug.Target) {
	select {
	case m.opts.Targets <- t:
		m.status = "focus " + t.String()
	default:
		m.status = "host busy, focus dropped"
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.opts.Theme

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(th.FG()).
		Background(th.Muted()).
		Padding(0, 1)

	devices := "no hardware"
	if len(m.devices) > 0 {
		devices = strings.Join(m.devices, ", ")
	}
	header := headerStyle.Render(fmt.Sprintf("surfplug  %s  [%s]", m.opts.Device.Name(), devices))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(m.grid.Render(th, &m.cursor))
	out.WriteString("\n\n")
	out.WriteString(m.targets())
	out.WriteString("\n\n")
	if s, ok := m.grid.At(m.cursor); ok {
		out.WriteString(fmt.Sprintf("  %s %s %s\n", widgets.RenderControl(th, s), s.ID, s.Annotation))
	}
	if notes := widgets.RenderAnnotations(th, m.states, 8); notes != "" {
		out.WriteString(notes)
		out.WriteString("\n")
	}
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("hjkl:move  space:press  +/-:value  1-9:focus  0:unfocus  q:quit"))

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}
	return out.String()
}

func (m Model) targets() string {
	th := m.opts.Theme
	selected := lipgloss.NewStyle().Foreground(th.Success())
	var lines []string
	for i, t := range m.opts.Choices {
		line := fmt.Sprintf("  %d %s", i+1, t)
		if i == m.target {
			line = selected.Render(fmt.Sprintf("%c %d %s", th.Symbols.Selected, i+1, t))
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func remove(list []string, v string) []string {
	out := list[:0:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
