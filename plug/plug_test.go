package plug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfplug/filter"
	"surfplug/surface"
)

func cc(n uint8) surface.Pattern {
	return surface.Pattern{Status: surface.StatusControlChange, Channel: surface.AnyChannel, Data1: n}
}

// testDevice has one switch (CC 20) and three faders (CC 1-3).
func testDevice(t *testing.T) *surface.Device {
	t.Helper()
	d, err := surface.NewDevice("test", []surface.Spec{
		{Type: surface.TypeSwitch, Coord: surface.Coord{Group: 0, Index: 0}, Pattern: cc(20)},
		{Type: surface.TypeFader, Coord: surface.Coord{Group: 1, Index: 0}, Pattern: cc(1)},
		{Type: surface.TypeFader, Coord: surface.Coord{Group: 1, Index: 1}, Pattern: cc(2)},
		{Type: surface.TypeFader, Coord: surface.Coord{Group: 1, Index: 2}, Pattern: cc(3)},
	})
	require.NoError(t, err)
	return d
}

func match(t *testing.T, d *surface.Device, n, v uint8) surface.Event {
	t.Helper()
	ev, ok := d.Match(surface.RawEvent{Status: surface.StatusControlChange, Data1: n, Data2: v})
	require.True(t, ok)
	return ev
}

// recorder is a page that binds every fader and records what it sees.
type recorder struct {
	Base
	name   string
	events []float64
	ticks  int
	faders surface.ControlShadows
}

func newRecorder(name string, log *[]string) Factory {
	return func(sh *surface.Shadow) Plugin {
		r := &recorder{Base: NewBase(sh), name: name}
		r.faders = sh.BindMatches(surface.TypeFader,
			func(_ *surface.ControlShadow, ev surface.Event, _ filter.Index) bool {
				r.events = append(r.events, ev.Value)
				if log != nil {
					*log = append(*log, r.name+":event")
				}
				return true
			},
			surface.WithTick(func(c *surface.ControlShadow, _ filter.Index) {
				if c.Slot() == 0 {
					r.ticks++
					if log != nil {
						*log = append(*log, r.name+":tick")
					}
				}
				c.Annotate(r.name)
			}),
		)
		r.faders.Annotate(name)
		return r
	}
}

func TestPagerScenario(t *testing.T) {
	d := testDevice(t)
	red := surface.ColorFromInt(0xFF0000)
	green := surface.ColorFromInt(0x00FF00)

	var log []string
	p := NewPager(surface.NewShadow(d))
	p0 := p.AddPage(newRecorder("P0", &log), red).(*recorder)
	p1 := p.AddPage(newRecorder("P1", &log), green).(*recorder)

	idx, ok := p.Index()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	sw := match(t, d, 20, 127)
	assert.Equal(t, red, sw.Control.Color())

	assert.True(t, p.ProcessEvent(sw, filter.Context{}))
	idx, _ = p.Index()
	assert.Equal(t, 1, idx)
	assert.Equal(t, green, sw.Control.Color(), "indicator follows the active page immediately")
	assert.Equal(t, "Page 2/2", sw.Control.Annotation())

	log = nil
	p.Tick(filter.Context{})
	assert.Equal(t, []string{"P1:tick"}, log)
	assert.Zero(t, p0.ticks)
	assert.Equal(t, 1, p1.ticks)

	assert.True(t, p.ProcessEvent(match(t, d, 2, 127), filter.Context{}))
	assert.Empty(t, p0.events)
	assert.Equal(t, []float64{1}, p1.events)
}

func TestPagerWraps(t *testing.T) {
	p := NewPager(surface.NewShadow(testDevice(t)))
	for range 3 {
		p.AddPage(newRecorder("p", nil), surface.ColorWhite)
	}

	var seen []int
	for range 4 {
		p.Next()
		i, _ := p.Index()
		seen = append(seen, i)
	}
	assert.Equal(t, []int{1, 2, 0, 1}, seen)

	p.Previous()
	p.Previous()
	i, _ := p.Index()
	assert.Equal(t, 2, i)

	assert.False(t, p.Select(3))
	assert.False(t, p.Select(-1))
	assert.True(t, p.Select(0))
}

func TestPagerWithoutPages(t *testing.T) {
	d := testDevice(t)
	p := NewPager(surface.NewShadow(d))

	_, ok := p.Index()
	assert.False(t, ok)
	assert.Nil(t, p.Active())

	assert.NotPanics(t, func() {
		p.Next()
		p.Previous()
		p.Tick(filter.Context{})
	})
	_, ok = p.Index()
	assert.False(t, ok)

	sw := match(t, d, 20, 127)
	assert.True(t, p.ProcessEvent(sw, filter.Context{}), "the switch is still consumed")
	assert.True(t, sw.Control.Color().IsOff(), "indicator untouched without pages")
	assert.False(t, p.ProcessEvent(match(t, d, 1, 127), filter.Context{}))
}

func TestPagerPagesDoNotLeak(t *testing.T) {
	d := testDevice(t)
	p := NewPager(surface.NewShadow(d))
	p0 := p.AddPage(newRecorder("P0", nil), surface.ColorWhite).(*recorder)
	p1 := p.AddPage(newRecorder("P1", nil), surface.ColorWhite).(*recorder)

	// Both pages claimed all three faders.
	assert.Equal(t, 3, p0.faders.Bound())
	assert.Equal(t, 3, p1.faders.Bound())

	fader := match(t, d, 1, 0).Control
	assert.Equal(t, "P0", fader.Annotation(), "P1's bind-time writes stay off the hardware")

	p.Next()
	assert.Equal(t, "P1", fader.Annotation())

	p.Next()
	assert.Equal(t, "P0", fader.Annotation(), "switching back restores P0")
}

func TestPagerClearOnSwitch(t *testing.T) {
	d := testDevice(t)
	colorFaders := func(col surface.Color) Factory {
		return func(sh *surface.Shadow) Plugin {
			sh.BindMatch(surface.TypeFader, nil, surface.Where(func(c *surface.Control) bool {
				return c.Coord().Index == 0
			})).Colorize(col)
			sh.BindMatch(surface.TypeFader, nil, surface.Where(func(c *surface.Control) bool {
				return c.Coord().Index == 2
			})).Colorize(col)
			b := NewBase(sh)
			return &b
		}
	}

	red := surface.ColorFromInt(0xFF0000)

	untouched := NewPager(surface.NewShadow(d))
	untouched.AddPage(colorFaders(red), red)
	untouched.AddPage(func(sh *surface.Shadow) Plugin { b := NewBase(sh); return &b }, red)
	untouched.Next()
	assert.Equal(t, red, match(t, d, 1, 0).Control.Color(), "default leaves old state on the hardware")
	Release(untouched)

	cleared := NewPager(surface.NewShadow(d), ClearOnSwitch(true))
	cleared.AddPage(colorFaders(red), red)
	cleared.AddPage(func(sh *surface.Shadow) Plugin { b := NewBase(sh); return &b }, red)
	cleared.Next()
	assert.True(t, match(t, d, 1, 0).Control.Color().IsOff())
	assert.True(t, match(t, d, 3, 0).Control.Color().IsOff())

	cleared.Next()
	assert.Equal(t, red, match(t, d, 3, 0).Control.Color(), "returning restores the page")
}

func TestReleaseResetsPages(t *testing.T) {
	d := testDevice(t)
	p := NewPager(surface.NewShadow(d))
	p.AddPage(newRecorder("P0", nil), surface.ColorWhite)
	p.AddPage(newRecorder("P1", nil), surface.ColorWhite)

	for _, c := range d.Controls() {
		assert.True(t, c.Claimed())
	}

	Release(p)
	for _, c := range d.Controls() {
		assert.False(t, c.Claimed(), "%s", c)
	}
	assert.Equal(t, 0, p.Shadow().Len())
	Release(nil)
}

func TestSuspendResume(t *testing.T) {
	d := testDevice(t)
	green := surface.ColorFromInt(0x00FF00)

	p := NewPager(surface.NewShadow(d))
	p.AddPage(newRecorder("P0", nil), surface.ColorWhite)
	p.AddPage(newRecorder("P1", nil), green)
	p.Next()

	sw := match(t, d, 20, 0).Control
	fader := match(t, d, 1, 0).Control
	require.Equal(t, "P1", fader.Annotation())

	Suspend(p)
	assert.True(t, sw.Color().IsOff())
	assert.Empty(t, fader.Annotation())
	assert.False(t, p.Shadow().Live())

	// Writes while suspended do not reach the controls.
	p.Tick(filter.Context{})
	assert.True(t, sw.Color().IsOff())

	Resume(p)
	assert.Equal(t, green, sw.Color())
	assert.Equal(t, "P1", fader.Annotation())
	assert.False(t, p.Pages()[0].Shadow().Live(), "inactive page stays dormant")
	assert.True(t, p.Pages()[1].Shadow().Live())

	assert.NotPanics(t, func() {
		Suspend(nil)
		Resume(nil)
	})
}

func TestNestedPagerPagesStayDormant(t *testing.T) {
	d := testDevice(t)
	blue := surface.ColorFromInt(0x0000FF)

	var inner *Pager
	outer := NewPager(surface.NewShadow(d))
	outer.AddPage(newRecorder("A", nil), blue)
	outer.AddPage(func(sh *surface.Shadow) Plugin {
		inner = NewPager(sh)
		inner.AddPage(newRecorder("B", nil), surface.ColorWhite)
		inner.AddPage(newRecorder("C", nil), surface.ColorWhite)
		return inner
	}, surface.ColorWhite)

	fader := match(t, d, 1, 0).Control
	sw := match(t, d, 20, 0).Control
	assert.Equal(t, "A", fader.Annotation(), "pages of an inactive pager do not write through")
	assert.Equal(t, blue, sw.Color())
	for _, pg := range inner.Pages() {
		assert.False(t, pg.Shadow().Live())
	}

	inner.Next()
	inner.Tick(filter.Context{})
	assert.Equal(t, "A", fader.Annotation(), "switching a dormant pager keeps its pages dormant")

	outer.Next()
	assert.Equal(t, "C", fader.Annotation())
	assert.False(t, inner.Pages()[0].Shadow().Live())
	assert.True(t, inner.Pages()[1].Shadow().Live())

	outer.Next()
	assert.Equal(t, "A", fader.Annotation())
	for _, pg := range inner.Pages() {
		assert.False(t, pg.Shadow().Live(), "leaving the outer page parks the inner pages")
	}
}

// A page with no shadow of its own can still be switched to and from.
type shadowless struct{}

func (shadowless) Shadow() *surface.Shadow                         { return nil }
func (shadowless) ProcessEvent(surface.Event, filter.Context) bool { return false }
func (shadowless) Tick(filter.Context)                             {}

func TestPagerShadowlessPage(t *testing.T) {
	d := testDevice(t)
	p := NewPager(surface.NewShadow(d))
	p.AddPage(func(*surface.Shadow) Plugin { return shadowless{} }, surface.ColorWhite)
	p.AddPage(newRecorder("P1", nil), surface.ColorWhite)

	assert.NotPanics(t, func() {
		p.Next()
		p.Next()
	})
	idx, ok := p.Index()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}
