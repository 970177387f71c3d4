package plug

import (
	"fmt"

	"surfplug/filter"
	"surfplug/surface"
)

// Pager is a plugin made of several pages that share one control pool.
// Each page is a plugin with its own copy of the pager's shadow, so pages
// claim controls independently. Only the active page receives events and
// ticks, and only its writes reach the controls.
//
// The pager claims the first switch control for itself. Pressing it
// advances to the next page; its color shows the active page.
type Pager struct {
	Base

	pages         []page
	current       int
	clearOnSwitch bool
	indicator     *surface.ControlShadow
}

type page struct {
	plugin Plugin
	color  surface.Color
}

// PagerOption configures a Pager.
type PagerOption func(*Pager)

// ClearOnSwitch blanks the outgoing page's controls when switching. By
// default they are left untouched.
func ClearOnSwitch(on bool) PagerOption {
	return func(p *Pager) { p.clearOnSwitch = on }
}

// NewPager creates a pager with no pages over sh.
func NewPager(sh *surface.Shadow, opts ...PagerOption) *Pager {
	p := &Pager{Base: NewBase(sh)}
	for _, opt := range opts {
		opt(p)
	}
	p.indicator = sh.BindMatch(surface.TypeSwitch, p.onSwitch,
		surface.WithTick(p.tickIndicator),
	)
	return p
}

// AddPage creates a page plugin over a new copy of the pager's shadow. The
// first page added becomes the active one. Other pages, and every page of a
// dormant pager, are created dormant so their bind-time writes stay off the
// controls.
func (p *Pager) AddPage(create Factory, color surface.Color) Plugin {
	live := len(p.pages) == 0 && p.Shadow().Live()
	sh := p.Shadow().Copy()
	sh.SetLive(live)

	pl := create(sh)
	if !live {
		park(pl, false)
	}
	p.pages = append(p.pages, page{plugin: pl, color: color})
	p.refreshIndicator()
	return pl
}

// Len returns the number of pages.
func (p *Pager) Len() int { return len(p.pages) }

// Index returns the active page. ok is false when there are no pages.
func (p *Pager) Index() (index int, ok bool) {
	if len(p.pages) == 0 {
		return 0, false
	}
	return p.current, true
}

// Active returns the active page plugin, nil when there are no pages.
func (p *Pager) Active() Plugin {
	if len(p.pages) == 0 {
		return nil
	}
	return p.pages[p.current].plugin
}

// Pages returns the page plugins in order.
func (p *Pager) Pages() []Plugin {
	out := make([]Plugin, len(p.pages))
	for i, pg := range p.pages {
		out[i] = pg.plugin
	}
	return out
}

// Next activates the following page, wrapping to the first. No-op without
// pages.
func (p *Pager) Next() {
	if len(p.pages) == 0 {
		return
	}
	p.Select((p.current + 1) % len(p.pages))
}

// Previous activates the preceding page, wrapping to the last. No-op
// without pages.
func (p *Pager) Previous() {
	if len(p.pages) == 0 {
		return
	}
	p.Select((p.current - 1 + len(p.pages)) % len(p.pages))
}

// Select activates page i. It reports false when i is out of range.
func (p *Pager) Select(i int) bool {
	if i < 0 || i >= len(p.pages) {
		return false
	}
	if i == p.current {
		return true
	}

	park(p.pages[p.current].plugin, p.clearOnSwitch)
	p.current = i
	if p.Shadow().Live() {
		Resume(p.pages[i].plugin)
	}
	p.refreshIndicator()
	return true
}

// ProcessEvent offers ev to the pager's own controls, then to the active
// page.
func (p *Pager) ProcessEvent(ev surface.Event, ctx filter.Context) bool {
	if p.Base.ProcessEvent(ev, ctx) {
		return true
	}
	if active := p.Active(); active != nil {
		return active.ProcessEvent(ev, ctx)
	}
	return false
}

// Tick refreshes the indicator, then the active page.
func (p *Pager) Tick(ctx filter.Context) {
	p.Base.Tick(ctx)
	if active := p.Active(); active != nil {
		active.Tick(ctx)
	}
}

func (p *Pager) onSwitch(_ *surface.ControlShadow, ev surface.Event, _ filter.Index) bool {
	if ev.Pressed() {
		p.Next()
	}
	return true
}

func (p *Pager) tickIndicator(*surface.ControlShadow, filter.Index) {
	p.refreshIndicator()
}

func (p *Pager) refreshIndicator() {
	if len(p.pages) == 0 {
		return
	}
	p.indicator.
		Colorize(p.pages[p.current].color).
		Annotate(fmt.Sprintf("Page %d/%d", p.current+1, len(p.pages)))
}
