// Package plug defines plugins, the registry that maps host targets to
// them, and the Pager composite plugin.
package plug

import (
	"surfplug/filter"
	"surfplug/surface"
)

// Plugin is one unit of behaviour bound to a surface. A plugin gets exactly
// one shadow when it is created and binds its controls from its
// constructor.
type Plugin interface {
	// Shadow returns the shadow the plugin was created with.
	Shadow() *surface.Shadow

	// ProcessEvent handles an input event and reports whether it was used.
	ProcessEvent(ev surface.Event, ctx filter.Context) bool

	// Tick refreshes the plugin's controls.
	Tick(ctx filter.Context)
}

// Factory creates a plugin over a fresh shadow.
type Factory func(sh *surface.Shadow) Plugin

// Base implements Plugin by forwarding to its shadow. Plugins embed it and
// override Tick or ProcessEvent when they need plugin-wide behaviour.
type Base struct {
	shadow *surface.Shadow
}

// NewBase wraps sh.
func NewBase(sh *surface.Shadow) Base {
	return Base{shadow: sh}
}

func (b *Base) Shadow() *surface.Shadow { return b.shadow }

func (b *Base) ProcessEvent(ev surface.Event, ctx filter.Context) bool {
	return b.shadow.DispatchEvent(ev, ctx)
}

func (b *Base) Tick(ctx filter.Context) {
	b.shadow.DispatchTick(ctx)
}

// composite is implemented by plugins that own other plugins.
type composite interface {
	Pages() []Plugin
}

// paged is implemented by composites that dispatch to one child at a time.
type paged interface {
	Active() Plugin
}

// Suspend blanks every control p wrote to and makes its shadows dormant.
// Writes made while suspended are kept for Resume.
func Suspend(p Plugin) {
	park(p, true)
}

// park makes p and every plugin it owns dormant. With blank set, the
// controls of shadows that were live are turned off first.
func park(p Plugin, blank bool) {
	if p == nil {
		return
	}
	if c, ok := p.(composite); ok {
		for _, child := range c.Pages() {
			park(child, blank)
		}
	}
	if sh := p.Shadow(); sh != nil {
		if blank && sh.Live() {
			sh.Blank()
		}
		sh.SetLive(false)
	}
}

// Resume makes p live again and replays its writes. Of a paged plugin only
// the active page resumes.
func Resume(p Plugin) {
	if p == nil {
		return
	}
	if sh := p.Shadow(); sh != nil {
		sh.SetLive(true)
	}
	if c, ok := p.(paged); ok {
		Resume(c.Active())
	}
}

// Release resets the shadow of p and of every plugin it owns, so that a
// plugin created later starts from a clean claim ledger.
func Release(p Plugin) {
	if p == nil {
		return
	}
	if c, ok := p.(composite); ok {
		for _, child := range c.Pages() {
			Release(child)
		}
	}
	if sh := p.Shadow(); sh != nil {
		sh.Reset()
	}
}
