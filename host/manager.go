// Package host runs the dispatch loop: it resolves the focused target to a
// plugin, forwards raw events and ticks to it, and flushes control state to
// renderers.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"surfplug/filter"
	"surfplug/plug"
	"surfplug/surface"
)

// Defaults for Options fields left at zero.
const (
	DefaultTickInterval = 50 * time.Millisecond
	DefaultRenderFPS    = 30
	DefaultMaxCached    = 16
)

// Options configures a Manager.
type Options struct {
	TickInterval  time.Duration
	RenderFPS     int
	MaxCached     int  // plugin instances kept alive, specials included
	IsolatePanics bool // recover plugin panics instead of crashing
	Logger        *slog.Logger
}

// Renderer receives the controls whose state changed since the last flush.
type Renderer interface {
	Render(changed []surface.State) error
}

// instance is a created plugin together with the entry it came from.
type instance struct {
	id       uuid.UUID
	entry    *plug.Entry
	plugin   plug.Plugin
	lastUsed uint64
}

// Manager owns the plugin instances of one device. It is driven from a
// single goroutine, either by Run or by calling its methods directly.
type Manager struct {
	id       uuid.UUID
	device   *surface.Device
	registry *plug.Registry
	opts     Options
	log      *slog.Logger

	target   plug.Target
	active   *instance
	specials map[*plug.Entry]*instance
	cache    map[*plug.Entry]*instance
	clock    uint64

	renderers []Renderer
	prev      map[surface.ID]surface.State
	dirty     bool

	// Full snapshots for the TUI, latest only.
	UpdateChan chan []surface.State
}

// NewManager creates a manager for device, resolving plugins from registry.
func NewManager(device *surface.Device, registry *plug.Registry, opts Options) *Manager {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.RenderFPS <= 0 {
		opts.RenderFPS = DefaultRenderFPS
	}
	if opts.MaxCached <= 0 {
		opts.MaxCached = DefaultMaxCached
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	m := &Manager{
		id:         uuid.New(),
		device:     device,
		registry:   registry,
		opts:       opts,
		specials:   make(map[*plug.Entry]*instance),
		cache:      make(map[*plug.Entry]*instance),
		prev:       make(map[surface.ID]surface.State),
		UpdateChan: make(chan []surface.State, 1),
	}
	m.log = log.With("manager", m.id.String(), "device", device.Name())
	return m
}

// Device returns the managed device.
func (m *Manager) Device() *surface.Device { return m.device }

// Target returns the focused target.
func (m *Manager) Target() plug.Target { return m.target }

// SetTarget changes focus. The plugin for the new target is created on
// first use; the previous one is suspended and kept in the cache.
func (m *Manager) SetTarget(t plug.Target) {
	m.log.Debug("target", "from", m.target.String(), "to", t.String())
	m.target = t
	m.activate()
	m.dirty = true
}

// Active returns the plugin serving the current target.
func (m *Manager) Active() (plug.Plugin, bool) {
	if m.active == nil {
		return nil, false
	}
	return m.active.plugin, true
}

// HandleRaw resolves raw against the device and dispatches it. It reports
// whether any plugin handled it.
func (m *Manager) HandleRaw(raw surface.RawEvent) bool {
	ev, ok := m.device.Match(raw)
	if !ok {
		m.log.Debug("unmatched event", "raw", raw.String())
		return false
	}
	return m.HandleEvent(ev)
}

// HandleEvent offers ev to the active special plugins in registration
// order, then to the plugin of the current target.
func (m *Manager) HandleEvent(ev surface.Event) bool {
	m.dirty = true
	ctx := m.target.Context()

	for _, inst := range m.activeSpecials() {
		if m.processEvent(inst, ev, ctx) {
			return true
		}
	}
	if m.active == nil {
		m.activate()
	}
	if m.active != nil && m.processEvent(m.active, ev, ctx) {
		return true
	}
	m.log.Debug("event not handled", "raw", ev.Raw.String(), "target", m.target.String())
	return false
}

// Tick refreshes the active special plugins, then the current one.
func (m *Manager) Tick() {
	m.dirty = true
	ctx := m.target.Context()

	for _, inst := range m.activeSpecials() {
		m.call(inst, "tick", func() { inst.plugin.Tick(ctx) })
	}
	if m.active == nil {
		m.activate()
	}
	if m.active != nil {
		m.call(m.active, "tick", func() { m.active.plugin.Tick(ctx) })
	}
}

// AddRenderer registers r and forces a full redraw on the next flush.
func (m *Manager) AddRenderer(r Renderer) {
	m.renderers = append(m.renderers, r)
	m.ResetRender()
}

// ResetRender forgets what the renderers show, so the next flush sends
// every control.
func (m *Manager) ResetRender() {
	m.prev = make(map[surface.ID]surface.State)
	m.dirty = true
}

// Flush sends changed controls to every renderer and publishes a full
// snapshot on UpdateChan.
func (m *Manager) Flush() {
	states := m.device.Snapshot()
	next := make(map[surface.ID]surface.State, len(states))

	var changed []surface.State
	for _, s := range states {
		next[s.ID] = s
		if prev, ok := m.prev[s.ID]; !ok || prev != s {
			changed = append(changed, s)
		}
	}
	m.prev = next
	m.dirty = false

	if len(changed) > 0 {
		for _, r := range m.renderers {
			if err := r.Render(changed); err != nil {
				m.log.Warn("render failed", "changed", len(changed), "error", err)
			}
		}
	}

	// Replace any snapshot the TUI has not picked up yet.
	select {
	case <-m.UpdateChan:
	default:
	}
	select {
	case m.UpdateChan <- states:
	default:
	}
}

// Run processes raw events, target changes, ticks and render frames until
// ctx is done. A closed events or targets channel is ignored from then on.
func (m *Manager) Run(ctx context.Context, events <-chan surface.RawEvent, targets <-chan plug.Target) error {
	tick := time.NewTicker(m.opts.TickInterval)
	defer tick.Stop()
	frame := time.NewTicker(time.Second / time.Duration(m.opts.RenderFPS))
	defer frame.Stop()

	m.log.Info("dispatch loop started", "tick", m.opts.TickInterval, "fps", m.opts.RenderFPS)
	m.Tick()
	m.Flush()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			m.log.Info("dispatch loop stopped")
			return nil
		case raw, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.HandleRaw(raw)
		case t, ok := <-targets:
			if !ok {
				targets = nil
				continue
			}
			m.SetTarget(t)
		case <-tick.C:
			m.Tick()
		case <-frame.C:
			if m.dirty {
				m.Flush()
			}
		}
	}
}

// Close releases every plugin instance and flushes the cleared state.
func (m *Manager) Close() {
	for e, inst := range m.cache {
		m.release(inst)
		delete(m.cache, e)
	}
	m.active = nil
	m.specials = make(map[*plug.Entry]*instance)
	m.Flush()
}

// Cached returns the number of live plugin instances.
func (m *Manager) Cached() int { return len(m.cache) }

// activate makes the plugin for the current target the active one. The
// previous plugin must be suspended before the new one binds.
func (m *Manager) activate() {
	e, ok := m.registry.Resolve(m.target)
	if m.active != nil && ok && m.active.entry == e {
		return
	}
	if m.active != nil {
		plug.Suspend(m.active.plugin)
		m.active = nil
	}
	if !ok {
		return
	}

	inst := m.instance(e, nil)
	plug.Resume(inst.plugin)
	m.active = inst
	m.log.Info("plugin active", "plugin", e.Name(), "instance", inst.id.String())
}

// activeSpecials returns the instances of the specials whose predicate
// holds, suspending those that stopped being active.
func (m *Manager) activeSpecials() []*instance {
	entries := m.registry.ActiveSpecials()
	now := make(map[*plug.Entry]*instance, len(entries))
	out := make([]*instance, 0, len(entries))
	for _, e := range entries {
		inst := m.instance(e, now)
		if _, was := m.specials[e]; !was {
			plug.Resume(inst.plugin)
		}
		now[e] = inst
		out = append(out, inst)
	}
	for e, inst := range m.specials {
		if _, still := now[e]; !still {
			plug.Suspend(inst.plugin)
		}
	}
	m.specials = now
	return out
}

// instance returns the cached instance for e, creating it over a fresh
// shadow when needed and evicting the least recently used one beyond
// MaxCached. Instances in pinned are never evicted.
func (m *Manager) instance(e *plug.Entry, pinned map[*plug.Entry]*instance) *instance {
	m.clock++
	if inst, ok := m.cache[e]; ok {
		inst.lastUsed = m.clock
		return inst
	}

	inst := &instance{id: uuid.New(), entry: e, lastUsed: m.clock}
	inst.plugin = e.Create(surface.NewShadow(m.device))
	m.cache[e] = inst
	m.log.Debug("plugin created", "plugin", e.Name(), "kind", e.Kind().String(), "instance", inst.id.String())

	for len(m.cache) > m.opts.MaxCached {
		if !m.evict(inst, pinned) {
			break
		}
	}
	return inst
}

// evict releases the least recently used instance other than keep, the
// active plugin, active specials and pinned. It reports false when every
// instance is protected.
func (m *Manager) evict(keep *instance, pinned map[*plug.Entry]*instance) bool {
	var victim *instance
	for _, inst := range m.cache {
		if inst == keep || inst == m.active {
			continue
		}
		if _, special := m.specials[inst.entry]; special {
			continue
		}
		if _, pin := pinned[inst.entry]; pin {
			continue
		}
		if victim == nil || inst.lastUsed < victim.lastUsed {
			victim = inst
		}
	}
	if victim == nil {
		return false
	}
	m.log.Debug("plugin evicted", "plugin", victim.entry.Name(), "instance", victim.id.String())
	m.release(victim)
	delete(m.cache, victim.entry)
	return true
}

func (m *Manager) release(inst *instance) {
	m.call(inst, "release", func() {
		plug.Suspend(inst.plugin)
		plug.Release(inst.plugin)
	})
}

func (m *Manager) processEvent(inst *instance, ev surface.Event, ctx filter.Context) (handled bool) {
	m.call(inst, "event", func() { handled = inst.plugin.ProcessEvent(ev, ctx) })
	return handled
}

// call runs fn, recovering a plugin panic when IsolatePanics is set.
func (m *Manager) call(inst *instance, op string, fn func()) {
	if m.opts.IsolatePanics {
		defer func() {
			if r := recover(); r != nil {
				m.log.Error("plugin panic",
					"plugin", inst.entry.Name(),
					"instance", inst.id.String(),
					"op", op,
					"panic", fmt.Sprint(r),
				)
			}
		}()
	}
	fn()
}
