package surface

import "surfplug/filter"

// Shadow is a claim ledger over a Device, owned by one plugin (or one pager
// page). A control claimed through a shadow can never be claimed again
// through the same shadow, but stays claimable through any other shadow
// over the same device.
//
// A shadow is live by default. Writes made through the handles of a dormant
// shadow are remembered and only reach the controls once it is made live
// again with SetLive.
type Shadow struct {
	device   *Device
	claimed  map[ID]struct{}
	bindings bindings

	live        bool
	dispatching bool
}

// NewShadow creates an empty, live shadow over d.
func NewShadow(d *Device) *Shadow {
	return &Shadow{
		device:   d,
		claimed:  make(map[ID]struct{}),
		bindings: newBindings(),
		live:     true,
	}
}

// Device returns the device the shadow is layered over.
func (s *Shadow) Device() *Device { return s.device }

// Copy returns a new live shadow over the same device with an empty claim
// ledger and no bindings.
func (s *Shadow) Copy() *Shadow {
	return NewShadow(s.device)
}

// Live reports whether writes reach the controls.
func (s *Shadow) Live() bool { return s.live }

// SetLive switches the shadow between live and dormant. Going live replays
// every field previously written through the shadow's handles.
func (s *Shadow) SetLive(live bool) {
	if live && !s.live {
		for _, b := range s.bindings.order {
			b.replay()
		}
	}
	s.live = live
}

// Blank turns off every control bound through the shadow: color off, empty
// annotation, value zero. Remembered values are kept, so a later SetLive
// restores them.
func (s *Shadow) Blank() {
	for _, b := range s.bindings.order {
		b.ctl.color = ColorOff
		b.ctl.annotation = ""
		b.ctl.value = 0
	}
}

// Reset releases every claim and binding. Handles issued before Reset
// become inert.
func (s *Shadow) Reset() {
	for id := range s.claimed {
		if c, ok := s.device.byID[id]; ok && c.claims > 0 {
			c.claims--
		}
	}
	s.claimed = make(map[ID]struct{})
	s.bindings.releaseAll()
}

// IsClaimed reports whether id is claimed in this shadow.
func (s *Shadow) IsClaimed(id ID) bool {
	_, ok := s.claimed[id]
	return ok
}

// Bound returns a handle for every binding, in registration order.
func (s *Shadow) Bound() ControlShadows {
	out := make(ControlShadows, len(s.bindings.order))
	for i, b := range s.bindings.order {
		out[i] = b.handle
	}
	return out
}

// Len returns the number of bound controls.
func (s *Shadow) Len() int { return s.bindings.len() }

// BindOption configures a bind call.
type BindOption func(*bindConfig)

type bindConfig struct {
	onTick      TickFunc
	tickGuards  filter.Chain
	eventGuards filter.Chain
	where       func(*Control) bool
	count       int
}

// WithTick registers a tick callback, guarded by guards.
func WithTick(fn TickFunc, guards ...filter.Guard) BindOption {
	return func(cfg *bindConfig) {
		cfg.onTick = fn
		cfg.tickGuards = cfg.tickGuards.Then(guards...)
	}
}

// WithFilter guards the event callback. Repeated use appends.
func WithFilter(guards ...filter.Guard) BindOption {
	return func(cfg *bindConfig) {
		cfg.eventGuards = cfg.eventGuards.Then(guards...)
	}
}

// Where restricts matching to controls satisfying pred.
func Where(pred func(*Control) bool) BindOption {
	return func(cfg *bindConfig) {
		cfg.where = pred
	}
}

// Count makes BindMatches return exactly n handles. Ignored by BindMatch.
func Count(n int) BindOption {
	return func(cfg *bindConfig) {
		cfg.count = max(n, 0)
	}
}

func newBindConfig(opts []BindOption) bindConfig {
	cfg := bindConfig{count: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// BindMatch claims the first control, in coordinate order, whose type is t
// (or a subtype of t), which this shadow has not claimed yet and which
// satisfies the Where option. It returns an unbound handle when nothing
// matches; that is not an error.
func (s *Shadow) BindMatch(t Type, on EventFunc, opts ...BindOption) *ControlShadow {
	cfg := newBindConfig(opts)
	return s.bindOne(t, on, &cfg, 0)
}

// BindMatches claims controls of type t until none are left. With Count(n)
// it makes exactly n attempts and returns n handles: bound ones first, then
// unbound ones.
func (s *Shadow) BindMatches(t Type, on EventFunc, opts ...BindOption) ControlShadows {
	cfg := newBindConfig(opts)

	if cfg.count >= 0 {
		out := make(ControlShadows, cfg.count)
		for i := range out {
			out[i] = s.bindOne(t, on, &cfg, i)
		}
		return out
	}

	var out ControlShadows
	for {
		c := s.bindOne(t, on, &cfg, len(out))
		if !c.IsBound() {
			return out
		}
		out = append(out, c)
	}
}

func (s *Shadow) bindOne(t Type, on EventFunc, cfg *bindConfig, slot int) *ControlShadow {
	c := s.find(t, cfg.where)
	if c == nil {
		return &ControlShadow{slot: slot}
	}

	s.claimed[c.id] = struct{}{}
	c.claims++

	b := &binding{
		shadow:      s,
		ctl:         c,
		slot:        slot,
		onEvent:     on,
		onTick:      cfg.onTick,
		eventGuards: cfg.eventGuards,
		tickGuards:  cfg.tickGuards,
	}
	b.handle = &ControlShadow{b: b, slot: slot}
	s.bindings.add(b)
	return b.handle
}

func (s *Shadow) find(t Type, where func(*Control) bool) *Control {
	for _, c := range s.device.controls {
		if !c.id.Type.Is(t) {
			continue
		}
		if _, taken := s.claimed[c.id]; taken {
			continue
		}
		if where != nil && !where(c) {
			continue
		}
		return c
	}
	return nil
}
