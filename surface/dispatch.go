package surface

import "surfplug/filter"

// DispatchEvent delivers ev to the callback bound to its control. It reports
// false when the control is not bound through this shadow, when a guard
// blocks the callback, or when the callback itself declines the event.
func (s *Shadow) DispatchEvent(ev Event, ctx filter.Context) bool {
	if ev.Control == nil {
		return false
	}
	b := s.bindings.get(ev.Control.id)
	if b == nil || b.ctl != ev.Control || b.onEvent == nil {
		return false
	}

	ctx = ctx.ForEvent(ev.Value)
	if !b.eventGuards.Allows(ctx) {
		return false
	}

	s.enter()
	defer s.leave()
	return b.onEvent(b.handle, ev, ctx.Index)
}

// DispatchRaw resolves raw against the device and dispatches the result.
func (s *Shadow) DispatchRaw(raw RawEvent, ctx filter.Context) bool {
	ev, ok := s.device.Match(raw)
	if !ok {
		return false
	}
	return s.DispatchEvent(ev, ctx)
}

// DispatchTick runs every tick callback in registration order, each behind
// its own guards.
func (s *Shadow) DispatchTick(ctx filter.Context) {
	ctx = ctx.ForTick()

	s.enter()
	defer s.leave()

	for _, b := range s.bindings.order {
		if b.onTick == nil || b.released {
			continue
		}
		if !b.tickGuards.Allows(ctx) {
			continue
		}
		b.onTick(b.handle, ctx.Index)
	}
}

func (s *Shadow) enter() {
	if s.dispatching {
		panic(ErrReentrantDispatch)
	}
	s.dispatching = true
}

func (s *Shadow) leave() {
	s.dispatching = false
}
