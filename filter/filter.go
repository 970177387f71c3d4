package filter

import "slices"

// Context is the runtime state a guard is evaluated against.
type Context struct {
	// Index is the focused target. Nil when nothing is focused.
	Index Index

	// Plugin is the name of the focused plugin, empty when the focus is a
	// window or nothing.
	Plugin string

	// Tick is true when the callback being guarded is a tick callback.
	Tick bool

	// Value is the event payload in the range [0, 1]. Zero for ticks.
	Value float64
}

// ForEvent returns a copy of c describing an input event with value v.
func (c Context) ForEvent(v float64) Context {
	c.Tick = false
	c.Value = v
	return c
}

// ForTick returns a copy of c describing a tick.
func (c Context) ForTick() Context {
	c.Tick = true
	c.Value = 0
	return c
}

// Guard reports whether a callback may run in the given context.
// Guards must not mutate any shared state.
type Guard func(ctx Context) bool

// Chain is an ordered list of guards combined with logical AND.
type Chain []Guard

// Allows evaluates every guard in order and stops at the first failure.
// An empty chain allows everything.
func (c Chain) Allows(ctx Context) bool {
	for _, g := range c {
		if g == nil {
			continue
		}
		if !g(ctx) {
			return false
		}
	}
	return true
}

// Then returns a new chain with guards appended. The receiver is not
// modified.
func (c Chain) Then(guards ...Guard) Chain {
	out := make(Chain, 0, len(c)+len(guards))
	out = append(out, c...)
	return append(out, guards...)
}

// All combines guards into a single guard that passes when all of them pass.
func All(guards ...Guard) Guard {
	chain := Chain(guards)
	return chain.Allows
}

// Any passes when at least one of guards passes.
func Any(guards ...Guard) Guard {
	return func(ctx Context) bool {
		for _, g := range guards {
			if g != nil && g(ctx) {
				return true
			}
		}
		return false
	}
}

// Not inverts g.
func Not(g Guard) Guard {
	return func(ctx Context) bool { return !g(ctx) }
}

// ToPluginIndex passes when a plugin (generator or effect) is focused.
func ToPluginIndex(ctx Context) bool {
	_, ok := ctx.Index.(PluginIndex)
	return ok
}

// ToGeneratorIndex passes when a generator plugin is focused.
func ToGeneratorIndex(ctx Context) bool {
	_, ok := ctx.Index.(GeneratorIndex)
	return ok
}

// ToEffectIndex passes when an effect plugin is focused.
func ToEffectIndex(ctx Context) bool {
	_, ok := ctx.Index.(EffectIndex)
	return ok
}

// ToWindowIndex passes when a window is focused.
func ToWindowIndex(ctx Context) bool {
	_, ok := ctx.Index.(WindowIndex)
	return ok
}

// ToSafeIndex passes when anything at all is focused.
func ToSafeIndex(ctx Context) bool {
	return ctx.Index != nil
}

// ToWindow passes when one of the given windows is focused.
func ToWindow(ids ...WindowIndex) Guard {
	return func(ctx Context) bool {
		w, ok := ctx.Index.(WindowIndex)
		return ok && slices.Contains(ids, w)
	}
}

// ToPlugin passes when the focused plugin has one of the given names.
func ToPlugin(names ...string) Guard {
	return func(ctx Context) bool {
		_, ok := ctx.Index.(PluginIndex)
		return ok && slices.Contains(names, ctx.Plugin)
	}
}

// SkipButtonLift drops button release events (value 0). Ticks always pass.
func SkipButtonLift(ctx Context) bool {
	return ctx.Tick || ctx.Value > 0
}
