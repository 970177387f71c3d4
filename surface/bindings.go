package surface

import "surfplug/filter"

// EventFunc handles an input event on a bound control. It returns whether
// the event was handled. idx is the focused target.
type EventFunc func(c *ControlShadow, ev Event, idx filter.Index) bool

// TickFunc refreshes the visual state of a bound control.
type TickFunc func(c *ControlShadow, idx filter.Index)

// which visual fields a binding has written
type fieldSet uint8

const (
	fieldColor fieldSet = 1 << iota
	fieldAnnotation
	fieldValue
)

// binding is one entry of a shadow's binding registry.
type binding struct {
	shadow *Shadow
	ctl    *Control
	slot   int
	handle *ControlShadow

	onEvent     EventFunc
	onTick      TickFunc
	eventGuards filter.Chain
	tickGuards  filter.Chain

	released bool

	// last values written through this binding, replayed when a dormant
	// shadow becomes live
	written    fieldSet
	color      Color
	annotation string
	value      float64
}

func (b *binding) setColor(c Color) {
	b.color = c
	b.written |= fieldColor
	if b.shadow.live {
		b.ctl.color = c
	}
}

func (b *binding) setAnnotation(s string) {
	b.annotation = s
	b.written |= fieldAnnotation
	if b.shadow.live {
		b.ctl.annotation = s
	}
}

func (b *binding) setValue(v float64) {
	b.value = v
	b.written |= fieldValue
	if b.shadow.live {
		b.ctl.value = v
	}
}

// replay pushes every written field onto the control.
func (b *binding) replay() {
	if b.written&fieldColor != 0 {
		b.ctl.color = b.color
	}
	if b.written&fieldAnnotation != 0 {
		b.ctl.annotation = b.annotation
	}
	if b.written&fieldValue != 0 {
		b.ctl.value = b.value
	}
}

// bindings maps claimed identities to callbacks, keeping registration order
// for ticks.
type bindings struct {
	byID  map[ID]*binding
	order []*binding
}

func newBindings() bindings {
	return bindings{byID: make(map[ID]*binding)}
}

func (r *bindings) add(b *binding) {
	r.byID[b.ctl.id] = b
	r.order = append(r.order, b)
}

func (r *bindings) get(id ID) *binding {
	return r.byID[id]
}

func (r *bindings) len() int {
	return len(r.order)
}

// releaseAll marks every binding dead and empties the registry.
func (r *bindings) releaseAll() {
	for _, b := range r.order {
		b.released = true
	}
	r.byID = make(map[ID]*binding)
	r.order = nil
}
