// Package surface models a control surface and the per-plugin claims over it.
//
// A Device is the fixed pool of Controls of one physical surface. Plugins
// never touch a Device directly: each gets a Shadow, a claim ledger layered
// over the device. Claiming a control through a Shadow returns a
// ControlShadow, the only handle that can write the control's visual state.
//
// Everything in this package is single-threaded. The caller (host.Manager)
// must process one event or tick at a time.
package surface

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrDuplicateControl is returned when two specs share an identity or
	// their patterns can match the same raw event.
	ErrDuplicateControl = errors.New("duplicate control")

	// ErrReentrantDispatch is the panic value raised when a callback starts
	// another dispatch on the shadow that is calling it.
	ErrReentrantDispatch = errors.New("re-entrant dispatch")
)

// Device is the fixed pool of controls of one surface.
type Device struct {
	name     string
	controls []*Control // sorted by ID
	byID     map[ID]*Control
	byKey    map[patternKey][]*Control
}

type patternKey struct {
	status uint8
	data1  uint8
}

func keyOf(status, data1 uint8) patternKey {
	status &= 0xF0
	if status == StatusNoteOff {
		status = StatusNoteOn
	}
	if status == StatusPitchBend {
		data1 = 0
	}
	return patternKey{status: status, data1: data1}
}

// NewDevice builds a device from specs. Controls are ordered by coordinate
// regardless of the order of specs.
func NewDevice(name string, specs []Spec) (*Device, error) {
	d := &Device{
		name:  name,
		byID:  make(map[ID]*Control, len(specs)),
		byKey: make(map[patternKey][]*Control),
	}

	type claim struct {
		channel int
		id      ID
	}
	seenKey := make(map[patternKey][]claim, len(specs))
	for _, s := range specs {
		id := ID{Coord: s.Coord, Type: s.Type}
		if s.Type == "" {
			return nil, fmt.Errorf("control at %s: empty type", s.Coord)
		}
		if _, dup := d.byID[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateControl, id)
		}
		if !s.Pattern.IsZero() {
			k := keyOf(s.Pattern.Status, s.Pattern.Data1)
			for _, other := range seenKey[k] {
				if channelsOverlap(other.channel, s.Pattern.Channel) {
					return nil, fmt.Errorf("%w: %s and %s share a pattern", ErrDuplicateControl, other.id, id)
				}
			}
			seenKey[k] = append(seenKey[k], claim{channel: s.Pattern.Channel, id: id})
		}

		c := &Control{id: id, pattern: s.Pattern}
		d.byID[id] = c
		d.controls = append(d.controls, c)
	}

	slices.SortFunc(d.controls, func(a, b *Control) int { return a.id.Compare(b.id) })
	for _, c := range d.controls {
		if c.pattern.IsZero() {
			continue
		}
		k := keyOf(c.pattern.Status, c.pattern.Data1)
		d.byKey[k] = append(d.byKey[k], c)
	}

	return d, nil
}

// channelsOverlap reports whether two pattern channels can match the same
// raw event.
func channelsOverlap(a, b int) bool {
	return a == AnyChannel || b == AnyChannel || a == b
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Len returns the number of controls.
func (d *Device) Len() int { return len(d.controls) }

// Controls returns the controls in coordinate order. The slice is a copy;
// the controls are shared and read-only to callers outside this package.
func (d *Device) Controls() []*Control {
	return slices.Clone(d.controls)
}

// Lookup finds a control by identity.
func (d *Device) Lookup(id ID) (*Control, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// Match resolves a raw event to a control. It reports false when no control
// of the device produces raw.
func (d *Device) Match(raw RawEvent) (Event, bool) {
	for _, c := range d.byKey[keyOf(raw.Status, raw.Data1)] {
		if c.pattern.Matches(raw) {
			return Event{Control: c, Value: raw.Value(), Raw: raw}, true
		}
	}
	return Event{}, false
}

// Snapshot copies the visual state of every control, in coordinate order.
func (d *Device) Snapshot() []State {
	out := make([]State, len(d.controls))
	for i, c := range d.controls {
		out[i] = c.State()
	}
	return out
}

// Count returns how many controls of type t (including subtypes) exist.
func (d *Device) Count(t Type) int {
	n := 0
	for _, c := range d.controls {
		if c.id.Type.Is(t) {
			n++
		}
	}
	return n
}
