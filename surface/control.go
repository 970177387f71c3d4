package surface

// MIDI status nibbles used by patterns.
const (
	StatusNoteOff       uint8 = 0x80
	StatusNoteOn        uint8 = 0x90
	StatusPolyPressure  uint8 = 0xA0
	StatusControlChange uint8 = 0xB0
	StatusPitchBend     uint8 = 0xE0
)

// AnyChannel matches a raw event on any MIDI channel.
const AnyChannel = -1

// Pattern describes which raw events belong to a control.
type Pattern struct {
	Status  uint8 // status nibble, e.g. StatusNoteOn
	Channel int   // 0-15, or AnyChannel
	Data1   uint8 // note or controller number
}

// IsZero reports whether the pattern is unset. Controls with no pattern
// cannot be reached by raw events.
func (p Pattern) IsZero() bool { return p.Status == 0 }

// Matches reports whether raw belongs to the pattern. Note-off is treated as
// note-on with zero velocity.
func (p Pattern) Matches(raw RawEvent) bool {
	if p.IsZero() {
		return false
	}
	kind := raw.Kind()
	if kind == StatusNoteOff {
		kind = StatusNoteOn
	}
	want := p.Status & 0xF0
	if want == StatusNoteOff {
		want = StatusNoteOn
	}
	if kind != want {
		return false
	}
	if p.Channel != AnyChannel && int(raw.Channel()) != p.Channel {
		return false
	}
	// Pitch bend carries its value in both data bytes.
	if kind == StatusPitchBend {
		return true
	}
	return raw.Data1 == p.Data1
}

// Raw builds the event a control with this pattern sends for value v in
// [0, 1]. Patterns on any channel use channel 1.
func (p Pattern) Raw(v float64) RawEvent {
	v = min(max(v, 0), 1)
	ch := uint8(0)
	if p.Channel != AnyChannel {
		ch = uint8(p.Channel) & 0x0F
	}
	status := p.Status&0xF0 | ch
	if status&0xF0 == StatusPitchBend {
		n := uint16(v*16383 + 0.5)
		return RawEvent{Status: status, Data1: uint8(n & 0x7F), Data2: uint8(n >> 7)}
	}
	return RawEvent{Status: status, Data1: p.Data1, Data2: uint8(v*127 + 0.5)}
}

// Spec declares one control of a device.
type Spec struct {
	Type    Type
	Coord   Coord
	Pattern Pattern
}

// Control is one physical control. Its identity never changes. Its visual
// state can only be written through a ControlShadow obtained by claiming it.
type Control struct {
	id      ID
	pattern Pattern

	color      Color
	annotation string
	value      float64
	claims     int // number of shadows whose ledger holds this control
}

func (c *Control) ID() ID             { return c.id }
func (c *Control) Coord() Coord       { return c.id.Coord }
func (c *Control) Type() Type         { return c.id.Type }
func (c *Control) Pattern() Pattern   { return c.pattern }
func (c *Control) Color() Color       { return c.color }
func (c *Control) Annotation() string { return c.annotation }
func (c *Control) Value() float64     { return c.value }
func (c *Control) Claimed() bool      { return c.claims > 0 }
func (c *Control) String() string     { return c.id.String() }

func (c *Control) State() State {
	return State{
		ID:         c.id,
		Color:      c.color,
		Annotation: c.annotation,
		Value:      c.value,
		Claimed:    c.claims > 0,
	}
}

// State is a copy of a control's visual state, as read by renderers.
type State struct {
	ID         ID
	Color      Color
	Annotation string
	Value      float64
	Claimed    bool
}
