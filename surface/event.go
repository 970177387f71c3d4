package surface

import "fmt"

// RawEvent is a discrete input event from the hardware, before it has been
// resolved to a control.
type RawEvent struct {
	Status uint8
	Data1  uint8
	Data2  uint8
}

// Kind returns the status nibble.
func (r RawEvent) Kind() uint8 { return r.Status & 0xF0 }

// Channel returns the MIDI channel.
func (r RawEvent) Channel() uint8 { return r.Status & 0x0F }

// Value returns the payload normalised to [0, 1].
func (r RawEvent) Value() float64 {
	switch r.Kind() {
	case StatusNoteOff:
		return 0
	case StatusPitchBend:
		return float64(uint16(r.Data2)<<7|uint16(r.Data1)) / 16383
	default:
		return float64(r.Data2) / 127
	}
}

func (r RawEvent) String() string {
	return fmt.Sprintf("%02X %02X %02X", r.Status, r.Data1, r.Data2)
}

// Event is a raw event resolved to the control it belongs to.
type Event struct {
	Control *Control
	Value   float64
	Raw     RawEvent
}

// Pressed reports whether the event is a press rather than a release.
func (e Event) Pressed() bool {
	return e.Value > 0
}
