package midi

import "surfplug/surface"

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerKeyboard
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// Controller is a connected MIDI surface: a source of raw events and a
// renderer for control state.
type Controller interface {
	ID() string
	Type() ControllerType

	// Input events, closed by Close
	Events() <-chan surface.RawEvent

	// Render shows the given control states. Controllers without LEDs
	// ignore it.
	Render(changed []surface.State) error

	// Lifecycle
	Close() error
}

// LEDUpdate is one LED write.
type LEDUpdate struct {
	Row, Col int
	Color    surface.Color
	Channel  uint8 // ChannelStatic or ChannelPulse
}

// Channel modes for LED writes
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)

// eventBuffer is the capacity of controller event channels
const eventBuffer = 64

// push hands ev to ch without blocking the MIDI driver thread. Events are
// dropped when the dispatch loop falls behind.
func push(ch chan<- surface.RawEvent, ev surface.RawEvent) bool {
	select {
	case ch <- ev:
		return true
	default:
		return false
	}
}
