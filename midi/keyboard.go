package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"surfplug/surface"
)

// KeyboardController handles a generic MIDI keyboard controller (input only)
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	events chan surface.RawEvent
}

// NewKeyboardController creates a keyboard controller
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
		events: make(chan surface.RawEvent, eventBuffer),
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			if raw, ok := FromMessage(msg); ok {
				push(kb.events, raw)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) Events() <-chan surface.RawEvent {
	return kb.events
}

// Render is a no-op for keyboards (no visual feedback)
func (kb *KeyboardController) Render([]surface.State) error {
	return nil
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.events)
	return nil
}
