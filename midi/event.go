package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"surfplug/surface"
)

// FromMessage converts a channel voice message into a raw event. It reports
// false for messages no control can produce (sysex, clock...).
func FromMessage(msg gomidi.Message) (surface.RawEvent, bool) {
	var channel, data1, data2 uint8
	switch {
	case msg.GetNoteOn(&channel, &data1, &data2):
		return surface.RawEvent{Status: surface.StatusNoteOn | channel, Data1: data1, Data2: data2}, true
	case msg.GetNoteOff(&channel, &data1, &data2):
		return surface.RawEvent{Status: surface.StatusNoteOff | channel, Data1: data1, Data2: data2}, true
	case msg.GetControlChange(&channel, &data1, &data2):
		return surface.RawEvent{Status: surface.StatusControlChange | channel, Data1: data1, Data2: data2}, true
	case msg.GetPolyAfterTouch(&channel, &data1, &data2):
		return surface.RawEvent{Status: surface.StatusPolyPressure | channel, Data1: data1, Data2: data2}, true
	}

	var rel int16
	var abs uint16
	if msg.GetPitchBend(&channel, &rel, &abs) {
		return surface.RawEvent{
			Status: surface.StatusPitchBend | channel,
			Data1:  uint8(abs & 0x7F),
			Data2:  uint8(abs >> 7),
		}, true
	}
	return surface.RawEvent{}, false
}

// ToMessage converts a raw event back into a MIDI message. Unknown kinds
// give nil.
func ToMessage(raw surface.RawEvent) gomidi.Message {
	ch := raw.Channel()
	switch raw.Kind() {
	case surface.StatusNoteOn:
		return gomidi.NoteOn(ch, raw.Data1, raw.Data2)
	case surface.StatusNoteOff:
		return gomidi.NoteOffVelocity(ch, raw.Data1, raw.Data2)
	case surface.StatusControlChange:
		return gomidi.ControlChange(ch, raw.Data1, raw.Data2)
	case surface.StatusPolyPressure:
		return gomidi.PolyAfterTouch(ch, raw.Data1, raw.Data2)
	case surface.StatusPitchBend:
		abs := uint16(raw.Data2)<<7 | uint16(raw.Data1)
		return gomidi.Pitchbend(ch, int16(abs)-8192)
	default:
		return nil
	}
}
