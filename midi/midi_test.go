package midi

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"surfplug/surface"
)

func TestFromMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want surface.RawEvent
	}{
		{"note on", gomidi.NoteOn(2, 60, 100), surface.RawEvent{Status: 0x92, Data1: 60, Data2: 100}},
		{"control change", gomidi.ControlChange(0, 91, 127), surface.RawEvent{Status: 0xB0, Data1: 91, Data2: 127}},
		{"pitch bend centre", gomidi.Pitchbend(1, 0), surface.RawEvent{Status: 0xE1, Data1: 0x00, Data2: 0x40}},
		{"poly aftertouch", gomidi.PolyAfterTouch(0, 40, 9), surface.RawEvent{Status: 0xA0, Data1: 40, Data2: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromMessage(tt.msg)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	off, ok := FromMessage(gomidi.NoteOff(0, 60))
	require.True(t, ok)
	assert.Equal(t, uint8(60), off.Data1)
	assert.Zero(t, off.Value())

	_, ok = FromMessage(gomidi.SysEx([]byte{0x00, 0x20, 0x29}))
	assert.False(t, ok)
}

func TestToMessageRoundTrip(t *testing.T) {
	for _, raw := range []surface.RawEvent{
		{Status: 0x90, Data1: 36, Data2: 127},
		{Status: 0xB3, Data1: 64, Data2: 0},
		{Status: 0xE0, Data1: 0x7F, Data2: 0x7F},
	} {
		back, ok := FromMessage(ToMessage(raw))
		require.True(t, ok, raw.String())
		assert.Equal(t, raw, back)
	}
	assert.Nil(t, ToMessage(surface.RawEvent{Status: 0xF0}))
}

func TestLaunchpadXLayout(t *testing.T) {
	d, err := LaunchpadXLayout().Device()
	require.NoError(t, err)

	assert.Equal(t, 64, d.Count(surface.TypePad))
	assert.Equal(t, 1, d.Count(surface.TypeSwitch))
	assert.Equal(t, 7, d.Count(surface.TypeDirection))
	assert.Equal(t, 64+8+8, d.Len())

	ev, ok := d.Match(surface.RawEvent{Status: 0x90, Data1: 11, Data2: 127})
	require.True(t, ok)
	assert.Equal(t, surface.Coord{Group: 0, Index: 0}, ev.Control.Coord())

	ev, ok = d.Match(surface.RawEvent{Status: 0xB0, Data1: 89, Data2: 127})
	require.True(t, ok)
	assert.Equal(t, surface.TypeSwitch, ev.Control.Type())

	ev, ok = d.Match(surface.RawEvent{Status: 0xB0, Data1: 91, Data2: 127})
	require.True(t, ok)
	assert.Equal(t, surface.TypeDirectionUp, ev.Control.Type())
	assert.Equal(t, surface.Coord{Group: 8, Index: 0}, ev.Control.Coord())

	_, ok = d.Match(surface.RawEvent{Status: 0xB0, Data1: 1, Data2: 127})
	assert.False(t, ok)
}

func TestKeyboardLayout(t *testing.T) {
	d, err := KeyboardLayout().Device()
	require.NoError(t, err)

	assert.Equal(t, 8, d.Count(surface.TypeFader))
	assert.Equal(t, 16, d.Count(surface.TypePad))
	assert.Equal(t, 1, d.Count(surface.TypePedal))

	ev, ok := d.Match(surface.RawEvent{Status: 0xE5, Data1: 0x12, Data2: 0x40})
	require.True(t, ok, "pitch bend on any channel hits the wheel")
	assert.Equal(t, surface.TypeWheel, ev.Control.Type())

	_, ok = d.Match(surface.RawEvent{Status: 0x90, Data1: 36, Data2: 100})
	assert.False(t, ok, "pads listen on channel 10 only")
	_, ok = d.Match(surface.RawEvent{Status: 0x99, Data1: 36, Data2: 100})
	assert.True(t, ok)
}

func TestLayoutByName(t *testing.T) {
	l, err := LayoutByName("keyboard")
	require.NoError(t, err)
	assert.Equal(t, "keyboard", l.Name)

	_, err = LayoutByName("mpk")
	assert.ErrorContains(t, err, "launchpad-x")
	assert.Equal(t, []string{"keyboard", "launchpad-x"}, LayoutNames())
}

func TestLaunchpadNoteMapping(t *testing.T) {
	assert.Equal(t, uint8(11), rowColToNote(0, 0))
	assert.Equal(t, uint8(88), rowColToNote(7, 7))
	assert.Equal(t, uint8(89), rowColToNote(7, 8))
	assert.Equal(t, uint8(98), rowColToNote(8, 7))
}

func TestMapRGBToLaunchpad(t *testing.T) {
	assert.Equal(t, uint8(0), mapRGBToLaunchpad(surface.ColorOff))
	assert.Equal(t, uint8(5), mapRGBToLaunchpad(surface.ColorFromInt(0xFF0000)))
	assert.Equal(t, uint8(21), mapRGBToLaunchpad(surface.ColorFromInt(0x00FF00)))
	assert.Equal(t, uint8(119), mapRGBToLaunchpad(surface.ColorWhite))
	assert.Equal(t, uint8(2), mapRGBToLaunchpad(surface.ColorBound))
	assert.Equal(t, uint8(1), mapRGBToLaunchpad(surface.ColorDisabled))
}

func TestLaunchpadRender(t *testing.T) {
	var sent []gomidi.Message
	lp := &LaunchpadController{
		send:   func(msg gomidi.Message) error { sent = append(sent, msg); return nil },
		events: make(chan surface.RawEvent, 1),
	}
	lp.log = slog.New(slog.DiscardHandler)

	states := []surface.State{
		{ID: surface.ID{Coord: surface.Coord{Group: 0, Index: 0}, Type: surface.TypePad}, Color: surface.ColorFromInt(0xFF0000)},
		{ID: surface.ID{Coord: surface.Coord{Group: 7, Index: 8}, Type: surface.TypeSwitch}, Color: surface.ColorWhite, Value: 1},
		{ID: surface.ID{Coord: surface.Coord{Group: 12, Index: 0}, Type: surface.TypeFader}},
	}
	require.NoError(t, lp.Render(states))
	require.Len(t, sent, 2, "off-grid controls are skipped")

	var ch, key, vel uint8
	require.True(t, sent[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, []uint8{ChannelStatic, 11, 5}, []uint8{ch, key, vel})
	require.True(t, sent[1].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, []uint8{ChannelPulse, 89, 119}, []uint8{ch, key, vel})

	sent = nil
	require.NoError(t, lp.Close())
	assert.Len(t, sent, 80, "close clears every LED")
	_, open := <-lp.Events()
	assert.False(t, open)
}

func TestLaunchpadReceive(t *testing.T) {
	lp := &LaunchpadController{events: make(chan surface.RawEvent, 1), log: slog.New(slog.DiscardHandler)}

	lp.receive(gomidi.NoteOn(0, 11, 127), 0)
	lp.receive(gomidi.NoteOn(0, 12, 127), 0) // buffer full, dropped
	lp.receive(gomidi.SysEx([]byte{0x01}), 0)

	assert.Equal(t, surface.RawEvent{Status: 0x90, Data1: 11, Data2: 127}, <-lp.Events())
	assert.Equal(t, uint64(1), lp.dropped.Load())
}

// ---------------------------------------------------------------------------
// device manager
// ---------------------------------------------------------------------------

type fakeIn struct {
	drivers.In
	name string
}

func (p fakeIn) String() string { return p.name }

type fakeOut struct {
	drivers.Out
	name string
}

func (p fakeOut) String() string { return p.name }

type fakeController struct {
	id       string
	closed   bool
	rendered [][]surface.State
	err      error
}

func (c *fakeController) ID() string                      { return c.id }
func (c *fakeController) Type() ControllerType            { return ControllerKeyboard }
func (c *fakeController) Events() <-chan surface.RawEvent { return nil }

func (c *fakeController) Render(states []surface.State) error {
	c.rendered = append(c.rendered, states)
	return c.err
}

func (c *fakeController) Close() error {
	c.closed = true
	return nil
}

func TestDeviceManagerHotPlug(t *testing.T) {
	var ins []drivers.In
	var outs []drivers.Out
	dm := NewDeviceManager(DeviceManagerOptions{
		Match: "mpk",
		Ports: func() ([]drivers.In, []drivers.Out) { return ins, outs },
	})

	opened := map[string]*fakeController{}
	var gotOut drivers.Out
	dm.open = func(id string, _ drivers.In, out drivers.Out) (Controller, error) {
		gotOut = out
		c := &fakeController{id: id}
		opened[id] = c
		return c, nil
	}

	ins = []drivers.In{fakeIn{name: "MPK mini 3"}, fakeIn{name: "Other Synth"}}
	outs = []drivers.Out{fakeOut{name: "mpk MINI 3"}}
	ctx := context.Background()
	dm.scan(ctx)

	ev := <-dm.Events()
	assert.Equal(t, DeviceConnected, ev.Type)
	assert.Equal(t, "MPK mini 3", ev.ID)
	assert.NotNil(t, gotOut, "output matched case-insensitively")
	assert.Len(t, dm.Controllers(), 1)

	dm.scan(ctx)
	assert.Len(t, opened, 1, "already connected ports are not reopened")

	ins = nil
	dm.scan(ctx)
	ev = <-dm.Events()
	assert.Equal(t, DeviceDisconnected, ev.Type)
	assert.True(t, opened["MPK mini 3"].closed)
	assert.Empty(t, dm.Controllers())
}

func TestIsLaunchpad(t *testing.T) {
	assert.True(t, isLaunchpad("Launchpad X LPX MIDI"))
	assert.False(t, isLaunchpad("Launchpad X LPX DAW"))
	assert.False(t, isLaunchpad("MPK mini MIDI"))
}

func TestOutputs(t *testing.T) {
	pad := func(i int, c surface.Color) surface.State {
		return surface.State{ID: surface.ID{Coord: surface.Coord{Index: i}, Type: surface.TypePad}, Color: c}
	}
	red := surface.ColorFromInt(0xFF0000)

	o := NewOutputs(nil)
	require.NoError(t, o.Render([]surface.State{pad(1, red), pad(0, red)}))

	a := &fakeController{id: "a"}
	require.NoError(t, o.Add(a))
	require.Len(t, a.rendered, 1, "late controllers get a full redraw")
	assert.Equal(t, []surface.State{pad(0, red), pad(1, red)}, a.rendered[0])

	b := &fakeController{id: "b", err: errors.New("port gone")}
	assert.Error(t, o.Add(b))
	assert.Equal(t, 2, o.Len())

	err := o.Render([]surface.State{pad(0, surface.ColorOff)})
	assert.ErrorContains(t, err, "b: port gone")
	assert.Len(t, a.rendered, 2)

	o.Remove("b")
	require.NoError(t, o.Render([]surface.State{pad(1, surface.ColorOff)}))
	assert.Len(t, b.rendered, 2)
	assert.Equal(t, 1, o.Len())
}
