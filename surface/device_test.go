package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceSortsByCoord(t *testing.T) {
	d := testDevice(t)

	controls := d.Controls()
	require.Len(t, controls, d.Len())
	for i := 1; i < len(controls); i++ {
		assert.Negative(t, controls[i-1].ID().Compare(controls[i].ID()))
	}
	assert.Equal(t, 3, d.Count(TypeFader))
	assert.Equal(t, 2, d.Count(TypeDirection))
}

func TestNewDeviceRejectsDuplicates(t *testing.T) {
	p := Pattern{Status: StatusNoteOn, Data1: 1}

	_, err := NewDevice("dup-id", []Spec{
		{Type: TypePad, Coord: Coord{0, 0}, Pattern: p},
		{Type: TypePad, Coord: Coord{0, 0}},
	})
	assert.ErrorIs(t, err, ErrDuplicateControl)

	_, err = NewDevice("dup-pattern", []Spec{
		{Type: TypePad, Coord: Coord{0, 0}, Pattern: p},
		{Type: TypePad, Coord: Coord{0, 1}, Pattern: p},
	})
	assert.ErrorIs(t, err, ErrDuplicateControl)

	overlapping := []struct {
		name string
		a, b Pattern
	}{
		{"any channel", Pattern{Status: StatusNoteOn, Channel: AnyChannel, Data1: 60}, Pattern{Status: StatusNoteOn, Channel: 0, Data1: 60}},
		{"note off", Pattern{Status: StatusNoteOff, Channel: 2, Data1: 60}, Pattern{Status: StatusNoteOn, Channel: 2, Data1: 60}},
		{"pitch bend", Pattern{Status: StatusPitchBend, Channel: 3}, Pattern{Status: StatusPitchBend, Channel: AnyChannel, Data1: 5}},
	}
	for _, tt := range overlapping {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDevice(tt.name, []Spec{
				{Type: TypeNote, Coord: Coord{0, 0}, Pattern: tt.a},
				{Type: TypeNote, Coord: Coord{0, 1}, Pattern: tt.b},
			})
			assert.ErrorIs(t, err, ErrDuplicateControl)
		})
	}

	_, err = NewDevice("split channels", []Spec{
		{Type: TypeWheel, Coord: Coord{0, 0}, Pattern: Pattern{Status: StatusPitchBend, Channel: 0}},
		{Type: TypeWheel, Coord: Coord{0, 1}, Pattern: Pattern{Status: StatusPitchBend, Channel: 1}},
	})
	assert.NoError(t, err, "distinct channels do not overlap")

	_, err = NewDevice("no-type", []Spec{{Coord: Coord{0, 0}}})
	assert.Error(t, err)

	// Controls without a pattern are allowed and never matched.
	d, err := NewDevice("virtual", []Spec{
		{Type: TypeFader, Coord: Coord{0, 0}},
		{Type: TypeFader, Coord: Coord{0, 1}},
	})
	require.NoError(t, err)
	_, ok := d.Match(RawEvent{})
	assert.False(t, ok)
}

func TestMatchNotes(t *testing.T) {
	d, err := NewDevice("keys", []Spec{
		{Type: TypeNote, Coord: Coord{0, 60}, Pattern: Pattern{Status: StatusNoteOn, Channel: 0, Data1: 60}},
		{Type: TypeNote, Coord: Coord{1, 60}, Pattern: Pattern{Status: StatusNoteOn, Channel: 1, Data1: 60}},
		{Type: TypeWheel, Coord: Coord{2, 0}, Pattern: Pattern{Status: StatusPitchBend, Channel: AnyChannel}},
	})
	require.NoError(t, err)

	ev, ok := d.Match(RawEvent{Status: 0x91, Data1: 60, Data2: 127})
	require.True(t, ok)
	assert.Equal(t, Coord{1, 60}, ev.Control.Coord())
	assert.Equal(t, 1.0, ev.Value)
	assert.True(t, ev.Pressed())

	ev, ok = d.Match(RawEvent{Status: 0x80, Data1: 60, Data2: 64})
	require.True(t, ok, "note off matches the note-on pattern")
	assert.Equal(t, Coord{0, 60}, ev.Control.Coord())
	assert.Zero(t, ev.Value)

	_, ok = d.Match(RawEvent{Status: 0x92, Data1: 60, Data2: 1})
	assert.False(t, ok)

	ev, ok = d.Match(RawEvent{Status: 0xE5, Data1: 0x7F, Data2: 0x7F})
	require.True(t, ok)
	assert.Equal(t, TypeWheel, ev.Control.Type())
	assert.Equal(t, 1.0, ev.Value)
}

func TestLookupAndSnapshot(t *testing.T) {
	d := testDevice(t)
	s := NewShadow(d)
	s.BindMatch(TypeSwitch, handled).Colorize(ColorWhite).Annotate("page")

	id := ID{Coord: Coord{2, 0}, Type: TypeSwitch}
	c, ok := d.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, "switch@2:0", c.String())

	for _, st := range d.Snapshot() {
		if st.ID == id {
			assert.Equal(t, ColorWhite, st.Color)
			assert.Equal(t, "page", st.Annotation)
			assert.True(t, st.Claimed)
		} else {
			assert.False(t, st.Claimed)
		}
	}
}

func TestColor(t *testing.T) {
	c := ColorFromInt(0x12AB34)
	assert.Equal(t, Color{0x12, 0xAB, 0x34}, c)
	assert.Equal(t, uint32(0x12AB34), c.Int())
	assert.Equal(t, "#12ab34", c.Hex())

	parsed, err := ParseColor("#12ab34")
	require.NoError(t, err)
	assert.Equal(t, c, parsed)

	_, err = ParseColor("nope")
	assert.Error(t, err)

	assert.Equal(t, c, c.Fade(ColorWhite, 0))
	assert.Equal(t, ColorWhite, c.Fade(ColorWhite, 1))
	assert.Equal(t, ColorWhite, c.Fade(ColorWhite, 7), "t is clamped")
	assert.True(t, ColorWhite.Dim(0).IsOff())
	assert.Equal(t, ColorWhite, ColorWhite.Dim(1))
}

func TestPatternRaw(t *testing.T) {
	cc := Pattern{Status: StatusControlChange, Channel: 3, Data1: 7}
	raw := cc.Raw(1)
	assert.Equal(t, RawEvent{Status: 0xB3, Data1: 7, Data2: 127}, raw)
	assert.True(t, cc.Matches(raw))

	note := Pattern{Status: StatusNoteOn, Channel: AnyChannel, Data1: 36}
	assert.Equal(t, RawEvent{Status: 0x90, Data1: 36}, note.Raw(-2))
	assert.InDelta(t, 0.5, note.Raw(0.5).Value(), 0.01)

	bend := Pattern{Status: StatusPitchBend, Channel: AnyChannel}
	assert.Equal(t, RawEvent{Status: 0xE0, Data1: 0x7F, Data2: 0x7F}, bend.Raw(1))
	assert.InDelta(t, 0.5, bend.Raw(0.5).Value(), 0.001)
}
