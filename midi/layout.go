package midi

import (
	"fmt"
	"sort"

	"surfplug/surface"
)

// Layout describes the controls of a MIDI surface.
type Layout struct {
	Name  string
	Specs []surface.Spec
}

// Device builds a device from the layout.
func (l Layout) Device() (*surface.Device, error) {
	d, err := surface.NewDevice(l.Name, l.Specs)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", l.Name, err)
	}
	return d, nil
}

var layouts = map[string]func() Layout{
	"launchpad-x": LaunchpadXLayout,
	"keyboard":    KeyboardLayout,
}

// LayoutByName returns a built-in layout.
func LayoutByName(name string) (Layout, error) {
	fn, ok := layouts[name]
	if !ok {
		return Layout{}, fmt.Errorf("unknown layout %q (have %v)", name, LayoutNames())
	}
	return fn(), nil
}

// LayoutNames lists the built-in layouts.
func LayoutNames() []string {
	names := make([]string, 0, len(layouts))
	for n := range layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func note(ch int, n uint8) surface.Pattern {
	return surface.Pattern{Status: surface.StatusNoteOn, Channel: ch, Data1: n}
}

func cc(ch int, n uint8) surface.Pattern {
	return surface.Pattern{Status: surface.StatusControlChange, Channel: ch, Data1: n}
}

// Launchpad X top row in programmer mode (CC 91-98)
var launchpadTopRow = [8]surface.Type{
	surface.TypeDirectionUp,
	surface.TypeDirectionDown,
	surface.TypeDirectionLeft,
	surface.TypeDirectionRight,
	surface.TypeDirectionSelect,   // Session
	surface.TypeDirectionPrevious, // Note
	surface.TypeDirectionNext,     // Custom
	surface.TypeButton,            // Capture MIDI
}

// LaunchpadXLayout is a Launchpad X in programmer mode. Coordinates are
// (row, col) with row 0 at the bottom:
//
//	rows 0-7, cols 0-7   pads, notes 11-88
//	rows 0-7, col 8      scene buttons, CC 19-89; the top one is the page switch
//	row 8, cols 0-7      top row, CC 91-98
func LaunchpadXLayout() Layout {
	var specs []surface.Spec
	for row := range 8 {
		for col := range 8 {
			specs = append(specs, surface.Spec{
				Type:    surface.TypePad,
				Coord:   surface.Coord{Group: row, Index: col},
				Pattern: note(surface.AnyChannel, rowColToNote(row, col)),
			})
		}
		t := surface.TypeButton
		if row == 7 {
			t = surface.TypeSwitch
		}
		specs = append(specs, surface.Spec{
			Type:    t,
			Coord:   surface.Coord{Group: row, Index: 8},
			Pattern: cc(surface.AnyChannel, rowColToNote(row, 8)),
		})
	}
	for col, t := range launchpadTopRow {
		specs = append(specs, surface.Spec{
			Type:    t,
			Coord:   surface.Coord{Group: 8, Index: col},
			Pattern: cc(surface.AnyChannel, rowColToNote(8, col)),
		})
	}
	return Layout{Name: "launchpad-x", Specs: specs}
}

// KeyboardLayout is a generic keyboard controller: 8 faders (CC 70-77),
// 8 knobs (CC 21-28), 16 drum pads on channel 10 (notes 36-51), transport
// style direction buttons (CC 110-116), a page switch (CC 117), a sustain
// pedal and a pitch wheel.
func KeyboardLayout() Layout {
	var specs []surface.Spec
	for i := range 8 {
		specs = append(specs,
			surface.Spec{Type: surface.TypeFader, Coord: surface.Coord{Group: 0, Index: i}, Pattern: cc(surface.AnyChannel, uint8(70+i))},
			surface.Spec{Type: surface.TypeKnob, Coord: surface.Coord{Group: 1, Index: i}, Pattern: cc(surface.AnyChannel, uint8(21+i))},
		)
	}
	for i := range 16 {
		specs = append(specs, surface.Spec{
			Type:    surface.TypePad,
			Coord:   surface.Coord{Group: 2, Index: i},
			Pattern: note(9, uint8(36+i)),
		})
	}
	dirs := []surface.Type{
		surface.TypeDirectionPrevious,
		surface.TypeDirectionNext,
		surface.TypeDirectionUp,
		surface.TypeDirectionDown,
		surface.TypeDirectionLeft,
		surface.TypeDirectionRight,
		surface.TypeDirectionSelect,
	}
	for i, t := range dirs {
		specs = append(specs, surface.Spec{Type: t, Coord: surface.Coord{Group: 3, Index: i}, Pattern: cc(surface.AnyChannel, uint8(110+i))})
	}
	specs = append(specs,
		surface.Spec{Type: surface.TypeSwitch, Coord: surface.Coord{Group: 4, Index: 0}, Pattern: cc(surface.AnyChannel, 117)},
		surface.Spec{Type: surface.TypePedalSustain, Coord: surface.Coord{Group: 5, Index: 0}, Pattern: cc(surface.AnyChannel, 64)},
		surface.Spec{Type: surface.TypeWheel, Coord: surface.Coord{Group: 6, Index: 0}, Pattern: surface.Pattern{Status: surface.StatusPitchBend, Channel: surface.AnyChannel}},
	)
	return Layout{Name: "keyboard", Specs: specs}
}
