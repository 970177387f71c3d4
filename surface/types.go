package surface

import (
	"cmp"
	"fmt"
	"strings"
)

// Type tags a control with what it physically is. Types are dotted names;
// a control of type "direction.next" is also a "direction".
type Type string

// Built-in control types. Devices may define more.
const (
	TypeButton Type = "button"
	TypeSwitch Type = "switch" // page switch button, owned by pagers
	TypePad    Type = "pad"
	TypeNote   Type = "note"
	TypeFader  Type = "fader"
	TypeKnob   Type = "knob"
	TypeWheel  Type = "wheel"

	TypeDirection         Type = "direction"
	TypeDirectionNext     Type = "direction.next"
	TypeDirectionPrevious Type = "direction.previous"
	TypeDirectionUp       Type = "direction.up"
	TypeDirectionDown     Type = "direction.down"
	TypeDirectionLeft     Type = "direction.left"
	TypeDirectionRight    Type = "direction.right"
	TypeDirectionSelect   Type = "direction.select"

	TypePedal          Type = "pedal"
	TypePedalSustain   Type = "pedal.sustain"
	TypePedalSostenuto Type = "pedal.sostenuto"
	TypePedalSoft      Type = "pedal.soft"
)

// Is reports whether t is base or a subtype of base.
func (t Type) Is(base Type) bool {
	if t == base {
		return true
	}
	return base != "" && strings.HasPrefix(string(t), string(base)+".")
}

// Coord locates a control on its device: a group (row, bank, strip...) and
// a position within the group.
type Coord struct {
	Group int
	Index int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d:%d", c.Group, c.Index)
}

// Compare orders coordinates by group, then index.
func (c Coord) Compare(o Coord) int {
	if n := cmp.Compare(c.Group, o.Group); n != 0 {
		return n
	}
	return cmp.Compare(c.Index, o.Index)
}

// ID is the immutable identity of a control.
type ID struct {
	Coord Coord
	Type  Type
}

func (id ID) String() string {
	return fmt.Sprintf("%s@%s", id.Type, id.Coord)
}

// Compare orders identities by coordinate, then type.
func (id ID) Compare(o ID) int {
	if n := id.Coord.Compare(o.Coord); n != 0 {
		return n
	}
	return cmp.Compare(id.Type, o.Type)
}
