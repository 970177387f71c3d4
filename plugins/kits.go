package plugins

import (
	"fmt"
	"sort"
)

// Kit maps the 16 pads to MIDI notes.
type Kit struct {
	Name  string
	Notes [numPads]uint8
	// Labels names the pads. Empty labels show the pad number.
	Labels [numPads]string
}

// Label returns the annotation for the pad in slot.
func (k Kit) Label(slot int) string {
	if slot >= 0 && slot < numPads && k.Labels[slot] != "" {
		return k.Labels[slot]
	}
	return fmt.Sprintf("Pad %d", slot+1)
}

// slot order shared by the drum machine kits
var drumLabels = [numPads]string{
	"Kick", "Snare", "Closed HH", "Open HH",
	"Low Tom", "Mid Tom", "High Tom", "Crash",
	"Ride", "Clap", "Rimshot", "Cowbell",
	"Clave", "Maracas", "Low Conga", "High Conga",
}

// DefaultKit is the default kit name
const DefaultKit = "fpc"

var kits = map[string]Kit{
	"fpc": {
		Name:  "FPC",
		Notes: [numPads]uint8{36, 37, 38, 39, 40, 41, 42, 43, 44, 45, 46, 47, 48, 49, 50, 51},
	},
	"gm": {
		Name:   "General MIDI",
		Notes:  [numPads]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 64, 63},
		Labels: drumLabels,
	},
	"rd8": {
		Name:   "Behringer RD-8",
		Notes:  [numPads]uint8{36, 40, 42, 46, 45, 48, 50, 49, 51, 39, 37, 56, 75, 70, 64, 63},
		Labels: drumLabels,
	},
	"tr8s": {
		Name:   "Roland TR-8S",
		Notes:  [numPads]uint8{36, 38, 42, 46, 41, 43, 45, 49, 51, 39, 37, 56, 75, 70, 62, 63},
		Labels: drumLabels,
	},
}

// KitByName returns a built-in kit. An empty name gives the default kit.
func KitByName(name string) (Kit, error) {
	if name == "" {
		name = DefaultKit
	}
	k, ok := kits[name]
	if !ok {
		return Kit{}, fmt.Errorf("unknown drum kit %q (have %v)", name, KitNames())
	}
	return k, nil
}

// KitNames returns the list of available kit names
func KitNames() []string {
	names := make([]string, 0, len(kits))
	for n := range kits {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
