// Package filter decides whether a bound callback may run for the current
// dispatch context.
//
// A Guard is a pure predicate over a Context. Guards are attached to a
// callback when it is bound and are evaluated, in order, every time the
// callback would be invoked. All guards must pass (logical AND) for the
// callback to run; otherwise the dispatch reports "not handled".
package filter

import "fmt"

// Index identifies the target that currently has focus in the host.
// A nil Index means nothing usable is focused.
type Index interface {
	isIndex()
	String() string
}

// PluginIndex is an Index that refers to a plugin instance: either a
// GeneratorIndex or an EffectIndex.
type PluginIndex interface {
	Index
	isPlugin()
}

// WindowIndex identifies a host window (mixer, channel rack, playlist...).
type WindowIndex int

// GeneratorIndex identifies a generator plugin by its channel.
type GeneratorIndex struct {
	Channel int
}

// EffectIndex identifies an effect plugin by mixer track and slot.
type EffectIndex struct {
	Track int
	Slot  int
}

func (WindowIndex) isIndex()    {}
func (GeneratorIndex) isIndex() {}
func (EffectIndex) isIndex()    {}

func (GeneratorIndex) isPlugin() {}
func (EffectIndex) isPlugin()    {}

func (w WindowIndex) String() string    { return fmt.Sprintf("window(%d)", int(w)) }
func (g GeneratorIndex) String() string { return fmt.Sprintf("generator(%d)", g.Channel) }
func (e EffectIndex) String() string    { return fmt.Sprintf("effect(%d,%d)", e.Track, e.Slot) }

// Host windows that have built-in meaning.
const (
	WindowMixer       WindowIndex = 0
	WindowChannelRack WindowIndex = 1
	WindowPlaylist    WindowIndex = 2
	WindowPianoRoll   WindowIndex = 3
	WindowBrowser     WindowIndex = 4
)

// IndexString formats an Index, including the nil case.
func IndexString(idx Index) string {
	if idx == nil {
		return "none"
	}
	return idx.String()
}
