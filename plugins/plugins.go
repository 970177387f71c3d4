// Package plugins holds the built-in plugins and registers them.
package plugins

import (
	"errors"
	"fmt"
	"log/slog"

	"surfplug/backend"
	"surfplug/filter"
	"surfplug/plug"
)

// PadPlugins are the plugin names served by the drum pad plugin.
var PadPlugins = []string{"FPC"}

// Deps is what the built-in plugins need.
type Deps struct {
	Backend backend.Backend
	Logger  *slog.Logger

	// ClearOnSwitch is passed to every pager.
	ClearOnSwitch bool

	// Kit is the drum kit played by the pads. The zero value is the FPC
	// layout.
	Kit Kit

	// NavigationActive decides when the navigation plugin runs. Nil means
	// always.
	NavigationActive func() bool
}

// Register adds every built-in plugin to reg, plus the parameter faders as
// the fallback for plugins without an entry of their own.
func Register(reg *plug.Registry, d Deps) error {
	if d.Backend == nil {
		return errors.New("register plugins: nil backend")
	}
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	active := d.NavigationActive
	if active == nil {
		active = func() bool { return true }
	}

	kit := d.Kit
	if kit.Name == "" {
		kit = kits[DefaultKit]
	}

	entries := []plug.Entry{
		plug.Standard(NewPads(d.Backend, log, kit), PadPlugins...),
		plug.Window(filter.WindowMixer, NewMixer(d.Backend, log, plug.ClearOnSwitch(d.ClearOnSwitch))),
		plug.Special("navigation", active, NewNavigation(d.Backend, log)),
	}
	for _, e := range entries {
		if err := reg.Register(e); err != nil {
			return fmt.Errorf("register %s: %w", e.Name(), err)
		}
	}
	if err := reg.SetFallback(NewFaders(d.Backend, log)); err != nil {
		return fmt.Errorf("register fallback: %w", err)
	}

	log.Debug("plugins registered", "entries", reg.Len())
	return nil
}
