package plugins

import (
	"log/slog"

	"surfplug/backend"
	"surfplug/filter"
	"surfplug/plug"
	"surfplug/surface"
)

// Faders maps every fader, then every knob, onto the parameters of the
// focused plugin in order.
type Faders struct {
	plug.Base
	be  backend.Backend
	log *slog.Logger

	faders surface.ControlShadows
	knobs  surface.ControlShadows
}

// NewFaders returns the factory for the parameter fader plugin.
func NewFaders(be backend.Backend, log *slog.Logger) plug.Factory {
	return func(sh *surface.Shadow) plug.Plugin {
		f := &Faders{Base: plug.NewBase(sh), be: be, log: log}
		f.faders = f.bindParams(sh, surface.TypeFader, 0)
		f.knobs = f.bindParams(sh, surface.TypeKnob, len(f.faders))
		return f
	}
}

// Params returns the number of controls mapped to parameters.
func (f *Faders) Params() int {
	return len(f.faders) + len(f.knobs)
}

func (f *Faders) bindParams(sh *surface.Shadow, t surface.Type, offset int) surface.ControlShadows {
	return sh.BindMatches(t,
		func(c *surface.ControlShadow, ev surface.Event, idx filter.Index) bool {
			param := offset + c.Slot()
			if param >= f.be.ParamCount(idx) {
				return false
			}
			if err := f.be.SetParam(idx, param, ev.Value); err != nil {
				f.log.Warn("set param", "index", filter.IndexString(idx), "param", param, "error", err)
				return false
			}
			c.SetValue(ev.Value)
			return true
		},
		surface.WithFilter(filter.ToPluginIndex),
		surface.WithTick(func(c *surface.ControlShadow, idx filter.Index) {
			f.tickParam(c, idx, offset+c.Slot())
		}, filter.ToPluginIndex),
	)
}

func (f *Faders) tickParam(c *surface.ControlShadow, idx filter.Index, param int) {
	if param >= f.be.ParamCount(idx) {
		c.Colorize(surface.ColorOff).Annotate("").SetValue(0)
		return
	}
	v, err := f.be.Param(idx, param)
	if err != nil {
		f.log.Warn("read param", "index", filter.IndexString(idx), "param", param, "error", err)
		c.Colorize(surface.ColorDisabled)
		return
	}
	c.Colorize(surface.ColorBound).
		Annotate(f.be.ParamName(idx, param)).
		SetValue(v)
}
