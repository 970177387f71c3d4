package plugins

import (
	"fmt"
	"log/slog"

	"surfplug/backend"
	"surfplug/filter"
	"surfplug/plug"
	"surfplug/surface"
)

// Page colors of the mixer.
var (
	ColorVolume = surface.ColorFromInt(0x00FF00)
	ColorPan    = surface.ColorFromInt(0x0088FF)
)

// NewMixer returns the factory for the mixer window plugin: a pager with a
// volume page and a pan page, one fader per track.
func NewMixer(be backend.Backend, log *slog.Logger, opts ...plug.PagerOption) plug.Factory {
	return func(sh *surface.Shadow) plug.Plugin {
		p := plug.NewPager(sh, opts...)
		p.AddPage(newTrackPage("Vol", be.TrackVolume, be.SetTrackVolume, log), ColorVolume)
		p.AddPage(newTrackPage("Pan", be.TrackPan, be.SetTrackPan, log), ColorPan)
		return p
	}
}

type trackPage struct {
	plug.Base
	label  string
	get    func(track int) (float64, error)
	set    func(track int, v float64) error
	log    *slog.Logger
	faders surface.ControlShadows
}

func newTrackPage(label string, get func(int) (float64, error), set func(int, float64) error, log *slog.Logger) plug.Factory {
	return func(sh *surface.Shadow) plug.Plugin {
		tp := &trackPage{Base: plug.NewBase(sh), label: label, get: get, set: set, log: log}
		tp.faders = sh.BindMatches(surface.TypeFader, tp.onFader,
			surface.WithFilter(filter.ToWindow(filter.WindowMixer)),
			surface.WithTick(tp.tickFader, filter.ToWindow(filter.WindowMixer)),
		)
		return tp
	}
}

func (tp *trackPage) onFader(c *surface.ControlShadow, ev surface.Event, _ filter.Index) bool {
	if err := tp.set(c.Slot(), ev.Value); err != nil {
		tp.log.Debug("mixer fader ignored", "page", tp.label, "track", c.Slot(), "error", err)
		return false
	}
	c.SetValue(ev.Value)
	return true
}

func (tp *trackPage) tickFader(c *surface.ControlShadow, _ filter.Index) {
	v, err := tp.get(c.Slot())
	if err != nil {
		c.Colorize(surface.ColorOff).Annotate("")
		return
	}
	c.Colorize(surface.ColorBound).
		Annotate(fmt.Sprintf("%s %d", tp.label, c.Slot()+1)).
		SetValue(v)
}
