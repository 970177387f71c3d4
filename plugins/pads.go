package plugins

import (
	"log/slog"

	"surfplug/backend"
	"surfplug/filter"
	"surfplug/plug"
	"surfplug/surface"
)

const numPads = 16

// one color per row of four pads
var padColors = [4]surface.Color{
	surface.ColorFromInt(0xFF3300),
	surface.ColorFromInt(0xFFAA00),
	surface.ColorFromInt(0x00CC66),
	surface.ColorFromInt(0x0066FF),
}

// Pads plays drum pads of a generator plugin.
type Pads struct {
	plug.Base
	be  backend.Backend
	log *slog.Logger
	kit Kit

	pads surface.ControlShadows
}

// NewPads returns the factory for the drum pad plugin. Pad n plays the
// n-th note of kit.
func NewPads(be backend.Backend, log *slog.Logger, kit Kit) plug.Factory {
	return func(sh *surface.Shadow) plug.Plugin {
		p := &Pads{Base: plug.NewBase(sh), be: be, log: log, kit: kit}
		p.pads = sh.BindMatches(surface.TypePad, p.onPad,
			surface.Count(numPads),
			surface.WithFilter(filter.ToGeneratorIndex),
			surface.WithTick(p.tickPad, filter.ToGeneratorIndex),
		)
		return p
	}
}

// Pads returns the pad handles, one per FPC pad.
func (p *Pads) Pads() surface.ControlShadows { return p.pads }

func (p *Pads) onPad(c *surface.ControlShadow, ev surface.Event, idx filter.Index) bool {
	note := p.kit.Notes[c.Slot()]
	if err := p.be.NoteOn(idx, note, ev.Value); err != nil {
		p.log.Warn("pad note", "note", note, "error", err)
		return false
	}
	c.SetValue(ev.Value)
	return true
}

func (p *Pads) tickPad(c *surface.ControlShadow, _ filter.Index) {
	base := padColors[(c.Slot()/4)%len(padColors)]
	c.Colorize(base.Fade(surface.ColorWhite, c.Value()*0.6)).
		Annotate(p.kit.Label(c.Slot()))
}
