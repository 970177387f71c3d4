package plugins

import (
	"log/slog"

	"surfplug/backend"
	"surfplug/filter"
	"surfplug/plug"
	"surfplug/surface"
)

var directions = map[surface.Type]backend.Direction{
	surface.TypeDirectionNext:     backend.DirectionNext,
	surface.TypeDirectionPrevious: backend.DirectionPrevious,
	surface.TypeDirectionUp:       backend.DirectionUp,
	surface.TypeDirectionDown:     backend.DirectionDown,
	surface.TypeDirectionLeft:     backend.DirectionLeft,
	surface.TypeDirectionRight:    backend.DirectionRight,
	surface.TypeDirectionSelect:   backend.DirectionSelect,
}

// Navigation sends direction buttons to the host whatever has focus.
// Button releases are filtered out.
type Navigation struct {
	plug.Base
	be  backend.Backend
	log *slog.Logger
}

// NewNavigation returns the factory for the navigation plugin.
func NewNavigation(be backend.Backend, log *slog.Logger) plug.Factory {
	return func(sh *surface.Shadow) plug.Plugin {
		n := &Navigation{Base: plug.NewBase(sh), be: be, log: log}
		sh.BindMatches(surface.TypeDirection, n.onDirection,
			surface.WithFilter(filter.SkipButtonLift),
			surface.WithTick(n.tickDirection),
		)
		return n
	}
}

func (n *Navigation) onDirection(c *surface.ControlShadow, _ surface.Event, _ filter.Index) bool {
	d, ok := directions[c.Control().Type()]
	if !ok {
		return false
	}
	if err := n.be.Navigate(d); err != nil {
		n.log.Warn("navigate", "direction", d, "error", err)
		return false
	}
	return true
}

func (n *Navigation) tickDirection(c *surface.ControlShadow, _ filter.Index) {
	d, ok := directions[c.Control().Type()]
	if !ok {
		c.Colorize(surface.ColorDisabled)
		return
	}
	c.Colorize(surface.ColorBound).Annotate(d.String())
}
