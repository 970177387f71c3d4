package midi

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"surfplug/surface"
)

// Outputs fans control state out to every connected controller. The host
// renders into it from its loop while the device manager adds and removes
// controllers, so it is safe for concurrent use.
type Outputs struct {
	mu          sync.Mutex
	controllers map[string]Controller
	state       map[surface.ID]surface.State
	log         *slog.Logger
}

// NewOutputs creates an empty fan-out.
func NewOutputs(log *slog.Logger) *Outputs {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Outputs{
		controllers: make(map[string]Controller),
		state:       make(map[surface.ID]surface.State),
		log:         log,
	}
}

// Render records changed and forwards it to every controller.
func (o *Outputs) Render(changed []surface.State) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, s := range changed {
		o.state[s.ID] = s
	}
	var errs []error
	for id, c := range o.controllers {
		if err := c.Render(changed); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// Add starts rendering to c, first sending it everything rendered so far.
func (o *Outputs) Add(c Controller) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.controllers[c.ID()] = c
	if len(o.state) == 0 {
		return nil
	}
	full := make([]surface.State, 0, len(o.state))
	for _, s := range o.state {
		full = append(full, s)
	}
	slices.SortFunc(full, func(a, b surface.State) int { return a.ID.Compare(b.ID) })
	o.log.Debug("full redraw", "controller", c.ID(), "controls", len(full))
	return c.Render(full)
}

// Remove stops rendering to the controller with id.
func (o *Outputs) Remove(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.controllers, id)
}

// Len returns the number of controllers rendered to.
func (o *Outputs) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.controllers)
}
