package midi

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Ports lists the MIDI ports currently available.
type Ports func() ([]drivers.In, []drivers.Out)

// SystemPorts returns the ports of the registered MIDI driver.
func SystemPorts() ([]drivers.In, []drivers.Out) {
	return gomidi.GetInPorts(), gomidi.GetOutPorts()
}

// DeviceManagerOptions configures a DeviceManager.
type DeviceManagerOptions struct {
	// Match selects input ports by case-insensitive substring. Empty means
	// Launchpads only.
	Match    string
	PollRate time.Duration
	Ports    Ports
	Logger   *slog.Logger
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	opts        DeviceManagerOptions
	log         *slog.Logger

	// open creates a controller for a matched port pair
	open func(id string, in drivers.In, out drivers.Out) (Controller, error)
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(opts DeviceManagerOptions) *DeviceManager {
	if opts.PollRate <= 0 {
		opts.PollRate = time.Second
	}
	if opts.Ports == nil {
		opts.Ports = SystemPorts
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	dm := &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		opts:        opts,
		log:         log,
	}
	dm.open = dm.openController
	return dm
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.opts.PollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		in, out := dm.opts.Ports()
		ch <- portsResult{inPorts: in, outPorts: out}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		// CoreMIDI is hung - skip this scan
		dm.log.Warn("midi port scan timed out", "hint", "sudo killall coreaudiod midiserver")
		return
	case <-ctx.Done():
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		if !dm.matches(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		// Find matching output port
		var outPort drivers.Out
		for _, op := range outPorts {
			if strings.EqualFold(op.String(), id) {
				outPort = op
				break
			}
		}

		c, err := dm.open(id, inPort, outPort)
		if err != nil {
			dm.log.Warn("open controller", "port", id, "error", err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		dm.log.Info("controller connected", "port", id, "type", c.Type().String())
		dm.emit(ctx, DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		dm.log.Info("controller disconnected", "port", id)
		dm.emit(ctx, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) emit(ctx context.Context, ev DeviceEvent) {
	select {
	case dm.events <- ev:
	case <-ctx.Done():
	}
}

func (dm *DeviceManager) matches(port string) bool {
	if dm.opts.Match == "" {
		return isLaunchpad(port)
	}
	return strings.Contains(strings.ToLower(port), strings.ToLower(dm.opts.Match))
}

func (dm *DeviceManager) openController(id string, in drivers.In, out drivers.Out) (Controller, error) {
	if isLaunchpad(id) {
		return NewLaunchpadController(id, in, out, dm.log)
	}
	return NewKeyboardController(id, in)
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
