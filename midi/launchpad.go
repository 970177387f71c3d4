package midi

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"surfplug/surface"
)

// LaunchpadController handles a Novation Launchpad X
type LaunchpadController struct {
	id       string
	outPort  drivers.Out
	inPort   drivers.In
	send     func(msg gomidi.Message) error
	stopFunc func()
	log      *slog.Logger

	events  chan surface.RawEvent
	dropped atomic.Uint64
	sent    atomic.Uint64
}

// NewLaunchpadController opens the ports and switches the Launchpad to
// programmer mode. Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out, log *slog.Logger) (*LaunchpadController, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	lp := &LaunchpadController{
		id:      id,
		inPort:  inPort,
		outPort: outPort,
		log:     log.With("controller", id),
		events:  make(chan surface.RawEvent, eventBuffer),
	}

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		if err := lp.programmerMode(); err != nil {
			return nil, fmt.Errorf("programmer mode: %w", err)
		}
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.receive)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

// programmerMode sends the setup SysEx: programmer layout, full brightness
// and external LED feedback.
func (lp *LaunchpadController) programmerMode() error {
	for _, msg := range [][]byte{
		{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F},       // F0 00 20 29 02 0C 00 7F F7
		{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F},       // brightness 0-127
		{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}, // LED feedback
	} {
		if err := lp.send(gomidi.SysEx(msg)); err != nil {
			return err
		}
	}
	return nil
}

func (lp *LaunchpadController) receive(msg gomidi.Message, _ int32) {
	raw, ok := FromMessage(msg)
	if !ok {
		return
	}
	if !push(lp.events, raw) {
		if n := lp.dropped.Add(1); n%100 == 1 {
			lp.log.Warn("input events dropped", "total", n)
		}
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) Events() <-chan surface.RawEvent {
	return lp.events
}

// Render lights the LEDs of the given controls.
func (lp *LaunchpadController) Render(changed []surface.State) error {
	return lp.SetLEDBatch(LEDsFor(changed))
}

// LEDsFor maps control states to LED writes. Controls outside the 9x9
// Launchpad grid are skipped. A switch with a value set pulses.
func LEDsFor(states []surface.State) []LEDUpdate {
	updates := make([]LEDUpdate, 0, len(states))
	for _, s := range states {
		row, col := s.ID.Coord.Group, s.ID.Coord.Index
		if row < 0 || row > 8 || col < 0 || col > 8 || (row == 8 && col == 8) {
			continue
		}
		ch := ChannelStatic
		if s.Value > 0 && s.ID.Type.Is(surface.TypeSwitch) {
			ch = ChannelPulse
		}
		updates = append(updates, LEDUpdate{Row: row, Col: col, Color: s.Color, Channel: ch})
	}
	return updates
}

// SetLEDBatch sends multiple LED updates using individual NoteOn messages
// (SysEx batching had color issues)
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		if err := lp.send(gomidi.NoteOn(u.Channel, note, color)); err != nil {
			return fmt.Errorf("led %d,%d: %w", u.Row, u.Col, err)
		}
	}

	count := lp.sent.Add(uint64(len(updates)))
	if count%100 < uint64(len(updates)) {
		lp.log.Debug("led batch", "total", count, "batch", len(updates))
	}
	return nil
}

// Launchpad X palette - approximate RGB values for key colors
// Format: {velocity, R, G, B}
var launchpadPalette = [][4]uint8{
	{0, 0, 0, 0},         // off
	{1, 40, 40, 40},      // dark grey
	{2, 130, 130, 130},   // grey
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{78, 100, 100, 255},  // light blue
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // white
}

// mapRGBToLaunchpad finds the nearest Launchpad X palette color for an RGB value
func mapRGBToLaunchpad(rgb surface.Color) uint8 {
	bestMatch := uint8(0)
	bestDist := 1 << 30

	r, g, b := int(rgb[0]), int(rgb[1]), int(rgb[2])

	for _, p := range launchpadPalette {
		pr, pg, pb := int(p[1]), int(p[2]), int(p[3])
		// Simple Euclidean distance
		dist := (r-pr)*(r-pr) + (g-pg)*(g-pg) + (b-pb)*(b-pb)
		if dist < bestDist {
			bestDist = dist
			bestMatch = p[0]
		}
	}

	return bestMatch
}

// Close turns every LED off and stops listening.
func (lp *LaunchpadController) Close() error {
	var err error
	if lp.send != nil {
		var updates []LEDUpdate
		for row := 0; row < 9; row++ {
			for col := 0; col < 9; col++ {
				if row == 8 && col == 8 {
					continue // no LED at 8,8
				}
				updates = append(updates, LEDUpdate{Row: row, Col: col})
			}
		}
		err = lp.SetLEDBatch(updates)
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	close(lp.events)
	return err
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = CC 19, 29, ... 89
// Top row:   Row 8 (top control row) = CC 91-98
// LEDs are addressed with the same numbers as notes.

func rowColToNote(row, col int) uint8 {
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}
