// Command surfplug binds a MIDI control surface to plugins and shows the
// surface in the terminal.
//
// Controllers are detected as they are plugged in. Without hardware, the
// terminal view simulates the surface: move the cursor over a control and
// press space to send the event the hardware would.
//
// Usage:
//
//	surfplug [flags]
//
// Flags:
//
//	-config string     Configuration file (default ~/.config/surfplug/config.yaml)
//	-layout string     Built-in layout: keyboard, launchpad-x
//	-port string       MIDI input port name match
//	-record string     Capture raw events and focus changes to this file
//	-replay string     Play back a capture instead of waiting for input
//	-speed float       Replay speed, 0 for as fast as possible (default 1)
//	-kit string        Drum kit for the pads: fpc, gm, rd8, tr8s
//	-palette string    GIMP palette for the terminal view
//	-headless          No terminal view; run until interrupted
//	-log-level string  Log level: debug, info, warn, error
//	-write-config      Write the effective configuration and exit
//
// Examples:
//
//	# Launchpad X with defaults
//	surfplug
//
//	# Keyboard controller, recording the session
//	surfplug -layout keyboard -port "mpk" -record session.cbor
//
//	# Reproduce a session without hardware
//	surfplug -replay session.cbor -speed 4
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"surfplug/backend"
	"surfplug/config"
	"surfplug/filter"
	"surfplug/host"
	"surfplug/logging"
	"surfplug/midi"
	"surfplug/plug"
	"surfplug/plugins"
	"surfplug/record"
	"surfplug/surface"
	"surfplug/theme"
	"surfplug/tui"
)

type flags struct {
	config      string
	layout      string
	port        string
	record      string
	replay      string
	speed       float64
	kit         string
	palette     string
	headless    bool
	logLevel    string
	writeConfig bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.config, "config", "", "Configuration file (default ~/.config/surfplug/config.yaml)")
	flag.StringVar(&f.layout, "layout", "", "Built-in layout: keyboard, launchpad-x")
	flag.StringVar(&f.port, "port", "", "MIDI input port name match")
	flag.StringVar(&f.record, "record", "", "Capture raw events and focus changes to this file")
	flag.StringVar(&f.replay, "replay", "", "Play back a capture instead of waiting for input")
	flag.Float64Var(&f.speed, "speed", 1, "Replay speed, 0 for as fast as possible")
	flag.StringVar(&f.kit, "kit", "", "Drum kit for the pads: fpc, gm, rd8, tr8s")
	flag.StringVar(&f.palette, "palette", "", "GIMP palette for the terminal view")
	flag.BoolVar(&f.headless, "headless", false, "No terminal view; run until interrupted")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.writeConfig, "write-config", false, "Write the effective configuration and exit")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "surfplug: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	if f.writeConfig {
		path := f.config
		if path == "" {
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	}

	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	device, err := buildDevice(cfg.Surface)
	if err != nil {
		return err
	}

	kit, err := plugins.KitByName(cfg.Pads.Kit)
	if err != nil {
		return err
	}

	be := demoBackend()
	reg := plug.NewRegistry()
	defer reg.Clear()
	if err := plugins.Register(reg, plugins.Deps{
		Backend:       be,
		Logger:        log.With("component", "plugins"),
		ClearOnSwitch: cfg.Pager.ClearOnSwitch,
		Kit:           kit,
	}); err != nil {
		return err
	}

	mgr := host.NewManager(device, reg, host.Options{
		TickInterval:  cfg.Host.TickInterval,
		RenderFPS:     cfg.Host.RenderFPS,
		MaxCached:     cfg.Host.MaxCached,
		IsolatePanics: cfg.Host.IsolatePanics,
		Logger:        log.With("component", "host"),
	})
	outputs := midi.NewOutputs(log.With("component", "outputs"))
	mgr.AddRenderer(outputs)

	// The host loop reads events and targets; every producer writes to in.
	events := make(chan surface.RawEvent, 256)
	targets := make(chan plug.Target, 16)
	in := inputs{events: events, targets: targets}

	hostCtx, stopHost := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopHost()
	devCtx, stopDevices := context.WithCancel(context.Background())
	defer stopDevices()

	if cfg.Record.Path != "" {
		rec, err := record.NewRecorder(cfg.Record.Path)
		if err != nil {
			return err
		}
		defer rec.Close()
		in = in.recorded(hostCtx, rec, log)
		log.Info("recording", "path", cfg.Record.Path)
	}

	var program *tea.Program
	if !f.headless {
		th := theme.Default()
		if f.palette != "" {
			p, err := theme.LoadGPL(f.palette)
			if err != nil {
				return err
			}
			th = theme.New(p)
		}
		program = tea.NewProgram(tui.NewModel(tui.Options{
			Device:  device,
			Updates: mgr.UpdateChan,
			Events:  in.events,
			Targets: in.targets,
			Choices: demoTargets,
			Theme:   th,
		}), tea.WithAltScreen(), tea.WithContext(hostCtx))
	}
	notify := func(msg tui.DeviceMsg) {
		if program != nil {
			program.Send(msg)
		}
	}

	var player *record.Player
	if f.replay != "" {
		if player, err = record.Open(f.replay); err != nil {
			return err
		}
		defer player.Close()
	}

	// The device snapshot for the terminal view is taken above; from here on
	// only the host goroutine touches the surface.
	hostDone := make(chan error, 1)
	go func() { hostDone <- mgr.Run(hostCtx, events, targets) }()

	if player != nil {
		go func() {
			if err := player.Play(hostCtx, in.events, in.targets, f.speed); err != nil {
				log.Warn("replay stopped", "error", err)
				return
			}
			log.Info("replay finished", "path", f.replay)
		}()
	} else {
		dm := midi.NewDeviceManager(midi.DeviceManagerOptions{
			Match:  cfg.Surface.Port,
			Logger: log.With("component", "midi"),
		})
		go dm.Run(devCtx)
		go watchDevices(devCtx, dm, outputs, in, notify, log)
	}

	if program == nil {
		log.Info("running headless", "device", device.Name())
		return <-hostDone
	}

	if _, err := program.Run(); err != nil && hostCtx.Err() == nil {
		stopHost()
		<-hostDone
		return fmt.Errorf("terminal view: %w", err)
	}
	stopHost()
	return <-hostDone
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	if f.layout != "" {
		cfg.Surface.Layout = f.layout
		cfg.Surface.Controls = nil
	}
	if f.port != "" {
		cfg.Surface.Port = f.port
	}
	if f.record != "" {
		cfg.Record.Path = f.record
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if f.kit != "" {
		cfg.Pads.Kit = f.kit
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildDevice prefers an explicit control list over the named layout.
func buildDevice(s config.Surface) (*surface.Device, error) {
	if len(s.Controls) > 0 {
		specs, err := s.Specs()
		if err != nil {
			return nil, err
		}
		return surface.NewDevice("custom", specs)
	}
	layout, err := midi.LayoutByName(s.Layout)
	if err != nil {
		return nil, err
	}
	return layout.Device()
}

// demoTargets are the focusable targets offered by the terminal view.
var demoTargets = []plug.Target{
	{Index: filter.GeneratorIndex{Channel: 0}, Plugin: "FPC"},
	{Index: filter.GeneratorIndex{Channel: 1}, Plugin: "Sytrus"},
	{Index: filter.EffectIndex{Track: 1, Slot: 0}, Plugin: "Fruity Limiter"},
	{Index: filter.WindowMixer},
	{Index: filter.WindowPlaylist},
}

func demoBackend() *backend.Memory {
	be := backend.NewMemory(8)
	be.NameParams(demoTargets[1].Index, "Cutoff", "Resonance", "Attack", "Decay", "Sustain", "Release", "Mod X", "Mod Y")
	be.NameParams(demoTargets[2].Index, "Gain", "Ceiling", "Threshold", "Knee", "Attack", "Release", "Saturation", "Mix")
	return be
}

// inputs are the channels producers write to.
type inputs struct {
	events  chan surface.RawEvent
	targets chan plug.Target
}

// recorded returns inputs whose traffic is captured by rec on its way to
// in.
func (in inputs) recorded(ctx context.Context, rec *record.Recorder, log *slog.Logger) inputs {
	tap := inputs{
		events:  make(chan surface.RawEvent, cap(in.events)),
		targets: make(chan plug.Target, cap(in.targets)),
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case raw := <-tap.events:
				if err := rec.Raw(raw); err != nil {
					log.Warn("record event", "error", err)
				}
				select {
				case in.events <- raw:
				case <-ctx.Done():
					return
				}
			case t := <-tap.targets:
				if err := rec.Target(t); err != nil {
					log.Warn("record target", "error", err)
				}
				select {
				case in.targets <- t:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return tap
}

// watchDevices attaches controllers as they connect: their events feed the
// host and their LEDs follow the surface.
func watchDevices(ctx context.Context, dm *midi.DeviceManager, outputs *midi.Outputs, in inputs, notify func(tui.DeviceMsg), log *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-dm.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case midi.DeviceConnected:
				if err := outputs.Add(ev.Controller); err != nil {
					log.Warn("initial render", "controller", ev.ID, "error", err)
				}
				go forward(ctx, ev.Controller.Events(), in.events)
				notify(tui.DeviceMsg{ID: ev.ID, Connected: true})
			case midi.DeviceDisconnected:
				outputs.Remove(ev.ID)
				notify(tui.DeviceMsg{ID: ev.ID})
			}
		}
	}
}

// forward copies src to dst until src closes or ctx is done.
func forward(ctx context.Context, src <-chan surface.RawEvent, dst chan<- surface.RawEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-src:
			if !ok {
				return
			}
			select {
			case dst <- raw:
			case <-ctx.Done():
				return
			}
		}
	}
}
