// Command miditest checks MIDI hardware without starting the host.
//
// Usage:
//
//	miditest [-layout name] [-port match] <command>
//
// Commands:
//
//	list     List all MIDI ports
//	detect   Find the controller matched by -port (default: a Launchpad)
//	leds     Light a test pattern on a Launchpad
//	monitor  Print every event, resolved to the control of -layout
//	poll     Report controllers as they connect and disconnect
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"surfplug/midi"
	"surfplug/surface"
)

var (
	layoutName = flag.String("layout", "launchpad-x", "Layout used to resolve events: "+strings.Join(midi.LayoutNames(), ", "))
	portMatch  = flag.String("port", "", "Input port name match (default: any Launchpad)")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch flag.Arg(0) {
	case "list":
		err = listPorts()
	case "detect":
		err = detect(ctx)
	case "leds":
		err = testLEDs(ctx)
	case "monitor":
		err = monitor(ctx)
	case "poll":
		poll(ctx)
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Usage: miditest [flags] <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  detect   - Find the controller")
	fmt.Println("  leds     - Test LED control (Launchpad)")
	fmt.Println("  monitor  - Print resolved control events")
	fmt.Println("  poll     - Watch for device changes")
	fmt.Println("")
	flag.PrintDefaults()
}

func listPorts() error {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []string
		outs []string
	}
	ch := make(chan result, 1)
	go func() {
		ins, outs := midi.SystemPorts()
		var r result
		for _, p := range ins {
			r.ins = append(r.ins, p.String())
		}
		for _, p := range outs {
			r.outs = append(r.outs, p.String())
		}
		ch <- r
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p)
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p)
		}
		return nil
	case <-time.After(3 * time.Second):
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return fmt.Errorf("port scan timed out")
	}
}

// connect waits for the first matching controller.
func connect(ctx context.Context) (midi.Controller, func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	dm := midi.NewDeviceManager(midi.DeviceManagerOptions{
		Match:  *portMatch,
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
	go dm.Run(ctx)

	fmt.Println("Waiting for controller... (Ctrl+C to give up)")
	for {
		select {
		case <-ctx.Done():
			cancel()
			return nil, nil, ctx.Err()
		case ev := <-dm.Events():
			if ev.Type == midi.DeviceConnected {
				return ev.Controller, cancel, nil
			}
		}
	}
}

func detect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, done, err := connect(ctx)
	if err != nil {
		fmt.Println("\nController not found")
		return nil
	}
	defer done()
	fmt.Printf("\nFound %s (%s)\n", c.ID(), c.Type())
	return nil
}

func testLEDs(ctx context.Context) error {
	c, done, err := connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	lp, ok := c.(*midi.LaunchpadController)
	if !ok {
		return fmt.Errorf("%s is not a Launchpad", c.ID())
	}

	fmt.Println("Lighting up diagonal (green)...")
	green := surface.ColorFromInt(0x00FF00)
	for i := range 8 {
		if err := lp.SetLEDBatch([]midi.LEDUpdate{{Row: i, Col: i, Color: green}}); err != nil {
			return err
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err := lp.SetLEDBatch([]midi.LEDUpdate{{Row: 7, Col: 8, Color: green, Channel: midi.ChannelPulse}}); err != nil {
		return err
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	return nil
}

func monitor(ctx context.Context) error {
	layout, err := midi.LayoutByName(*layoutName)
	if err != nil {
		return err
	}
	device, err := layout.Device()
	if err != nil {
		return err
	}

	c, done, err := connect(ctx)
	if err != nil {
		return err
	}
	defer done()
	fmt.Printf("Monitoring %s with layout %s. Ctrl+C to exit.\n", c.ID(), layout.Name)

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-c.Events():
			if !ok {
				return nil
			}
			if ev, ok := device.Match(raw); ok {
				fmt.Printf("[%s] %s  %-28s %.3f\n", time.Now().Format("15:04:05.000"), raw, ev.Control, ev.Value)
			} else {
				fmt.Printf("[%s] %s  (no control)\n", time.Now().Format("15:04:05.000"), raw)
			}
		}
	}
}

func poll(ctx context.Context) {
	fmt.Println("Watching for device changes. Ctrl+C to exit.")
	dm := midi.NewDeviceManager(midi.DeviceManagerOptions{Match: *portMatch, PollRate: 2 * time.Second})
	go dm.Run(ctx)

	for ev := range dm.Events() {
		switch ev.Type {
		case midi.DeviceConnected:
			fmt.Printf("[%s] connected: %s (%s)\n", time.Now().Format("15:04:05"), ev.ID, ev.Controller.Type())
		case midi.DeviceDisconnected:
			fmt.Printf("[%s] disconnected: %s\n", time.Now().Format("15:04:05"), ev.ID)
		}
	}
}
