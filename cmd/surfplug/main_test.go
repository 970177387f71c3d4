package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surfplug/config"
	"surfplug/filter"
	"surfplug/host"
	"surfplug/plug"
	"surfplug/plugins"
	"surfplug/record"
	"surfplug/surface"
)

func TestBuildDevice(t *testing.T) {
	d, err := buildDevice(config.Surface{Layout: "keyboard"})
	require.NoError(t, err)
	assert.Equal(t, "keyboard", d.Name())

	d, err = buildDevice(config.Surface{
		Layout:   "keyboard",
		Controls: []config.Control{{Type: "fader", Message: "cc", Number: 7}},
	})
	require.NoError(t, err)
	assert.Equal(t, "custom", d.Name())
	assert.Equal(t, 1, d.Len())

	_, err = buildDevice(config.Surface{Layout: "theremin"})
	assert.Error(t, err)
}

func TestLoadConfigFlags(t *testing.T) {
	t.Setenv("SURFPLUG_LAYOUT", "")
	cfg, err := loadConfig(flags{
		config:   filepath.Join(t.TempDir(), "missing.yaml"),
		layout:   "keyboard",
		port:     "mpk",
		logLevel: "debug",
		kit:      "rd8",
	})
	require.NoError(t, err)
	assert.Equal(t, "rd8", cfg.Pads.Kit)
	assert.Equal(t, "keyboard", cfg.Surface.Layout)
	assert.Equal(t, "mpk", cfg.Surface.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)

	_, err = loadConfig(flags{config: filepath.Join(t.TempDir(), "missing.yaml"), logLevel: "loud"})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestDemoBackendNamesParams(t *testing.T) {
	be := demoBackend()
	assert.Equal(t, "Cutoff", be.ParamName(demoTargets[1].Index, 0))
	assert.Equal(t, 8, be.ParamCount(demoTargets[2].Index))
}

func TestForward(t *testing.T) {
	src := make(chan surface.RawEvent, 2)
	dst := make(chan surface.RawEvent, 2)
	src <- surface.RawEvent{Status: 0x90, Data1: 1}
	close(src)

	forward(context.Background(), src, dst)
	assert.Equal(t, surface.RawEvent{Status: 0x90, Data1: 1}, <-dst)
}

func TestRecordedInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cbor")
	rec, err := record.NewRecorder(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := inputs{events: make(chan surface.RawEvent, 1), targets: make(chan plug.Target, 1)}
	tap := in.recorded(ctx, rec, slog.New(slog.DiscardHandler))

	mixer := plug.Target{Index: filter.WindowMixer}
	tap.events <- surface.RawEvent{Status: 0xB0, Data1: 7, Data2: 64}
	tap.targets <- mixer

	select {
	case raw := <-in.events:
		assert.Equal(t, uint8(7), raw.Data1)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded")
	}
	select {
	case got := <-in.targets:
		assert.Equal(t, mixer, got)
	case <-time.After(time.Second):
		t.Fatal("target not forwarded")
	}
	cancel()
	require.NoError(t, rec.Close())

	p, err := record.Open(path)
	require.NoError(t, err)
	defer p.Close()
	var raws, focus int
	for range 2 {
		e, err := p.Next()
		require.NoError(t, err)
		if e.Raw != nil {
			raws++
		}
		if e.Target != nil {
			focus++
		}
	}
	assert.Equal(t, 1, raws)
	assert.Equal(t, 1, focus)
}

// A replayed capture drives the real plugins through the host.
func TestReplayDrivesHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cbor")
	rec, err := record.NewRecorder(path)
	require.NoError(t, err)
	sytrus := demoTargets[1]
	require.NoError(t, rec.Target(sytrus))
	require.NoError(t, rec.Raw(surface.RawEvent{Status: 0xB0, Data1: 70, Data2: 127})) // fader 0
	require.NoError(t, rec.Close())

	device, err := buildDevice(config.Surface{Layout: "keyboard"})
	require.NoError(t, err)
	be := demoBackend()
	reg := plug.NewRegistry()
	require.NoError(t, plugins.Register(reg, plugins.Deps{Backend: be}))
	mgr := host.NewManager(device, reg, host.Options{})

	p, err := record.Open(path)
	require.NoError(t, err)
	defer p.Close()

	events := make(chan surface.RawEvent, 4)
	targets := make(chan plug.Target, 4)
	require.NoError(t, p.Play(context.Background(), events, targets, 0))

	mgr.SetTarget(<-targets)
	assert.True(t, mgr.HandleRaw(<-events))

	v, err := be.Param(sytrus.Index, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}
