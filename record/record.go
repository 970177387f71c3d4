// Package record captures the raw input stream and target changes to a CBOR
// file and plays them back, so a session can be reproduced without the
// hardware.
//
// A capture is a sequence of CBOR-encoded Entry values, one per event, with
// no framing.
package record

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"surfplug/filter"
	"surfplug/plug"
	"surfplug/surface"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("record: cbor encoder mode: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("record: cbor decoder mode: %v", err))
	}
}

// Entry is one captured item. Exactly one of Raw and Target is set.
type Entry struct {
	// At is the offset from the start of the capture.
	At     time.Duration `cbor:"1,keyasint"`
	Raw    *Raw          `cbor:"2,keyasint,omitempty"`
	Target *Target       `cbor:"3,keyasint,omitempty"`
}

// Raw is a captured raw event.
type Raw struct {
	_      struct{} `cbor:",toarray"`
	Status uint8
	Data1  uint8
	Data2  uint8
}

// Event returns the raw event.
func (r Raw) Event() surface.RawEvent {
	return surface.RawEvent{Status: r.Status, Data1: r.Data1, Data2: r.Data2}
}

// Target is a captured focus change.
type Target struct {
	Window    *int   `cbor:"1,keyasint,omitempty"`
	Generator *int   `cbor:"2,keyasint,omitempty"`
	Effect    []int  `cbor:"3,keyasint,omitempty"` // track, slot
	Plugin    string `cbor:"4,keyasint,omitempty"`
}

// TargetOf converts a host target for capture.
func TargetOf(t plug.Target) Target {
	out := Target{Plugin: t.Plugin}
	switch idx := t.Index.(type) {
	case filter.WindowIndex:
		w := int(idx)
		out.Window = &w
	case filter.GeneratorIndex:
		ch := idx.Channel
		out.Generator = &ch
	case filter.EffectIndex:
		out.Effect = []int{idx.Track, idx.Slot}
	}
	return out
}

// Plug converts a captured target back.
func (t Target) Plug() plug.Target {
	out := plug.Target{Plugin: t.Plugin}
	switch {
	case t.Window != nil:
		out.Index = filter.WindowIndex(*t.Window)
	case t.Generator != nil:
		out.Index = filter.GeneratorIndex{Channel: *t.Generator}
	case len(t.Effect) == 2:
		out.Index = filter.EffectIndex{Track: t.Effect[0], Slot: t.Effect[1]}
	}
	return out
}

// Recorder writes entries to a capture file.
// It is safe for concurrent use from multiple goroutines.
type Recorder struct {
	file    *os.File
	encoder *cbor.Encoder
	start   time.Time
	now     func() time.Time
	mu      sync.Mutex
	closed  bool
}

// NewRecorder creates (or truncates) the capture file at path.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create capture: %w", err)
	}
	return newRecorder(f, time.Now), nil
}

func newRecorder(f *os.File, now func() time.Time) *Recorder {
	return &Recorder{
		file:    f,
		encoder: encMode.NewEncoder(f),
		start:   now(),
		now:     now,
	}
}

// Raw records a raw event.
func (r *Recorder) Raw(ev surface.RawEvent) error {
	return r.write(Entry{Raw: &Raw{Status: ev.Status, Data1: ev.Data1, Data2: ev.Data2}})
}

// Target records a focus change.
func (r *Recorder) Target(t plug.Target) error {
	tt := TargetOf(t)
	return r.write(Entry{Target: &tt})
}

func (r *Recorder) write(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	e.At = r.now().Sub(r.start)
	return r.encoder.Encode(e)
}

// Close closes the capture file. It is safe to call Close multiple times.
// After Close, writes are silently ignored.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Player reads a capture file.
type Player struct {
	file    *os.File
	decoder *cbor.Decoder
}

// Open opens the capture at path.
func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	return &Player{file: f, decoder: decMode.NewDecoder(f)}, nil
}

// Next returns the next entry, or io.EOF at the end of the capture.
func (p *Player) Next() (Entry, error) {
	var e Entry
	if err := p.decoder.Decode(&e); err != nil {
		if errors.Is(err, io.EOF) {
			return Entry{}, io.EOF
		}
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}

// Play sends every entry to events or targets, reproducing the captured
// timing scaled by speed (2 plays twice as fast). A speed of zero or less
// sends entries back to back. Play returns nil at the end of the capture.
func (p *Player) Play(ctx context.Context, events chan<- surface.RawEvent, targets chan<- plug.Target, speed float64) error {
	start := time.Now()
	for {
		e, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if speed > 0 {
			due := start.Add(time.Duration(float64(e.At) / speed))
			if wait := time.Until(due); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}

		switch {
		case e.Raw != nil:
			select {
			case events <- e.Raw.Event():
			case <-ctx.Done():
				return ctx.Err()
			}
		case e.Target != nil:
			select {
			case targets <- e.Target.Plug():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Close closes the capture file.
func (p *Player) Close() error {
	return p.file.Close()
}
