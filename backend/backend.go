// Package backend is the host-side model that plugins drive: plugin
// parameters, mixer tracks, navigation and notes.
package backend

import (
	"errors"
	"fmt"
	"sync"

	"surfplug/filter"
)

// NumTracks is the number of mixer tracks exposed by a Memory backend.
const NumTracks = 8

var (
	// ErrNoTarget is returned when a parameter call has no plugin index.
	ErrNoTarget = errors.New("no plugin target")

	// ErrOutOfRange is returned for parameter or track numbers the backend
	// does not have.
	ErrOutOfRange = errors.New("out of range")
)

// Direction is a navigation step.
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrevious
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
	DirectionSelect
)

func (d Direction) String() string {
	switch d {
	case DirectionNext:
		return "next"
	case DirectionPrevious:
		return "previous"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionSelect:
		return "select"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Backend is what plugins call to read and change host state. All values
// are normalised to [0, 1].
type Backend interface {
	ParamCount(idx filter.Index) int
	ParamName(idx filter.Index, param int) string
	Param(idx filter.Index, param int) (float64, error)
	SetParam(idx filter.Index, param int, v float64) error

	TrackVolume(track int) (float64, error)
	SetTrackVolume(track int, v float64) error
	TrackPan(track int) (float64, error)
	SetTrackPan(track int, v float64) error

	Navigate(d Direction) error
	NoteOn(idx filter.Index, note uint8, velocity float64) error
}

// Note is a note played through a Memory backend.
type Note struct {
	Index    filter.Index
	Note     uint8
	Velocity float64
}

type paramKey struct {
	target string
	param  int
}

// Memory is an in-process Backend. It is safe for concurrent use so the
// TUI can read it while the host writes.
type Memory struct {
	mu     sync.Mutex
	count  int
	names  map[string][]string
	params map[paramKey]float64
	volume [NumTracks]float64
	pan    [NumTracks]float64
	nav    []Direction
	notes  []Note
}

// NewMemory creates a backend where every plugin has count parameters.
// Track volumes start at 0.8 and pans centred.
func NewMemory(count int) *Memory {
	m := &Memory{
		count:  count,
		names:  make(map[string][]string),
		params: make(map[paramKey]float64),
	}
	for i := range NumTracks {
		m.volume[i] = 0.8
		m.pan[i] = 0.5
	}
	return m
}

// NameParams sets display names for the parameters of the plugin at idx.
func (m *Memory) NameParams(idx filter.Index, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[filter.IndexString(idx)] = names
}

func (m *Memory) ParamCount(idx filter.Index) int {
	if _, ok := idx.(filter.PluginIndex); !ok {
		return 0
	}
	return m.count
}

// ParamName returns the configured name, "Param n" otherwise.
func (m *Memory) ParamName(idx filter.Index, param int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if names := m.names[filter.IndexString(idx)]; param >= 0 && param < len(names) {
		return names[param]
	}
	return fmt.Sprintf("Param %d", param+1)
}

func (m *Memory) Param(idx filter.Index, param int) (float64, error) {
	key, err := m.key(idx, param)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params[key], nil
}

func (m *Memory) SetParam(idx filter.Index, param int, v float64) error {
	key, err := m.key(idx, param)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[key] = clamp(v)
	return nil
}

func (m *Memory) TrackVolume(track int) (float64, error) {
	if err := checkTrack(track); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume[track], nil
}

func (m *Memory) SetTrackVolume(track int, v float64) error {
	if err := checkTrack(track); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume[track] = clamp(v)
	return nil
}

func (m *Memory) TrackPan(track int) (float64, error) {
	if err := checkTrack(track); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pan[track], nil
}

func (m *Memory) SetTrackPan(track int, v float64) error {
	if err := checkTrack(track); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pan[track] = clamp(v)
	return nil
}

func (m *Memory) Navigate(d Direction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nav = append(m.nav, d)
	return nil
}

func (m *Memory) NoteOn(idx filter.Index, note uint8, velocity float64) error {
	if _, ok := idx.(filter.PluginIndex); !ok {
		return fmt.Errorf("note %d: %w", note, ErrNoTarget)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, Note{Index: idx, Note: note, Velocity: clamp(velocity)})
	return nil
}

// Navigation returns every direction received so far.
func (m *Memory) Navigation() []Direction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Direction(nil), m.nav...)
}

// Notes returns every note played so far.
func (m *Memory) Notes() []Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Note(nil), m.notes...)
}

func (m *Memory) key(idx filter.Index, param int) (paramKey, error) {
	if _, ok := idx.(filter.PluginIndex); !ok {
		return paramKey{}, fmt.Errorf("param %d on %s: %w", param, filter.IndexString(idx), ErrNoTarget)
	}
	if param < 0 || param >= m.count {
		return paramKey{}, fmt.Errorf("param %d: %w", param, ErrOutOfRange)
	}
	return paramKey{target: idx.String(), param: param}, nil
}

func checkTrack(track int) error {
	if track < 0 || track >= NumTracks {
		return fmt.Errorf("track %d: %w", track, ErrOutOfRange)
	}
	return nil
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}
