package plug

import (
	"errors"
	"fmt"
	"strings"

	"surfplug/filter"
	"surfplug/surface"
)

var (
	// ErrDuplicateEntry is returned when a plugin name or window is
	// registered twice.
	ErrDuplicateEntry = errors.New("duplicate registry entry")

	// ErrInvalidEntry is returned for entries missing their key or factory.
	ErrInvalidEntry = errors.New("invalid registry entry")
)

// Kind tells how an entry is looked up.
type Kind int

const (
	// KindStandard entries are keyed by plugin names.
	KindStandard Kind = iota
	// KindWindow entries are keyed by a host window.
	KindWindow
	// KindSpecial entries are active whenever their predicate holds.
	KindSpecial
)

func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindWindow:
		return "window"
	case KindSpecial:
		return "special"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Entry ties a lookup key to a plugin factory. Build entries with Standard,
// Window or Special.
type Entry struct {
	id     int
	kind   Kind
	names  []string
	window filter.WindowIndex
	label  string
	active func() bool
	create Factory
}

// Standard is an entry for plugins with any of the given names.
func Standard(create Factory, names ...string) Entry {
	return Entry{kind: KindStandard, names: names, create: create}
}

// Window is an entry for a host window.
func Window(id filter.WindowIndex, create Factory) Entry {
	return Entry{kind: KindWindow, window: id, create: create}
}

// Special is an entry that is active whenever active returns true,
// regardless of focus. name is only used in logs.
func Special(name string, active func() bool, create Factory) Entry {
	return Entry{kind: KindSpecial, label: name, active: active, create: create}
}

func (e *Entry) ID() int                    { return e.id }
func (e *Entry) Kind() Kind                 { return e.kind }
func (e *Entry) Names() []string            { return e.names }
func (e *Entry) Window() filter.WindowIndex { return e.window }

// Active evaluates the activation predicate of a special entry.
func (e *Entry) Active() bool {
	return e.kind == KindSpecial && e.active()
}

// Create builds a plugin over sh.
func (e *Entry) Create(sh *surface.Shadow) Plugin {
	return e.create(sh)
}

// Name describes the entry for logs.
func (e *Entry) Name() string {
	switch e.kind {
	case KindStandard:
		if len(e.names) == 0 {
			return "fallback"
		}
		return strings.Join(e.names, "|")
	case KindWindow:
		return e.window.String()
	case KindSpecial:
		return "special:" + e.label
	default:
		return e.kind.String()
	}
}

func (e *Entry) validate() error {
	if e.create == nil {
		return fmt.Errorf("%w: %s entry without factory", ErrInvalidEntry, e.kind)
	}
	switch e.kind {
	case KindStandard:
		if len(e.names) == 0 {
			return fmt.Errorf("%w: standard entry without names", ErrInvalidEntry)
		}
		for _, n := range e.names {
			if n == "" {
				return fmt.Errorf("%w: empty plugin name", ErrInvalidEntry)
			}
		}
	case KindWindow:
		if e.window < 0 {
			return fmt.Errorf("%w: negative window %d", ErrInvalidEntry, e.window)
		}
	case KindSpecial:
		if e.active == nil {
			return fmt.Errorf("%w: special entry %q without predicate", ErrInvalidEntry, e.label)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidEntry, int(e.kind))
	}
	return nil
}

// Target is what the host currently focuses.
type Target struct {
	Index  filter.Index
	Plugin string // plugin name, empty for windows
}

// Context returns the filter context for t.
func (t Target) Context() filter.Context {
	return filter.Context{Index: t.Index, Plugin: t.Plugin}
}

func (t Target) String() string {
	if t.Plugin != "" {
		return fmt.Sprintf("%s %q", filter.IndexString(t.Index), t.Plugin)
	}
	return filter.IndexString(t.Index)
}

// Registry maps targets to plugin entries.
//
// Populate it at startup, before the first dispatch, and Clear it on
// shutdown or reload. It is not safe for concurrent use; the host owns it.
type Registry struct {
	entries  []*Entry
	byName   map[string]*Entry
	byWindow map[filter.WindowIndex]*Entry
	specials []*Entry
	fallback *Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*Entry),
		byWindow: make(map[filter.WindowIndex]*Entry),
	}
}

// Register adds e. Names and windows must be unique across the registry.
func (r *Registry) Register(e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	switch e.kind {
	case KindStandard:
		for _, n := range e.names {
			if _, dup := r.byName[n]; dup {
				return fmt.Errorf("%w: plugin %q", ErrDuplicateEntry, n)
			}
		}
	case KindWindow:
		if _, dup := r.byWindow[e.window]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.window)
		}
	case KindSpecial:
		// specials have no key to collide on
	}

	entry := e
	entry.id = len(r.entries)
	r.entries = append(r.entries, &entry)

	switch entry.kind {
	case KindStandard:
		for _, n := range entry.names {
			r.byName[n] = &entry
		}
	case KindWindow:
		r.byWindow[entry.window] = &entry
	case KindSpecial:
		r.specials = append(r.specials, &entry)
	}
	return nil
}

// SetFallback registers the standard plugin used when a focused plugin has
// no entry of its own.
func (r *Registry) SetFallback(create Factory) error {
	if create == nil {
		return fmt.Errorf("%w: fallback without factory", ErrInvalidEntry)
	}
	if r.fallback != nil {
		return fmt.Errorf("%w: fallback", ErrDuplicateEntry)
	}
	entry := &Entry{id: len(r.entries), kind: KindStandard, create: create}
	r.entries = append(r.entries, entry)
	r.fallback = entry
	return nil
}

// Resolve finds the entry for t. Windows resolve by window index, plugins
// by name and then to the fallback.
func (r *Registry) Resolve(t Target) (*Entry, bool) {
	switch idx := t.Index.(type) {
	case filter.WindowIndex:
		e, ok := r.byWindow[idx]
		return e, ok
	case filter.PluginIndex:
		if e, ok := r.byName[t.Plugin]; ok {
			return e, true
		}
		if r.fallback != nil {
			return r.fallback, true
		}
	}
	return nil, false
}

// ActiveSpecials returns the special entries whose predicate currently
// holds, in registration order.
func (r *Registry) ActiveSpecials() []*Entry {
	var out []*Entry
	for _, e := range r.specials {
		if e.Active() {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns every entry in registration order.
func (r *Registry) Entries() []*Entry {
	return append([]*Entry(nil), r.entries...)
}

// Len returns the number of entries, fallback included.
func (r *Registry) Len() int { return len(r.entries) }

// Clear removes every entry.
func (r *Registry) Clear() {
	r.entries = nil
	r.byName = make(map[string]*Entry)
	r.byWindow = make(map[filter.WindowIndex]*Entry)
	r.specials = nil
	r.fallback = nil
}
