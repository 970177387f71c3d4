package surface

// ControlShadow is a handle on a claimed control, or an unbound placeholder
// when a bind call found nothing. Every method is safe on both; writes to an
// unbound handle (or one whose shadow was Reset) are dropped.
type ControlShadow struct {
	b    *binding
	slot int
}

func (c *ControlShadow) live() *binding {
	if c == nil || c.b == nil || c.b.released {
		return nil
	}
	return c.b
}

// IsBound reports whether the handle refers to a claimed control.
func (c *ControlShadow) IsBound() bool {
	return c.live() != nil
}

// Control returns the underlying control, nil when unbound.
func (c *ControlShadow) Control() *Control {
	if b := c.live(); b != nil {
		return b.ctl
	}
	return nil
}

// Slot is the position of the handle in the BindMatches batch that created
// it. Zero for BindMatch.
func (c *ControlShadow) Slot() int {
	if c == nil {
		return 0
	}
	return c.slot
}

// Colorize sets the control color.
func (c *ControlShadow) Colorize(col Color) *ControlShadow {
	if b := c.live(); b != nil {
		b.setColor(col)
	}
	return c
}

// Annotate sets the control label.
func (c *ControlShadow) Annotate(text string) *ControlShadow {
	if b := c.live(); b != nil {
		b.setAnnotation(text)
	}
	return c
}

// SetValue sets the displayed value, clamped to [0, 1].
func (c *ControlShadow) SetValue(v float64) *ControlShadow {
	if b := c.live(); b != nil {
		b.setValue(max(0, min(1, v)))
	}
	return c
}

// Color returns the color last written through this handle.
func (c *ControlShadow) Color() Color {
	if b := c.live(); b != nil {
		return b.color
	}
	return ColorOff
}

// Annotation returns the label last written through this handle.
func (c *ControlShadow) Annotation() string {
	if b := c.live(); b != nil {
		return b.annotation
	}
	return ""
}

// Value returns the value last written through this handle.
func (c *ControlShadow) Value() float64 {
	if b := c.live(); b != nil {
		return b.value
	}
	return 0
}

func (c *ControlShadow) String() string {
	if b := c.live(); b != nil {
		return b.ctl.String()
	}
	return "unbound"
}

// ControlShadows is an ordered batch of handles, as returned by
// BindMatches. Sequence setters apply positionally; entries beyond either
// length are ignored.
type ControlShadows []*ControlShadow

// Colorize sets every control to col.
func (cs ControlShadows) Colorize(col Color) ControlShadows {
	for _, c := range cs {
		c.Colorize(col)
	}
	return cs
}

// ColorizeEach sets control i to cols[i].
func (cs ControlShadows) ColorizeEach(cols []Color) ControlShadows {
	for i := range min(len(cs), len(cols)) {
		cs[i].Colorize(cols[i])
	}
	return cs
}

// Annotate sets every label to text.
func (cs ControlShadows) Annotate(text string) ControlShadows {
	for _, c := range cs {
		c.Annotate(text)
	}
	return cs
}

// AnnotateEach sets label i to texts[i].
func (cs ControlShadows) AnnotateEach(texts []string) ControlShadows {
	for i := range min(len(cs), len(texts)) {
		cs[i].Annotate(texts[i])
	}
	return cs
}

// SetValue sets every value to v.
func (cs ControlShadows) SetValue(v float64) ControlShadows {
	for _, c := range cs {
		c.SetValue(v)
	}
	return cs
}

// SetValues sets value i to vs[i].
func (cs ControlShadows) SetValues(vs []float64) ControlShadows {
	for i := range min(len(cs), len(vs)) {
		cs[i].SetValue(vs[i])
	}
	return cs
}

// Bound returns the number of bound handles.
func (cs ControlShadows) Bound() int {
	n := 0
	for _, c := range cs {
		if c.IsBound() {
			n++
		}
	}
	return n
}
