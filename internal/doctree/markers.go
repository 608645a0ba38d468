package doctree

import (
	"sort"
	"strings"
)

// Marker is a named range bound to the document independently of its content.
type Marker struct {
	name string
	rng  Range
	seq  uint64
}

// Name returns the marker name.
func (m *Marker) Name() string { return m.name }

// Range returns the current location of the marker.
func (m *Marker) Range() Range { return m.rng }

// Markers is the registry of markers bound to a document. It is read-only
// outside of a Writer.
type Markers struct {
	byName  map[string]*Marker
	nextSeq uint64
}

func newMarkers() *Markers {
	return &Markers{byName: make(map[string]*Marker)}
}

// Get returns the marker bound under name.
func (c *Markers) Get(name string) (*Marker, bool) {
	m, ok := c.byName[name]
	return m, ok
}

// Has reports whether a marker is bound under name.
func (c *Markers) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Len returns the number of live markers.
func (c *Markers) Len() int {
	return len(c.byName)
}

// All returns every live marker in creation order.
func (c *Markers) All() []*Marker {
	out := make([]*Marker, 0, len(c.byName))
	for _, m := range c.byName {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Names returns the names of live markers starting with prefix, in creation order.
func (c *Markers) Names(prefix string) []string {
	var names []string
	for _, m := range c.All() {
		if strings.HasPrefix(m.name, prefix) {
			names = append(names, m.name)
		}
	}
	return names
}

func (c *Markers) set(name string, r *Range) {
	if r == nil {
		delete(c.byName, name)
		return
	}
	if m, ok := c.byName[name]; ok {
		m.rng = *r
		return
	}
	c.nextSeq++
	c.byName[name] = &Marker{name: name, rng: *r, seq: c.nextSeq}
}

// transform rewrites every marker position through fn. A marker counts as
// changed when fn rewrites one of its positions or when touched reports that
// the subtree holding it was relocated.
func (c *Markers) transform(fn func(Position) (Position, bool), touched func(Position) bool, record func(name string, old, new *Range)) {
	for _, m := range c.All() {
		old := m.rng
		start, movedStart := fn(old.Start)
		end, movedEnd := fn(old.End)
		changed := movedStart || movedEnd || start != old.Start || end != old.End
		if !changed && touched != nil {
			changed = touched(old.Start) || touched(old.End)
		}
		m.rng = Range{Start: start, End: end}
		if changed {
			cur := m.rng
			record(m.name, &old, &cur)
		}
	}
}
