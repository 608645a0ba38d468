package doctree

// MarkerChange describes how one marker changed during the current batch.
// A nil range means the marker did not exist at that point.
type MarkerChange struct {
	Name     string
	OldRange *Range // Range at the start of the batch
	NewRange *Range // Range now
}

// Differ accumulates the changes of the batch in progress. It is reset when
// the batch settles.
type Differ struct {
	markers map[string]*MarkerChange
	seen    map[string]bool
	order   []string
	ops     int
}

func newDiffer() *Differ {
	return &Differ{markers: make(map[string]*MarkerChange), seen: make(map[string]bool)}
}

// ChangedMarkers returns the marker changes of the current batch, in the order
// the markers were first touched. Markers added and removed within the same
// batch are omitted.
func (d *Differ) ChangedMarkers() []MarkerChange {
	out := make([]MarkerChange, 0, len(d.order))
	for _, name := range d.order {
		ch, ok := d.markers[name]
		if !ok {
			continue
		}
		out = append(out, *ch)
	}
	return out
}

// IsEmpty reports whether the batch has applied no operations so far.
func (d *Differ) IsEmpty() bool {
	return d.ops == 0
}

// OpCount returns the number of operations applied in the batch so far.
func (d *Differ) OpCount() int {
	return d.ops
}

func (d *Differ) recordMarker(name string, old, new *Range) {
	ch, ok := d.markers[name]
	if !ok {
		d.markers[name] = &MarkerChange{Name: name, OldRange: cloneRange(old), NewRange: cloneRange(new)}
		if !d.seen[name] {
			d.seen[name] = true
			d.order = append(d.order, name)
		}
		return
	}
	ch.NewRange = cloneRange(new)
	if ch.OldRange == nil && ch.NewRange == nil {
		delete(d.markers, name)
	}
}

func (d *Differ) reset() {
	d.markers = make(map[string]*MarkerChange)
	d.seen = make(map[string]bool)
	d.order = nil
	d.ops = 0
}

func cloneRange(r *Range) *Range {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
