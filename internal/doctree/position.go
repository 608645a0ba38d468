package doctree

// Position is a location between children of an element: offset 0 is before
// the first child, offset ChildCount() after the last.
type Position struct {
	Parent *Node
	Offset int
}

// Root returns the root the position is attached to.
func (p Position) Root() *Node {
	if p.Parent == nil {
		return nil
	}
	return p.Parent.Root()
}

// RootName returns the name of the root the position lives in, or "" when detached.
func (p Position) RootName() string {
	if p.Parent == nil {
		return ""
	}
	return p.Parent.RootName()
}

// Path returns the offsets from the root down to the position.
func (p Position) Path() []int {
	if p.Parent == nil {
		return nil
	}
	return append(p.Parent.Path(), p.Offset)
}

// Range is a span between two positions. A collapsed range marks a single point.
type Range struct {
	Start Position
	End   Position
}

// Collapsed returns a range that starts and ends at p.
func Collapsed(p Position) Range {
	return Range{Start: p, End: p}
}

// IsCollapsed reports whether start and end are the same position.
func (r Range) IsCollapsed() bool {
	return r.Start == r.End
}

// RootName returns the root the range starts in.
func (r Range) RootName() string {
	return r.Start.RootName()
}

// InGraveyard reports whether the range has been moved into the deletion area.
func (r Range) InGraveyard() bool {
	return r.Start.RootName() == GraveyardRoot
}
