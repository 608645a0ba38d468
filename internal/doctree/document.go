// Package doctree is the editable document model: a tree of elements and text
// under a main root, a graveyard root holding removed content, a registry of
// named markers tracked through every structural edit, and batched changes
// with post-fixers and undo history.
package doctree

import (
	"errors"
	"fmt"
)

// Root names.
const (
	MainRoot      = "main"
	GraveyardRoot = "$graveyard"
)

// MaxFixupPasses bounds the post-fixer loop of a single batch.
const MaxFixupPasses = 32

// ErrBatchActive indicates undo or redo was requested inside a batch.
var ErrBatchActive = errors.New("operation not allowed during a batch")

// PostFixer runs after every batch, before it settles. It reports whether it
// changed the document, in which case all post-fixers run again.
type PostFixer func(w *Writer) (bool, error)

type batch struct {
	ops     []operation
	markers []MarkerChange
}

// Document is the editable tree. It is not safe for concurrent use; callers
// serialize access (see session.Session).
type Document struct {
	main      *Node
	graveyard *Node
	markers   *Markers
	differ    *Differ

	postFixers []PostFixer
	undoStack  []*batch
	redoStack  []*batch
	active     *batch
}

// New returns an empty document.
func New() *Document {
	return &Document{
		main:      newRoot(MainRoot),
		graveyard: newRoot(GraveyardRoot),
		markers:   newMarkers(),
		differ:    newDiffer(),
	}
}

// Root returns the main root. Its attributes hold document-level state.
func (d *Document) Root() *Node { return d.main }

// Graveyard returns the root that collects removed content.
func (d *Document) Graveyard() *Node { return d.graveyard }

// Markers returns the marker registry.
func (d *Document) Markers() *Markers { return d.markers }

// Differ returns the change log of the batch in progress.
func (d *Document) Differ() *Differ { return d.differ }

// RegisterPostFixer adds a post-fixer. Post-fixers run in registration order.
func (d *Document) RegisterPostFixer(pf PostFixer) {
	d.postFixers = append(d.postFixers, pf)
}

// CanUndo reports whether there is a batch to undo.
func (d *Document) CanUndo() bool { return len(d.undoStack) > 0 }

// CanRedo reports whether there is a batch to redo.
func (d *Document) CanRedo() bool { return len(d.redoStack) > 0 }

// ClearHistory drops the undo and redo stacks. Outside a batch it also
// empties the graveyard, since nothing can restore its content anymore, and
// unbinds any marker still located there.
func (d *Document) ClearHistory() {
	d.undoStack = nil
	d.redoStack = nil
	if d.active != nil {
		return
	}
	for _, m := range d.markers.All() {
		if m.rng.Start.RootName() == GraveyardRoot || m.rng.End.RootName() == GraveyardRoot {
			d.markers.set(m.name, nil)
		}
	}
	d.graveyard.removeChildren(0, len(d.graveyard.children))
}

// NodeAt resolves a path of child offsets from the main root.
func (d *Document) NodeAt(path []int) (*Node, error) {
	n := d.main
	for i, off := range path {
		c := n.Child(off)
		if c == nil {
			return nil, fmt.Errorf("path %v at step %d: %w", path, i, ErrInvalidPosition)
		}
		n = c
	}
	return n, nil
}

// PositionAt resolves a path whose last element is an offset inside the node
// addressed by the preceding elements.
func (d *Document) PositionAt(path []int) (Position, error) {
	if len(path) == 0 {
		return Position{}, fmt.Errorf("empty path: %w", ErrInvalidPosition)
	}
	parent, err := d.NodeAt(path[:len(path)-1])
	if err != nil {
		return Position{}, err
	}
	off := path[len(path)-1]
	if parent.IsText() {
		return Position{}, fmt.Errorf("path %v: %w", path, ErrNotElement)
	}
	if off < 0 || off > parent.ChildCount() {
		return Position{}, fmt.Errorf("path %v: %w", path, ErrInvalidPosition)
	}
	return Position{Parent: parent, Offset: off}, nil
}

// Change runs fn as one undoable batch. If fn or a post-fixer fails, every
// operation of the batch is reverted and the error is returned. A Change
// started inside another joins the outer batch.
func (d *Document) Change(fn func(w *Writer) error) error {
	b, err := d.run(fn)
	if err != nil || b == nil {
		return err
	}
	if len(b.ops) > 0 {
		d.undoStack = append(d.undoStack, b)
		d.redoStack = nil
	}
	return nil
}

// ChangeTransparent runs fn as a batch that is not recorded in undo history.
func (d *Document) ChangeTransparent(fn func(w *Writer) error) error {
	_, err := d.run(fn)
	return err
}

// Undo reverts the most recent undoable batch. The revert is itself a batch,
// so post-fixers run on it.
func (d *Document) Undo() error {
	if d.active != nil {
		return ErrBatchActive
	}
	if len(d.undoStack) == 0 {
		return ErrNothingToUndo
	}
	rec := d.undoStack[len(d.undoStack)-1]
	b, err := d.run(func(w *Writer) error { return w.revert(rec) })
	if err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	d.undoStack = d.undoStack[:len(d.undoStack)-1]
	d.redoStack = append(d.redoStack, b)
	return nil
}

// Redo reapplies the most recently undone batch.
func (d *Document) Redo() error {
	if d.active != nil {
		return ErrBatchActive
	}
	if len(d.redoStack) == 0 {
		return ErrNothingToRedo
	}
	rec := d.redoStack[len(d.redoStack)-1]
	b, err := d.run(func(w *Writer) error { return w.revert(rec) })
	if err != nil {
		return fmt.Errorf("redo: %w", err)
	}
	d.redoStack = d.redoStack[:len(d.redoStack)-1]
	d.undoStack = append(d.undoStack, b)
	return nil
}

func (d *Document) run(fn func(w *Writer) error) (*batch, error) {
	if d.active != nil {
		return nil, fn(&Writer{doc: d})
	}
	b := &batch{}
	d.active = b
	defer func() { d.active = nil }()

	w := &Writer{doc: d}
	if err := fn(w); err != nil {
		return nil, d.rollback(b, err)
	}
	if err := d.settle(w); err != nil {
		return nil, d.rollback(b, err)
	}
	b.markers = d.differ.ChangedMarkers()
	d.differ.reset()
	return b, nil
}

// settle runs the post-fixers until a full pass reports no change.
func (d *Document) settle(w *Writer) error {
	for pass := 0; ; pass++ {
		if pass >= MaxFixupPasses {
			return ErrFixupLoop
		}
		changed := false
		for _, pf := range d.postFixers {
			c, err := pf(w)
			if err != nil {
				return fmt.Errorf("post-fixer: %w", err)
			}
			changed = changed || c
		}
		if !changed {
			return nil
		}
	}
}

// rollback reverts every operation of b and restores marker ranges touched
// by it. cause is returned, joined with any failure to revert.
func (d *Document) rollback(b *batch, cause error) error {
	var errs []error
	for i := len(b.ops) - 1; i >= 0; i-- {
		if err := b.ops[i].inverse(d).apply(d); err != nil {
			errs = append(errs, err)
		}
	}
	for _, ch := range d.differ.ChangedMarkers() {
		d.markers.set(ch.Name, ch.OldRange)
	}
	d.differ.reset()
	b.ops = nil
	if len(errs) > 0 {
		return errors.Join(append([]error{cause}, errs...)...)
	}
	return cause
}

func (d *Document) recordMarker(name string, old, new *Range) {
	d.differ.recordMarker(name, old, new)
}
