package doctree

import (
	"errors"
	"fmt"
)

// ErrNoBatch indicates a Writer used after its batch settled.
var ErrNoBatch = errors.New("writer used outside of its batch")

// Writer applies operations within a batch. It is only valid inside the
// function passed to Document.Change.
type Writer struct {
	doc *Document
}

// Document returns the document being changed.
func (w *Writer) Document() *Document { return w.doc }

func (w *Writer) apply(op operation) error {
	d := w.doc
	if d.active == nil {
		return ErrNoBatch
	}
	if err := op.apply(d); err != nil {
		return err
	}
	d.active.ops = append(d.active.ops, op)
	d.differ.ops++
	return nil
}

func (w *Writer) checkElement(n *Node) error {
	if n == nil {
		return fmt.Errorf("nil node: %w", ErrInvalidPosition)
	}
	if n.IsText() {
		return ErrNotElement
	}
	return w.checkAttached(n)
}

func (w *Writer) checkAttached(n *Node) error {
	root := n.Root()
	if root != w.doc.main && root != w.doc.graveyard {
		return ErrDetached
	}
	return nil
}

func (w *Writer) checkPosition(p Position) error {
	if err := w.checkElement(p.Parent); err != nil {
		return err
	}
	if p.Offset < 0 || p.Offset > p.Parent.ChildCount() {
		return fmt.Errorf("offset %d: %w", p.Offset, ErrInvalidPosition)
	}
	return nil
}

// Insert attaches detached nodes as children of parent starting at offset.
func (w *Writer) Insert(parent *Node, offset int, nodes ...*Node) error {
	if err := w.checkElement(parent); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return nil
	}
	for _, n := range nodes {
		if n.parent != nil || n.IsRoot() {
			return fmt.Errorf("insert attached node: %w", ErrInvalidPosition)
		}
	}
	return w.apply(&insertOp{parent: parent, offset: offset, nodes: nodes})
}

// InsertElement creates an element at the given position.
func (w *Writer) InsertElement(parent *Node, offset int, name string, attrs ...Attribute) (*Node, error) {
	n := NewElement(name, attrs...)
	if err := w.Insert(parent, offset, n); err != nil {
		return nil, err
	}
	return n, nil
}

// InsertText creates a text node at the given position.
func (w *Writer) InsertText(parent *Node, offset int, text string) (*Node, error) {
	n := NewText(text)
	if err := w.Insert(parent, offset, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Remove moves count children of parent, starting at offset, to the graveyard.
// Markers inside the removed content move with it.
func (w *Writer) Remove(parent *Node, offset, count int) error {
	if err := w.checkElement(parent); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	return w.apply(&moveOp{src: parent, srcOffset: offset, count: count, dst: w.doc.graveyard, dstOffset: -1})
}

// RemoveNode moves a single attached node to the graveyard.
func (w *Writer) RemoveNode(n *Node) error {
	if n == nil || n.parent == nil {
		return ErrDetached
	}
	return w.Remove(n.parent, n.Index(), 1)
}

// Move relocates count children of parent to target at targetOffset. The
// target offset is given in the tree as it is before the move.
func (w *Writer) Move(parent *Node, offset, count int, target *Node, targetOffset int) error {
	if err := w.checkElement(parent); err != nil {
		return err
	}
	if err := w.checkPosition(Position{Parent: target, Offset: targetOffset}); err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if target == parent {
		end := offset + count
		switch {
		case targetOffset > offset && targetOffset < end:
			return fmt.Errorf("move into moved span: %w", ErrInvalidPosition)
		case targetOffset == offset || targetOffset == end:
			return nil
		case targetOffset > end:
			targetOffset -= count
		}
	}
	return w.apply(&moveOp{src: parent, srcOffset: offset, count: count, dst: target, dstOffset: targetOffset})
}

// SetText replaces the content of a text node.
func (w *Writer) SetText(n *Node, text string) error {
	if n == nil || !n.IsText() {
		return fmt.Errorf("set text: %w", ErrInvalidPosition)
	}
	if err := w.checkAttached(n); err != nil {
		return err
	}
	if n.Text == text {
		return nil
	}
	return w.apply(&textOp{node: n, new: text})
}

// SetAttribute sets an attribute on an element or root.
func (w *Writer) SetAttribute(n *Node, key, val string) error {
	if err := w.checkElement(n); err != nil {
		return err
	}
	if cur, ok := n.Attr(key); ok && cur == val {
		return nil
	}
	return w.apply(&attrOp{node: n, key: key, new: val, hasNew: true})
}

// RemoveAttribute removes an attribute. Removing a missing key is a no-op.
func (w *Writer) RemoveAttribute(n *Node, key string) error {
	if err := w.checkElement(n); err != nil {
		return err
	}
	if _, ok := n.Attr(key); !ok {
		return nil
	}
	return w.apply(&attrOp{node: n, key: key})
}

func (w *Writer) checkRange(r Range) error {
	if err := w.checkPosition(r.Start); err != nil {
		return err
	}
	return w.checkPosition(r.End)
}

// AddMarker binds a new marker to r.
func (w *Writer) AddMarker(name string, r Range) (*Marker, error) {
	if w.doc.markers.Has(name) {
		return nil, fmt.Errorf("%s: %w", name, ErrMarkerExists)
	}
	if err := w.checkRange(r); err != nil {
		return nil, err
	}
	if err := w.apply(&markerOp{name: name, rng: &r}); err != nil {
		return nil, err
	}
	m, _ := w.doc.markers.Get(name)
	return m, nil
}

// UpdateMarker moves an existing marker to r.
func (w *Writer) UpdateMarker(name string, r Range) error {
	if !w.doc.markers.Has(name) {
		return fmt.Errorf("%s: %w", name, ErrMarkerNotFound)
	}
	if err := w.checkRange(r); err != nil {
		return err
	}
	return w.apply(&markerOp{name: name, rng: &r})
}

// RemoveMarker unbinds a marker.
func (w *Writer) RemoveMarker(name string) error {
	if !w.doc.markers.Has(name) {
		return fmt.Errorf("%s: %w", name, ErrMarkerNotFound)
	}
	return w.apply(&markerOp{name: name})
}

// revert applies the inverse of every operation of rec in reverse order and
// puts each marker rec touched back where it was before rec. Markers rec did
// not touch keep the range they had before the revert, even when restored
// content lands at their offset.
func (w *Writer) revert(rec *batch) error {
	before := make(map[string]Range, w.doc.markers.Len())
	for _, m := range w.doc.markers.All() {
		before[m.name] = m.rng
	}
	for i := len(rec.ops) - 1; i >= 0; i-- {
		if err := w.apply(rec.ops[i].inverse(w.doc)); err != nil {
			return err
		}
	}
	touched := make(map[string]bool, len(rec.markers))
	for _, ch := range rec.markers {
		touched[ch.Name] = true
		if err := w.apply(&markerOp{name: ch.Name, rng: cloneRange(ch.OldRange)}); err != nil {
			return err
		}
	}
	for _, m := range w.doc.markers.All() {
		old, ok := before[m.name]
		if !ok || touched[m.name] || m.rng == old {
			continue
		}
		if err := w.apply(&markerOp{name: m.name, rng: &old}); err != nil {
			return err
		}
	}
	return nil
}
