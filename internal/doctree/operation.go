package doctree

import "fmt"

// operation is one reversible mutation of a document. apply may resolve
// offsets that inverse relies on, so inverse is only valid after apply.
type operation interface {
	apply(d *Document) error
	inverse(d *Document) operation
}

type insertOp struct {
	parent *Node
	offset int
	nodes  []*Node
}

func (op *insertOp) apply(d *Document) error {
	if op.offset < 0 || op.offset > len(op.parent.children) {
		return fmt.Errorf("insert at %d: %w", op.offset, ErrInvalidPosition)
	}
	op.parent.insertChildren(op.offset, op.nodes)
	n := len(op.nodes)
	d.markers.transform(func(p Position) (Position, bool) {
		if p.Parent == op.parent && p.Offset >= op.offset {
			p.Offset += n
		}
		return p, false
	}, nil, d.recordMarker)
	return nil
}

func (op *insertOp) inverse(d *Document) operation {
	return &moveOp{
		src:       op.parent,
		srcOffset: op.offset,
		count:     len(op.nodes),
		dst:       d.graveyard,
		dstOffset: -1,
		nodes:     op.nodes,
	}
}

// moveOp relocates count children of src. dstOffset is expressed in dst's
// coordinates after the span has been detached; -1 appends.
type moveOp struct {
	src       *Node
	srcOffset int
	count     int
	dst       *Node
	dstOffset int
	nodes     []*Node
}

func (op *moveOp) apply(d *Document) error {
	if len(op.nodes) > 0 {
		// Re-resolve by identity so replays survive offset drift elsewhere.
		first := op.nodes[0]
		if first.parent == nil {
			return fmt.Errorf("move: %w", ErrDetached)
		}
		op.src, op.srcOffset = first.parent, first.Index()
		for i, n := range op.nodes {
			if op.srcOffset+i >= len(op.src.children) || op.src.children[op.srcOffset+i] != n {
				return fmt.Errorf("move: span is no longer contiguous: %w", ErrInvalidPosition)
			}
		}
		op.count = len(op.nodes)
	}
	if op.count <= 0 || op.srcOffset < 0 || op.srcOffset+op.count > len(op.src.children) {
		return fmt.Errorf("move %d nodes from %d: %w", op.count, op.srcOffset, ErrInvalidPosition)
	}
	span := op.src.children[op.srcOffset : op.srcOffset+op.count]
	for _, n := range span {
		if n.IsAncestorOf(op.dst) {
			return fmt.Errorf("move into own subtree: %w", ErrInvalidPosition)
		}
	}

	nodes := op.src.removeChildren(op.srcOffset, op.count)
	dstOffset := op.dstOffset
	if dstOffset < 0 {
		dstOffset = len(op.dst.children)
	}
	if dstOffset > len(op.dst.children) {
		op.src.insertChildren(op.srcOffset, nodes)
		return fmt.Errorf("move to %d: %w", dstOffset, ErrInvalidPosition)
	}
	op.dst.insertChildren(dstOffset, nodes)
	op.dstOffset = dstOffset
	op.nodes = nodes

	srcEnd := op.srcOffset + op.count
	d.markers.transform(func(p Position) (Position, bool) {
		if p.Parent == op.src {
			switch {
			case p.Offset > op.srcOffset && p.Offset < srcEnd:
				return Position{Parent: op.dst, Offset: dstOffset + p.Offset - op.srcOffset}, true
			case p.Offset >= srcEnd:
				p.Offset -= op.count
			}
		}
		if p.Parent == op.dst && p.Offset >= dstOffset {
			p.Offset += op.count
		}
		return p, false
	}, func(p Position) bool {
		for _, n := range nodes {
			if p.Parent != nil && n.IsAncestorOf(p.Parent) {
				return true
			}
		}
		return false
	}, d.recordMarker)
	return nil
}

func (op *moveOp) inverse(d *Document) operation {
	return &moveOp{
		src:       op.dst,
		srcOffset: op.dstOffset,
		count:     op.count,
		dst:       op.src,
		dstOffset: op.srcOffset,
		nodes:     op.nodes,
	}
}

type textOp struct {
	node     *Node
	old, new string
}

func (op *textOp) apply(d *Document) error {
	op.old = op.node.Text
	op.node.Text = op.new
	return nil
}

func (op *textOp) inverse(d *Document) operation {
	return &textOp{node: op.node, new: op.old}
}

type attrOp struct {
	node           *Node
	key            string
	old, new       string
	hadOld, hasNew bool
}

func (op *attrOp) apply(d *Document) error {
	op.old, op.hadOld = op.node.Attr(op.key)
	if op.hasNew {
		op.node.setAttr(op.key, op.new)
	} else {
		op.node.removeAttr(op.key)
	}
	return nil
}

func (op *attrOp) inverse(d *Document) operation {
	return &attrOp{node: op.node, key: op.key, new: op.old, hasNew: op.hadOld}
}

// markerOp sets a marker to rng whatever its current state; nil removes it.
type markerOp struct {
	name string
	old  *Range
	rng  *Range
}

func (op *markerOp) apply(d *Document) error {
	op.old = nil
	if m, ok := d.markers.Get(op.name); ok {
		cur := m.rng
		op.old = &cur
	}
	d.markers.set(op.name, op.rng)
	d.recordMarker(op.name, op.old, op.rng)
	return nil
}

func (op *markerOp) inverse(d *Document) operation {
	return &markerOp{name: op.name, rng: cloneRange(op.old)}
}
