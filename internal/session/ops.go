package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docmark/internal/comment"
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/editor"
	"github.com/dgallion1/docmark/internal/parser"
)

// Op kinds
const (
	OpRemove     = "remove"
	OpMove       = "move"
	OpInsertHTML = "insert_html"
	OpSetText    = "set_text"
	OpSetAttr    = "set_attr"
)

// Op errors
var (
	// ErrUnknownOp indicates an op kind this service does not handle.
	ErrUnknownOp = errors.New("unknown op")

	// ErrReservedKey indicates an attribute key owned by comment preservation.
	ErrReservedKey = errors.New("attribute key is reserved")
)

// Op is one edit. Path addresses a position (remove, move, insert_html) or a
// node (set_text, set_attr) as child offsets from the main root.
type Op struct {
	Op    string  `json:"op"`
	Path  []int   `json:"path"`
	Count int     `json:"count,omitempty"`
	To    []int   `json:"to,omitempty"`
	HTML  string  `json:"html,omitempty"`
	Text  string  `json:"text,omitempty"`
	Key   string  `json:"key,omitempty"`
	Value *string `json:"value,omitempty"` // nil removes the attribute
}

func (op Op) count() int {
	if op.Count <= 0 {
		return 1
	}
	return op.Count
}

func (op Op) apply(ed *editor.Editor, w *doctree.Writer) error {
	doc := ed.Document()
	switch op.Op {
	case OpRemove:
		pos, err := doc.PositionAt(op.Path)
		if err != nil {
			return err
		}
		return w.Remove(pos.Parent, pos.Offset, op.count())

	case OpMove:
		pos, err := doc.PositionAt(op.Path)
		if err != nil {
			return err
		}
		to, err := doc.PositionAt(op.To)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		return w.Move(pos.Parent, pos.Offset, op.count(), to.Parent, to.Offset)

	case OpInsertHTML:
		pos, err := doc.PositionAt(op.Path)
		if err != nil {
			return err
		}
		views, err := parser.FragmentString(op.HTML)
		if err != nil {
			return err
		}
		_, err = ed.InsertView(w, pos, views)
		return err

	case OpSetText:
		n, err := doc.NodeAt(op.Path)
		if err != nil {
			return err
		}
		return w.SetText(n, op.Text)

	case OpSetAttr:
		if strings.HasPrefix(op.Key, comment.MarkerPrefix) {
			return fmt.Errorf("%q: %w", op.Key, ErrReservedKey)
		}
		n, err := doc.NodeAt(op.Path)
		if err != nil {
			return err
		}
		if op.Value == nil {
			return w.RemoveAttribute(n, op.Key)
		}
		return w.SetAttribute(n, op.Key, *op.Value)

	default:
		return fmt.Errorf("%q: %w", op.Op, ErrUnknownOp)
	}
}
