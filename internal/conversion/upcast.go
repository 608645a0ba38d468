// Package conversion turns golang.org/x/net/html view nodes into document
// model nodes (upcast) and back (downcast). Features plug into both directions
// with hooks keyed by view name or marker group.
package conversion

import (
	"fmt"

	"github.com/dgallion1/docmark/internal/doctree"
	"golang.org/x/net/html"
)

// CommentView is the view name under which HTML comment nodes are dispatched.
const CommentView = "$comment"

// MarkerUpcastFunc consumes a view node and returns the name of a marker to
// bind at the node's position. An empty name drops the node.
type MarkerUpcastFunc func(w *doctree.Writer, n *html.Node) (string, error)

// Upcaster converts view nodes into model nodes.
type Upcaster struct {
	markers map[string]MarkerUpcastFunc
}

// NewUpcaster returns an upcaster with the default element and text handling.
func NewUpcaster() *Upcaster {
	return &Upcaster{markers: make(map[string]MarkerUpcastFunc)}
}

// ElementToMarker registers fn for view nodes named view (an element name or
// CommentView). Matching nodes become collapsed markers instead of content.
func (u *Upcaster) ElementToMarker(view string, fn MarkerUpcastFunc) {
	u.markers[view] = fn
}

// ViewName returns the dispatch key of a view node.
func ViewName(n *html.Node) string {
	switch n.Type {
	case html.CommentNode:
		return CommentView
	case html.ElementNode:
		return n.Data
	}
	return ""
}

type pendingMarker struct {
	name   string
	parent *doctree.Node // nil for the top level of the converted fragment
	offset int
}

// Convert upcasts views and inserts the result at pos. Markers produced by
// hooks are bound after the content is in place. It returns the number of
// top-level model nodes inserted.
func (u *Upcaster) Convert(w *doctree.Writer, pos doctree.Position, views []*html.Node) (int, error) {
	var top []*doctree.Node
	var pending []pendingMarker
	if err := u.convertInto(w, views, nil, &top, &pending); err != nil {
		return 0, err
	}
	if err := w.Insert(pos.Parent, pos.Offset, top...); err != nil {
		return 0, fmt.Errorf("insert upcast content: %w", err)
	}
	for _, pm := range pending {
		p := doctree.Position{Parent: pm.parent, Offset: pm.offset}
		if pm.parent == nil {
			p = doctree.Position{Parent: pos.Parent, Offset: pos.Offset + pm.offset}
		}
		if _, err := w.AddMarker(pm.name, doctree.Collapsed(p)); err != nil {
			return 0, fmt.Errorf("bind marker %s: %w", pm.name, err)
		}
	}
	return len(top), nil
}

func (u *Upcaster) convertInto(w *doctree.Writer, views []*html.Node, parent *doctree.Node, out *[]*doctree.Node, pending *[]pendingMarker) error {
	for _, v := range views {
		if fn, ok := u.markers[ViewName(v)]; ok {
			name, err := fn(w, v)
			if err != nil {
				return fmt.Errorf("upcast %s: %w", ViewName(v), err)
			}
			if name != "" {
				*pending = append(*pending, pendingMarker{name: name, parent: parent, offset: len(*out)})
			}
			continue
		}

		switch v.Type {
		case html.TextNode:
			*out = append(*out, doctree.NewText(v.Data))
		case html.ElementNode:
			el := doctree.NewElement(v.Data, modelAttrs(v.Attr)...)
			var kids []*doctree.Node
			if err := u.convertInto(w, childNodes(v), el, &kids, pending); err != nil {
				return err
			}
			el.Append(kids...)
			*out = append(*out, el)
		case html.DocumentNode:
			if err := u.convertInto(w, childNodes(v), parent, out, pending); err != nil {
				return err
			}
		}
	}
	return nil
}

func childNodes(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func modelAttrs(attrs []html.Attribute) []doctree.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]doctree.Attribute, 0, len(attrs))
	for _, a := range attrs {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		out = append(out, doctree.Attribute{Key: key, Val: a.Val})
	}
	return out
}
