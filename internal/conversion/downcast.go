package conversion

import (
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MarkerDowncastFunc produces the view node emitted for a marker. Returning
// nil emits nothing.
type MarkerDowncastFunc func(markerName string) *html.Node

// Downcaster converts the main root of a document into view nodes.
type Downcaster struct {
	markers map[string]MarkerDowncastFunc
}

// NewDowncaster returns a downcaster with the default element and text handling.
func NewDowncaster() *Downcaster {
	return &Downcaster{markers: make(map[string]MarkerDowncastFunc)}
}

// MarkerToElement registers fn for markers whose group is group.
func (d *Downcaster) MarkerToElement(group string, fn MarkerDowncastFunc) {
	d.markers[group] = fn
}

// MarkerGroup returns the part of a marker name before the first colon.
func MarkerGroup(name string) string {
	group, _, _ := strings.Cut(name, ":")
	return group
}

type markerIndex map[*doctree.Node]map[int][]string

// Convert downcasts the main root. Markers are emitted at their start
// position; markers sharing a position come out in creation order.
func (d *Downcaster) Convert(doc *doctree.Document) []*html.Node {
	idx := make(markerIndex)
	for _, m := range doc.Markers().All() {
		if _, ok := d.markers[MarkerGroup(m.Name())]; !ok {
			continue
		}
		start := m.Range().Start
		if start.RootName() != doctree.MainRoot {
			continue
		}
		if idx[start.Parent] == nil {
			idx[start.Parent] = make(map[int][]string)
		}
		idx[start.Parent][start.Offset] = append(idx[start.Parent][start.Offset], m.Name())
	}
	return d.convertChildren(doc.Root(), idx)
}

func (d *Downcaster) convertChildren(parent *doctree.Node, idx markerIndex) []*html.Node {
	var out []*html.Node
	emit := func(offset int) {
		for _, name := range idx[parent][offset] {
			if v := d.markers[MarkerGroup(name)](name); v != nil {
				out = append(out, v)
			}
		}
	}
	for i, c := range parent.Children() {
		emit(i)
		out = append(out, d.convertNode(c, idx))
	}
	emit(parent.ChildCount())
	return out
}

func (d *Downcaster) convertNode(n *doctree.Node, idx markerIndex) *html.Node {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	v := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Name,
		DataAtom: atom.Lookup([]byte(n.Name)),
		Attr:     viewAttrs(n.Attrs),
	}
	for _, c := range d.convertChildren(n, idx) {
		v.AppendChild(c)
	}
	return v
}

var attrNamespaces = map[string]bool{"xlink": true, "xml": true, "xmlns": true}

func viewAttrs(attrs []doctree.Attribute) []html.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]html.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if ns, key, ok := strings.Cut(a.Key, ":"); ok && attrNamespaces[ns] {
			out = append(out, html.Attribute{Namespace: ns, Key: key, Val: a.Val})
			continue
		}
		out = append(out, html.Attribute{Key: a.Key, Val: a.Val})
	}
	return out
}
