package doctree

import "strings"

// Attribute is a single key/value pair on an element. Order is preserved so
// serialized output keeps the source attribute order.
type Attribute struct {
	Key string
	Val string
}

// Node is an element or a text node in the editable tree.
type Node struct {
	Name  string      // Element name (empty for text nodes)
	Text  string      // Text content (text nodes only)
	Attrs []Attribute // Element attributes

	rootName string // Set on root nodes only
	parent   *Node
	children []*Node
}

// NewElement creates a detached element node.
func NewElement(name string, attrs ...Attribute) *Node {
	return &Node{Name: name, Attrs: attrs}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Text: text}
}

func newRoot(name string) *Node {
	return &Node{Name: name, rootName: name}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Name == "" && n.rootName == ""
}

// IsRoot reports whether n is one of the document roots.
func (n *Node) IsRoot() bool {
	return n.rootName != ""
}

// Parent returns the parent node, or nil for roots and detached nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Child returns the child at index i, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Index returns the offset of n within its parent, or -1 if detached.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Root returns the topmost ancestor of n (n itself for roots).
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// RootName returns the name of the root n is attached to, or "" if detached.
func (n *Node) RootName() string {
	return n.Root().rootName
}

// Path returns the child offsets leading from the root to n.
func (n *Node) Path() []int {
	var path []int
	for cur := n; cur.parent != nil; cur = cur.parent {
		path = append(path, cur.Index())
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IsAncestorOf reports whether n is other or one of its ancestors.
func (n *Node) IsAncestorOf(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Attr returns the value of an attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrKeys returns attribute keys in insertion order, optionally filtered by prefix.
func (n *Node) AttrKeys(prefix string) []string {
	var keys []string
	for _, a := range n.Attrs {
		if strings.HasPrefix(a.Key, prefix) {
			keys = append(keys, a.Key)
		}
	}
	return keys
}

// TextContent concatenates the text of n and all its descendants.
func (n *Node) TextContent() string {
	var buf strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsText() {
			buf.WriteString(n.Text)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// Append adds children to a detached subtree under construction. It must not
// be used on nodes attached to a document; use a Writer for those.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

func (n *Node) setAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Key: key, Val: val})
}

func (n *Node) removeAttr(key string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

func (n *Node) insertChildren(offset int, nodes []*Node) {
	for _, c := range nodes {
		c.parent = n
	}
	rest := append([]*Node(nil), n.children[offset:]...)
	n.children = append(append(n.children[:offset], nodes...), rest...)
}

func (n *Node) removeChildren(offset, count int) []*Node {
	removed := append([]*Node(nil), n.children[offset:offset+count]...)
	n.children = append(n.children[:offset], n.children[offset+count:]...)
	for _, c := range removed {
		c.parent = nil
	}
	return removed
}
