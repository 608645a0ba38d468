package comment

import (
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/uid"
	"golang.org/x/net/html"
)

// Converters turns comment nodes into markers and back.
type Converters struct {
	store *Store
	ids   uid.Generator
}

// NewConverters returns converters backed by store. Marker ids come from ids.
func NewConverters(store *Store, ids uid.Generator) *Converters {
	return &Converters{store: store, ids: ids}
}

// Upcast stores the raw content of a comment node and returns the name of the
// marker to bind at its position.
func (c *Converters) Upcast(w *doctree.Writer, n *html.Node) (string, error) {
	name := c.newName(w.Document())
	if err := c.store.Set(w, name, n.Data); err != nil {
		return "", err
	}
	return name, nil
}

func (c *Converters) newName(doc *doctree.Document) string {
	for {
		name := MarkerPrefix + c.ids.NewID()
		if _, taken := c.store.Get(name); taken || doc.Markers().Has(name) {
			continue
		}
		return name
	}
}

// Downcast returns the comment node for a marker. A missing payload yields an
// empty comment.
func (c *Converters) Downcast(markerName string) *html.Node {
	content, _ := c.store.Get(markerName)
	return &html.Node{Type: html.CommentNode, Data: content}
}
