// Package comment preserves HTML comments across editing. Each comment becomes
// a collapsed marker named "$comment:<id>" and its raw content is stored as an
// attribute of the main root under the same name. A post-fixer purges both
// when the marker's content is deleted.
package comment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
)

// MarkerPrefix namespaces comment markers in the shared marker registry.
const MarkerPrefix = "$comment:"

// ErrNotCommentMarker indicates a name outside the comment namespace.
var ErrNotCommentMarker = errors.New("not a comment marker name")

// IsCommentMarker reports whether name belongs to a comment marker.
func IsCommentMarker(name string) bool {
	return len(name) > len(MarkerPrefix) && strings.HasPrefix(name, MarkerPrefix)
}

// Store holds comment payloads in the main root's attributes, keyed by
// marker name.
type Store struct {
	doc *doctree.Document
}

// NewStore returns the payload store of doc.
func NewStore(doc *doctree.Document) *Store {
	return &Store{doc: doc}
}

// Get returns the payload stored under name.
func (s *Store) Get(name string) (string, bool) {
	return s.doc.Root().Attr(name)
}

// Set stores content under name within the writer's batch.
func (s *Store) Set(w *doctree.Writer, name, content string) error {
	if !IsCommentMarker(name) {
		return fmt.Errorf("%q: %w", name, ErrNotCommentMarker)
	}
	return w.SetAttribute(s.doc.Root(), name, content)
}

// Remove deletes the payload stored under name. Removing a missing entry is a no-op.
func (s *Store) Remove(w *doctree.Writer, name string) error {
	return w.RemoveAttribute(s.doc.Root(), name)
}

// Names returns the keys of stored payloads in insertion order.
func (s *Store) Names() []string {
	return s.doc.Root().AttrKeys(MarkerPrefix)
}

// Comment is a preserved comment and where it sits in the main root.
type Comment struct {
	Name    string `json:"name"`
	Path    []int  `json:"path"`
	Content string `json:"content"`
}

// List returns the live comments of doc in creation order.
func List(doc *doctree.Document) []Comment {
	s := NewStore(doc)
	var out []Comment
	for _, m := range doc.Markers().All() {
		if !IsCommentMarker(m.Name()) {
			continue
		}
		content, _ := s.Get(m.Name())
		out = append(out, Comment{
			Name:    m.Name(),
			Path:    m.Range().Start.Path(),
			Content: content,
		})
	}
	return out
}

// RemoveAll unbinds every comment marker and drops its payload within the
// writer's batch. It returns the number of comments removed.
func RemoveAll(w *doctree.Writer) (int, error) {
	doc := w.Document()
	s := NewStore(doc)
	removed := 0
	for _, name := range doc.Markers().Names(MarkerPrefix) {
		if !IsCommentMarker(name) {
			continue
		}
		if err := w.RemoveMarker(name); err != nil {
			return 0, err
		}
		if err := s.Remove(w, name); err != nil {
			return 0, err
		}
		removed++
	}
	return removed, nil
}
