package comment

import (
	"strings"
	"testing"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/editor"
	"github.com/dgallion1/docmark/internal/uid"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
)

func newEditor(t *testing.T, ids uid.Generator, input string) (*editor.Editor, *Plugin) {
	t.Helper()
	p := &Plugin{IDs: ids}
	ed, err := editor.New(nil, p)
	if err != nil {
		t.Fatalf("new editor: %v", err)
	}
	if input != "" {
		if err := ed.LoadHTML(strings.NewReader(input)); err != nil {
			t.Fatalf("load: %v", err)
		}
	}
	return ed, p
}

func data(t *testing.T, ed *editor.Editor) string {
	t.Helper()
	out, err := ed.Data()
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	return out
}

func assertInvariant(t *testing.T, doc *doctree.Document) {
	t.Helper()
	if v := CheckInvariant(doc); len(v) != 0 {
		t.Fatalf("invariant violated: %+v", v)
	}
}

func removeTop(t *testing.T, doc *doctree.Document, offset, count int) {
	t.Helper()
	err := doc.Change(func(w *doctree.Writer) error {
		return w.Remove(doc.Root(), offset, count)
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
}

func TestIsCommentMarker(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"$comment:abc123", true},
		{"$comment:", false},
		{"$commentary:abc", false},
		{"$comment", false},
		{"comment:abc", false},
		{"rule:1", false},
	}
	for _, tt := range tests {
		if got := IsCommentMarker(tt.name); got != tt.want {
			t.Errorf("IsCommentMarker(%q): expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestConvertersRoundTrip(t *testing.T) {
	contents := []string{
		"reviewer note",
		"",
		" padded ",
		"a -- b",
		"<p>not markup</p>",
		"multi\nline",
		"ünïcødé ✓",
	}
	ed, p := newEditor(t, nil, "")
	conv := NewConverters(p.Store(), uid.Random{})
	doc := ed.Document()

	for _, c := range contents {
		var name string
		err := doc.Change(func(w *doctree.Writer) error {
			var err error
			name, err = conv.Upcast(w, &html.Node{Type: html.CommentNode, Data: c})
			if err != nil {
				return err
			}
			_, err = w.AddMarker(name, doctree.Collapsed(doctree.Position{Parent: doc.Root(), Offset: 0}))
			return err
		})
		if err != nil {
			t.Fatalf("upcast %q: %v", c, err)
		}
		got := conv.Downcast(name)
		if got.Type != html.CommentNode {
			t.Errorf("%q: expected comment node, got type %v", c, got.Type)
		}
		if got.Data != c {
			t.Errorf("expected content %q, got %q", c, got.Data)
		}
	}
	assertInvariant(t, doc)
}

func TestLoadAndSerializePreservesComments(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"inline", `<p>x<!-- reviewer note -->y</p>`},
		{"between blocks", `<p>a</p><!--between--><p>b</p>`},
		{"leading and trailing", `<!--first--><p>a</p><!--last-->`},
		{"adjacent", `<p><!--one--><!--two-->text</p>`},
		{"nested", `<ul><li>a<!--deep--></li></ul>`},
		{"empty", `<p>a<!----></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, _ := newEditor(t, nil, tt.input)
			if got := data(t, ed); got != tt.input {
				t.Errorf("expected %q, got %q", tt.input, got)
			}
			assertInvariant(t, ed.Document())
		})
	}
}

func TestUniqueMarkerNames(t *testing.T) {
	const n = 50
	var buf strings.Builder
	for i := 0; i < n; i++ {
		buf.WriteString("<p>x<!--c--></p>")
	}
	ed, p := newEditor(t, uid.Random{}, buf.String())

	names := ed.Document().Markers().Names(MarkerPrefix)
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			t.Fatalf("duplicate marker name %q", name)
		}
		seen[name] = true
	}
	if len(seen) != n {
		t.Errorf("expected %d markers, got %d", n, len(seen))
	}
	if got := len(p.Store().Names()); got != n {
		t.Errorf("expected %d payloads, got %d", n, got)
	}
}

func TestUpcastSkipsTakenNames(t *testing.T) {
	ed, p := newEditor(t, uid.NewFixed("dup", "dup", "fresh"), `<p><!--a--><!--b--></p>`)
	want := []string{"$comment:dup", "$comment:fresh"}
	if diff := cmp.Diff(want, ed.Document().Markers().Names(MarkerPrefix)); diff != "" {
		t.Errorf("marker names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, p.Store().Names()); diff != "" {
		t.Errorf("payload names (-want +got):\n%s", diff)
	}
}

func TestDeleteNodePurgesComment(t *testing.T) {
	ed, p := newEditor(t, uid.NewFixed("abc123"), `<p>before</p><p>x<!--reviewer note-->y</p>`)
	doc := ed.Document()
	const name = "$comment:abc123"

	if !doc.Markers().Has(name) {
		t.Fatalf("expected marker %s", name)
	}
	if got, ok := p.Store().Get(name); !ok || got != "reviewer note" {
		t.Fatalf("expected payload %q, got %q (ok=%v)", "reviewer note", got, ok)
	}

	removeTop(t, doc, 1, 1)

	if doc.Markers().Has(name) {
		t.Error("expected marker purged")
	}
	if _, ok := p.Store().Get(name); ok {
		t.Error("expected payload purged")
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != "<p>before</p>" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestDeleteOneOfTwoComments(t *testing.T) {
	ed, p := newEditor(t, uid.NewFixed("first", "second"), `<p>1<!--a--></p><p>2<!--b--></p>`)
	doc := ed.Document()

	names := doc.Markers().Names(MarkerPrefix)
	if len(names) != 2 || names[0] == names[1] {
		t.Fatalf("expected two distinct markers, got %v", names)
	}

	removeTop(t, doc, 0, 1)

	if doc.Markers().Has("$comment:first") {
		t.Error("expected first marker purged")
	}
	m, ok := doc.Markers().Get("$comment:second")
	if !ok {
		t.Fatal("expected second marker kept")
	}
	if p := m.Range().Start; p.Parent != doc.Root().Child(0) || p.Offset != 1 {
		t.Errorf("expected second marker inside the remaining paragraph, got %v", p.Path())
	}
	if got, _ := p.Store().Get("$comment:second"); got != "b" {
		t.Errorf("expected payload %q, got %q", "b", got)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != "<p>2<!--b--></p>" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestBulkDeletePurgesAll(t *testing.T) {
	ed, _ := newEditor(t, nil, `<p>a<!--1--></p><!--2--><p>b<!--3--></p><p>c<!--4--></p>`)
	doc := ed.Document()

	removeTop(t, doc, 0, 2)

	if got := doc.Markers().Names(MarkerPrefix); len(got) != 1 {
		t.Errorf("expected one surviving marker, got %v", got)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != "<p>c<!--4--></p>" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestBoundaryCommentSurvivesDeletion(t *testing.T) {
	ed, _ := newEditor(t, nil, `<p>a</p><!--edge--><p>b</p>`)
	doc := ed.Document()

	removeTop(t, doc, 1, 1)

	if got := len(doc.Markers().Names(MarkerPrefix)); got != 1 {
		t.Fatalf("expected boundary comment kept, got %d markers", got)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != "<p>a</p><!--edge-->" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestUndoRedoKeepsInvariant(t *testing.T) {
	input := `<p>before</p><p>x<!--reviewer note-->y</p>`
	ed, p := newEditor(t, uid.NewFixed("abc123"), input)
	doc := ed.Document()

	removeTop(t, doc, 1, 1)
	assertInvariant(t, doc)

	if err := doc.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != input {
		t.Errorf("after undo: expected %q, got %q", input, got)
	}
	if got, _ := p.Store().Get("$comment:abc123"); got != "reviewer note" {
		t.Errorf("after undo: expected payload restored, got %q", got)
	}

	if err := doc.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	assertInvariant(t, doc)
	if doc.Markers().Has("$comment:abc123") {
		t.Error("after redo: expected marker purged again")
	}
	if got := data(t, ed); got != "<p>before</p>" {
		t.Errorf("after redo: unexpected output %q", got)
	}

	if err := doc.Undo(); err != nil {
		t.Fatalf("second undo: %v", err)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != input {
		t.Errorf("after second undo: expected %q, got %q", input, got)
	}
}

func TestUndoRedoKeepsBoundaryComments(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		edit   func(w *doctree.Writer, root *doctree.Node) error
		edited string
	}{
		{
			name:  "remove after comment",
			input: `<!--c--><p>x</p>`,
			edit: func(w *doctree.Writer, root *doctree.Node) error {
				return w.Remove(root, 0, 1)
			},
			edited: `<!--c-->`,
		},
		{
			name:  "remove between comments",
			input: `<p>a</p><!--c--><p>b</p>`,
			edit: func(w *doctree.Writer, root *doctree.Node) error {
				return w.Remove(root, 1, 1)
			},
			edited: `<p>a</p><!--c-->`,
		},
		{
			name:  "move away from comment",
			input: `<!--c2--><p>a</p><p>b</p>`,
			edit: func(w *doctree.Writer, root *doctree.Node) error {
				return w.Move(root, 0, 1, root, 2)
			},
			edited: `<!--c2--><p>b</p><p>a</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, _ := newEditor(t, nil, tt.input)
			doc := ed.Document()

			err := doc.Change(func(w *doctree.Writer) error {
				return tt.edit(w, doc.Root())
			})
			if err != nil {
				t.Fatalf("edit: %v", err)
			}
			if got := data(t, ed); got != tt.edited {
				t.Fatalf("after edit: expected %q, got %q", tt.edited, got)
			}

			for i := 0; i < 2; i++ {
				if err := doc.Undo(); err != nil {
					t.Fatalf("undo %d: %v", i, err)
				}
				assertInvariant(t, doc)
				if got := data(t, ed); got != tt.input {
					t.Errorf("undo %d: expected %q, got %q", i, tt.input, got)
				}

				if err := doc.Redo(); err != nil {
					t.Fatalf("redo %d: %v", i, err)
				}
				assertInvariant(t, doc)
				if got := data(t, ed); got != tt.edited {
					t.Errorf("redo %d: expected %q, got %q", i, tt.edited, got)
				}
			}
		})
	}
}

func TestUndoInsertedComment(t *testing.T) {
	ed, _ := newEditor(t, nil, `<p>a</p>`)
	doc := ed.Document()

	err := doc.Change(func(w *doctree.Writer) error {
		views := []*html.Node{
			{Type: html.CommentNode, Data: "lead"},
			{Type: html.TextNode, Data: "t"},
			{Type: html.CommentNode, Data: "inner"},
			{Type: html.TextNode, Data: "u"},
		}
		_, err := ed.InsertView(w, doctree.Position{Parent: doc.Root(), Offset: 1}, views)
		return err
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != "<p>a</p><!--lead-->t<!--inner-->u" {
		t.Fatalf("unexpected output %q", got)
	}

	if err := doc.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	assertInvariant(t, doc)
	if got := len(doc.Markers().Names(MarkerPrefix)); got != 0 {
		t.Errorf("expected inserted comments gone, got %d", got)
	}
	if got := data(t, ed); got != "<p>a</p>" {
		t.Errorf("unexpected output %q", got)
	}

	if err := doc.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != "<p>a</p><!--lead-->t<!--inner-->u" {
		t.Errorf("after redo: unexpected output %q", got)
	}
}

func TestNoOpBatchKeepsInvariant(t *testing.T) {
	ed, _ := newEditor(t, nil, `<p>a<!--c--></p>`)
	doc := ed.Document()
	if err := doc.Change(func(w *doctree.Writer) error { return nil }); err != nil {
		t.Fatalf("change: %v", err)
	}
	assertInvariant(t, doc)
	if got := len(doc.Markers().Names(MarkerPrefix)); got != 1 {
		t.Errorf("expected marker kept, got %d", got)
	}
}

func TestPurgeIsIdempotent(t *testing.T) {
	ed, p := newEditor(t, nil, `<p>x<!--c--></p>`)
	doc := ed.Document()
	c := NewCollector(p.Store(), nil)

	var first, second bool
	var opsBefore, opsAfter int
	err := doc.Change(func(w *doctree.Writer) error {
		if err := w.Remove(doc.Root(), 0, 1); err != nil {
			return err
		}
		var err error
		if first, err = c.Fix(w); err != nil {
			return err
		}
		opsBefore = doc.Differ().OpCount()
		if second, err = c.Fix(w); err != nil {
			return err
		}
		opsAfter = doc.Differ().OpCount()
		return nil
	})
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if !first {
		t.Error("expected first pass to purge")
	}
	if second {
		t.Error("expected second pass to report stable")
	}
	if opsBefore != opsAfter {
		t.Errorf("expected no mutation on second pass, ops went from %d to %d", opsBefore, opsAfter)
	}
	assertInvariant(t, doc)
}

func TestMoveIsInert(t *testing.T) {
	ed, _ := newEditor(t, nil, `<p>x<!--keep-->y</p><p>z</p><div></div>`)
	doc := ed.Document()

	err := doc.Change(func(w *doctree.Writer) error {
		if err := w.Move(doc.Root(), 0, 1, doc.Root(), 2); err != nil {
			return err
		}
		return w.Move(doc.Root(), 1, 1, doc.Root().Child(2), 0)
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	assertInvariant(t, doc)
	if got := len(doc.Markers().Names(MarkerPrefix)); got != 1 {
		t.Fatalf("expected marker kept, got %d", got)
	}
	if got := data(t, ed); got != "<p>z</p><div><p>x<!--keep-->y</p></div>" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestOtherMarkersAreIgnored(t *testing.T) {
	ed, _ := newEditor(t, nil, `<p>a</p><p>b</p>`)
	doc := ed.Document()
	err := doc.ChangeTransparent(func(w *doctree.Writer) error {
		_, err := w.AddMarker("$commentary:x", doctree.Collapsed(doctree.Position{Parent: doc.Root().Child(0), Offset: 0}))
		return err
	})
	if err != nil {
		t.Fatalf("add marker: %v", err)
	}

	removeTop(t, doc, 0, 1)

	m, ok := doc.Markers().Get("$commentary:x")
	if !ok {
		t.Fatal("expected unrelated marker to be left alone")
	}
	if !m.Range().InGraveyard() {
		t.Error("expected unrelated marker in the graveyard")
	}
}

func TestMissingPayloadIsViolation(t *testing.T) {
	ed, p := newEditor(t, uid.NewFixed("lost"), `<p>a<!--c--></p>`)
	doc := ed.Document()
	err := doc.Change(func(w *doctree.Writer) error {
		return p.Store().Remove(w, "$comment:lost")
	})
	if err != nil {
		t.Fatalf("change: %v", err)
	}

	want := []Violation{{Name: "$comment:lost", Reason: ReasonMissingPayload}}
	if diff := cmp.Diff(want, CheckInvariant(doc)); diff != "" {
		t.Errorf("violations (-want +got):\n%s", diff)
	}
	if got := data(t, ed); got != "<p>a<!----></p>" {
		t.Errorf("expected empty comment, got %q", got)
	}
}

func TestOrphanPayloadIsViolation(t *testing.T) {
	ed, p := newEditor(t, nil, `<p>a</p>`)
	doc := ed.Document()
	err := doc.Change(func(w *doctree.Writer) error {
		return p.Store().Set(w, "$comment:orphan", "x")
	})
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	want := []Violation{{Name: "$comment:orphan", Reason: ReasonOrphanPayload}}
	if diff := cmp.Diff(want, CheckInvariant(doc)); diff != "" {
		t.Errorf("violations (-want +got):\n%s", diff)
	}
}

func TestStoreRejectsForeignNames(t *testing.T) {
	ed, p := newEditor(t, nil, "")
	doc := ed.Document()
	err := doc.Change(func(w *doctree.Writer) error {
		return p.Store().Set(w, "title", "x")
	})
	if err == nil {
		t.Fatal("expected error for non-comment key")
	}
	if _, ok := doc.Root().Attr("title"); ok {
		t.Error("expected nothing stored")
	}
}

func TestRemoveAll(t *testing.T) {
	ed, _ := newEditor(t, nil, `<!--a--><p>x<!--b-->y</p>`)
	doc := ed.Document()

	var n int
	err := doc.Change(func(w *doctree.Writer) error {
		var err error
		n, err = RemoveAll(w)
		return err
	})
	if err != nil {
		t.Fatalf("remove all: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != "<p>xy</p>" {
		t.Errorf("unexpected output %q", got)
	}

	if err := doc.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	assertInvariant(t, doc)
	if got := data(t, ed); got != `<!--a--><p>x<!--b-->y</p>` {
		t.Errorf("after undo: unexpected output %q", got)
	}
}

func TestRemoveAllCountsOnlyCommentMarkers(t *testing.T) {
	ed, _ := newEditor(t, nil, `<p>x<!--b-->y</p>`)
	doc := ed.Document()

	err := doc.Change(func(w *doctree.Writer) error {
		_, err := w.AddMarker(MarkerPrefix, doctree.Collapsed(doctree.Position{Parent: doc.Root(), Offset: 0}))
		return err
	})
	if err != nil {
		t.Fatalf("add bare marker: %v", err)
	}

	var n int
	err = doc.Change(func(w *doctree.Writer) error {
		var err error
		n, err = RemoveAll(w)
		return err
	})
	if err != nil {
		t.Fatalf("remove all: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	if !doc.Markers().Has(MarkerPrefix) {
		t.Error("expected bare prefix marker left alone")
	}
}

func TestList(t *testing.T) {
	ed, _ := newEditor(t, uid.NewSequence("c"), `<!--a--><p>x<!--b-->y</p>`)
	want := []Comment{
		{Name: "$comment:c1", Path: []int{0}, Content: "a"},
		{Name: "$comment:c2", Path: []int{0, 1}, Content: "b"},
	}
	if diff := cmp.Diff(want, List(ed.Document())); diff != "" {
		t.Errorf("comments (-want +got):\n%s", diff)
	}
}
