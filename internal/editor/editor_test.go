package editor

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dgallion1/docmark/internal/doctree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rulePlugin keeps <hr> elements as "rule:N" markers.
type rulePlugin struct {
	n   int
	err error
}

func (p *rulePlugin) Name() string { return "rule" }

func (p *rulePlugin) Init(ed *Editor) error {
	if p.err != nil {
		return p.err
	}
	ed.Upcaster().ElementToMarker("hr", func(w *doctree.Writer, n *html.Node) (string, error) {
		p.n++
		return fmt.Sprintf("rule:%d", p.n), nil
	})
	ed.Downcaster().MarkerToElement("rule", func(string) *html.Node {
		return &html.Node{Type: html.ElementNode, Data: "hr", DataAtom: atom.Hr}
	})
	return nil
}

func TestRoundTripPlainHTML(t *testing.T) {
	ed, err := New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	input := `<p class="lead">Hello <b>world</b></p><ul><li>one</li><li>two</li></ul>`
	if err := ed.LoadHTML(strings.NewReader(input)); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, err := ed.Data()
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestCommentsDroppedWithoutPlugin(t *testing.T) {
	ed, _ := New(nil)
	if err := ed.LoadHTML(strings.NewReader(`<p>a</p><!-- gone -->`)); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, _ := ed.Data()
	if got != "<p>a</p>" {
		t.Errorf("expected %q, got %q", "<p>a</p>", got)
	}
}

func TestMarkerPluginRoundTrip(t *testing.T) {
	ed, err := New(nil, &rulePlugin{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	input := `<p>a</p><hr/><div><hr/><hr/>b</div>`
	if err := ed.LoadHTML(strings.NewReader(input)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := ed.Document().Markers().Len(); n != 3 {
		t.Fatalf("expected 3 markers, got %d", n)
	}
	if n := ed.Document().Root().ChildCount(); n != 2 {
		t.Errorf("expected markers to take no content, got %d root children", n)
	}
	got, _ := ed.Data()
	if got != input {
		t.Errorf("expected %q, got %q", input, got)
	}
}

func TestSetDataReplacesDocument(t *testing.T) {
	ed, _ := New(nil, &rulePlugin{})
	if err := ed.LoadHTML(strings.NewReader(`<p>a</p><hr/>`)); err != nil {
		t.Fatal(err)
	}
	doc := ed.Document()
	if err := doc.Change(func(w *doctree.Writer) error {
		return w.SetAttribute(doc.Root(), "k", "v")
	}); err != nil {
		t.Fatal(err)
	}

	if err := ed.LoadHTML(strings.NewReader(`<p>b</p>`)); err != nil {
		t.Fatal(err)
	}
	if doc.Markers().Len() != 0 {
		t.Errorf("expected markers cleared, got %d", doc.Markers().Len())
	}
	if keys := doc.Root().AttrKeys(""); len(keys) != 0 {
		t.Errorf("expected root attributes cleared, got %v", keys)
	}
	if n := doc.Graveyard().ChildCount(); n != 0 {
		t.Errorf("expected graveyard emptied, got %d children", n)
	}
	if doc.CanUndo() {
		t.Error("expected history cleared")
	}
	got, _ := ed.Data()
	if got != "<p>b</p>" {
		t.Errorf("expected %q, got %q", "<p>b</p>", got)
	}
}

func TestLoadFile(t *testing.T) {
	ed, _ := New(nil)
	if err := ed.LoadFile(strings.NewReader("one\n\ntwo"), "notes.txt"); err != nil {
		t.Fatalf("load: %v", err)
	}
	got, _ := ed.Data()
	if got != "<p>one</p><p>two</p>" {
		t.Errorf("unexpected output %q", got)
	}
	if err := ed.LoadFile(strings.NewReader(""), "x.doc"); err == nil {
		t.Error("expected unsupported extension error")
	}
}

func TestPluginInitError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(nil, &rulePlugin{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
