package comment

import (
	"github.com/dgallion1/docmark/internal/conversion"
	"github.com/dgallion1/docmark/internal/editor"
	"github.com/dgallion1/docmark/internal/uid"
)

// MarkerGroup is the downcast group of comment markers.
const MarkerGroup = "$comment"

// Plugin installs comment preservation on an editor.
type Plugin struct {
	IDs uid.Generator // nil means uid.Random

	store *Store
}

// Name implements editor.Plugin.
func (p *Plugin) Name() string { return "htmlcomment" }

// Init implements editor.Plugin.
func (p *Plugin) Init(ed *editor.Editor) error {
	p.store = Register(ed, p.IDs)
	return nil
}

// Store returns the payload store once the plugin is initialized.
func (p *Plugin) Store() *Store { return p.store }

// Register wires the comment converters and collector into ed and returns the
// payload store.
func Register(ed *editor.Editor, ids uid.Generator) *Store {
	if ids == nil {
		ids = uid.Random{}
	}
	doc := ed.Document()
	store := NewStore(doc)
	conv := NewConverters(store, ids)
	ed.Upcaster().ElementToMarker(conversion.CommentView, conv.Upcast)
	ed.Downcaster().MarkerToElement(MarkerGroup, conv.Downcast)
	doc.RegisterPostFixer(NewCollector(store, ed.Logger()).Fix)
	return store
}
