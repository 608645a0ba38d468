package comment

import (
	"sort"

	"github.com/dgallion1/docmark/internal/doctree"
)

// Violation describes a comment whose marker and payload disagree.
type Violation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Violation reasons.
const (
	ReasonOrphanPayload  = "payload without marker"
	ReasonMissingPayload = "marker without payload"
)

// CheckInvariant reports every comment name present in only one of the
// marker registry and the payload store. An empty result means they match.
func CheckInvariant(doc *doctree.Document) []Violation {
	markers := make(map[string]bool)
	for _, name := range doc.Markers().Names(MarkerPrefix) {
		markers[name] = true
	}
	payloads := make(map[string]bool)
	for _, name := range NewStore(doc).Names() {
		payloads[name] = true
	}

	var out []Violation
	for name := range payloads {
		if !markers[name] {
			out = append(out, Violation{Name: name, Reason: ReasonOrphanPayload})
		}
	}
	for name := range markers {
		if !payloads[name] {
			out = append(out, Violation{Name: name, Reason: ReasonMissingPayload})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
