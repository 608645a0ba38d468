package comment

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docmark/internal/doctree"
)

// Collector is a post-fixer that purges comment markers whose content was
// deleted, together with their payloads.
type Collector struct {
	store *Store
	log   *slog.Logger
}

// NewCollector returns a collector for store.
func NewCollector(store *Store, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Collector{store: store, log: log}
}

// Fix removes every comment marker the current batch moved into the graveyard
// and reports whether it changed anything.
func (c *Collector) Fix(w *doctree.Writer) (bool, error) {
	var dead []string
	for _, ch := range w.Document().Differ().ChangedMarkers() {
		if !IsCommentMarker(ch.Name) {
			continue
		}
		if ch.NewRange == nil || !ch.NewRange.InGraveyard() {
			continue
		}
		dead = append(dead, ch.Name)
	}
	if len(dead) == 0 {
		return false, nil
	}

	for _, name := range dead {
		if err := w.RemoveMarker(name); err != nil {
			return false, fmt.Errorf("purge marker %s: %w", name, err)
		}
		if err := c.store.Remove(w, name); err != nil {
			return false, fmt.Errorf("purge payload %s: %w", name, err)
		}
	}
	c.log.Debug("purged deleted comments", "count", len(dead))
	return true, nil
}
