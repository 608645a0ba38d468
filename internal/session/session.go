// Package session keeps open documents in memory and applies edits to them.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docmark/internal/comment"
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/editor"
)

// Session errors
var (
	// ErrNotFound indicates an unknown or evicted session.
	ErrNotFound = errors.New("session not found")

	// ErrStoreFull indicates the session limit was reached.
	ErrStoreFull = errors.New("session store is full")
)

// Session is one open document. All access goes through its mutex.
type Session struct {
	mu sync.Mutex

	ID          string
	Filename    string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ed     *editor.Editor
	log    *slog.Logger
	render *LatencyStats
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID          string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Comments    int       `json:"comments"`
	CanUndo     bool      `json:"can_undo"`
	CanRedo     bool      `json:"can_redo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newSession(id, filename string, ed *editor.Editor, log *slog.Logger) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		ed:        ed,
		log:       log,
	}
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.ed.Document()
	return Snapshot{
		ID:          s.ID,
		Filename:    s.Filename,
		ContentHash: s.ContentHash,
		Comments:    len(doc.Markers().Names(comment.MarkerPrefix)),
		CanUndo:     doc.CanUndo(),
		CanRedo:     doc.CanRedo(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Apply runs ops as a single undoable batch. If any op fails, none is applied.
func (s *Session) Apply(ops []Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.ed.Document()
	err := doc.Change(func(w *doctree.Writer) error {
		for i, op := range ops {
			if err := op.apply(s.ed, w); err != nil {
				return fmt.Errorf("op %d (%s): %w", i, op.Op, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.touchLocked()
	s.log.Info("applied ops", "ops", len(ops))
	return nil
}

// Undo reverts the last applied batch.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ed.Document().Undo(); err != nil {
		return err
	}
	s.touchLocked()
	return nil
}

// Redo reapplies the last undone batch.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ed.Document().Redo(); err != nil {
		return err
	}
	s.touchLocked()
	return nil
}

// HTML serializes the document.
func (s *Session) HTML() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	out, err := s.ed.Data()
	if err != nil {
		return "", err
	}
	if s.render != nil {
		s.render.Record(time.Since(start).Milliseconds())
	}
	return out, nil
}

// Comments lists the preserved comments in creation order.
func (s *Session) Comments() []comment.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := comment.List(s.ed.Document())
	if out == nil {
		out = []comment.Comment{}
	}
	return out
}

// Check verifies that comment markers and payloads match.
func (s *Session) Check() []comment.Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return comment.CheckInvariant(s.ed.Document())
}

func (s *Session) touchLocked() {
	s.UpdatedAt = time.Now()
	if v := comment.CheckInvariant(s.ed.Document()); len(v) > 0 {
		s.log.Error("comment invariant violated", "violations", v)
	}
}

func (s *Session) lastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
