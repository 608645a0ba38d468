package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/session"
	"github.com/go-chi/chi/v5"
)

const maxOpsBody = 1 << 20

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrStoreFull):
		return http.StatusServiceUnavailable
	case errors.Is(err, doctree.ErrNothingToUndo), errors.Is(err, doctree.ErrNothingToRedo):
		return http.StatusConflict
	case errors.Is(err, doctree.ErrFixupLoop):
		return http.StatusInternalServerError
	case errors.Is(err, session.ErrUnknownOp),
		errors.Is(err, session.ErrReservedKey),
		errors.Is(err, doctree.ErrInvalidPosition),
		errors.Is(err, doctree.ErrNotElement),
		errors.Is(err, doctree.ErrDetached):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "docID"))
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

// handleGetDocument returns the serialized document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	out, err := sess.HTML()
	if err != nil {
		jsonError(w, "failed to render document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out))
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"comments": sess.Comments()})
}

// handleApplyOps applies a list of edit ops as one undoable batch.
func (s *Server) handleApplyOps(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	r.Body = http.MaxBytesReader(w, r.Body, maxOpsBody)

	var req struct {
		Ops []session.Op `json:"ops"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Ops) == 0 {
		jsonError(w, "at least one op is required", http.StatusBadRequest)
		return
	}

	sess, err := s.sessions.Apply(docID, req.Ops)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	s.writeState(w, sess)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Undo(); err != nil {
		writeSessionError(w, err)
		return
	}
	s.writeState(w, sess)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Redo(); err != nil {
		writeSessionError(w, err)
		return
	}
	s.writeState(w, sess)
}

// handleDeleteDocument closes a document session.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.sessions.Close(docID); err != nil {
		writeSessionError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": docID})
}

func (s *Server) writeState(w http.ResponseWriter, sess *session.Session) {
	out, err := sess.HTML()
	if err != nil {
		jsonError(w, "failed to render document: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document": sess.Snapshot(),
		"html":     out,
		"comments": sess.Comments(),
	})
}
