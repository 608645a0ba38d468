// Package editor ties a document model to its conversion pipeline and the
// plugins that extend it.
package editor

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/docmark/internal/conversion"
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/parser"
	"golang.org/x/net/html"
)

// Plugin extends an editor with converters and post-fixers.
type Plugin interface {
	Name() string
	Init(ed *Editor) error
}

// Editor owns one document and the dispatchers that load and serialize it.
type Editor struct {
	doc      *doctree.Document
	upcast   *conversion.Upcaster
	downcast *conversion.Downcaster
	log      *slog.Logger
}

// New creates an editor and initializes plugins in order.
func New(log *slog.Logger, plugins ...Plugin) (*Editor, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ed := &Editor{
		doc:      doctree.New(),
		upcast:   conversion.NewUpcaster(),
		downcast: conversion.NewDowncaster(),
		log:      log,
	}
	for _, p := range plugins {
		if err := p.Init(ed); err != nil {
			return nil, fmt.Errorf("init plugin %s: %w", p.Name(), err)
		}
		log.Debug("plugin initialized", "plugin", p.Name())
	}
	return ed, nil
}

// Document returns the edited document.
func (e *Editor) Document() *doctree.Document { return e.doc }

// Upcaster returns the view-to-model dispatcher.
func (e *Editor) Upcaster() *conversion.Upcaster { return e.upcast }

// Downcaster returns the model-to-view dispatcher.
func (e *Editor) Downcaster() *conversion.Downcaster { return e.downcast }

// Logger returns the editor's logger.
func (e *Editor) Logger() *slog.Logger { return e.log }

// SetData replaces the whole document with fragment. Existing content,
// markers and root attributes are dropped and undo history is cleared.
func (e *Editor) SetData(fragment []*html.Node) error {
	root := e.doc.Root()
	err := e.doc.ChangeTransparent(func(w *doctree.Writer) error {
		for _, m := range e.doc.Markers().All() {
			if err := w.RemoveMarker(m.Name()); err != nil {
				return err
			}
		}
		for _, key := range root.AttrKeys("") {
			if err := w.RemoveAttribute(root, key); err != nil {
				return err
			}
		}
		if err := w.Remove(root, 0, root.ChildCount()); err != nil {
			return err
		}
		_, err := e.upcast.Convert(w, doctree.Position{Parent: root, Offset: 0}, fragment)
		return err
	})
	if err != nil {
		return fmt.Errorf("set data: %w", err)
	}
	e.doc.ClearHistory()
	return nil
}

// InsertView upcasts views at pos within the caller's batch and returns the
// number of top-level nodes inserted.
func (e *Editor) InsertView(w *doctree.Writer, pos doctree.Position, views []*html.Node) (int, error) {
	return e.upcast.Convert(w, pos, views)
}

// View downcasts the main root.
func (e *Editor) View() []*html.Node {
	return e.downcast.Convert(e.doc)
}

// Data serializes the main root to HTML.
func (e *Editor) Data() (string, error) {
	return conversion.Render(e.View())
}

// LoadHTML replaces the document with an HTML fragment read from r.
func (e *Editor) LoadHTML(r io.Reader) error {
	nodes, err := parser.Fragment(r)
	if err != nil {
		return err
	}
	return e.SetData(nodes)
}

// LoadFile replaces the document with the content of a file, parsed according
// to its extension.
func (e *Editor) LoadFile(r io.Reader, filename string) error {
	p, err := parser.ForFile(filename)
	if err != nil {
		return err
	}
	nodes, err := p.Parse(r, filename)
	if err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	return e.SetData(nodes)
}
