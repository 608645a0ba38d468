package doctree

import "errors"

// Position errors
var (
	// ErrInvalidPosition indicates a parent/offset pair outside the tree.
	ErrInvalidPosition = errors.New("position out of bounds")

	// ErrNotElement indicates an operation that needs an element got a text node.
	ErrNotElement = errors.New("node is not an element")

	// ErrDetached indicates a node that is not attached to this document.
	ErrDetached = errors.New("node is not attached to the document")
)

// Marker errors
var (
	// ErrMarkerExists indicates a marker name is already bound.
	ErrMarkerExists = errors.New("marker already exists")

	// ErrMarkerNotFound indicates a marker name is not bound.
	ErrMarkerNotFound = errors.New("marker not found")
)

// Batch errors
var (
	// ErrFixupLoop indicates post-fixers kept reporting changes past the pass limit.
	ErrFixupLoop = errors.New("post-fixers did not settle")

	// ErrNothingToUndo indicates an empty undo stack.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates an empty redo stack.
	ErrNothingToRedo = errors.New("nothing to redo")
)
