// Package uid generates identifiers that are unique within a process.
package uid

import (
	"encoding/hex"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator interface {
	NewID() string
}

// Random generates "e" followed by the 32 hex digits of a random UUID. The
// leading letter keeps the id usable where identifiers must not start with a digit.
type Random struct{}

// NewID returns a fresh identifier.
func (Random) NewID() string {
	u := uuid.New()
	return "e" + hex.EncodeToString(u[:])
}

// Sequence generates prefix1, prefix2, ... and is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   uint64
}

// NewSequence returns a deterministic generator.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next identifier in the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.prefix + strconv.FormatUint(s.next, 10)
}

// Fixed returns the given ids in order, then falls back to Random. Tests use it
// to pin marker names.
type Fixed struct {
	mu  sync.Mutex
	ids []string
}

// NewFixed returns a generator that yields ids first.
func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

// NewID returns the next pinned id.
func (f *Fixed) NewID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ids) == 0 {
		return Random{}.NewID()
	}
	id := f.ids[0]
	f.ids = f.ids[1:]
	return id
}
