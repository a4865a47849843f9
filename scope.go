package olang

import (
	"sort"
)

// Scope is one frame of the scope chain. A frame owns its bindings; the
// parent pointer is set at creation and never changes. Only the evaluation
// that created a frame writes to it.
type Scope struct {
	parent   *Scope
	bindings map[string]Value
}

// NewScope creates a frame with the given parent (which may be nil).
func NewScope(parent *Scope) *Scope {
	return &Scope{parent: parent, bindings: make(map[string]Value)}
}

// Parent returns the enclosing frame or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Declare binds name in this frame. It reports false, and leaves the frame
// unchanged, when name is already bound here. Outer bindings are shadowed.
func (s *Scope) Declare(name string, v Value) bool {
	if _, ok := s.bindings[name]; ok {
		return false
	}
	s.bindings[name] = v
	return true
}

// HasOwn reports whether name is bound in this frame.
func (s *Scope) HasOwn(name string) bool {
	_, ok := s.bindings[name]
	return ok
}

// Lookup finds the nearest binding of name, innermost first.
func (s *Scope) Lookup(name string) (Value, bool) {
	for f := s; f != nil; f = f.parent {
		if v, ok := f.bindings[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// Names returns the names bound in this frame, sorted.
func (s *Scope) Names() []string {
	out := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Depth is the number of frames in the chain, including s.
func (s *Scope) Depth() int {
	n := 0
	for f := s; f != nil; f = f.parent {
		n++
	}
	return n
}

// Frame is a copied view of one scope frame.
type Frame map[string]Value

// Snapshot copies the chain, innermost frame first. Later writes to the
// scopes do not affect the snapshot.
func (s *Scope) Snapshot() []Frame {
	var out []Frame
	for f := s; f != nil; f = f.parent {
		cp := make(Frame, len(f.bindings))
		for k, v := range f.bindings {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out
}
