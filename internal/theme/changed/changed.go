// Package changed tracks which documents were written in the current build,
// so that finishing steps only touch their output.
package changed

import (
	"slices"
	"sync/atomic"

	"git.home.luguber.info/inful/awesometheme/internal/environment"
)

// Set is an immutable set of docnames.
type Set struct {
	names map[string]struct{}
	order []string
	full  bool
}

// NewSet builds a set from docnames. full marks a full rebuild.
func NewSet(names []string, full bool) *Set {
	s := &Set{names: make(map[string]struct{}, len(names)), full: full}
	for _, n := range names {
		if _, ok := s.names[n]; ok {
			continue
		}
		s.names[n] = struct{}{}
		s.order = append(s.order, n)
	}
	return s
}

// Has reports whether docname changed.
func (s *Set) Has(docname string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[docname]
	return ok
}

// Names returns the docnames in the order they were recorded.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Full reports whether the set came from a full rebuild.
func (s *Set) Full() bool { return s != nil && s.full }

// Tracker holds the set of the running build. Record is called once per
// build before documents are read; Current may be called from any goroutine.
type Tracker struct {
	current atomic.Pointer[Set]
}

// Record computes the changed set from the host environment. On a full
// rebuild every known document is changed.
func (t *Tracker) Record(env *environment.Environment) *Set {
	var s *Set
	switch {
	case env == nil:
		s = NewSet(nil, false)
	case env.Outdated.FullRebuild:
		s = NewSet(env.AllDocs(), true)
	default:
		s = NewSet(env.Outdated.Stale(), false)
	}
	t.current.Store(s)
	return s
}

// Current returns the recorded set, or an empty set before Record.
func (t *Tracker) Current() *Set {
	if s := t.current.Load(); s != nil {
		return s
	}
	return NewSet(nil, false)
}

// Reset forgets the recorded set.
func (t *Tracker) Reset() {
	t.current.Store(nil)
}
