package bridge

import (
	"sync/atomic"

	rterrors "github.com/wippyai/juce-runtime/errors"
)

// Scoped is a non-owning reference to a native object lent to Go for the
// duration of one native call. Enter and Exit bracket that call; Ptr panics
// when the reference is used outside it.
//
// A Scoped value is allocated once per capability and re-pointed on every
// call, so callbacks on the audio thread do not allocate.
type Scoped[P any] struct {
	ptr  atomic.Pointer[P]
	what string
}

// NewScoped creates an inactive scoped reference.
func NewScoped[P any](what string) *Scoped[P] {
	return &Scoped[P]{what: what}
}

// Enter makes p reachable until Exit.
func (s *Scoped[P]) Enter(p *P) {
	s.ptr.Store(p)
}

// Exit ends the call that lent the pointer.
func (s *Scoped[P]) Exit() {
	s.ptr.Store(nil)
}

// Valid reports whether the lending call is still running.
func (s *Scoped[P]) Valid() bool {
	return s.ptr.Load() != nil
}

// Ptr returns the lent pointer.
func (s *Scoped[P]) Ptr() *P {
	p := s.ptr.Load()
	if p == nil {
		panic(rterrors.New(rterrors.PhaseBridge, rterrors.KindUseAfterDrop).
			Detail("%s used outside the call that lent it", s.what).
			Build())
	}
	return p
}

// Lifetime tracks whether the native owner of pinned references is alive.
type Lifetime struct {
	what  string
	ended atomic.Bool
}

// NewLifetime starts a lifetime for the named owner.
func NewLifetime(what string) *Lifetime {
	return &Lifetime{what: what}
}

// End marks the owner destroyed. Pinned references tied to it stop working.
func (l *Lifetime) End() {
	l.ended.Store(true)
}

// Alive reports whether End has not been called.
func (l *Lifetime) Alive() bool {
	return l != nil && !l.ended.Load()
}

// Pinned is a non-owning reference to a native object owned by a container
// with an explicit lifetime, such as a device type held by its manager.
// The native owner keeps the object in place; Go never moves or frees it.
type Pinned[P any] struct {
	ptr   *P
	owner *Lifetime
}

// Pin ties p to owner.
func Pin[P any](p *P, owner *Lifetime) Pinned[P] {
	return Pinned[P]{ptr: p, owner: owner}
}

// IsNil reports whether the reference points nowhere.
func (p Pinned[P]) IsNil() bool {
	return p.ptr == nil
}

// Ptr returns the pinned pointer. It panics once the owner has ended or when
// the reference is nil.
func (p Pinned[P]) Ptr() *P {
	if p.ptr == nil {
		panic(rterrors.New(rterrors.PhaseBridge, rterrors.KindUseAfterDrop).
			Detail("nil pinned reference").Build())
	}
	if p.owner != nil && !p.owner.Alive() {
		panic(rterrors.New(rterrors.PhaseBridge, rterrors.KindUseAfterDrop).
			Detail("reference outlived its owner %s", p.owner.what).Build())
	}
	return p.ptr
}
