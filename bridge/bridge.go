package bridge

import (
	"errors"
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	rterrors "github.com/wippyai/juce-runtime/errors"
	"github.com/wippyai/juce-runtime/resource"
)

// Token is the value native code stores in place of a Go capability.
// It fits a C uintptr_t.
type Token uintptr

// ViolationHandler is told about calls the bridge refused to dispatch.
type ViolationHandler func(tok Token, err error)

// Registry owns the boxed capabilities of one native runtime.
type Registry struct {
	table     *resource.Table
	onViolate atomic.Pointer[ViolationHandler]
	typeIDs   map[reflect.Type]uint32
	typeNames []string
	typesMu   sync.Mutex
}

// NewRegistry creates a registry with its own handle table.
func NewRegistry() *Registry {
	return &Registry{
		table:     resource.NewTable(),
		typeIDs:   make(map[reflect.Type]uint32),
		typeNames: []string{"unknown"},
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the native trampolines.
func Default() *Registry {
	return defaultRegistry
}

// Table exposes the underlying handle table.
func (r *Registry) Table() *resource.Table {
	return r.table
}

// Len returns the number of live capabilities.
func (r *Registry) Len() int {
	return r.table.Len()
}

// SetViolationHandler replaces the handler for refused dispatches.
// A nil handler restores the default, which logs at error level.
func (r *Registry) SetViolationHandler(h ViolationHandler) {
	if h == nil {
		r.onViolate.Store(nil)
		return
	}
	r.onViolate.Store(&h)
}

// TypeName returns the Go type name recorded for a registered type ID.
func (r *Registry) TypeName(id uint32) string {
	r.typesMu.Lock()
	defer r.typesMu.Unlock()
	if int(id) < len(r.typeNames) {
		return r.typeNames[id]
	}
	return "unknown"
}

func (r *Registry) typeID(t reflect.Type) uint32 {
	r.typesMu.Lock()
	defer r.typesMu.Unlock()
	if id, ok := r.typeIDs[t]; ok {
		return id
	}
	id := uint32(len(r.typeNames))
	r.typeIDs[t] = id
	r.typeNames = append(r.typeNames, t.String())
	return id
}

func (r *Registry) violation(tok Token, err error) {
	if h := r.onViolate.Load(); h != nil {
		(*h)(tok, err)
		return
	}
	Logger().Error("capability call refused",
		zap.Uint64("token", uint64(tok)),
		zap.Error(err))
}

// Register boxes impl and returns the token that identifies it. The
// capability is live until Release is called with the token.
func Register[T any](r *Registry, impl T) (Token, error) {
	id := r.typeID(reflect.TypeFor[T]())
	h, err := r.table.Insert(id, impl)
	if err != nil {
		return 0, err
	}
	debugf("registered %s as %#x", r.TypeName(id), uint64(h))
	return Token(h), nil
}

// MustRegister is Register for callers that cannot continue without the box.
func MustRegister[T any](r *Registry, impl T) Token {
	tok, err := Register(r, impl)
	if err != nil {
		panic(err)
	}
	return tok
}

// With runs fn with an exclusive borrow of the capability behind tok.
// Re-entering the same capability while fn runs is refused with
// errors.ErrReentrantBorrow, a released token with errors.ErrUseAfterDrop.
func With[T any](r *Registry, tok Token, fn func(T)) error {
	h := resource.Handle(tok)
	v, err := r.table.Borrow(h)
	if err != nil {
		return err
	}
	defer r.table.Return(h)

	impl, ok := v.(T)
	if !ok {
		return mismatch[T](tok, v)
	}
	fn(impl)
	return nil
}

// Call is With for methods that return a value.
func Call[T, R any](r *Registry, tok Token, fn func(T) R) (R, error) {
	var zero R
	h := resource.Handle(tok)
	v, err := r.table.Borrow(h)
	if err != nil {
		return zero, err
	}
	defer r.table.Return(h)

	impl, ok := v.(T)
	if !ok {
		return zero, mismatch[T](tok, v)
	}
	return fn(impl), nil
}

func mismatch[T any](tok Token, v any) error {
	return rterrors.New(rterrors.PhaseBridge, rterrors.KindInvalidData).
		GoType(reflect.TypeFor[T]().String()).
		Detail("token %#x holds %T", uint64(tok), v).
		Build()
}

// Invoke is the dispatch used by native trampolines. Panicking across native
// frames is not an option, so a refused reentrant call is reported to the
// violation handler and skipped. Calls on a released token abort.
func Invoke[T any](r *Registry, tok Token, fn func(T)) {
	if err := With(r, tok, fn); err != nil {
		r.refuse(tok, err)
	}
}

// InvokeR is Invoke for methods with a result; fallback is returned when the
// call is refused.
func InvokeR[T, R any](r *Registry, tok Token, fallback R, fn func(T) R) R {
	out, err := Call(r, tok, fn)
	if err != nil {
		r.refuse(tok, err)
		return fallback
	}
	return out
}

func (r *Registry) refuse(tok Token, err error) {
	if errors.Is(err, rterrors.ErrUseAfterDrop) {
		panic(err)
	}
	r.violation(tok, err)
}

// Peek returns the capability without borrowing it. It is meant for
// diagnostics; use With to call methods.
func Peek[T any](r *Registry, tok Token) (T, bool) {
	v, ok := r.table.Get(resource.Handle(tok))
	if !ok {
		var zero T
		return zero, false
	}
	impl, ok := v.(T)
	return impl, ok
}

// Live reports whether tok still refers to a registered capability.
func (r *Registry) Live(tok Token) bool {
	st := r.table.State(resource.Handle(tok))
	return st == resource.StateIdle || st == resource.StateBorrowed
}

// Release is the single drop path of a capability. Implementations that have
// a Drop method, or failing that a Close method, get it called here. Release
// panics when the token was already released: two native owners of one box
// is a bug that would otherwise free it twice.
func Release(r *Registry, tok Token) {
	v, err := r.table.Drop(resource.Handle(tok))
	if err != nil {
		if errors.Is(err, rterrors.ErrDoubleDrop) {
			panic(err)
		}
		// dropped from inside one of its own methods
		r.violation(tok, err)
		return
	}
	if _, ok := v.(resource.Dropper); !ok {
		if c, ok := v.(io.Closer); ok {
			if err := c.Close(); err != nil {
				Logger().Warn("close released capability", zap.Uint64("token", uint64(tok)), zap.Error(err))
			}
		}
	}
	debugf("released %T %#x", v, uint64(tok))
}
