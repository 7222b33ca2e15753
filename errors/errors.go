package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which part of the boundary produced the error
type Phase string

const (
	PhaseLayout     Phase = "layout"     // mirror geometry checks
	PhaseLifecycle  Phase = "lifecycle"  // runtime guard and thread affinity
	PhaseBridge     Phase = "bridge"     // capability boxing and dispatch
	PhaseForeign    Phase = "foreign"    // failures reported by the native runtime
	PhaseCollection Phase = "collection" // foreign array access
	PhaseConfig     Phase = "config"     // configuration loading
	PhasePlugin     Phase = "plugin"     // plugin scanning and instantiation
	PhaseLoad       Phase = "load"       // module loading
)

// Kind categorizes the error
type Kind string

const (
	KindLayoutMismatch     Kind = "layout_mismatch"
	KindAlreadyInitialised Kind = "already_initialised"
	KindWrongThread        Kind = "wrong_thread"
	KindNotInitialized     Kind = "not_initialized"
	KindReleased           Kind = "released"
	KindReentrantBorrow    Kind = "reentrant_borrow"
	KindUseAfterDrop       Kind = "use_after_drop"
	KindDoubleDrop         Kind = "double_drop"
	KindForeignFailure     Kind = "foreign_failure"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidData        Kind = "invalid_data"
	KindUnsupported        Kind = "unsupported"
	KindClosed             Kind = "closed"
)

// Sentinels for errors.Is checks. Only Phase and Kind take part in matching.
var (
	ErrInitialisedOnAnotherThread = &Error{Phase: PhaseLifecycle, Kind: KindAlreadyInitialised}
	ErrWrongThread                = &Error{Phase: PhaseLifecycle, Kind: KindWrongThread}
	ErrNotInitialized             = &Error{Phase: PhaseLifecycle, Kind: KindNotInitialized}
	ErrReleased                   = &Error{Phase: PhaseLifecycle, Kind: KindReleased}
	ErrReentrantBorrow            = &Error{Phase: PhaseBridge, Kind: KindReentrantBorrow}
	ErrUseAfterDrop               = &Error{Phase: PhaseBridge, Kind: KindUseAfterDrop}
	ErrDoubleDrop                 = &Error{Phase: PhaseBridge, Kind: KindDoubleDrop}
	ErrForeignFailure             = &Error{Phase: PhaseForeign, Kind: KindForeignFailure}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value       any
	Cause       error
	Phase       Phase
	Kind        Kind
	GoType      string
	ForeignType string
	Detail      string
	Path        []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.ForeignType != "" {
		b.WriteString(": ")
		switch {
		case e.GoType != "" && e.ForeignType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", foreign type ")
			b.WriteString(e.ForeignType)
		case e.GoType != "":
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		default:
			b.WriteString("foreign type ")
			b.WriteString(e.ForeignType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.ForeignType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// ForeignType sets the native type name
func (b *Builder) ForeignType(t string) *Builder {
	b.err.ForeignType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// LayoutMismatch creates a layout mismatch error for one property of a mirrored type
func LayoutMismatch(typeName, property string, host, foreign uintptr) *Error {
	return &Error{
		Phase:       PhaseLayout,
		Kind:        KindLayoutMismatch,
		Path:        []string{typeName, property},
		ForeignType: typeName,
		Detail:      fmt.Sprintf("host %d, foreign %d", host, foreign),
		Value:       host,
	}
}

// WrongThread creates an error for an affine operation attempted off the affine thread
func WrongThread(op string, affine, current uint64) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindWrongThread,
		Detail: fmt.Sprintf("%s requires thread %d, called on thread %d", op, affine, current),
	}
}

// AlreadyInitialised creates the error returned when another thread owns the runtime
func AlreadyInitialised(owner, current uint64) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindAlreadyInitialised,
		Detail: fmt.Sprintf("runtime already initialised on thread %d (called on thread %d)", owner, current),
		Value:  owner,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Released creates an error for a handle that was already released
func Released(what string) *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindReleased,
		Detail: fmt.Sprintf("%s already released", what),
	}
}

// ReentrantBorrow creates an error for a second mutable borrow of a capability
func ReentrantBorrow(goType string, handle uint64) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindReentrantBorrow,
		GoType: goType,
		Detail: fmt.Sprintf("handle %#x is already borrowed mutably, was it called recursively?", handle),
		Value:  handle,
	}
}

// UseAfterDrop creates an error for access to a dropped or stale capability
func UseAfterDrop(what string, handle uint64) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindUseAfterDrop,
		Detail: fmt.Sprintf("%s %#x used after drop", what, handle),
		Value:  handle,
	}
}

// DoubleDrop creates an error for a second drop of the same capability
func DoubleDrop(handle uint64) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindDoubleDrop,
		Detail: fmt.Sprintf("handle %#x dropped twice", handle),
		Value:  handle,
	}
}

// Foreign creates an error carrying a diagnostic string produced by the native runtime
func Foreign(op, message string) *Error {
	return &Error{
		Phase:  PhaseForeign,
		Kind:   KindForeignFailure,
		Path:   []string{op},
		Detail: message,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed creates an error for operations on a closed table or runtime
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
