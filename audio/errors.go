package audio

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Kind categorizes a failure of the audio subsystem
type Kind string

const (
	KindLibraryLoad    Kind = "library_load"    // every library tier exhausted
	KindEngineCreate   Kind = "engine_create"   // system object creation
	KindEngineInit     Kind = "engine_init"     // created but failed to initialize
	KindEventLookup    Kind = "event_lookup"    // named event not found
	KindInstanceCreate Kind = "instance_create" // instance not created
	KindInstanceStart  Kind = "instance_start"  // instance created but not started
	KindBankLoad       Kind = "bank_load"       // one bank failed, batch continues
	KindAttributeSet   Kind = "attribute_set"   // 3D/volume/pitch not applied, non-fatal
	KindUnavailable    Kind = "unavailable"     // not ready, routing disabled, pool full
	KindSkipped        Kind = "skipped"         // process role without audio
)

// Error is the structured error returned by every public audio operation
type Error struct {
	Cause  error
	Kind   Kind
	Op     string
	Detail string
	Code   int // Native result code when one is known, CodeUnknown otherwise
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteByte(']')

	if e.Op != "" {
		b.WriteByte(' ')
		b.WriteString(e.Op)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks by kind
var (
	ErrLibraryLoad    = &Error{Kind: KindLibraryLoad}
	ErrEngineCreate   = &Error{Kind: KindEngineCreate}
	ErrEngineInit     = &Error{Kind: KindEngineInit}
	ErrEventLookup    = &Error{Kind: KindEventLookup}
	ErrInstanceCreate = &Error{Kind: KindInstanceCreate}
	ErrInstanceStart  = &Error{Kind: KindInstanceStart}
	ErrBankLoad       = &Error{Kind: KindBankLoad}
	ErrAttributeSet   = &Error{Kind: KindAttributeSet}
	ErrUnavailable    = &Error{Kind: KindUnavailable}
	ErrSkipped        = &Error{Kind: KindSkipped}
)

// Coder is implemented by native result errors that carry a numeric code
type Coder interface {
	Code() int
}

// ErrorCode extracts the native result code from err, CodeOK for nil
func ErrorCode(err error) int {
	if err == nil {
		return CodeOK
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Code != CodeUnknown && ae.Code != CodeOK {
		return ae.Code
	}
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return CodeUnknown
}

// newError builds an *Error, deriving Code from the cause
func newError(kind Kind, op string, cause error, detail string) *Error {
	code := CodeUnknown
	var c Coder
	if cause != nil && errors.As(cause, &c) {
		code = c.Code()
	}
	return &Error{
		Kind:   kind,
		Op:     op,
		Detail: detail,
		Cause:  cause,
		Code:   code,
	}
}

// unavailable builds a KindUnavailable error for op
func unavailable(op, detail string) *Error {
	return &Error{Kind: KindUnavailable, Op: op, Detail: detail, Code: CodeUnknown}
}

// guard converts a panic escaping a native call into an error on *errp
func guard(op string, errp *error) {
	if r := recover(); r != nil {
		Logger().Error("recovered panic in audio operation",
			zap.String("op", op),
			zap.Any("panic", r))
		if errp != nil {
			*errp = newError(KindUnavailable, op, fmt.Errorf("panic: %v", r), "native call panicked")
		}
	}
}
