// Package diagnostics formats interpreter-bug and resolution errors
// with enough context (method, IL offset) to be useful without source
// text — CIL has none at interpretation time, so this plays the role
// the teacher's internal/errors package plays for source-line
// diagnostics, but keyed by method + offset instead of line + column.
package diagnostics

import (
	"fmt"
	"strings"
)

// Position locates a point inside a method body: the declaring
// method's qualified name and the IL instruction offset.
type Position struct {
	Method string
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%s+0x%x", p.Method, p.Offset)
}

// EngineError represents an interpreter bug or unsupported-input
// condition: unbalanced stack at
// ret, missing opcode handler, control flow running off the end of
// the body. These are not catchable by interpreted try/catch — they
// indicate the body itself is malformed or unsupported.
type EngineError struct {
	Pos     Position
	Message string
}

// NewEngineError creates an EngineError with a formatted message.
func NewEngineError(pos Position, format string, args ...any) *EngineError {
	return &EngineError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return e.Format()
}

// Format renders the error with its method/offset header, matching
// the teacher's CompilerError.Format shape (a header line followed by
// a gutter pointing at the offending location) adapted from
// line/column to method/offset.
func (e *EngineError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid program in %s\n", e.Pos)
	fmt.Fprintf(&sb, "%4d | <offset 0x%x>\n", e.Pos.Offset, e.Pos.Offset)
	sb.WriteString(e.Message)
	return sb.String()
}

// ResolutionError represents a metadata reference that could not be
// resolved: type load, missing
// method, or missing field. These pre-date execution of the referring
// site and are not catchable by interpreted try/catch.
type ResolutionError struct {
	Kind string // "TypeLoadException", "MissingMethodException", "MissingFieldException"
	Name string // the unresolved textual name
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: could not resolve %q", e.Kind, e.Name)
}

// NewTypeLoadError reports an unresolvable type reference.
func NewTypeLoadError(name string) *ResolutionError {
	return &ResolutionError{Kind: "TypeLoadException", Name: name}
}

// NewMissingMethodError reports an unresolvable method reference.
func NewMissingMethodError(name string) *ResolutionError {
	return &ResolutionError{Kind: "MissingMethodException", Name: name}
}

// NewMissingFieldError reports an unresolvable field reference.
func NewMissingFieldError(name string) *ResolutionError {
	return &ResolutionError{Kind: "MissingFieldException", Name: name}
}

// InvocationError represents a programmer misuse of the public invoke
// API: no body, internal-call
// method, or arity mismatch.
type InvocationError struct {
	Message string
}

func (e *InvocationError) Error() string { return "invalid argument: " + e.Message }

// NewInvocationError creates an InvocationError with a formatted
// message.
func NewInvocationError(format string, args ...any) *InvocationError {
	return &InvocationError{Message: fmt.Sprintf(format, args...)}
}
