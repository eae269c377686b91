package object

import "github.com/cwbudde/go-cilrun/internal/metadata"

// Thrown wraps a managed exception object as a Go error so it can
// propagate through the Go call stack that implements the
// interpreter's recursive call chain, while still carrying the
// interpreted exception Value the protected-region machinery
// matches against catch types and rethrows.
type Thrown struct {
	Exception Value
}

func (t *Thrown) Error() string {
	if t.Exception == nil {
		return "<nil exception>"
	}
	return t.Exception.DebugString()
}

// ExceptionType extracts the runtime type of a thrown exception value
// for catch-type matching.
func ExceptionType(v Value, prims Primitives) *metadata.TypeDescriptor {
	return TypeOf(v, prims)
}

// NewRuntimeException builds a boxed exception object of the given
// well-known runtime exception type with a Message field set, for the
// built-in ECMA-335 exceptions the engine itself raises (null
// reference, invalid cast, overflow, divide-by-zero, index out of
// range). messageField, when non-nil, is the Message field descriptor
// on the exception type; when nil the message is dropped (the type
// graph did not declare one).
func NewRuntimeException(t *metadata.TypeDescriptor, messageField *metadata.FieldDescriptor, message string) *Object {
	obj := NewObject(t)
	if messageField != nil {
		obj.Fields[messageField] = String(message)
	}
	return obj
}
