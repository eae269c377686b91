// Package object implements the interpreter's runtime value model:
// the tagged evaluation-stack cells, interpreted heap objects, boxed
// and by-value value-type instances, arrays, delegates, and managed
// references.
package object

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/metadata"
)

// Value is the universal runtime value type: every evaluation-stack
// cell, local, argument, field, and array element is a Value. The
// concrete type carries CIL's value/reference distinction: Int32,
// Int64, NativeInt, and Float64 are plain Go values (copied by
// assignment, as CIL requires); *Object, *Array, and *Delegate are
// heap references; *ValueInstance is a by-value aggregate that must be
// copied (via Copy) on assignment, argument passing, and return.
type Value interface {
	ilValue()
	// DebugString returns a debug representation; it intentionally does not
	// implement fmt.Stringer under that name so values that also embed
	// a Go type (e.g. Int32's underlying int32) cannot be accidentally
	// formatted via %s before a String() method is written deliberately.
	DebugString() string
}

// Int32 is the CIL "int32" evaluation-stack slot. Sub-word integer
// locals/arguments/fields (bool, byte, sbyte, int16, uint16, char)
// promote to Int32 when loaded onto the stack, per ECMA-335 §III.1.5.
type Int32 int32

func (Int32) ilValue()                {}
func (v Int32) DebugString() string   { return fmt.Sprintf("%d", int32(v)) }

// Int64 is the CIL "int64" evaluation-stack slot.
type Int64 int64

func (Int64) ilValue()              {}
func (v Int64) DebugString() string { return fmt.Sprintf("%d", int64(v)) }

// NativeInt is the CIL "native int" evaluation-stack slot (pointer-
// sized signed integer).
type NativeInt int64

func (NativeInt) ilValue()              {}
func (v NativeInt) DebugString() string { return fmt.Sprintf("%d", int64(v)) }

// Float64 is the CIL "F" (floating) evaluation-stack slot; both
// float32 and float64 locals promote to this on load.
type Float64 float64

func (Float64) ilValue()              {}
func (v Float64) DebugString() string { return fmt.Sprintf("%g", float64(v)) }

// ObjectRef is the CIL "O" (object reference) evaluation-stack slot.
// A nil Obj represents the null reference.
type ObjectRef struct {
	Obj *Object
}

func (ObjectRef) ilValue() {}
func (v ObjectRef) DebugString() string {
	if v.Obj == nil {
		return "null"
	}
	return v.Obj.DebugString()
}

// IsNull reports whether this reference is null.
func (v ObjectRef) IsNull() bool { return v.Obj == nil }

// String is the CIL "string" primitive, kept as its own stack-slot
// kind rather than unified into ObjectRef so string literals do not
// need heap allocation to flow through the evaluation stack.
type String string

func (String) ilValue()              {}
func (v String) DebugString() string { return string(v) }

// TypeOf returns the runtime type descriptor for any Value, bridging
// to the supplied primitive descriptors for the Go-native stack
// slots.
func TypeOf(v Value, prims Primitives) *metadata.TypeDescriptor {
	switch t := v.(type) {
	case Int32:
		return prims.Int32
	case Int64:
		return prims.Int64
	case NativeInt:
		return prims.NativeInt
	case Float64:
		return prims.Double
	case String:
		return prims.String
	case ObjectRef:
		if t.Obj == nil {
			return nil
		}
		return t.Obj.Type
	case *Object:
		return t.Type
	case *Array:
		return t.Type
	case *Delegate:
		return t.Type
	case *ValueInstance:
		return t.Type
	case *ManagedRef:
		return prims.NativeInt // by-ref slots are reported as native int per ECMA-335 §III.1.5
	default:
		return nil
	}
}

// Primitives bundles the host-bridged primitive type descriptors
// needed to answer TypeOf for Go-native stack slots. It is supplied
// by the resolver/host bridge, not owned by this package, to avoid a
// dependency from object back onto resolver.
type Primitives struct {
	Int32     *metadata.TypeDescriptor
	Int64     *metadata.TypeDescriptor
	NativeInt *metadata.TypeDescriptor
	Double    *metadata.TypeDescriptor
	String    *metadata.TypeDescriptor
	Boolean   *metadata.TypeDescriptor
	Object    *metadata.TypeDescriptor
}
