package object

import "github.com/cwbudde/go-cilrun/internal/metadata"

// ValueInstance is a by-value aggregate of the declared fields of a
// value type. It is copied on
// assignment, argument passing, and return; aliasing requires an
// explicit managed reference (*ManagedRef).
type ValueInstance struct {
	Type   *metadata.TypeDescriptor
	Fields map[*metadata.FieldDescriptor]Value
}

func (*ValueInstance) ilValue() {}

// DebugString renders the instance's fields.
func (v *ValueInstance) DebugString() string {
	s := "("
	first := true
	for f, val := range v.Fields {
		if !first {
			s += ", "
		}
		first = false
		s += f.Name + ": " + val.DebugString()
	}
	return s + ")"
}

// NewValueInstance zero-initializes a value-type instance for t,
// recursing into nested value-type fields.
func NewValueInstance(t *metadata.TypeDescriptor) *ValueInstance {
	vi := &ValueInstance{Type: t, Fields: make(map[*metadata.FieldDescriptor]Value)}
	for _, f := range allFields(t) {
		if f.Static {
			continue
		}
		vi.Fields[f] = ZeroValue(f.FieldType)
	}
	return vi
}

// Copy deep-copies the instance, recursing into nested value-type
// fields (records/structs embedded by value), matching CIL's
// by-value local/argument/return semantics.
func (v *ValueInstance) Copy() *ValueInstance {
	out := &ValueInstance{Type: v.Type, Fields: make(map[*metadata.FieldDescriptor]Value, len(v.Fields))}
	for f, val := range v.Fields {
		if nested, ok := val.(*ValueInstance); ok {
			out.Fields[f] = nested.Copy()
		} else {
			out.Fields[f] = val
		}
	}
	return out
}

// Box wraps any value-type value — a struct-shaped ValueInstance or a
// bare scalar stack slot — in a heap Object of the declared type t
// ECMA-335 treats primitives as value
// types too, so boxing an Int32 must still allocate a reference.
// Equality to the unboxed value is field-wise, not identity — see
// FieldwiseEqual.
func Box(t *metadata.TypeDescriptor, v Value) *Object {
	if vi, ok := v.(*ValueInstance); ok {
		return &Object{Type: t, Boxed: vi.Copy()}
	}
	return &Object{Type: t, Primitive: v}
}

// UnboxAddress implements `unbox`: returns a managed reference into
// the boxed payload, or an error if the declared type mismatches.
func UnboxAddress(obj *Object, want *metadata.TypeDescriptor) (*ManagedRef, error) {
	if obj == nil || obj.Type != want || (obj.Boxed == nil && obj.Primitive == nil) {
		return nil, &InvalidCastError{Want: want, Got: describeBoxed(obj)}
	}
	return &ManagedRef{
		Kind: "boxed",
		Get: func() Value {
			if obj.Boxed != nil {
				return obj.Boxed
			}
			return obj.Primitive
		},
		Set: func(v Value) error {
			if nv, ok := v.(*ValueInstance); ok {
				obj.Boxed, obj.Primitive = nv, nil
				return nil
			}
			obj.Boxed, obj.Primitive = nil, v
			return nil
		},
	}, nil
}

// UnboxAny implements `unbox.any`: copies the boxed payload by value
// (or returns the boxed scalar directly, since Go's stack-slot scalars
// are themselves copied on assignment).
func UnboxAny(obj *Object, want *metadata.TypeDescriptor) (Value, error) {
	if obj == nil || obj.Type != want || (obj.Boxed == nil && obj.Primitive == nil) {
		return nil, &InvalidCastError{Want: want, Got: describeBoxed(obj)}
	}
	if obj.Boxed != nil {
		return obj.Boxed.Copy(), nil
	}
	return obj.Primitive, nil
}

func describeBoxed(obj *Object) *metadata.TypeDescriptor {
	if obj == nil {
		return nil
	}
	return obj.Type
}

// InvalidCastError is the managed InvalidCastException surfaced by
// box/unbox/castclass type mismatches.
type InvalidCastError struct {
	Want, Got *metadata.TypeDescriptor
}

func (e *InvalidCastError) Error() string {
	got := "null"
	if e.Got != nil {
		got = e.Got.QualifiedName()
	}
	want := "<nil>"
	if e.Want != nil {
		want = e.Want.QualifiedName()
	}
	return "InvalidCastException: cannot cast " + got + " to " + want
}
