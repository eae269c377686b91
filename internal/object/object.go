package object

import (
	"sort"
	"strings"

	"github.com/cwbudde/go-cilrun/internal/metadata"
)

// Object is an interpreted heap entity: its type descriptor plus a
// mapping from field identity to current value. It is created by
// newobj or by boxing a value-type instance.
type Object struct {
	Type   *metadata.TypeDescriptor
	Fields map[*metadata.FieldDescriptor]Value

	// Boxed is non-nil when this object boxes a struct-shaped value
	// type: its single "value" slot holds a copy of the underlying
	// value-type instance.
	Boxed *ValueInstance

	// Primitive is non-nil when this object boxes a scalar value type
	// (Int32, Int64, NativeInt, Float64, or a value-type enum):
	// ECMA-335 models these as value types too, so `box` on a bare
	// stack-slot scalar must still allocate a reference-typed wrapper.
	Primitive Value
}

func (*Object) ilValue() {}

// DebugString renders the object's fields sorted by field name.
func (o *Object) DebugString() string {
	if o.Boxed != nil {
		return o.Boxed.DebugString()
	}
	if o.Primitive != nil {
		return o.Primitive.DebugString()
	}
	var sb strings.Builder
	sb.WriteString(o.Type.QualifiedName())
	sb.WriteString("{")
	names := make([]string, 0, len(o.Fields))
	byName := make(map[string]*metadata.FieldDescriptor, len(o.Fields))
	for f := range o.Fields {
		names = append(names, f.Name)
		byName[f.Name] = f
	}
	sort.Strings(names)
	for i, n := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		f := byName[n]
		sb.WriteString(n)
		sb.WriteString(": ")
		sb.WriteString(o.Fields[f].DebugString())
	}
	sb.WriteString("}")
	return sb.String()
}

// NewObject allocates an interpreted object of type t with every
// declared field (including inherited ones) zero-initialized
// according to its declared type. It does not run any constructor —
// that is the invoker's duty.
func NewObject(t *metadata.TypeDescriptor) *Object {
	obj := &Object{Type: t, Fields: make(map[*metadata.FieldDescriptor]Value)}
	for _, f := range allFields(t) {
		if f.Static {
			continue
		}
		obj.Fields[f] = ZeroValue(f.FieldType)
	}
	return obj
}

// allFields walks the inheritance chain so inherited fields are
// populated before derived ones, matching the declaration-order
// invariant reflection observes.
func allFields(t *metadata.TypeDescriptor) []*metadata.FieldDescriptor {
	if t == nil {
		return nil
	}
	var fields []*metadata.FieldDescriptor
	if t.BaseType != nil {
		fields = append(fields, allFields(t.BaseType)...)
	}
	fields = append(fields, t.Fields...)
	return fields
}

// ZeroValue returns the zero/default value for a declared type:
// recursively zero-initialized value-type aggregates, nil-equivalent
// references for reference types, and the Go zero value for
// primitives.
func ZeroValue(t *metadata.TypeDescriptor) Value {
	if t == nil {
		return ObjectRef{}
	}
	switch {
	case t.Kind.IsValueLike():
		if t.Kind == metadata.KindValue {
			return NewValueInstance(t)
		}
		return zeroPrimitive(t)
	default:
		return ObjectRef{}
	}
}

func zeroPrimitive(t *metadata.TypeDescriptor) Value {
	if t.HostType == nil {
		return Int32(0)
	}
	switch t.Name {
	case "Int64", "UInt64":
		return Int64(0)
	case "Single", "Double":
		return Float64(0)
	case "IntPtr", "UIntPtr":
		return NativeInt(0)
	case "String":
		return String("")
	default:
		return Int32(0)
	}
}

// GetField reads a field (instance or static). Static fields are
// stored in the shared StaticStore rather than per-instance.
func (o *Object) GetField(f *metadata.FieldDescriptor, statics *StaticStore) Value {
	if f.Static {
		return statics.Get(f)
	}
	if v, ok := o.Fields[f]; ok {
		return v
	}
	return ZeroValue(f.FieldType)
}

// SetField writes a field (instance or static).
func (o *Object) SetField(f *metadata.FieldDescriptor, v Value, statics *StaticStore) {
	if f.Static {
		statics.Set(f, v)
		return
	}
	o.Fields[f] = v
}

// StaticStore holds process-wide static field state keyed by field
// descriptor identity. Interning of field descriptors means the field
// descriptor alone is a sufficient key, without also keying on the
// declaring type descriptor.
type StaticStore struct {
	values map[*metadata.FieldDescriptor]Value
}

// NewStaticStore creates an empty static field store.
func NewStaticStore() *StaticStore {
	return &StaticStore{values: make(map[*metadata.FieldDescriptor]Value)}
}

// Get reads a static field, defaulting to its zero value.
func (s *StaticStore) Get(f *metadata.FieldDescriptor) Value {
	if v, ok := s.values[f]; ok {
		return v
	}
	return ZeroValue(f.FieldType)
}

// Set writes a static field.
func (s *StaticStore) Set(f *metadata.FieldDescriptor, v Value) {
	s.values[f] = v
}

// FieldwiseEqual implements the field-wise equality ECMA-335
// requires between a boxed value and its unboxed counterpart: boxing
// never makes two otherwise-identical values distinguishable by
// Equals. Reference types compare by identity.
func FieldwiseEqual(a, b Value) bool {
	av := unwrapBoxed(a)
	bv := unwrapBoxed(b)
	if avi, ok := av.(*ValueInstance); ok {
		bvi, ok2 := bv.(*ValueInstance)
		return ok2 && valueInstanceEqual(avi, bvi)
	}
	return primitiveEqual(av, bv)
}

// unwrapBoxed peels a boxed scalar or boxed struct back to its
// unboxed representation, leaving any other value untouched.
func unwrapBoxed(v Value) Value {
	if o, ok := v.(*Object); ok {
		if o.Boxed != nil {
			return o.Boxed
		}
		if o.Primitive != nil {
			return o.Primitive
		}
	}
	return v
}

func valueInstanceEqual(a, b *ValueInstance) bool {
	if a.Type != b.Type {
		return false
	}
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for f, av := range a.Fields {
		bv, ok := b.Fields[f]
		if !ok || !FieldwiseEqual(av, bv) {
			return false
		}
	}
	return true
}

// primitiveEqual compares the Go-native stack-slot kinds by value and
// object/array/delegate references by identity.
func primitiveEqual(a, b Value) bool {
	switch at := a.(type) {
	case Int32:
		bt, ok := b.(Int32)
		return ok && at == bt
	case Int64:
		bt, ok := b.(Int64)
		return ok && at == bt
	case NativeInt:
		bt, ok := b.(NativeInt)
		return ok && at == bt
	case Float64:
		bt, ok := b.(Float64)
		return ok && at == bt
	case String:
		bt, ok := b.(String)
		return ok && at == bt
	case ObjectRef:
		bt, ok := b.(ObjectRef)
		return ok && at.Obj == bt.Obj
	case *Object:
		bt, ok := b.(*Object)
		return ok && at == bt
	case *Array:
		bt, ok := b.(*Array)
		return ok && at == bt
	case *Delegate:
		bt, ok := b.(*Delegate)
		return ok && at == bt
	default:
		return false
	}
}
