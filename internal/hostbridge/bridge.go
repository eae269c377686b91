package hostbridge

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
)

// NativeFunc is the Go-side implementation of an InternalCall/PInvoke
// method, registered against the host's intrinsic table, which maps
// (declaring type full name, method name, argument count) to a native
// handler.
type NativeFunc func(receiver object.Value, args []object.Value) (object.Value, error)

type intrinsicKey struct {
	typeName   string
	methodName string
	arity      int
}

// ReflectBridge is the default HostRuntime: primitive descriptors are
// synthesized directly (bridging to Go's own numeric/string types via
// reflect.Type for identification), and native methods are dispatched
// through a registered intrinsic table rather than through general
// reflection-based marshaling — CIL's calling convention has no
// stable mapping onto an arbitrary Go method set, so general
// reflection is used only to tag descriptors, never to auto-invoke.
type ReflectBridge struct {
	prims      object.Primitives
	byKind     map[metadata.PrimitiveKind]*metadata.TypeDescriptor
	hostTypes  map[string]*metadata.TypeDescriptor
	byGoType   map[reflect.Type]*metadata.TypeDescriptor
	intrinsics map[intrinsicKey]NativeFunc
}

// NewReflectBridge constructs the bridge and interns the primitive
// type descriptors.
func NewReflectBridge() *ReflectBridge {
	b := &ReflectBridge{
		byKind:     make(map[metadata.PrimitiveKind]*metadata.TypeDescriptor),
		hostTypes:  make(map[string]*metadata.TypeDescriptor),
		byGoType:   make(map[reflect.Type]*metadata.TypeDescriptor),
		intrinsics: make(map[intrinsicKey]NativeFunc),
	}
	b.internPrimitives()
	b.registerBuiltinIntrinsics()
	return b
}

func (b *ReflectBridge) primitive(kind metadata.PrimitiveKind, ns, name string, goType reflect.Type) *metadata.TypeDescriptor {
	d := &metadata.TypeDescriptor{
		Kind:      metadata.KindPrimitive,
		Name:      name,
		Namespace: ns,
		HostType:  goType,
	}
	b.byKind[kind] = d
	b.hostTypes[d.QualifiedName()] = d
	if goType != nil {
		b.byGoType[goType] = d
	}
	return d
}

func (b *ReflectBridge) internPrimitives() {
	b.primitive(metadata.PrimVoid, "System", "Void", nil)
	b.primitive(metadata.PrimBool, "System", "Boolean", reflect.TypeOf(false))
	b.primitive(metadata.PrimChar, "System", "Char", reflect.TypeOf(rune(0)))
	b.primitive(metadata.PrimSByte, "System", "SByte", reflect.TypeOf(int8(0)))
	b.primitive(metadata.PrimByte, "System", "Byte", reflect.TypeOf(uint8(0)))
	b.primitive(metadata.PrimInt16, "System", "Int16", reflect.TypeOf(int16(0)))
	b.primitive(metadata.PrimUInt16, "System", "UInt16", reflect.TypeOf(uint16(0)))
	i32 := b.primitive(metadata.PrimInt32, "System", "Int32", reflect.TypeOf(int32(0)))
	b.primitive(metadata.PrimUInt32, "System", "UInt32", reflect.TypeOf(uint32(0)))
	i64 := b.primitive(metadata.PrimInt64, "System", "Int64", reflect.TypeOf(int64(0)))
	b.primitive(metadata.PrimUInt64, "System", "UInt64", reflect.TypeOf(uint64(0)))
	ni := b.primitive(metadata.PrimNativeInt, "System", "IntPtr", reflect.TypeOf(int64(0)))
	b.primitive(metadata.PrimNativeUInt, "System", "UIntPtr", reflect.TypeOf(uint64(0)))
	b.primitive(metadata.PrimSingle, "System", "Single", reflect.TypeOf(float32(0)))
	f64 := b.primitive(metadata.PrimDouble, "System", "Double", reflect.TypeOf(float64(0)))
	str := b.primitive(metadata.PrimString, "System", "String", reflect.TypeOf(""))
	// IntPtr and UIntPtr share int64/uint64 with Int64 and UInt64 (and
	// Char shares int32 with Int32); a reflect.Type lookup of those Go
	// types yields Int64, UInt64 and Int32.
	b.byGoType[reflect.TypeOf(int64(0))] = i64
	b.byGoType[reflect.TypeOf(uint64(0))] = b.byKind[metadata.PrimUInt64]
	obj := &metadata.TypeDescriptor{Kind: metadata.KindReference, Name: "Object", Namespace: "System"}
	b.byKind[metadata.PrimObject] = obj
	b.hostTypes[obj.QualifiedName()] = obj

	boolDesc := b.byKind[metadata.PrimBool]

	b.prims = object.Primitives{
		Int32: i32, Int64: i64, NativeInt: ni, Double: f64, String: str,
		Boolean: boolDesc, Object: obj,
	}
}

// Primitives implements HostRuntime.
func (b *ReflectBridge) Primitives() object.Primitives { return b.prims }

// ResolvePrimitive implements HostRuntime.
func (b *ReflectBridge) ResolvePrimitive(kind metadata.PrimitiveKind) *metadata.TypeDescriptor {
	return b.byKind[kind]
}

// LookupType implements HostRuntime.
func (b *ReflectBridge) LookupType(qualifiedName string) (*metadata.TypeDescriptor, bool) {
	d, ok := b.hostTypes[qualifiedName]
	return d, ok
}

// RegisterType adds a host-bridged library type descriptor (e.g.
// System.Exception's base hierarchy) so the resolver can hand it back
// for references the loaded assemblies don't themselves define.
func (b *ReflectBridge) RegisterType(d *metadata.TypeDescriptor) {
	b.hostTypes[d.QualifiedName()] = d
	if d.HostType != nil {
		b.byGoType[d.HostType] = d
	}
}

// LookupReflectType resolves a Go reflect.Type to the descriptor it
// was bridged under (a primitive, or a library type RegisterType was
// given with that HostType set) — the mechanism pkg/cilrun's
// reflection-based type-argument input uses.
func (b *ReflectBridge) LookupReflectType(t reflect.Type) (*metadata.TypeDescriptor, bool) {
	d, ok := b.byGoType[t]
	return d, ok
}

// RegisterIntrinsic adds a native handler to the intrinsic table,
// keyed by (declaring type full name, method name, argument count) —
// a (type, method, arity) signature triple, simplified to arity since
// this engine does not overload intrinsics by parameter type.
func (b *ReflectBridge) RegisterIntrinsic(typeName, methodName string, arity int, fn NativeFunc) {
	b.intrinsics[intrinsicKey{typeName, methodName, arity}] = fn
}

// HasIntrinsic implements HostRuntime.
func (b *ReflectBridge) HasIntrinsic(method *metadata.MethodDescriptor) bool {
	_, ok := b.lookup(method)
	return ok
}

func (b *ReflectBridge) lookup(method *metadata.MethodDescriptor) (NativeFunc, bool) {
	typeName := ""
	if method.DeclaringType != nil {
		typeName = method.DeclaringType.QualifiedName()
	}
	fn, ok := b.intrinsics[intrinsicKey{typeName, method.Name, len(method.Params)}]
	return fn, ok
}

// InvokeNative implements HostRuntime.
func (b *ReflectBridge) InvokeNative(method *metadata.MethodDescriptor, receiver object.Value, args []object.Value) (object.Value, error) {
	fn, ok := b.lookup(method)
	if !ok {
		return nil, fmt.Errorf("hostbridge: no intrinsic registered for %s(%s)",
			method, strings.Repeat("_,", len(args)))
	}
	return fn(receiver, args)
}
