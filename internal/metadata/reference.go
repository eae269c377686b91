package metadata

import "github.com/cwbudde/go-cilrun/internal/il"

// PrimitiveKind names a host-bridged primitive type, letting a TypeRef
// point at "Int32" or "String" without needing a TypeDef of its own —
// the resolver binds these directly to host descriptors.
type PrimitiveKind int

const (
	PrimNone PrimitiveKind = iota
	PrimVoid
	PrimBool
	PrimChar
	PrimSByte
	PrimByte
	PrimInt16
	PrimUInt16
	PrimInt32
	PrimUInt32
	PrimInt64
	PrimUInt64
	PrimNativeInt
	PrimNativeUInt
	PrimSingle
	PrimDouble
	PrimString
	PrimObject
)

// TypeRef is a metadata reference to a type: the shape method bodies
// and signatures actually carry. Exactly one of the fields below is
// meaningful for a given reference; which one is determined by the
// zero-valued sentinel checks the resolver performs in order.
type TypeRef struct {
	// Definition references a concretely named type declared in some
	// assembly (generic or not — if Definition.Arity > 0 and Args is
	// empty this names the open generic definition itself).
	Definition *TypeDef
	Args       []*TypeRef // type arguments when this names a constructed generic

	// GenericParam references an open generic parameter: !0 (Owner ==
	// OwnerType) or !!0 (Owner == OwnerMethod).
	GenericParam *GenericParamRef

	// Primitive references a host-bridged primitive type.
	Primitive PrimitiveKind

	// Array/Pointer/ByRef wrap an element TypeRef for the
	// corresponding compound type kind. At most one is set.
	Array   *ArrayRef
	Pointer *TypeRef
	ByRef   *TypeRef
}

// GenericParamRef names an open generic parameter by lexical owner
// and index, matching CIL's `!0`/`!!0` notation.
type GenericParamRef struct {
	Owner il.GenericOwner
	Index int
}

// ArrayRef describes an array TypeRef's element type and rank.
type ArrayRef struct {
	Element *TypeRef
	Rank    int
}

// MethodRef is a metadata reference to a method, as it appears at a
// call/newobj/ldftn site: a declaring type reference plus the
// definition being invoked, with method-level generic arguments when
// the referenced method is itself generic.
type MethodRef struct {
	DeclaringType  *TypeRef
	Definition     *MethodDef
	MethodTypeArgs []*TypeRef
}

// FieldRef is a metadata reference to a field.
type FieldRef struct {
	DeclaringType *TypeRef
	Definition    *FieldDef
}

// RefToDef builds the simple, non-generic TypeRef that names a
// concrete type definition directly — the common case for references
// inside non-generic code.
func RefToDef(def *TypeDef) *TypeRef { return &TypeRef{Definition: def} }

// RefToPrimitive builds a TypeRef naming a host-bridged primitive.
func RefToPrimitive(p PrimitiveKind) *TypeRef { return &TypeRef{Primitive: p} }

// RefToParam builds a TypeRef naming an open generic parameter.
func RefToParam(owner il.GenericOwner, index int) *TypeRef {
	return &TypeRef{GenericParam: &GenericParamRef{Owner: owner, Index: index}}
}
