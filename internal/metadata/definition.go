package metadata

import "github.com/cwbudde/go-cilrun/internal/il"

// TypeDef is the as-declared definition of a type: its shape before
// any generic substitution. Open generic parameters appear inside its
// field types, base type, interfaces, and method signatures as
// GenericParamRef entries rather than concrete types.
type TypeDef struct {
	Assembly   *Assembly
	Token      Token
	Namespace  string
	Name       string
	Kind       TypeKind
	BaseType   *TypeRef
	Interfaces []*TypeRef
	Fields     []*FieldDef
	Methods    []*MethodDef
	Arity      int // number of generic parameters declared on this type (0 if non-generic)

	// EnumUnderlying is set only for Kind == KindEnum.
	EnumUnderlying *TypeRef
	// EnumMembers maps a member name to its ordinal for Kind == KindEnum.
	EnumMembers map[string]int64

	// ElementType/ArrayRank/Pointer/ByRefTo are set for the synthetic
	// definitions the resolver builds on the fly for array, pointer,
	// and by-ref types; ordinary declared types leave them nil/zero.
	ElementType *TypeRef
	ArrayRank   int
	PointeeType *TypeRef
	ByRefTo     *TypeRef
}

// QualifiedName returns "Namespace.Name", or just "Name" if the type
// is not namespaced.
func (t *TypeDef) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// MethodDef is the as-declared definition of a method.
type MethodDef struct {
	DeclaringType *TypeDef
	Token         Token
	Name          string
	ThisKind      il.ThisKind
	Params        []*TypeRef
	Return        *TypeRef
	VarArgs       bool
	Arity         int // generic method arity
	Attrs         il.MethodAttrs
	Body          *MethodBody // nil if the method has no managed body (InternalCall/PInvoke/abstract)
	VTableSlot    int         // -1 if the method does not occupy a v-table slot
}

// MethodBody is the sequence of CIL instructions plus local-variable
// signature, protected regions, and maximum stack depth that the
// interpreter walks.
type MethodBody struct {
	Instructions     []il.Instruction
	Locals           []*TypeRef
	InitLocals       bool
	MaxStack         int
	ProtectedRegions []il.ProtectedRegion
}

// FieldDef is the as-declared definition of a field.
type FieldDef struct {
	DeclaringType *TypeDef
	Token         Token
	Name          string
	FieldType     *TypeRef
	Static        bool
	InitialValue  any // for static/literal fields
	Offset        int // explicit layout offset; -1 if implicit-by-declaration-order
	Index         int // position in declaration order (inherited fields precede derived ones)
}
