package il

// Instruction is one decoded CIL instruction within a method body.
// Operand carries the opcode-specific payload: an int32 for ldc.i4, an
// int64 for ldc.i8, a float64 for ldc.r8, a string for ldstr, a
// resolved *metadata.MethodRef/*metadata.TypeRef/*metadata.FieldRef for
// any metadata-referencing opcode (newobj, call, ldfld, ...), an int
// for ldloc/ldarg/starg indices and branch targets (absolute
// instruction offsets), or []int for switch targets.
type Instruction struct {
	Offset  int
	Opcode  Opcode
	Operand any
}

// ThisKind distinguishes how a method receives (or does not receive) a
// receiver.
type ThisKind int

const (
	ThisNone ThisKind = iota
	ThisInstance
	ThisExplicit
)

// GenericOwner distinguishes the two lexical nesting levels a generic
// parameter can belong to: the declaring type (!0, !1, ...) or the
// method itself (!!0, !!1, ...).
type GenericOwner int

const (
	OwnerType GenericOwner = iota
	OwnerMethod
)

// MethodAttrs is a bitset of the method flags the interpreter cares
// about.
type MethodAttrs uint32

const (
	AttrStatic MethodAttrs = 1 << iota
	AttrVirtual
	AttrAbstract
	AttrSpecialName
	AttrInternalCall
	AttrPInvoke
)

func (a MethodAttrs) Has(f MethodAttrs) bool { return a&f != 0 }

// HandlerKind is the kind of a protected-region handler.
type HandlerKind int

const (
	HandlerCatch HandlerKind = iota
	HandlerFilter
	HandlerFinally
	HandlerFault
)

// ProtectedRegion is one try/handler pair declared in a method body.
// CatchType is non-nil only for HandlerCatch and carries the raw type
// reference (resolved lazily against the frame's generic scope, since
// a catch type may itself be an open generic parameter).
type ProtectedRegion struct {
	TryStart     int
	TryEnd       int // exclusive
	HandlerStart int
	HandlerEnd   int // exclusive
	FilterStart  int // only for HandlerFilter; offset of the filter block
	Kind         HandlerKind
	CatchType    any // *metadata.TypeRef, kept as `any` to avoid an import cycle
}

// Contains reports whether offset lies within the region's try range.
func (r ProtectedRegion) Contains(offset int) bool {
	return offset >= r.TryStart && offset < r.TryEnd
}
