package cmd

import (
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/pkg/cilrun"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// buildFactorialMethod constructs the canonical recursive factorial
// body (`n <= 1 ? 1 : n * fact(n-1)`) directly as a MethodDef, the way
// an embedder would after its own metadata reader decoded a real
// assembly — this CLI carries no general-purpose metadata reader
// (that collaborator is supplied by the host, not the core engine),
// so `run demo` exercises the interpreter against a small fixed set of
// hand-built bodies instead of parsing an input format of its own.
func buildFactorialMethod() *metadata.MethodDef {
	typ := &metadata.TypeDef{Namespace: "Demo", Name: "Factorial"}
	method := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          "Compute",
		ThisKind:      il.ThisNone,
		Params:        []*metadata.TypeRef{metadata.RefToPrimitive(metadata.PrimInt32)},
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
	}
	typ.Methods = []*metadata.MethodDef{method}

	selfRef := &metadata.MethodRef{
		DeclaringType: metadata.RefToDef(typ),
		Definition:    method,
	}

	method.Body = &metadata.MethodBody{
		Instructions: []il.Instruction{
			{Offset: 0, Opcode: il.OpLdarg, Operand: 0},
			{Offset: 1, Opcode: il.OpLdcI4, Operand: int32(1)},
			{Offset: 2, Opcode: il.OpBgt, Operand: 5},
			{Offset: 3, Opcode: il.OpLdcI4, Operand: int32(1)},
			{Offset: 4, Opcode: il.OpRet},
			{Offset: 5, Opcode: il.OpLdarg, Operand: 0},
			{Offset: 6, Opcode: il.OpLdarg, Operand: 0},
			{Offset: 7, Opcode: il.OpLdcI4, Operand: int32(1)},
			{Offset: 8, Opcode: il.OpSub},
			{Offset: 9, Opcode: il.OpCall, Operand: selfRef},
			{Offset: 10, Opcode: il.OpMul},
			{Offset: 11, Opcode: il.OpRet},
		},
		MaxStack: 4,
	}
	return method
}

// buildIdentityMethod constructs `T Id<T>(T x) => x;`, the generic
// identity scenario: a single generic method parameter !!0 used as
// both the parameter and return type, with a body that simply loads
// and returns its argument.
func buildIdentityMethod() *metadata.MethodDef {
	typ := &metadata.TypeDef{Namespace: "Demo", Name: "Identity"}
	method := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          "Id",
		ThisKind:      il.ThisNone,
		Params:        []*metadata.TypeRef{metadata.RefToParam(il.OwnerMethod, 0)},
		Return:        metadata.RefToParam(il.OwnerMethod, 0),
		Arity:         1,
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdarg, Operand: 0},
				{Offset: 1, Opcode: il.OpRet},
			},
			MaxStack: 1,
		},
	}
	typ.Methods = []*metadata.MethodDef{method}
	return method
}

// identityCollator matches --type against the demo's two supported
// names case- and locale-insensitively, the same way the teacher's
// SameText() built-in compares strings (golang.org/x/text/collate
// rather than strings.EqualFold, since a collator also normalizes the
// composed-vs-decomposed Unicode forms EqualFold does not).
var identityCollator = collate.New(language.Und, collate.IgnoreCase)

func lookupGenericIdentityTypeArg(e *cilrun.Engine, goName string) (cilrun.TypeArg, bool) {
	switch {
	case identityCollator.CompareString(goName, "string") == 0:
		return cilrun.FromDescriptor(e.Host().Primitives().String), true
	case identityCollator.CompareString(goName, "int32") == 0:
		return cilrun.FromDescriptor(e.Host().Primitives().Int32), true
	default:
		return cilrun.TypeArg{}, false
	}
}
