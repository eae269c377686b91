// Package il defines the instruction-level vocabulary shared by the
// metadata model and the interpreter: opcodes, raw instructions,
// protected regions, and the few small enums (this-kind, generic
// owner, method attributes) that both sides need without depending on
// each other.
package il

// Opcode identifies a single CIL instruction. The set covers the
// handler families required by the interpreter: stack/constant loads,
// locals/arguments, arithmetic, comparisons/branches, conversions, the
// object model, calls, and exceptions.
type Opcode int

const (
	OpUnknown Opcode = iota

	// Stack/constant loads
	OpNop
	OpLdcI4
	OpLdcI8
	OpLdcR8
	OpLdstr
	OpLdnull
	OpDup
	OpPop

	// Locals/arguments
	OpLdloc
	OpLdloca
	OpStloc
	OpLdarg
	OpLdarga
	OpStarg

	// Arithmetic
	OpAdd
	OpAddOvf
	OpSub
	OpSubOvf
	OpMul
	OpMulOvf
	OpDiv
	OpDivUn
	OpRem
	OpRemUn
	OpNeg
	OpNot
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpShrUn

	// Comparisons/branches
	OpCeq
	OpCgt
	OpCgtUn
	OpClt
	OpCltUn
	OpBr
	OpBrtrue
	OpBrfalse
	OpBeq
	OpBne
	OpBgt
	OpBlt
	OpBge
	OpBle
	OpSwitch

	// Conversions
	OpConvI4
	OpConvI8
	OpConvR8
	OpConvOvfI4
	OpConvOvfI8
	OpConvUI4
	OpConvUI8

	// Object model
	OpNewobj
	OpNewarr
	OpInitobj
	OpLdobj
	OpStobj
	OpLdfld
	OpStfld
	OpLdflda
	OpLdsfld
	OpStsfld
	OpLdsflda
	OpLdelem
	OpStelem
	OpLdelema
	OpLdlen
	OpBox
	OpUnbox
	OpUnboxAny
	OpCastclass
	OpIsinst
	OpLdtoken
	OpLdftn
	OpLdvirtftn
	OpSizeof

	// Calls
	OpCall
	OpCallvirt
	OpCalli
	OpRet
	OpConstrained
	OpTailPrefix

	// Exceptions
	OpThrow
	OpRethrow
	OpLeave
	OpEndfinally
	OpEndfilter
)

var opcodeNames = map[Opcode]string{
	OpUnknown: "<unknown>", OpNop: "nop",
	OpLdcI4: "ldc.i4", OpLdcI8: "ldc.i8", OpLdcR8: "ldc.r8", OpLdstr: "ldstr",
	OpLdnull: "ldnull", OpDup: "dup", OpPop: "pop",
	OpLdloc: "ldloc", OpLdloca: "ldloca", OpStloc: "stloc",
	OpLdarg: "ldarg", OpLdarga: "ldarga", OpStarg: "starg",
	OpAdd: "add", OpAddOvf: "add.ovf", OpSub: "sub", OpSubOvf: "sub.ovf",
	OpMul: "mul", OpMulOvf: "mul.ovf", OpDiv: "div", OpDivUn: "div.un",
	OpRem: "rem", OpRemUn: "rem.un", OpNeg: "neg", OpNot: "not",
	OpAnd: "and", OpOr: "or", OpXor: "xor", OpShl: "shl", OpShr: "shr", OpShrUn: "shr.un",
	OpCeq: "ceq", OpCgt: "cgt", OpCgtUn: "cgt.un", OpClt: "clt", OpCltUn: "clt.un",
	OpBr: "br", OpBrtrue: "brtrue", OpBrfalse: "brfalse",
	OpBeq: "beq", OpBne: "bne.un", OpBgt: "bgt", OpBlt: "blt", OpBge: "bge", OpBle: "ble",
	OpSwitch: "switch",
	OpConvI4: "conv.i4", OpConvI8: "conv.i8", OpConvR8: "conv.r8",
	OpConvOvfI4: "conv.ovf.i4", OpConvOvfI8: "conv.ovf.i8",
	OpConvUI4: "conv.u4", OpConvUI8: "conv.u8",
	OpNewobj: "newobj", OpNewarr: "newarr", OpInitobj: "initobj",
	OpLdobj: "ldobj", OpStobj: "stobj",
	OpLdfld: "ldfld", OpStfld: "stfld", OpLdflda: "ldflda",
	OpLdsfld: "ldsfld", OpStsfld: "stsfld", OpLdsflda: "ldsflda",
	OpLdelem: "ldelem", OpStelem: "stelem", OpLdelema: "ldelema", OpLdlen: "ldlen",
	OpBox: "box", OpUnbox: "unbox", OpUnboxAny: "unbox.any",
	OpCastclass: "castclass", OpIsinst: "isinst",
	OpLdtoken: "ldtoken", OpLdftn: "ldftn", OpLdvirtftn: "ldvirtftn", OpSizeof: "sizeof",
	OpCall: "call", OpCallvirt: "callvirt", OpCalli: "calli", OpRet: "ret",
	OpConstrained: "constrained.", OpTailPrefix: "tail.",
	OpThrow: "throw", OpRethrow: "rethrow", OpLeave: "leave",
	OpEndfinally: "endfinally", OpEndfilter: "endfilter",
}

// String returns the canonical CIL mnemonic for the opcode.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "<invalid opcode>"
}
