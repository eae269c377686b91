// Package opcodes implements the "opcode dispatch
// handlers": one function per CIL instruction family, each operating
// on the current frame.Context and a Runtime of collaborators shared
// across every frame in a call chain (resolver, invoker, static
// store, primitive descriptors, and the well-known-exception/static-
// constructor hooks the interpreter loop wires in).
package opcodes

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/diagnostics"
	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/invoker"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/internal/resolver"
)

// Signal tells the interpreter loop what a handler did to control
// flow, since not every handler advances sequentially.
type Signal int

const (
	// SigNext advances the cursor to the next instruction in body order.
	SigNext Signal = iota
	// SigJump means the handler already set fr.Cursor to the target offset.
	SigJump
	// SigReturn means method execution is complete; the return value (if
	// any) is on top of the stack.
	SigReturn
	// SigLeave means `leave` set fr.Cursor to its target; the loop must
	// first run any finally/fault handlers for protected regions being
	// exited, in lexical nesting order, before jumping.
	SigLeave
	// SigEndfinally/SigEndfilter report that the currently executing
	// finally/fault or filter block has completed, handing control back
	// to whatever unwind step the loop had suspended.
	SigEndfinally
	SigEndfilter
)

// Handler executes one instruction against fr, using rt's shared
// collaborators, and reports how the cursor should move next.
type Handler func(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error)

// Runtime bundles the collaborators opcode handlers need but which
// outlive any single frame.
type Runtime struct {
	Resolver *resolver.Resolver
	Invoker  *invoker.Invoker
	Statics  *object.StaticStore
	Prims    object.Primitives

	// RunCctor runs t's static constructor at most once per ECMA-335 §I.8.9.5
	// before t's statics are first touched. Wired in by internal/vm,
	// since a .cctor with a managed body must recurse into the
	// interpreter loop.
	RunCctor func(t *metadata.TypeDescriptor) error

	// Raise builds a Thrown error for one of the handful of exceptions
	// the engine itself raises (NullReferenceException,
	// InvalidCastException, IndexOutOfRangeException,
	// DivideByZeroException, OverflowException), resolved against
	// whatever exception hierarchy the host bridge has registered.
	// Wired in by internal/vm.
	Raise func(name, message string) error
}

// raise builds a managed exception via Raise, falling back to a plain
// Go error if no Raise hook was wired (e.g. in tests that drive
// handlers directly without a full vm.Machine).
func (rt *Runtime) raise(name, message string) error {
	if rt.Raise == nil {
		return fmt.Errorf("%s: %s", name, message)
	}
	return rt.Raise(name, message)
}

// raiseFor converts the handful of internal sentinel error types the
// object package raises into managed exceptions via Raise, leaving
// any other error (engine bugs, resolution failures, an already-
// wrapped *object.Thrown) untouched. Centralized here so individual
// handlers can return plain Go errors without knowing about Raise.
func (rt *Runtime) raiseFor(err error) error {
	if err == nil || rt.Raise == nil {
		return err
	}
	switch err.(type) {
	case *object.IndexOutOfRangeError:
		return rt.Raise("System.IndexOutOfRangeException", err.Error())
	case *object.InvalidCastError:
		return rt.Raise("System.InvalidCastException", err.Error())
	case *invoker.NullReferenceError:
		return rt.Raise("System.NullReferenceException", err.Error())
	default:
		return err
	}
}

// Dispatch runs the handler registered for instr.Opcode, applying
// raiseFor to its error before returning it to the loop.
func Dispatch(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	h, ok := table[instr.Opcode]
	if !ok {
		pos := diagnostics.Position{Offset: instr.Offset}
		if fr.Method != nil {
			pos.Method = fr.Method.String()
		}
		return SigNext, diagnostics.NewEngineError(pos, "no handler implemented for %s", instr.Opcode)
	}
	sig, err := h(instr, fr, rt)
	return sig, rt.raiseFor(err)
}

var table map[il.Opcode]Handler

func init() {
	table = map[il.Opcode]Handler{
		il.OpNop: handleNop, il.OpLdcI4: handleLdcI4, il.OpLdcI8: handleLdcI8,
		il.OpLdcR8: handleLdcR8, il.OpLdstr: handleLdstr, il.OpLdnull: handleLdnull,
		il.OpDup: handleDup, il.OpPop: handlePop,

		il.OpLdloc: handleLdloc, il.OpLdloca: handleLdloca, il.OpStloc: handleStloc,
		il.OpLdarg: handleLdarg, il.OpLdarga: handleLdarga, il.OpStarg: handleStarg,

		il.OpAdd: handleAdd, il.OpAddOvf: handleAddOvf,
		il.OpSub: handleSub, il.OpSubOvf: handleSubOvf,
		il.OpMul: handleMul, il.OpMulOvf: handleMulOvf,
		il.OpDiv: handleDiv, il.OpDivUn: handleDiv,
		il.OpRem: handleRem, il.OpRemUn: handleRem,
		il.OpNeg: handleNeg, il.OpNot: handleNot,
		il.OpAnd: handleAnd, il.OpOr: handleOr, il.OpXor: handleXor,
		il.OpShl: handleShl, il.OpShr: handleShr, il.OpShrUn: handleShr,

		il.OpCeq: handleCeq, il.OpCgt: handleCgt, il.OpCgtUn: handleCgt,
		il.OpClt: handleClt, il.OpCltUn: handleClt,
		il.OpBr: handleBr, il.OpBrtrue: handleBrtrue, il.OpBrfalse: handleBrfalse,
		il.OpBeq: handleBeq, il.OpBne: handleBne,
		il.OpBgt: handleBgt, il.OpBlt: handleBlt, il.OpBge: handleBge, il.OpBle: handleBle,
		il.OpSwitch: handleSwitch,

		il.OpConvI4: handleConvI4, il.OpConvI8: handleConvI8, il.OpConvR8: handleConvR8,
		il.OpConvOvfI4: handleConvOvfI4, il.OpConvOvfI8: handleConvOvfI8,
		il.OpConvUI4: handleConvI4, il.OpConvUI8: handleConvI8,

		il.OpNewobj: handleNewobj, il.OpNewarr: handleNewarr, il.OpInitobj: handleInitobj,
		il.OpLdobj: handleLdobj, il.OpStobj: handleStobj,
		il.OpLdfld: handleLdfld, il.OpStfld: handleStfld, il.OpLdflda: handleLdflda,
		il.OpLdsfld: handleLdsfld, il.OpStsfld: handleStsfld, il.OpLdsflda: handleLdsflda,
		il.OpLdelem: handleLdelem, il.OpStelem: handleStelem, il.OpLdelema: handleLdelema,
		il.OpLdlen: handleLdlen,
		il.OpBox: handleBox, il.OpUnbox: handleUnbox, il.OpUnboxAny: handleUnboxAny,
		il.OpCastclass: handleCastclass, il.OpIsinst: handleIsinst,
		il.OpLdtoken: handleLdtoken, il.OpLdftn: handleLdftn, il.OpLdvirtftn: handleLdvirtftn,
		il.OpSizeof: handleSizeof,

		il.OpCall: handleCall, il.OpCallvirt: handleCallvirt, il.OpCalli: handleCalli,
		il.OpRet: handleRet, il.OpConstrained: handleConstrained, il.OpTailPrefix: handleNop,

		il.OpThrow: handleThrow, il.OpRethrow: handleRethrow, il.OpLeave: handleLeave,
		il.OpEndfinally: handleEndfinally, il.OpEndfilter: handleEndfilter,
	}
}
