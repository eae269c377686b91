// Package vm implements the top-level interpreter loop: it walks a
// resolved method body instruction by instruction via
// internal/opcodes.Dispatch, drives protected-region unwinding on a
// thrown exception or a `leave`, and runs static constructors under
// the once-per-type, reentrant-per-thread discipline ECMA-335
// §I.8.9.5 requires. It is the concrete internal/invoker.Interpreter
// the rest of the engine calls back into for every managed method
// body.
package vm

import (
	"github.com/cwbudde/go-cilrun/internal/diagnostics"
	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/hostbridge"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/invoker"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/internal/opcodes"
	"github.com/cwbudde/go-cilrun/internal/resolver"
)

// Machine owns the collaborators the interpreter loop shares across
// every frame in a call chain, and is the Interpreter the Invoker
// dispatches interpretable bodies back through.
type Machine struct {
	Resolver *resolver.Resolver
	Invoker  *invoker.Invoker
	Host     hostbridge.HostRuntime
	Statics  *object.StaticStore

	rt              *opcodes.Runtime
	synthExceptions map[string]*metadata.TypeDescriptor

	// Trace, when non-nil, is invoked with the method name, the
	// instruction about to execute, and the evaluation stack depth
	// before it runs. Wired from config.Manifest.TraceInstructions.
	Trace func(method string, instr il.Instruction, stackDepth int)
}

// New builds a Machine and wires it back into iv as the interpreter
// for managed bodies.
func New(res *resolver.Resolver, iv *invoker.Invoker, host hostbridge.HostRuntime) *Machine {
	m := &Machine{
		Resolver: res,
		Invoker:  iv,
		Host:     host,
		Statics:  object.NewStaticStore(),
	}
	m.rt = &opcodes.Runtime{
		Resolver: res,
		Invoker:  iv,
		Statics:  m.Statics,
		Prims:    host.Primitives(),
		RunCctor: m.runCctor,
		Raise:    m.raise,
	}
	iv.SetInterpreter(m)
	return m
}

// Run implements invoker.Interpreter: it builds a fresh frame for
// method and drives it to completion or to an unhandled exception.
func (m *Machine) Run(method *metadata.MethodDescriptor, scope *metadata.GenericScope, receiver object.Value, args []object.Value) (object.Value, error) {
	if method.Def == nil || method.Def.Body == nil {
		return nil, diagnostics.NewInvocationError("%s has no managed body", method)
	}
	body := method.Def.Body

	localTypes := make([]*metadata.TypeDescriptor, len(body.Locals))
	for i, l := range body.Locals {
		lt, err := m.Resolver.ResolveType(l, scope)
		if err != nil {
			return nil, err
		}
		localTypes[i] = lt
	}

	fr := frame.NewContext(method, scope, receiver, args, localTypes, body.ProtectedRegions, 0)
	return m.runToReturn(fr, body)
}

// runToReturn drives fr from its current cursor until the method
// returns, recovering a malformed-body stack-underflow into an
// EngineError so a bug in one interpreted method cannot crash the
// host process.
func (m *Machine) runToReturn(fr *frame.Context, body *metadata.MethodBody) (result object.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = diagnostics.NewEngineError(m.pos(fr), "%v", r)
		}
	}()

	value, sig, retErr := m.run(fr, body, nil)
	if retErr != nil {
		return nil, retErr
	}
	if sig == opcodes.SigReturn {
		return value, nil
	}
	return nil, diagnostics.NewEngineError(m.pos(fr), "method body fell off the end without a ret")
}

// run drives fr from its current cursor, handling every opcode
// signal, until it either hits a signal in stopAt (used to bound
// execution of a single finally/fault/filter handler body) or the
// method itself returns.
func (m *Machine) run(fr *frame.Context, body *metadata.MethodBody, stopAt []opcodes.Signal) (object.Value, opcodes.Signal, error) {
	index := indexByOffset(body.Instructions)

	for {
		i, ok := index[fr.Cursor]
		if !ok {
			return nil, 0, diagnostics.NewEngineError(m.pos(fr), "cursor 0x%x is not a valid instruction offset", fr.Cursor)
		}
		instr := body.Instructions[i]

		if m.Trace != nil {
			m.Trace(fr.Method.String(), instr, fr.Stack.Len())
		}

		sig, err := opcodes.Dispatch(instr, fr, m.rt)
		if err != nil {
			next, handled, uerr := m.unwind(fr, body, instr.Offset, err)
			if uerr != nil {
				return nil, 0, uerr
			}
			if !handled {
				return nil, 0, err
			}
			fr.Cursor = next
			continue
		}

		if containsSignal(stopAt, sig) {
			return nil, sig, nil
		}

		switch sig {
		case opcodes.SigReturn:
			var value object.Value
			if fr.Method.Return != nil && fr.Method.Return.Name != "Void" {
				if fr.Stack.Len() == 0 {
					return nil, 0, diagnostics.NewEngineError(m.pos(fr), "ret with an empty stack in a method returning %s", fr.Method.Return)
				}
				value = fr.Stack.Pop()
			}
			if fr.Stack.Len() != 0 {
				return nil, 0, diagnostics.NewEngineError(m.pos(fr), "ret leaves %d value(s) on the stack", fr.Stack.Len())
			}
			return value, sig, nil
		case opcodes.SigNext:
			fr.Cursor = nextOffset(body.Instructions, i)
		case opcodes.SigJump:
			// handler already set fr.Cursor
		case opcodes.SigLeave:
			target, lerr := m.runInterveningFinally(fr, body, instr.Offset, fr.Cursor)
			if lerr != nil {
				next, handled, uerr := m.unwind(fr, body, instr.Offset, lerr)
				if uerr != nil {
					return nil, 0, uerr
				}
				if !handled {
					return nil, 0, lerr
				}
				fr.Cursor = next
				continue
			}
			fr.Cursor = target
		case opcodes.SigEndfinally, opcodes.SigEndfilter:
			return nil, 0, diagnostics.NewEngineError(m.pos(fr), "%s outside of a handler", instr.Opcode)
		}
	}
}

func containsSignal(set []opcodes.Signal, s opcodes.Signal) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

func (m *Machine) pos(fr *frame.Context) diagnostics.Position {
	return diagnostics.Position{Method: fr.Method.String(), Offset: fr.Cursor}
}

// indexByOffset builds the offset -> slice-index lookup the loop uses
// to turn a branch target (an instruction offset) into the next
// instruction to execute; it is rebuilt on every call to run (once per
// invocation and once per handler body run).
func indexByOffset(instrs []il.Instruction) map[int]int {
	idx := make(map[int]int, len(instrs))
	for i, instr := range instrs {
		idx[instr.Offset] = i
	}
	return idx
}

// nextOffset returns the offset of the instruction following instrs[i]
// in body order. Running off the end is always an engine bug: a
// well-formed body ends every path in a `ret`, `throw`, or
// unconditional branch, so the sentinel -1 is never looked up as a
// valid offset and surfaces as "cursor is not a valid instruction
// offset" on the next iteration.
func nextOffset(instrs []il.Instruction, i int) int {
	if i+1 < len(instrs) {
		return instrs[i+1].Offset
	}
	return -1
}
