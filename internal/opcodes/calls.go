package opcodes

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
)

func resolveCallTarget(instr il.Instruction, fr *frame.Context, rt *Runtime) (*metadata.MethodDescriptor, error) {
	ref, _ := instr.Operand.(*metadata.MethodRef)
	return rt.Resolver.ResolveMethod(ref, fr.Scope)
}

// handleCall implements non-virtual dispatch: the statically named
// method runs exactly as named, even if it is virtual (the CIL
// `call` instruction never consults the receiver's runtime type).
func handleCall(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	m, err := resolveCallTarget(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	args := popArgs(fr, len(m.Params))
	var receiver object.Value
	if m.ThisKind != il.ThisNone {
		receiver = fr.Stack.Pop()
	}
	result, err := rt.Invoker.Invoke(m, fr.Scope, receiver, args)
	if err != nil {
		return SigNext, err
	}
	if m.Return != nil && m.Return.Name != "Void" {
		fr.Stack.Push(result)
	}
	return SigNext, nil
}

// handleCallvirt implements virtual dispatch, honoring a `constrained.`
// prefix recorded by handleConstrained on the preceding instruction.
func handleCallvirt(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	m, err := resolveCallTarget(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	args := popArgs(fr, len(m.Params))
	receiver := fr.Stack.Pop()

	var result object.Value
	if constraint := fr.PendingConstraint; constraint != nil {
		fr.PendingConstraint = nil
		addr, ok := receiver.(*object.ManagedRef)
		if !ok {
			return SigNext, fmt.Errorf("opcodes: constrained. callvirt receiver is not a managed reference")
		}
		result, err = rt.Invoker.InvokeConstrained(constraint, m, fr.Scope, addr, args)
	} else {
		result, err = rt.Invoker.InvokeVirtual(m, fr.Scope, receiver, args)
	}
	if err != nil {
		return SigNext, err
	}
	if m.Return != nil && m.Return.Name != "Void" {
		fr.Stack.Push(result)
	}
	return SigNext, nil
}

// handleCalli invokes through a function pointer / delegate value on
// the stack rather than a statically named method.
func handleCalli(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	target := fr.Stack.Pop()
	d, ok := target.(*object.Delegate)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: calli target is not a delegate/function pointer")
	}
	args := popArgs(fr, len(d.Method.Params))
	result, err := rt.Invoker.InvokeDelegate(d, fr.Scope, args)
	if err != nil {
		return SigNext, err
	}
	if d.Method.Return != nil && d.Method.Return.Name != "Void" {
		fr.Stack.Push(result)
	}
	return SigNext, nil
}

// handleConstrained records the constraint type named by a
// `constrained.` prefix for the callvirt that immediately follows it
// (the two instructions are inseparable).
func handleConstrained(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	t, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	fr.PendingConstraint = t
	return SigNext, nil
}

func handleRet(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigReturn, nil
}
