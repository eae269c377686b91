package opcodes

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/object"
)

func handleThrow(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	exc := fr.Stack.Pop()
	if ref, ok := exc.(object.ObjectRef); ok && ref.IsNull() {
		return SigNext, &object.Thrown{Exception: mustRaise(rt, "System.NullReferenceException", "thrown exception reference was null")}
	}
	return SigNext, &object.Thrown{Exception: exc}
}

// handleRethrow re-raises fr.CurrentException. It fails only when no
// catch or filter handler has been entered in this frame yet: the loop
// sets fr.CurrentException on handler entry and does not clear it when
// the handler exits.
func handleRethrow(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	if fr.CurrentException == nil {
		return SigNext, fmt.Errorf("opcodes: rethrow outside of a catch handler")
	}
	return SigNext, &object.Thrown{Exception: fr.CurrentException}
}

// handleLeave exits a try/catch block to a target outside it. The
// vm loop, not this handler, is responsible for running intervening
// finally blocks before actually moving the cursor;
// this handler only records the target and empties the stack, as
// ECMA-335 requires of `leave`.
func handleLeave(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Cursor = instr.Operand.(int)
	fr.Stack.Clear()
	return SigLeave, nil
}

func handleEndfinally(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigEndfinally, nil
}

func handleEndfilter(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigEndfilter, nil
}

// mustRaise builds a managed exception Value via rt's hooks, falling
// back to a plain string payload if no Raise hook is wired (tests
// driving handlers directly without a full vm.Machine).
func mustRaise(rt *Runtime, name, message string) object.Value {
	err := rt.raise(name, message)
	if thrown, ok := err.(*object.Thrown); ok {
		return thrown.Exception
	}
	return object.String(name + ": " + message)
}
