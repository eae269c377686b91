package opcodes

import (
	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/object"
)

func handleNop(il.Instruction, *frame.Context, *Runtime) (Signal, error) { return SigNext, nil }

func handleLdcI4(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(object.Int32(instr.Operand.(int32)))
	return SigNext, nil
}

func handleLdcI8(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(object.Int64(instr.Operand.(int64)))
	return SigNext, nil
}

func handleLdcR8(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(object.Float64(instr.Operand.(float64)))
	return SigNext, nil
}

func handleLdstr(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(object.String(instr.Operand.(string)))
	return SigNext, nil
}

func handleLdnull(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(object.ObjectRef{})
	return SigNext, nil
}

func handleDup(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(copyVal(fr.Stack.Peek()))
	return SigNext, nil
}

func handlePop(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Pop()
	return SigNext, nil
}
