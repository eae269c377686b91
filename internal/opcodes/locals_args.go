package opcodes

import (
	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/object"
)

func handleLdloc(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(copyVal(fr.Locals[instr.Operand.(int)]))
	return SigNext, nil
}

func handleStloc(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Locals[instr.Operand.(int)] = copyVal(fr.Stack.Pop())
	return SigNext, nil
}

func handleLdloca(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(object.NewSlotRef("local", fr.Locals, instr.Operand.(int)))
	return SigNext, nil
}

func handleLdarg(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(copyVal(fr.Args[instr.Operand.(int)]))
	return SigNext, nil
}

func handleStarg(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Args[instr.Operand.(int)] = copyVal(fr.Stack.Pop())
	return SigNext, nil
}

func handleLdarga(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Stack.Push(object.NewSlotRef("arg", fr.Args, instr.Operand.(int)))
	return SigNext, nil
}
