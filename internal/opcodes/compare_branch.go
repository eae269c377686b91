package opcodes

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
)

func handleCeq(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	eq, err := valuesEqual(a, b)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(boolInt32(eq))
	return SigNext, nil
}

func handleCgt(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	c, err := cmpNumeric(a, b)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(boolInt32(c > 0))
	return SigNext, nil
}

func handleClt(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	c, err := cmpNumeric(a, b)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(boolInt32(c < 0))
	return SigNext, nil
}

func handleBr(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	fr.Cursor = instr.Operand.(int)
	return SigJump, nil
}

func handleBrtrue(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	if truthy(fr.Stack.Pop()) {
		fr.Cursor = instr.Operand.(int)
		return SigJump, nil
	}
	return SigNext, nil
}

func handleBrfalse(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	if !truthy(fr.Stack.Pop()) {
		fr.Cursor = instr.Operand.(int)
		return SigJump, nil
	}
	return SigNext, nil
}

func branchIf(instr il.Instruction, fr *frame.Context, cond bool) (Signal, error) {
	if cond {
		fr.Cursor = instr.Operand.(int)
		return SigJump, nil
	}
	return SigNext, nil
}

func handleBeq(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	eq, err := valuesEqual(a, b)
	if err != nil {
		return SigNext, err
	}
	return branchIf(instr, fr, eq)
}

func handleBne(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	eq, err := valuesEqual(a, b)
	if err != nil {
		return SigNext, err
	}
	return branchIf(instr, fr, !eq)
}

func handleBgt(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	c, err := cmpNumeric(a, b)
	if err != nil {
		return SigNext, err
	}
	return branchIf(instr, fr, c > 0)
}

func handleBlt(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	c, err := cmpNumeric(a, b)
	if err != nil {
		return SigNext, err
	}
	return branchIf(instr, fr, c < 0)
}

func handleBge(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	c, err := cmpNumeric(a, b)
	if err != nil {
		return SigNext, err
	}
	return branchIf(instr, fr, c >= 0)
}

func handleBle(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	c, err := cmpNumeric(a, b)
	if err != nil {
		return SigNext, err
	}
	return branchIf(instr, fr, c <= 0)
}

func handleSwitch(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	targets := instr.Operand.([]int)
	idxV := fr.Stack.Pop()
	i, err := toInt64(idxV)
	if err != nil {
		return SigNext, fmt.Errorf("opcodes: switch on non-integer operand: %w", err)
	}
	if i >= 0 && int(i) < len(targets) {
		fr.Cursor = targets[i]
		return SigJump, nil
	}
	return SigNext, nil
}
