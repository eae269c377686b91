package opcodes

import (
	"math"

	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/object"
)

func handleConvI4(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	i, err := toInt64(fr.Stack.Pop())
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(object.Int32(int32(i)))
	return SigNext, nil
}

func handleConvI8(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	i, err := toInt64(fr.Stack.Pop())
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(object.Int64(i))
	return SigNext, nil
}

func handleConvR8(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	f, err := toFloat64(fr.Stack.Pop())
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(object.Float64(f))
	return SigNext, nil
}

// handleConvOvfI4 narrows to int32, raising OverflowException if the
// source value does not fit — the checked counterpart of conv.i4.
func handleConvOvfI4(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	i, err := toInt64(fr.Stack.Pop())
	if err != nil {
		return SigNext, err
	}
	if i < math.MinInt32 || i > math.MaxInt32 {
		return SigNext, rt.raise("System.OverflowException", "conv.ovf.i4 overflowed")
	}
	fr.Stack.Push(object.Int32(int32(i)))
	return SigNext, nil
}

// handleConvOvfI8 narrows to int64; since every integer stack-slot
// kind this engine models already fits in int64, no value can
// overflow this conversion.
func handleConvOvfI8(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	i, err := toInt64(fr.Stack.Pop())
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(object.Int64(i))
	return SigNext, nil
}
