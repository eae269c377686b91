package opcodes

import (
	"fmt"
	"math"

	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/object"
)

// binaryArith pops b then a, applies iop/fop, and pushes the result
// narrowed back to the widest integer kind of the two operands (or a
// Float64 if the first operand is floating; an integer first operand
// with a floating second operand is rejected as non-numeric).
func binaryArith(fr *frame.Context, iop func(a, b int64) int64, fop func(a, b float64) float64) error {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	if _, ok := a.(object.Float64); ok {
		af, _ := toFloat64(a)
		bf, err := toFloat64(b)
		if err != nil {
			return err
		}
		fr.Stack.Push(object.Float64(fop(af, bf)))
		return nil
	}
	ai, aok := asInt64(a)
	bi, bok := asInt64(b)
	if !aok || !bok {
		return fmt.Errorf("opcodes: arithmetic on non-numeric operand (%T, %T)", a, b)
	}
	fr.Stack.Push(widestOf(a, b, iop(ai, bi)))
	return nil
}

func handleAdd(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
}

func handleSub(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
}

func handleMul(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
}

func handleDiv(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Peek()
	if i, ok := asInt64(b); ok && i == 0 {
		fr.Stack.Pop()
		fr.Stack.Pop()
		return SigNext, rt.raise("System.DivideByZeroException", "attempted to divide by zero")
	}
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a / b }, func(a, b float64) float64 { return a / b })
}

func handleRem(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	b := fr.Stack.Peek()
	if i, ok := asInt64(b); ok && i == 0 {
		fr.Stack.Pop()
		fr.Stack.Pop()
		return SigNext, rt.raise("System.DivideByZeroException", "attempted to divide by zero")
	}
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a % b }, func(a, b float64) float64 { return math.Mod(a, b) })
}

func handleNeg(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	v := fr.Stack.Pop()
	if f, ok := v.(object.Float64); ok {
		fr.Stack.Push(-f)
		return SigNext, nil
	}
	i, ok := asInt64(v)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: neg on non-numeric operand %T", v)
	}
	fr.Stack.Push(widestOf(v, v, -i))
	return SigNext, nil
}

func handleNot(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	v := fr.Stack.Pop()
	i, ok := asInt64(v)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: not on non-integer operand %T", v)
	}
	fr.Stack.Push(widestOf(v, v, ^i))
	return SigNext, nil
}

func handleAnd(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a & b }, func(a, b float64) float64 { return 0 })
}

func handleOr(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a | b }, func(a, b float64) float64 { return 0 })
}

func handleXor(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, binaryArith(fr, func(a, b int64) int64 { return a ^ b }, func(a, b float64) float64 { return 0 })
}

func handleShl(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	shift := fr.Stack.Pop()
	v := fr.Stack.Pop()
	si, _ := asInt64(shift)
	vi, ok := asInt64(v)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: shl on non-integer operand %T", v)
	}
	fr.Stack.Push(widestOf(v, v, vi<<uint(si&63)))
	return SigNext, nil
}

func handleShr(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	shift := fr.Stack.Pop()
	v := fr.Stack.Pop()
	si, _ := asInt64(shift)
	vi, ok := asInt64(v)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: shr on non-integer operand %T", v)
	}
	fr.Stack.Push(widestOf(v, v, vi>>uint(si&63)))
	return SigNext, nil
}

// overflowing add/sub/mul: combine reports int64 overflow, and when
// neither operand is NativeInt/Int64 the result is also checked
// against the int32 range.
func arithOvf(fr *frame.Context, rt *Runtime, name string, combine func(a, b int64) (int64, bool)) error {
	b := fr.Stack.Pop()
	a := fr.Stack.Pop()
	ai, aok := asInt64(a)
	bi, bok := asInt64(b)
	if !aok || !bok {
		return fmt.Errorf("opcodes: %s on non-integer operand (%T, %T)", name, a, b)
	}
	r, ok := combine(ai, bi)
	if !ok {
		return rt.raise("System.OverflowException", name+" overflowed")
	}
	if !isNativeInt(a) && !isNativeInt(b) && !isInt64(a) && !isInt64(b) {
		if r < math.MinInt32 || r > math.MaxInt32 {
			return rt.raise("System.OverflowException", name+" overflowed")
		}
	}
	fr.Stack.Push(widestOf(a, b, r))
	return nil
}

func handleAddOvf(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, arithOvf(fr, rt, "add.ovf", func(a, b int64) (int64, bool) {
		r := a + b
		return r, (b >= 0) == (r >= a)
	})
}

func handleSubOvf(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, arithOvf(fr, rt, "sub.ovf", func(a, b int64) (int64, bool) {
		r := a - b
		return r, (b >= 0) == (r <= a)
	})
}

func handleMulOvf(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	return SigNext, arithOvf(fr, rt, "mul.ovf", func(a, b int64) (int64, bool) {
		if a == 0 || b == 0 {
			return 0, true
		}
		r := a * b
		return r, r/b == a
	})
}
