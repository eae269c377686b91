package opcodes

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/object"
)

// copyVal returns v, copying it first if it is a by-value aggregate —
// applied whenever a value crosses from one storage slot to another
// (load/store of a local, argument, field, or array element), so two
// slots never alias the same ValueInstance.
func copyVal(v object.Value) object.Value {
	if vi, ok := v.(*object.ValueInstance); ok {
		return vi.Copy()
	}
	return v
}

// popArgs pops n argument values, restoring left-to-right order (they
// were pushed in that order, so popping walks them in reverse).
func popArgs(fr *frame.Context, n int) []object.Value {
	args := make([]object.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = fr.Stack.Pop()
	}
	return args
}

func asInt64(v object.Value) (int64, bool) {
	switch t := v.(type) {
	case object.Int32:
		return int64(t), true
	case object.Int64:
		return int64(t), true
	case object.NativeInt:
		return int64(t), true
	}
	return 0, false
}

func toInt64(v object.Value) (int64, error) {
	if i, ok := asInt64(v); ok {
		return i, nil
	}
	if f, ok := v.(object.Float64); ok {
		return int64(f), nil
	}
	return 0, fmt.Errorf("opcodes: cannot convert %T to an integer", v)
}

func toFloat64(v object.Value) (float64, error) {
	switch t := v.(type) {
	case object.Float64:
		return float64(t), nil
	case object.Int32, object.Int64, object.NativeInt:
		i, _ := asInt64(v)
		return float64(i), nil
	default:
		return 0, fmt.Errorf("opcodes: cannot convert %T to a float", t)
	}
}

func isNativeInt(v object.Value) bool { _, ok := v.(object.NativeInt); return ok }
func isInt64(v object.Value) bool     { _, ok := v.(object.Int64); return ok }

// widestOf narrows result back to the widest of a and b's integer
// stack-slot kinds (native int > int64 > int32), matching the
// evaluation-stack promotion table of ECMA-335 §III.1.5.
func widestOf(a, b object.Value, result int64) object.Value {
	if isNativeInt(a) || isNativeInt(b) {
		return object.NativeInt(result)
	}
	if isInt64(a) || isInt64(b) {
		return object.Int64(result)
	}
	return object.Int32(int32(result))
}

func truthy(v object.Value) bool {
	switch t := v.(type) {
	case object.Int32:
		return t != 0
	case object.Int64:
		return t != 0
	case object.NativeInt:
		return t != 0
	case object.ObjectRef:
		return !t.IsNull()
	case *object.Array, *object.Object, *object.Delegate, *object.ManagedRef:
		return true
	default:
		return false
	}
}

func boolInt32(b bool) object.Int32 {
	if b {
		return 1
	}
	return 0
}

func valuesEqual(a, b object.Value) (bool, error) {
	switch at := a.(type) {
	case object.ObjectRef:
		bt, ok := b.(object.ObjectRef)
		return ok && at.Obj == bt.Obj, nil
	case object.String:
		bt, ok := b.(object.String)
		return ok && at == bt, nil
	case *object.Array:
		bt, ok := b.(*object.Array)
		return ok && at == bt, nil
	case *object.Object:
		bt, ok := b.(*object.Object)
		return ok && at == bt, nil
	default:
		c, err := cmpNumeric(a, b)
		if err != nil {
			return false, err
		}
		return c == 0, nil
	}
}

// cmpNumeric returns -1/0/1 for a<b, a==b, a>b over the numeric
// evaluation-stack kinds.
func cmpNumeric(a, b object.Value) (int, error) {
	if _, ok := a.(object.Float64); ok {
		af, err := toFloat64(a)
		if err != nil {
			return 0, err
		}
		bf, err := toFloat64(b)
		if err != nil {
			return 0, err
		}
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	ai, aok := asInt64(a)
	bi, bok := asInt64(b)
	if !aok || !bok {
		return 0, fmt.Errorf("opcodes: comparison on non-numeric operand (%T, %T)", a, b)
	}
	switch {
	case ai < bi:
		return -1, nil
	case ai > bi:
		return 1, nil
	default:
		return 0, nil
	}
}
