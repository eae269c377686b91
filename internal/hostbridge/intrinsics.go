package hostbridge

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/object"
)

// registerBuiltinIntrinsics wires a handful of InternalCall methods:
// console output, string concatenation, and object Equals/ToString.
// A full BCL surface is out of scope (the engine does not build its own
// host runtime itself); this is the minimal intrinsic table needed to
// demonstrate the cross-boundary invocation bridge.
func (b *ReflectBridge) registerBuiltinIntrinsics() {
	b.RegisterIntrinsic("System.Console", "WriteLine", 1, func(_ object.Value, args []object.Value) (object.Value, error) {
		fmt.Println(args[0].DebugString())
		return nil, nil
	})

	b.RegisterIntrinsic("System.String", "Concat", 2, func(_ object.Value, args []object.Value) (object.Value, error) {
		return object.String(args[0].DebugString() + args[1].DebugString()), nil
	})

	b.RegisterIntrinsic("System.Object", "Equals", 1, func(receiver object.Value, args []object.Value) (object.Value, error) {
		return object.Int32(boolToInt(object.FieldwiseEqual(receiver, args[0]))), nil
	})

	b.RegisterIntrinsic("System.Object", "ToString", 0, func(receiver object.Value, _ []object.Value) (object.Value, error) {
		if receiver == nil {
			return object.String(""), nil
		}
		return object.String(receiver.DebugString()), nil
	})
}

func boolToInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
