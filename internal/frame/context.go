package frame

import (
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
)

// ActiveRegion wraps one protected region; it is the type of
// Context.ActiveHandler.
type ActiveRegion struct {
	Region il.ProtectedRegion
}

// Context is the per-invocation execution state: the current generic
// scope, method + definition, receiver, argument vector, locals
// vector, evaluation stack, protected-region stack, and
// next-instruction cursor.
type Context struct {
	Scope    *metadata.GenericScope
	Method   *metadata.MethodDescriptor
	Receiver object.Value // nil for a static method
	Args     []object.Value
	Locals   []object.Value
	Stack    EvalStack

	Regions       []il.ProtectedRegion
	ActiveHandler *ActiveRegion // not assigned by the interpreter loop; always nil there

	Cursor int // offset of the next instruction to execute; -1 means past the last instruction, reported as an engine error

	// CurrentException is set when a catch or filter handler is entered
	// for it, enabling `rethrow`; it is not cleared when the handler
	// exits, and finally handlers do not set it.
	CurrentException object.Value

	// PendingConstraint holds the type named by a `constrained.` prefix
	// until the following callvirt consumes it.
	PendingConstraint *metadata.TypeDescriptor

	CallDepth int
}

// NewContext builds a fresh frame for method, with locals zero-
// initialized per the method body's declared local types. If the
// body declares init.locals == false, the interpreter still
// zero-initializes them to remain deterministic.
func NewContext(method *metadata.MethodDescriptor, scope *metadata.GenericScope, receiver object.Value, args []object.Value, localTypes []*metadata.TypeDescriptor, regions []il.ProtectedRegion, callDepth int) *Context {
	locals := make([]object.Value, len(localTypes))
	for i, t := range localTypes {
		locals[i] = object.ZeroValue(t)
	}
	return &Context{
		Scope: scope, Method: method, Receiver: receiver, Args: args,
		Locals: locals, Regions: regions, Cursor: 0, CallDepth: callDepth,
	}
}

// RegionsAt performs the "active regions at offset o" query via
// binary search over the sorted, immutable protected-region array.
// Regions are expected to be sorted by (TryStart asc, TryEnd desc) so
// outer regions precede nested ones in reverse containment order once
// filtered.
func RegionsAt(regions []il.ProtectedRegion, offset int) []il.ProtectedRegion {
	lo, hi := 0, len(regions)
	for lo < hi {
		mid := (lo + hi) / 2
		if regions[mid].TryStart <= offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	var out []il.ProtectedRegion
	for i := 0; i < lo; i++ {
		if regions[i].Contains(offset) {
			out = append(out, regions[i])
		}
	}
	return out
}
