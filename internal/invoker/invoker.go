// Package invoker implements invocation of a resolved method
// on a receiver with an argument vector, hiding the distinction
// between interpreted and native methods from callers, and
// implementing virtual/constrained dispatch and multicast delegate
// invocation.
package invoker

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/hostbridge"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/internal/resolver"
)

// Interpreter is the callback the interpreter loop (internal/vm)
// wires in so Invoker can dispatch to interpreted method bodies
// without importing internal/vm — avoiding the natural import cycle
// between "the loop that calls out" and "the invoker the loop calls
// out through".
type Interpreter interface {
	Run(method *metadata.MethodDescriptor, scope *metadata.GenericScope, receiver object.Value, args []object.Value) (object.Value, error)
}

// Invoker is the cross-boundary invocation bridge.
type Invoker struct {
	Resolver *resolver.Resolver
	Host     hostbridge.HostRuntime
	interp   Interpreter
}

// New creates an Invoker. SetInterpreter must be called before any
// interpretable method is invoked.
func New(res *resolver.Resolver, host hostbridge.HostRuntime) *Invoker {
	return &Invoker{Resolver: res, Host: host}
}

// SetInterpreter wires the interpreter loop back into the invoker.
func (iv *Invoker) SetInterpreter(i Interpreter) { iv.interp = i }

// Invoke dispatches method on receiver with args, routing to the
// interpreter loop for managed bodies and to the host bridge for
// InternalCall/PInvoke methods.
func (iv *Invoker) Invoke(method *metadata.MethodDescriptor, scope *metadata.GenericScope, receiver object.Value, args []object.Value) (object.Value, error) {
	if method == nil {
		return nil, fmt.Errorf("invoker: nil method descriptor")
	}
	if method.IsInterpretable() {
		if iv.interp == nil {
			return nil, fmt.Errorf("invoker: no interpreter wired for %s", method)
		}
		return iv.interp.Run(method, scope, receiver, args)
	}
	return iv.Host.InvokeNative(method, receiver, nativeArgs(args))
}

// nativeArgs converts evaluation-stack representations into the host
// calling convention: boxed value types are unboxed (by value) before
// crossing the bridge, since the host side has no notion of the
// interpreter's box wrapper.
func nativeArgs(args []object.Value) []object.Value {
	out := make([]object.Value, len(args))
	for i, a := range args {
		obj, _ := a.(*object.Object)
		if ref, ok := a.(object.ObjectRef); ok {
			obj = ref.Obj
		}
		if obj != nil && obj.Boxed != nil {
			out[i] = obj.Boxed.Copy()
			continue
		}
		if obj != nil && obj.Primitive != nil {
			out[i] = obj.Primitive
			continue
		}
		out[i] = a
	}
	return out
}

// InvokeVirtual implements virtual dispatch: given a
// receiver and a declared method, it selects the most-derived
// override of the method's v-table (or interface-map) slot in the
// receiver's runtime type before invoking.
func (iv *Invoker) InvokeVirtual(declared *metadata.MethodDescriptor, scope *metadata.GenericScope, receiver object.Value, args []object.Value) (object.Value, error) {
	if !declared.IsVirtual() {
		return iv.Invoke(declared, scope, receiver, args)
	}
	runtimeType := object.TypeOf(receiver, iv.Host.Primitives())
	if runtimeType == nil {
		return nil, &NullReferenceError{}
	}

	if declared.DeclaringType != nil && declared.DeclaringType.Kind == metadata.KindInterface {
		impl, ok := runtimeType.InterfaceMethod(declared.DeclaringType, declared.VTableSlot)
		if !ok {
			return nil, fmt.Errorf("invoker: %s does not implement %s", runtimeType, declared)
		}
		return iv.Invoke(impl, scope, receiver, args)
	}

	vt := runtimeType.VTable()
	if declared.VTableSlot < 0 || declared.VTableSlot >= len(vt) || vt[declared.VTableSlot] == nil {
		return iv.Invoke(declared, scope, receiver, args)
	}
	return iv.Invoke(vt[declared.VTableSlot], scope, receiver, args)
}

// InvokeConstrained implements the `constrained.` prefix + callvirt
// combination: if the constraint names a value type
// that overrides the method, it is called directly against the
// unboxed instance; otherwise the instance is boxed and dispatched
// virtually.
func (iv *Invoker) InvokeConstrained(constraint *metadata.TypeDescriptor, declared *metadata.MethodDescriptor, scope *metadata.GenericScope, addr *object.ManagedRef, args []object.Value) (object.Value, error) {
	if !constraint.IsValueType() {
		return iv.InvokeVirtual(declared, scope, addr.Deref(), args)
	}

	vt := constraint.VTable()
	if declared.VTableSlot >= 0 && declared.VTableSlot < len(vt) && vt[declared.VTableSlot] != nil &&
		vt[declared.VTableSlot].DeclaringType == constraint {
		return iv.Invoke(vt[declared.VTableSlot], scope, addr.Deref(), args)
	}

	boxed := object.Box(constraint, addr.Deref())
	return iv.InvokeVirtual(declared, scope, object.ObjectRef{Obj: boxed}, args)
}

// InvokeDelegate implements `Invoke` on a (possibly multicast)
// delegate: targets run in insertion order, and the last target's
// result is returned.
func (iv *Invoker) InvokeDelegate(d *object.Delegate, scope *metadata.GenericScope, args []object.Value) (object.Value, error) {
	if d == nil {
		return nil, &NullReferenceError{}
	}
	var result object.Value
	for _, target := range d.Targets() {
		r, err := iv.Invoke(target.Method, scope, target.Target, args)
		if err != nil {
			return nil, err
		}
		result = r
	}
	return result, nil
}

// NullReferenceError is the managed NullReferenceException raised
// when dispatch is attempted through a null receiver.
type NullReferenceError struct{}

func (*NullReferenceError) Error() string { return "NullReferenceException: object reference not set" }
