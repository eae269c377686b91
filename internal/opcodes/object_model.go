package opcodes

import (
	"fmt"

	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/invoker"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
)

func handleNewobj(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.MethodRef)
	ctor, err := rt.Resolver.ResolveMethod(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	args := popArgs(fr, len(ctor.Params))

	if ctor.DeclaringType.IsValueType() {
		vi := object.NewValueInstance(ctor.DeclaringType)
		if _, err := rt.Invoker.Invoke(ctor, fr.Scope, vi, args); err != nil {
			return SigNext, err
		}
		fr.Stack.Push(vi)
		return SigNext, nil
	}

	obj := object.NewObject(ctor.DeclaringType)
	receiver := object.ObjectRef{Obj: obj}
	if _, err := rt.Invoker.Invoke(ctor, fr.Scope, receiver, args); err != nil {
		return SigNext, err
	}
	fr.Stack.Push(receiver)
	return SigNext, nil
}

func handleNewarr(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	elemRef, _ := instr.Operand.(*metadata.TypeRef)
	elemType, err := rt.Resolver.ResolveType(elemRef, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	lengthV := fr.Stack.Pop()
	length, err := toInt64(lengthV)
	if err != nil {
		return SigNext, err
	}
	if length < 0 {
		return SigNext, rt.raise("System.OverflowException", "negative array length")
	}
	arrType := rt.Resolver.ResolveArrayType(elemType, 1)
	fr.Stack.Push(object.NewArray(arrType, elemType, int(length)))
	return SigNext, nil
}

func handleInitobj(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	t, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	addr, ok := fr.Stack.Pop().(*object.ManagedRef)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: initobj target is not a managed reference")
	}
	return SigNext, addr.Assign(object.ZeroValue(t))
}

func handleLdobj(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	addr, ok := fr.Stack.Pop().(*object.ManagedRef)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: ldobj source is not a managed reference")
	}
	fr.Stack.Push(copyVal(addr.Deref()))
	return SigNext, nil
}

func handleStobj(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	v := fr.Stack.Pop()
	addr, ok := fr.Stack.Pop().(*object.ManagedRef)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: stobj target is not a managed reference")
	}
	return SigNext, addr.Assign(copyVal(v))
}

// fieldGet reads field f off instance, dereferencing ObjectRef/
// ManagedRef wrappers and accepting a bare *ValueInstance for
// unboxed value-type receivers (e.g. `ldfld` straight off a local).
func fieldGet(instance object.Value, f *metadata.FieldDescriptor, statics *object.StaticStore) (object.Value, error) {
	switch t := instance.(type) {
	case object.ObjectRef:
		if t.Obj == nil {
			return nil, &invoker.NullReferenceError{}
		}
		return t.Obj.GetField(f, statics), nil
	case *object.Object:
		return t.GetField(f, statics), nil
	case *object.ValueInstance:
		if v, ok := t.Fields[f]; ok {
			return v, nil
		}
		return object.ZeroValue(f.FieldType), nil
	case *object.ManagedRef:
		return fieldGet(t.Deref(), f, statics)
	default:
		return nil, fmt.Errorf("opcodes: ldfld on unsupported receiver %T", instance)
	}
}

func fieldSet(instance object.Value, f *metadata.FieldDescriptor, v object.Value, statics *object.StaticStore) error {
	switch t := instance.(type) {
	case object.ObjectRef:
		if t.Obj == nil {
			return &invoker.NullReferenceError{}
		}
		t.Obj.SetField(f, v, statics)
		return nil
	case *object.Object:
		t.SetField(f, v, statics)
		return nil
	case *object.ValueInstance:
		t.Fields[f] = v
		return nil
	case *object.ManagedRef:
		return fieldSet(t.Deref(), f, v, statics)
	default:
		return fmt.Errorf("opcodes: stfld on unsupported receiver %T", instance)
	}
}

func fieldAddr(instance object.Value, f *metadata.FieldDescriptor, statics *object.StaticStore) (*object.ManagedRef, error) {
	switch t := instance.(type) {
	case object.ObjectRef:
		if t.Obj == nil {
			return nil, &invoker.NullReferenceError{}
		}
		obj := t.Obj
		return &object.ManagedRef{
			Kind: "field",
			Get:  func() object.Value { return obj.GetField(f, statics) },
			Set:  func(v object.Value) error { obj.SetField(f, v, statics); return nil },
		}, nil
	case *object.ValueInstance:
		return &object.ManagedRef{
			Kind: "field",
			Get:  func() object.Value { return t.Fields[f] },
			Set:  func(v object.Value) error { t.Fields[f] = v; return nil },
		}, nil
	case *object.ManagedRef:
		return fieldAddr(t.Deref(), f, statics)
	default:
		return nil, fmt.Errorf("opcodes: ldflda on unsupported receiver %T", instance)
	}
}

func resolveField(instr il.Instruction, fr *frame.Context, rt *Runtime) (*metadata.FieldDescriptor, error) {
	ref, _ := instr.Operand.(*metadata.FieldRef)
	return rt.Resolver.ResolveField(ref, fr.Scope)
}

func handleLdfld(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	f, err := resolveField(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	instance := fr.Stack.Pop()
	v, err := fieldGet(instance, f, rt.Statics)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(copyVal(v))
	return SigNext, nil
}

func handleStfld(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	f, err := resolveField(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	v := fr.Stack.Pop()
	instance := fr.Stack.Pop()
	return SigNext, fieldSet(instance, f, copyVal(v), rt.Statics)
}

func handleLdflda(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	f, err := resolveField(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	instance := fr.Stack.Pop()
	ref, err := fieldAddr(instance, f, rt.Statics)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(ref)
	return SigNext, nil
}

func handleLdsfld(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	f, err := resolveField(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	if err := rt.RunCctor(f.DeclaringType); err != nil {
		return SigNext, err
	}
	fr.Stack.Push(copyVal(rt.Statics.Get(f)))
	return SigNext, nil
}

func handleStsfld(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	f, err := resolveField(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	if err := rt.RunCctor(f.DeclaringType); err != nil {
		return SigNext, err
	}
	rt.Statics.Set(f, copyVal(fr.Stack.Pop()))
	return SigNext, nil
}

func handleLdsflda(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	f, err := resolveField(instr, fr, rt)
	if err != nil {
		return SigNext, err
	}
	if err := rt.RunCctor(f.DeclaringType); err != nil {
		return SigNext, err
	}
	statics := rt.Statics
	fr.Stack.Push(&object.ManagedRef{
		Kind: "static",
		Get:  func() object.Value { return statics.Get(f) },
		Set:  func(v object.Value) error { statics.Set(f, v); return nil },
	})
	return SigNext, nil
}

func popArray(fr *frame.Context) (*object.Array, error) {
	v := fr.Stack.Pop()
	arr, ok := v.(*object.Array)
	if !ok || arr == nil {
		return nil, &invoker.NullReferenceError{}
	}
	return arr, nil
}

func handleLdlen(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	arr, err := popArray(fr)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(object.Int32(int32(arr.Len())))
	return SigNext, nil
}

func handleLdelem(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	idxV := fr.Stack.Pop()
	v := fr.Stack.Pop()
	arr, ok := v.(*object.Array)
	if !ok || arr == nil {
		return SigNext, &invoker.NullReferenceError{}
	}
	idx, err := toInt64(idxV)
	if err != nil {
		return SigNext, err
	}
	val, err := arr.Get(int(idx))
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(copyVal(val))
	return SigNext, nil
}

func handleStelem(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	val := fr.Stack.Pop()
	idxV := fr.Stack.Pop()
	v := fr.Stack.Pop()
	arr, ok := v.(*object.Array)
	if !ok || arr == nil {
		return SigNext, &invoker.NullReferenceError{}
	}
	idx, err := toInt64(idxV)
	if err != nil {
		return SigNext, err
	}
	return SigNext, arr.Set(copyVal(val), int(idx))
}

func handleLdelema(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	idxV := fr.Stack.Pop()
	v := fr.Stack.Pop()
	arr, ok := v.(*object.Array)
	if !ok || arr == nil {
		return SigNext, &invoker.NullReferenceError{}
	}
	idx, err := toInt64(idxV)
	if err != nil {
		return SigNext, err
	}
	flat, err := arr.FlatIndex([]int{int(idx)})
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(object.NewSlotRef("element", arr.Data, flat))
	return SigNext, nil
}

func handleBox(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	t, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	v := fr.Stack.Pop()
	// Boxing a reference value is already a no-op box in CIL (the
	// value is already a reference); only value-kind payloads allocate.
	if !t.IsValueType() {
		fr.Stack.Push(v)
		return SigNext, nil
	}
	fr.Stack.Push(object.ObjectRef{Obj: object.Box(t, v)})
	return SigNext, nil
}

func handleUnbox(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	t, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	obj, err := popBoxed(fr)
	if err != nil {
		return SigNext, err
	}
	ref2, err := object.UnboxAddress(obj, t)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(ref2)
	return SigNext, nil
}

func handleUnboxAny(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	t, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	obj, err := popBoxed(fr)
	if err != nil {
		return SigNext, err
	}
	v, err := object.UnboxAny(obj, t)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(v)
	return SigNext, nil
}

func popBoxed(fr *frame.Context) (*object.Object, error) {
	v := fr.Stack.Pop()
	ref, ok := v.(object.ObjectRef)
	if !ok {
		if o, ok2 := v.(*object.Object); ok2 {
			return o, nil
		}
		return nil, fmt.Errorf("opcodes: unbox target is not an object reference")
	}
	if ref.Obj == nil {
		return nil, &invoker.NullReferenceError{}
	}
	return ref.Obj, nil
}

func handleCastclass(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	want, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	v := fr.Stack.Pop()
	r, ok := v.(object.ObjectRef)
	if !ok {
		return SigNext, fmt.Errorf("opcodes: castclass on non-reference value %T", v)
	}
	if r.IsNull() {
		fr.Stack.Push(r)
		return SigNext, nil
	}
	if !want.IsAssignableFrom(r.Obj.Type) {
		return SigNext, &object.InvalidCastError{Want: want, Got: r.Obj.Type}
	}
	fr.Stack.Push(r)
	return SigNext, nil
}

func handleIsinst(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	want, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	v := fr.Stack.Pop()
	r, ok := v.(object.ObjectRef)
	if !ok || r.IsNull() || !want.IsAssignableFrom(r.Obj.Type) {
		fr.Stack.Push(object.ObjectRef{})
		return SigNext, nil
	}
	fr.Stack.Push(r)
	return SigNext, nil
}

// handleLdtoken pushes a runtime-handle placeholder: the resolved
// type/method/field descriptor itself, wrapped in an opaque
// tokenHandle value, since this engine has no separate RuntimeTypeHandle
// representation — reflection intrinsics read it back by type
// assertion rather than by further indirection.
func handleLdtoken(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	switch ref := instr.Operand.(type) {
	case *metadata.TypeRef:
		t, err := rt.Resolver.ResolveType(ref, fr.Scope)
		if err != nil {
			return SigNext, err
		}
		fr.Stack.Push(tokenHandle{t})
	case *metadata.MethodRef:
		m, err := rt.Resolver.ResolveMethod(ref, fr.Scope)
		if err != nil {
			return SigNext, err
		}
		fr.Stack.Push(tokenHandle{m})
	case *metadata.FieldRef:
		f, err := rt.Resolver.ResolveField(ref, fr.Scope)
		if err != nil {
			return SigNext, err
		}
		fr.Stack.Push(tokenHandle{f})
	default:
		return SigNext, fmt.Errorf("opcodes: ldtoken with unsupported operand %T", instr.Operand)
	}
	return SigNext, nil
}

// tokenHandle is the runtime-handle value ldtoken pushes: an opaque
// wrapper around whatever descriptor was resolved.
type tokenHandle struct{ descriptor any }

func (tokenHandle) ilValue() {}
func (h tokenHandle) DebugString() string {
	return fmt.Sprintf("token(%v)", h.descriptor)
}

func handleLdftn(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.MethodRef)
	m, err := rt.Resolver.ResolveMethod(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	fr.Stack.Push(&object.Delegate{Method: m})
	return SigNext, nil
}

func handleLdvirtftn(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.MethodRef)
	declared, err := rt.Resolver.ResolveMethod(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	receiver := fr.Stack.Pop()
	runtimeType := object.TypeOf(receiver, rt.Prims)
	m := declared
	if runtimeType != nil && declared.IsVirtual() {
		if vt := runtimeType.VTable(); declared.VTableSlot >= 0 && declared.VTableSlot < len(vt) && vt[declared.VTableSlot] != nil {
			m = vt[declared.VTableSlot]
		}
	}
	fr.Stack.Push(&object.Delegate{Target: receiver, Method: m})
	return SigNext, nil
}

// handleSizeof reports the on-stack footprint class of a value type:
// 1 for Byte/SByte/Boolean, 2 for Int16/UInt16/Char, 8 for
// Int64/UInt64/Double/IntPtr/UIntPtr, 4 for any other primitive, and
// 8 bytes per declared field for a struct-shaped value type — an
// approximation, since this
// interpreter has no real memory layout to measure (the
// object model is host-independent).
func handleSizeof(instr il.Instruction, fr *frame.Context, rt *Runtime) (Signal, error) {
	ref, _ := instr.Operand.(*metadata.TypeRef)
	t, err := rt.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return SigNext, err
	}
	size := int32(4)
	switch t.Name {
	case "Int64", "UInt64", "Double", "IntPtr", "UIntPtr":
		size = 8
	case "Byte", "SByte", "Boolean":
		size = 1
	case "Int16", "UInt16", "Char":
		size = 2
	}
	if t.Kind == metadata.KindValue {
		size = int32(len(t.Fields)) * 8
	}
	fr.Stack.Push(object.Int32(size))
	return SigNext, nil
}
