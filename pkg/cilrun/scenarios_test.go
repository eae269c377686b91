package cilrun_test

import (
	"testing"

	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/pkg/cilrun"
)

// Scenario 1: recursive factorial via non-virtual `call`.
func TestScenarioFactorialRecursion(t *testing.T) {
	method := buildFactorialScenario()
	engine := cilrun.New(nil)

	cases := []struct {
		n    int32
		want int32
	}{
		{0, 1},
		{5, 120},
		{12, 479001600},
	}
	for _, c := range cases {
		result, err := engine.InterpretCall(method, []object.Value{object.Int32(c.n)})
		if err != nil {
			t.Fatalf("Factorial(%d): unexpected error: %v", c.n, err)
		}
		got, ok := result.(object.Int32)
		if !ok || int32(got) != c.want {
			t.Fatalf("Factorial(%d) = %v, want %d", c.n, result, c.want)
		}
	}
}

func buildFactorialScenario() *metadata.MethodDef {
	typ := &metadata.TypeDef{Namespace: "Scenarios", Name: "Factorial"}
	method := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          "Compute",
		ThisKind:      il.ThisNone,
		Params:        []*metadata.TypeRef{metadata.RefToPrimitive(metadata.PrimInt32)},
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
	}
	typ.Methods = []*metadata.MethodDef{method}

	selfRef := &metadata.MethodRef{DeclaringType: metadata.RefToDef(typ), Definition: method}
	method.Body = &metadata.MethodBody{
		Instructions: []il.Instruction{
			{Offset: 0, Opcode: il.OpLdarg, Operand: 0},
			{Offset: 1, Opcode: il.OpLdcI4, Operand: int32(1)},
			{Offset: 2, Opcode: il.OpBgt, Operand: 5},
			{Offset: 3, Opcode: il.OpLdcI4, Operand: int32(1)},
			{Offset: 4, Opcode: il.OpRet},
			{Offset: 5, Opcode: il.OpLdarg, Operand: 0},
			{Offset: 6, Opcode: il.OpLdarg, Operand: 0},
			{Offset: 7, Opcode: il.OpLdcI4, Operand: int32(1)},
			{Offset: 8, Opcode: il.OpSub},
			{Offset: 9, Opcode: il.OpCall, Operand: selfRef},
			{Offset: 10, Opcode: il.OpMul},
			{Offset: 11, Opcode: il.OpRet},
		},
		MaxStack: 4,
	}
	return method
}

// Scenario 2: a generic identity method instantiated over a host
// reflection-bridged primitive, asserting the returned value is the
// very same string the caller supplied (no copy is made of a
// reference-typed argument as it crosses back out).
func TestScenarioGenericIdentity(t *testing.T) {
	typ := &metadata.TypeDef{Namespace: "Scenarios", Name: "Identity"}
	method := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          "Id",
		ThisKind:      il.ThisNone,
		Params:        []*metadata.TypeRef{metadata.RefToParam(il.OwnerMethod, 0)},
		Return:        metadata.RefToParam(il.OwnerMethod, 0),
		Arity:         1,
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdarg, Operand: 0},
				{Offset: 1, Opcode: il.OpRet},
			},
			MaxStack: 1,
		},
	}
	typ.Methods = []*metadata.MethodDef{method}

	engine := cilrun.New(nil)
	stringType := cilrun.FromDescriptor(engine.Host().Primitives().String)
	arg := object.String("hello")

	result, err := engine.InterpretCallGeneric(nil, method, []cilrun.TypeArg{stringType}, nil, []object.Value{arg})
	if err != nil {
		t.Fatalf("Id<string>(%q): unexpected error: %v", arg, err)
	}
	got, ok := result.(object.String)
	if !ok || got != arg {
		t.Fatalf("Id<string>(%q) = %v, want same value %q back", arg, result, arg)
	}
}

// Scenario 3: virtual dispatch. B overrides A's virtual method M in
// the same v-table slot; callvirt against a B instance through a
// statically-typed A reference must select B's override, while a
// plain (non-virtual) call to A.M ignores the receiver's runtime type
// entirely.
func TestScenarioVirtualDispatch(t *testing.T) {
	typeA := &metadata.TypeDef{Namespace: "Scenarios", Name: "A", Kind: metadata.KindReference}
	methodA := &metadata.MethodDef{
		DeclaringType: typeA,
		Name:          "M",
		ThisKind:      il.ThisInstance,
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrVirtual,
		VTableSlot:    0,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdcI4, Operand: int32(1)},
				{Offset: 1, Opcode: il.OpRet},
			},
			MaxStack: 1,
		},
	}
	typeA.Methods = []*metadata.MethodDef{methodA}

	typeB := &metadata.TypeDef{Namespace: "Scenarios", Name: "B", Kind: metadata.KindReference, BaseType: metadata.RefToDef(typeA)}
	methodB := &metadata.MethodDef{
		DeclaringType: typeB,
		Name:          "M",
		ThisKind:      il.ThisInstance,
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrVirtual,
		VTableSlot:    0,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdcI4, Operand: int32(2)},
				{Offset: 1, Opcode: il.OpRet},
			},
			MaxStack: 1,
		},
	}
	typeB.Methods = []*metadata.MethodDef{methodB}

	// A driver method that invokes callvirt against its argument,
	// declared to receive an A but fed a B instance by the test.
	driverType := &metadata.TypeDef{Namespace: "Scenarios", Name: "Driver"}
	aRef := metadata.RefToDef(typeA)
	callvirtM := &metadata.MethodRef{DeclaringType: aRef, Definition: methodA}
	callDriver := &metadata.MethodDef{
		DeclaringType: driverType,
		Name:          "CallVirtual",
		ThisKind:      il.ThisNone,
		Params:        []*metadata.TypeRef{aRef},
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdarg, Operand: 0},
				{Offset: 1, Opcode: il.OpCallvirt, Operand: callvirtM},
				{Offset: 2, Opcode: il.OpRet},
			},
			MaxStack: 2,
		},
	}
	callNonVirtual := &metadata.MethodDef{
		DeclaringType: driverType,
		Name:          "CallNonVirtual",
		ThisKind:      il.ThisNone,
		Params:        []*metadata.TypeRef{aRef},
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdarg, Operand: 0},
				{Offset: 1, Opcode: il.OpCall, Operand: callvirtM},
				{Offset: 2, Opcode: il.OpRet},
			},
			MaxStack: 2,
		},
	}
	driverType.Methods = []*metadata.MethodDef{callDriver, callNonVirtual}

	engine := cilrun.New(nil)

	bDesc, err := engine.Resolver().ResolveType(metadata.RefToDef(typeB), metadata.EmptyScope)
	if err != nil {
		t.Fatalf("resolving B: %v", err)
	}
	receiver := object.ObjectRef{Obj: object.NewObject(bDesc)}

	result, err := engine.InterpretCall(callDriver, []object.Value{receiver})
	if err != nil {
		t.Fatalf("CallVirtual: unexpected error: %v", err)
	}
	if got, ok := result.(object.Int32); !ok || got != 2 {
		t.Fatalf("callvirt A.M on a B instance = %v, want 2 (B's override)", result)
	}

	result, err = engine.InterpretCall(callNonVirtual, []object.Value{receiver})
	if err != nil {
		t.Fatalf("CallNonVirtual: unexpected error: %v", err)
	}
	if got, ok := result.(object.Int32); !ok || got != 1 {
		t.Fatalf("call A.M on a B instance = %v, want 1 (A's own body, never dispatched)", result)
	}
}

// Scenario 4: exception unwinding through nested try/finally blocks.
// Run() throws from inside both the inner and outer try; both finally
// handlers must run, innermost first, before the exception reaches
// the caller unhandled. Each finally increments the same static
// counter by a distinct amount so the combined result proves both ran
// exactly once, in order.
func TestScenarioNestedFinallyUnwinding(t *testing.T) {
	typ := &metadata.TypeDef{Namespace: "Scenarios", Name: "Tracker"}
	logField := &metadata.FieldDef{DeclaringType: typ, Name: "Log", FieldType: metadata.RefToPrimitive(metadata.PrimInt32), Static: true, Index: 0}
	typ.Fields = []*metadata.FieldDef{logField}
	logRef := &metadata.FieldRef{DeclaringType: metadata.RefToDef(typ), Definition: logField}

	boomType := &metadata.TypeDef{Namespace: "Scenarios", Name: "Boom", Kind: metadata.KindReference}
	boomCtor := &metadata.MethodDef{
		DeclaringType: boomType,
		Name:          ".ctor",
		ThisKind:      il.ThisInstance,
		Return:        metadata.RefToPrimitive(metadata.PrimVoid),
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{{Offset: 0, Opcode: il.OpRet}},
			MaxStack:     0,
		},
	}
	boomType.Methods = []*metadata.MethodDef{boomCtor}
	boomCtorRef := &metadata.MethodRef{DeclaringType: metadata.RefToDef(boomType), Definition: boomCtor}

	// Instructions:
	//   0: newobj Boom..ctor
	//   1: throw
	//   2: ldsfld Log     \  inner finally: Log += 1
	//   3: ldc.i4 1        |
	//   4: add             |
	//   5: stsfld Log      |
	//   6: endfinally      /
	//   7: ldsfld Log     \  outer finally: Log += 10
	//   8: ldc.i4 10        |
	//   9: add              |
	//  10: stsfld Log        |
	//  11: endfinally        /
	run := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          "Run",
		ThisKind:      il.ThisNone,
		Return:        metadata.RefToPrimitive(metadata.PrimVoid),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpNewobj, Operand: boomCtorRef},
				{Offset: 1, Opcode: il.OpThrow},
				{Offset: 2, Opcode: il.OpLdsfld, Operand: logRef},
				{Offset: 3, Opcode: il.OpLdcI4, Operand: int32(1)},
				{Offset: 4, Opcode: il.OpAdd},
				{Offset: 5, Opcode: il.OpStsfld, Operand: logRef},
				{Offset: 6, Opcode: il.OpEndfinally},
				{Offset: 7, Opcode: il.OpLdsfld, Operand: logRef},
				{Offset: 8, Opcode: il.OpLdcI4, Operand: int32(10)},
				{Offset: 9, Opcode: il.OpAdd},
				{Offset: 10, Opcode: il.OpStsfld, Operand: logRef},
				{Offset: 11, Opcode: il.OpEndfinally},
			},
			MaxStack: 2,
			// Outer region first: RegionsAt expects (TryStart asc, TryEnd
			// desc) so the wider-TryEnd outer region sorts before the
			// narrower inner one; unwind then walks the returned slice in
			// reverse, running the inner finally before the outer one.
			ProtectedRegions: []il.ProtectedRegion{
				{TryStart: 0, TryEnd: 2, HandlerStart: 7, HandlerEnd: 12, Kind: il.HandlerFinally},
				{TryStart: 0, TryEnd: 2, HandlerStart: 2, HandlerEnd: 7, Kind: il.HandlerFinally},
			},
		},
	}

	getLog := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          "GetLog",
		ThisKind:      il.ThisNone,
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdsfld, Operand: logRef},
				{Offset: 1, Opcode: il.OpRet},
			},
			MaxStack: 1,
		},
	}
	typ.Methods = []*metadata.MethodDef{run, getLog}

	engine := cilrun.New(nil)

	if _, err := engine.InterpretCall(run, nil); err == nil {
		t.Fatal("Run(): expected the unhandled Boom exception to propagate, got nil error")
	}

	result, err := engine.InterpretCall(getLog, nil)
	if err != nil {
		t.Fatalf("GetLog(): unexpected error: %v", err)
	}
	if got, ok := result.(object.Int32); !ok || got != 11 {
		t.Fatalf("GetLog() = %v, want 11 (inner +1 then outer +10)", result)
	}
}

// Scenario 5: boxing the same value twice produces distinct object
// identities that nonetheless compare field-wise equal.
func TestScenarioBoxedValueEquality(t *testing.T) {
	engine := cilrun.New(nil)
	int32Type := engine.Host().Primitives().Int32

	a := object.Box(int32Type, object.Int32(42))
	b := object.Box(int32Type, object.Int32(42))

	if a == b {
		t.Fatal("two separate Box calls produced the same object identity")
	}
	if !object.FieldwiseEqual(a, b) {
		t.Fatalf("boxed values should compare field-wise equal: %v vs %v", a.DebugString(), b.DebugString())
	}
}

// Scenario 6: a type's static constructor runs at most once, no
// matter how many times its statics are subsequently touched across
// separate InterpretCall invocations on the same engine.
func TestScenarioStaticConstructorRunsOnce(t *testing.T) {
	typ := &metadata.TypeDef{Namespace: "Scenarios", Name: "Counter"}
	initCountField := &metadata.FieldDef{DeclaringType: typ, Name: "InitCount", FieldType: metadata.RefToPrimitive(metadata.PrimInt32), Static: true, Index: 0}
	typ.Fields = []*metadata.FieldDef{initCountField}
	initCountRef := &metadata.FieldRef{DeclaringType: metadata.RefToDef(typ), Definition: initCountField}

	cctor := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          ".cctor",
		ThisKind:      il.ThisNone,
		Return:        metadata.RefToPrimitive(metadata.PrimVoid),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdsfld, Operand: initCountRef},
				{Offset: 1, Opcode: il.OpLdcI4, Operand: int32(1)},
				{Offset: 2, Opcode: il.OpAdd},
				{Offset: 3, Opcode: il.OpStsfld, Operand: initCountRef},
				{Offset: 4, Opcode: il.OpRet},
			},
			MaxStack: 2,
		},
	}
	getInitCount := &metadata.MethodDef{
		DeclaringType: typ,
		Name:          "GetInitCount",
		ThisKind:      il.ThisNone,
		Return:        metadata.RefToPrimitive(metadata.PrimInt32),
		Attrs:         il.AttrStatic,
		VTableSlot:    -1,
		Body: &metadata.MethodBody{
			Instructions: []il.Instruction{
				{Offset: 0, Opcode: il.OpLdsfld, Operand: initCountRef},
				{Offset: 1, Opcode: il.OpRet},
			},
			MaxStack: 1,
		},
	}
	typ.Methods = []*metadata.MethodDef{cctor, getInitCount}

	engine := cilrun.New(nil)

	for i := 0; i < 3; i++ {
		result, err := engine.InterpretCall(getInitCount, nil)
		if err != nil {
			t.Fatalf("GetInitCount() call %d: unexpected error: %v", i, err)
		}
		if got, ok := result.(object.Int32); !ok || got != 1 {
			t.Fatalf("GetInitCount() call %d = %v, want 1 (cctor must run exactly once)", i, result)
		}
	}
}
