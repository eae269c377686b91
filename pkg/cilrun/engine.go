// Package cilrun is the engine's public entry surface: the
// three interpret_call overloads, built by wiring together
// internal/hostbridge, internal/resolver, internal/invoker, and
// internal/vm exactly the way internal/vm.New documents.
package cilrun

import (
	"strings"

	"github.com/cwbudde/go-cilrun/internal/config"
	"github.com/cwbudde/go-cilrun/internal/diagnostics"
	"github.com/cwbudde/go-cilrun/internal/hostbridge"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/invoker"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/internal/resolver"
	"github.com/cwbudde/go-cilrun/internal/vm"
)

// Engine is a ready-to-use interpreter: the host bridge, resolver,
// invoker, and instruction loop, wired together once and reused
// across every InterpretCall.
type Engine struct {
	host     hostbridge.HostRuntime
	resolver *resolver.Resolver
	invoker  *invoker.Invoker
	machine  *vm.Machine
	loader   *resolver.Loader
}

// New builds an Engine from a manifest (see internal/config.Load).
// A nil manifest is equivalent to an empty one: the engine still
// operates on host-bridged primitives and any assembly the caller
// registers directly against its resolver.
func New(manifest *config.Manifest) *Engine {
	if manifest == nil {
		manifest = &config.Manifest{}
	}
	host := hostbridge.NewReflectBridge()
	loader := resolver.NewLoader(manifest.VerifySignatures, nil)
	for identity, path := range manifest.AssemblyPaths {
		name, version := splitAssemblyIdentity(identity)
		loader.AddCandidate(name, version, path)
	}

	res := resolver.New(host, loader)
	iv := invoker.New(res, host)
	m := vm.New(res, iv, host)

	return &Engine{host: host, resolver: res, invoker: iv, machine: m, loader: loader}
}

// Host returns the engine's host runtime bridge, so an embedder can
// register library types (hostbridge.ReflectBridge.RegisterType) and
// native intrinsics (RegisterIntrinsic) before the first call.
func (e *Engine) Host() hostbridge.HostRuntime { return e.host }

// Resolver returns the engine's resolver, for callers that need to
// resolve a metadata.TypeRef/MethodRef/FieldRef directly rather than
// going through one of the InterpretCall overloads.
func (e *Engine) Resolver() *resolver.Resolver { return e.resolver }

// Loader returns the engine's assembly loader, so a caller can
// register additional on-disk candidates or trigger a load directly
// (e.g. the `inspect` CLI command, which reports what the loader
// picked without invoking any method).
func (e *Engine) Loader() *resolver.Loader { return e.loader }

// SetTraceHook installs fn to be called before every instruction the
// engine executes, with the current method's name, the instruction
// about to run, and the evaluation stack depth beforehand. A nil fn
// disables tracing. Driven from config.Manifest.TraceInstructions by
// the CLI.
func (e *Engine) SetTraceHook(fn func(method string, instr il.Instruction, stackDepth int)) {
	e.machine.Trace = fn
}

// splitAssemblyIdentity parses a manifest key of the form "Name" or
// "Name, Version=X.Y.Z.W" into its simple name and version.
func splitAssemblyIdentity(identity string) (name, version string) {
	parts := strings.SplitN(identity, ",", 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return name, ""
	}
	rest := strings.TrimSpace(parts[1])
	const prefix = "Version="
	if strings.HasPrefix(rest, prefix) {
		return name, strings.TrimPrefix(rest, prefix)
	}
	return name, rest
}

// InterpretCall is the first overload: a static method, no
// generics anywhere in the call (neither the declaring type nor the
// method itself is instantiated over type arguments).
func (e *Engine) InterpretCall(method *metadata.MethodDef, arguments []object.Value) (object.Value, error) {
	return e.interpretCall(nil, method, nil, nil, arguments)
}

// InterpretCallInstance is the second overload: an instance
// method invoked directly against receiver (not virtually dispatched
// — callers that need virtual dispatch resolve a MethodDescriptor and
// use internal/invoker.InvokeVirtual instead), again with no generics
// anywhere in the call.
func (e *Engine) InterpretCallInstance(method *metadata.MethodDef, receiver object.Value, arguments []object.Value) (object.Value, error) {
	return e.interpretCall(nil, method, nil, receiver, arguments)
}

// InterpretCallGeneric is the fully general overload: the
// declaring type's own type arguments, the method's own type
// arguments, and the receiver (nil for a static method) are all
// supplied explicitly. Each TypeArg may carry either an engine type
// descriptor or a host reflection type (see TypeArg, FromDescriptor,
// FromReflect).
func (e *Engine) InterpretCallGeneric(declaringTypeArgs []TypeArg, method *metadata.MethodDef, methodTypeArgs []TypeArg, receiver object.Value, arguments []object.Value) (object.Value, error) {
	return e.interpretCall(declaringTypeArgs, method, methodTypeArgs, receiver, arguments)
}

func (e *Engine) interpretCall(declaringTypeArgs []TypeArg, method *metadata.MethodDef, methodTypeArgs []TypeArg, receiver object.Value, arguments []object.Value) (object.Value, error) {
	if method == nil {
		return nil, diagnostics.NewInvocationError("method definition must not be nil")
	}
	if method.Body == nil {
		return nil, diagnostics.NewInvocationError("%s has no managed body", method.Name)
	}
	if method.Attrs.Has(il.AttrInternalCall) || method.Attrs.Has(il.AttrPInvoke) {
		return nil, diagnostics.NewInvocationError("%s is an internal-call/PInvoke intrinsic, not an interpretable body", method.Name)
	}
	if len(arguments) != len(method.Params) {
		return nil, diagnostics.NewInvocationError("%s expects %d argument(s), got %d", method.Name, len(method.Params), len(arguments))
	}

	declArgs, err := e.resolveTypeArgs(declaringTypeArgs)
	if err != nil {
		return nil, err
	}
	methArgs, err := e.resolveTypeArgs(methodTypeArgs)
	if err != nil {
		return nil, err
	}

	declType, err := e.resolver.ResolveGenericType(method.DeclaringType, declArgs)
	if err != nil {
		return nil, err
	}
	descriptor, err := e.resolver.ResolveGenericMethod(method, declType, methArgs)
	if err != nil {
		return nil, err
	}

	scope := metadata.EmptyScope
	if len(declType.TypeArgs) > 0 {
		scope = scope.ExtendAll(il.OwnerType, declType.TypeArgs)
	}
	if len(methArgs) > 0 {
		scope = scope.ExtendAll(il.OwnerMethod, methArgs)
	}

	return e.invoker.Invoke(descriptor, scope, receiver, arguments)
}
