// Package hostbridge stands in for the "host runtime" collaborator of
// it supplies primitive type descriptors and the
// ability to invoke a native method by descriptor with an argument
// vector. Nothing outside this package assumes Go reflection is the
// mechanism — internal/invoker only sees the HostRuntime interface —
// so a real CLR/host embedding could substitute its own
// implementation without touching the engine.
package hostbridge

import (
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
)

// HostRuntime is the capability set the engine requires from the host
// runtime collaborator: primitive type descriptors, native method
// invocation, and boxing/unboxing of native value types (the latter
// is handled by internal/object directly once a value has been lifted
// across the bridge, so it is not repeated here).
type HostRuntime interface {
	// Primitives returns the bundle of interned primitive descriptors.
	Primitives() object.Primitives

	// ResolvePrimitive maps a PrimitiveKind to its interned descriptor.
	ResolvePrimitive(kind metadata.PrimitiveKind) *metadata.TypeDescriptor

	// LookupType resolves a namespace-qualified name to a host-bridged
	// type descriptor (library types the metadata reader did not
	// itself define, e.g. System.Console, System.Exception).
	LookupType(qualifiedName string) (*metadata.TypeDescriptor, bool)

	// InvokeNative dispatches an InternalCall/PInvoke method to its
	// registered intrinsic handler.
	InvokeNative(method *metadata.MethodDescriptor, receiver object.Value, args []object.Value) (object.Value, error)

	// HasIntrinsic reports whether a native handler is registered for
	// the given method, without invoking it.
	HasIntrinsic(method *metadata.MethodDescriptor) bool
}
