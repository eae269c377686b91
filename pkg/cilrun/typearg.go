package cilrun

import (
	"fmt"
	"reflect"

	"github.com/cwbudde/go-cilrun/internal/metadata"
)

// TypeArg is a single generic type argument supplied to the fully
// generic InterpretCallGeneric overload. The engine's own type
// descriptors and the host's reflection types are both accepted
// (type arguments may be supplied either as interpreter
// type descriptors or as host reflection types; the resolver accepts
// both") — construct one with FromDescriptor or FromReflect.
type TypeArg struct {
	descriptor *metadata.TypeDescriptor
	goType     reflect.Type
}

// FromDescriptor wraps an already-resolved engine type descriptor.
func FromDescriptor(d *metadata.TypeDescriptor) TypeArg {
	return TypeArg{descriptor: d}
}

// FromReflect wraps a host reflection type; the engine resolves it to
// a descriptor through the host bridge's reflection registry at call
// time, so it must have been previously bridged (every primitive is,
// by construction, except that int32, int64 and uint64 resolve to
// Int32, Int64 and UInt64, never to Char, IntPtr or UIntPtr; library
// types are bridged via hostbridge.ReflectBridge.RegisterType).
func FromReflect(t reflect.Type) TypeArg {
	return TypeArg{goType: t}
}

// reflectTypeResolver is implemented by host bridges that can map a
// Go reflect.Type back to the descriptor it was bridged under.
// internal/hostbridge.ReflectBridge implements it; a HostRuntime that
// doesn't makes FromReflect arguments fail to resolve.
type reflectTypeResolver interface {
	LookupReflectType(t reflect.Type) (*metadata.TypeDescriptor, bool)
}

func (e *Engine) resolveTypeArg(a TypeArg) (*metadata.TypeDescriptor, error) {
	if a.descriptor != nil {
		return a.descriptor, nil
	}
	if a.goType == nil {
		return nil, fmt.Errorf("cilrun: empty type argument")
	}
	lookup, ok := e.host.(reflectTypeResolver)
	if !ok {
		return nil, fmt.Errorf("cilrun: host runtime cannot resolve reflect types (got %s)", a.goType)
	}
	d, ok := lookup.LookupReflectType(a.goType)
	if !ok {
		return nil, fmt.Errorf("cilrun: no bridged type for %s", a.goType)
	}
	return d, nil
}

func (e *Engine) resolveTypeArgs(args []TypeArg) ([]*metadata.TypeDescriptor, error) {
	if len(args) == 0 {
		return nil, nil
	}
	out := make([]*metadata.TypeDescriptor, len(args))
	for i, a := range args {
		d, err := e.resolveTypeArg(a)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
