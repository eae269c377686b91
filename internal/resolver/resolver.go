// Package resolver implements translation of metadata
// references (potentially open over generic variables) into concrete
// type, method, and field descriptors bound to a supplied generic
// scope, with interning so identical (definition, type-argument
// tuple) pairs always resolve to the same descriptor identity.
package resolver

import (
	"sync"

	"github.com/cwbudde/go-cilrun/internal/diagnostics"
	"github.com/cwbudde/go-cilrun/internal/hostbridge"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/metadata"
)

// Resolver caches resolved descriptors. A type reference is resolved
// from what it carries (a definition, a generic parameter, a primitive
// or an element type for a compound); the
// resolver does not consult its assembly loader or the host runtime's
// LookupType for types the loaded assemblies do not themselves define.
type Resolver struct {
	mu   sync.Mutex
	host hostbridge.HostRuntime

	types   map[typeKey]*metadata.TypeDescriptor
	methods map[methodKey]*metadata.MethodDescriptor
	fields  map[fieldKey]*metadata.FieldDescriptor

	loader *Loader
}

// New creates a Resolver backed by the given host runtime and
// assembly loader.
func New(host hostbridge.HostRuntime, loader *Loader) *Resolver {
	return &Resolver{
		host:    host,
		loader:  loader,
		types:   make(map[typeKey]*metadata.TypeDescriptor),
		methods: make(map[methodKey]*metadata.MethodDescriptor),
		fields:  make(map[fieldKey]*metadata.FieldDescriptor),
	}
}

// Host returns the resolver's host runtime bridge.
func (r *Resolver) Host() hostbridge.HostRuntime { return r.host }

// ResolveType resolves a type reference against a generic scope,
// interning the result so repeated resolution of the same
// (definition, argument tuple) returns the same descriptor identity.
func (r *Resolver) ResolveType(ref *metadata.TypeRef, scope *metadata.GenericScope) (*metadata.TypeDescriptor, error) {
	if ref == nil {
		return nil, diagnostics.NewTypeLoadError("<nil type reference>")
	}

	switch {
	case ref.GenericParam != nil:
		d, ok := scope.Lookup(ref.GenericParam.Owner, ref.GenericParam.Index)
		if !ok {
			return nil, diagnostics.NewTypeLoadError(genericParamName(ref.GenericParam))
		}
		return d, nil

	case ref.Primitive != metadata.PrimNone:
		d := r.host.ResolvePrimitive(ref.Primitive)
		if d == nil {
			return nil, diagnostics.NewTypeLoadError("<primitive>")
		}
		return d, nil

	case ref.Array != nil:
		elem, err := r.ResolveType(ref.Array.Element, scope)
		if err != nil {
			return nil, err
		}
		return r.internArray(elem, ref.Array.Rank), nil

	case ref.Pointer != nil:
		elem, err := r.ResolveType(ref.Pointer, scope)
		if err != nil {
			return nil, err
		}
		return r.internCompound(metadata.KindPointer, elem), nil

	case ref.ByRef != nil:
		elem, err := r.ResolveType(ref.ByRef, scope)
		if err != nil {
			return nil, err
		}
		return r.internCompound(metadata.KindByRef, elem), nil

	case ref.Definition != nil:
		return r.resolveDefinition(ref.Definition, ref.Args, scope)

	default:
		return nil, diagnostics.NewTypeLoadError("<empty type reference>")
	}
}

func genericParamName(p *metadata.GenericParamRef) string {
	if p.Owner == il.OwnerMethod {
		return "!!" + itoa(p.Index)
	}
	return "!" + itoa(p.Index)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// resolveDefinition resolves a reference to a concretely-named type
// definition, substituting its own open generic arguments (if any)
// against scope and interning the constructed result.
func (r *Resolver) resolveDefinition(def *metadata.TypeDef, args []*metadata.TypeRef, scope *metadata.GenericScope) (*metadata.TypeDescriptor, error) {
	var resolvedArgs []*metadata.TypeDescriptor
	if len(args) > 0 {
		resolvedArgs = make([]*metadata.TypeDescriptor, len(args))
		for i, a := range args {
			d, err := r.ResolveType(a, scope)
			if err != nil {
				return nil, err
			}
			resolvedArgs[i] = d
		}
	}

	key := typeKey{def: def, args: argsKey(resolvedArgs)}

	r.mu.Lock()
	if existing, ok := r.types[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.mu.Unlock()

	desc, err := r.buildDescriptor(def, resolvedArgs, scope)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	// Another goroutine may have built the same descriptor concurrently;
	// keep whichever was interned first so identity stays unique.
	if existing, ok := r.types[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.types[key] = desc
	r.mu.Unlock()
	return desc, nil
}

// buildDescriptor materializes a TypeDescriptor for def, substituting
// typeArgs into the own-type generic scope used to resolve the base
// type, interfaces, fields, and methods — no open parameter leaks into
// the resulting descriptor.
func (r *Resolver) buildDescriptor(def *metadata.TypeDef, typeArgs []*metadata.TypeDescriptor, outerScope *metadata.GenericScope) (*metadata.TypeDescriptor, error) {
	ownScope := outerScope
	if len(typeArgs) > 0 {
		ownScope = metadata.EmptyScope.ExtendAll(il.OwnerType, typeArgs)
	}

	desc := &metadata.TypeDescriptor{
		Def:       def,
		Kind:      def.Kind,
		Name:      def.Name,
		Namespace: def.Namespace,
		Assembly:  def.Assembly,
		Arity:     def.Arity,
		TypeArgs:  typeArgs,
	}

	if def.BaseType != nil {
		base, err := r.ResolveType(def.BaseType, ownScope)
		if err != nil {
			return nil, err
		}
		desc.BaseType = base
	}
	for _, ifaceRef := range def.Interfaces {
		iface, err := r.ResolveType(ifaceRef, ownScope)
		if err != nil {
			return nil, err
		}
		desc.Interfaces = append(desc.Interfaces, iface)
	}

	desc.Fields = make([]*metadata.FieldDescriptor, 0, len(def.Fields))
	for _, fd := range def.Fields {
		ft, err := r.ResolveType(fd.FieldType, ownScope)
		if err != nil {
			return nil, err
		}
		desc.Fields = append(desc.Fields, &metadata.FieldDescriptor{
			Def: fd, Name: fd.Name, DeclaringType: desc, FieldType: ft,
			Static: fd.Static, Offset: fd.Offset, Index: fd.Index,
		})
	}

	desc.Methods = make([]*metadata.MethodDescriptor, 0, len(def.Methods))
	for _, md := range def.Methods {
		m, err := r.buildMethodDescriptor(md, nil, desc, ownScope)
		if err != nil {
			return nil, err
		}
		desc.Methods = append(desc.Methods, m)
	}

	return desc, nil
}

func (r *Resolver) buildMethodDescriptor(def *metadata.MethodDef, methodTypeArgs []*metadata.TypeDescriptor, declType *metadata.TypeDescriptor, scope *metadata.GenericScope) (*metadata.MethodDescriptor, error) {
	methodScope := scope
	if len(methodTypeArgs) > 0 {
		methodScope = scope.ExtendAll(il.OwnerMethod, methodTypeArgs)
	}

	params := make([]*metadata.TypeDescriptor, len(def.Params))
	for i, p := range def.Params {
		pd, err := r.ResolveType(p, methodScope)
		if err != nil {
			return nil, err
		}
		params[i] = pd
	}
	var ret *metadata.TypeDescriptor
	if def.Return != nil {
		rd, err := r.ResolveType(def.Return, methodScope)
		if err != nil {
			return nil, err
		}
		ret = rd
	}

	return &metadata.MethodDescriptor{
		Def: def, Name: def.Name, DeclaringType: declType,
		Params: params, Return: ret, ThisKind: def.ThisKind,
		VarArgs: def.VarArgs, Arity: def.Arity, MethodTypeArgs: methodTypeArgs,
		Attrs: def.Attrs, VTableSlot: def.VTableSlot,
	}, nil
}

// ResolveMethod resolves a method reference against a generic scope.
func (r *Resolver) ResolveMethod(ref *metadata.MethodRef, scope *metadata.GenericScope) (*metadata.MethodDescriptor, error) {
	if ref == nil || ref.Definition == nil {
		return nil, diagnostics.NewMissingMethodError("<nil method reference>")
	}
	declType, err := r.ResolveType(ref.DeclaringType, scope)
	if err != nil {
		return nil, err
	}

	var methodTypeArgs []*metadata.TypeDescriptor
	if len(ref.MethodTypeArgs) > 0 {
		methodTypeArgs = make([]*metadata.TypeDescriptor, len(ref.MethodTypeArgs))
		for i, a := range ref.MethodTypeArgs {
			d, err := r.ResolveType(a, scope)
			if err != nil {
				return nil, err
			}
			methodTypeArgs[i] = d
		}
	}

	// Fast path: the method is one of declType's own resolved methods
	// and carries no further generic-method substitution, so it is
	// already interned as part of declType's construction.
	if len(methodTypeArgs) == 0 {
		for _, m := range declType.Methods {
			if m.Def == ref.Definition {
				return m, nil
			}
		}
	}

	key := methodKey{def: ref.Definition, declType: declType, args: argsKey(methodTypeArgs)}
	r.mu.Lock()
	if existing, ok := r.methods[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.mu.Unlock()

	// ownScope must see declType's own type arguments so a generic
	// method's parameter types can reference the enclosing type's
	// parameters as well as its own.
	ownScope := scope
	if len(declType.TypeArgs) > 0 {
		ownScope = metadata.EmptyScope.ExtendAll(il.OwnerType, declType.TypeArgs)
	}
	m, err := r.buildMethodDescriptor(ref.Definition, methodTypeArgs, declType, ownScope)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.methods[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.methods[key] = m
	r.mu.Unlock()
	return m, nil
}

// ResolveField resolves a field reference against a generic scope.
func (r *Resolver) ResolveField(ref *metadata.FieldRef, scope *metadata.GenericScope) (*metadata.FieldDescriptor, error) {
	if ref == nil || ref.Definition == nil {
		return nil, diagnostics.NewMissingFieldError("<nil field reference>")
	}
	declType, err := r.ResolveType(ref.DeclaringType, scope)
	if err != nil {
		return nil, err
	}
	for _, f := range declType.Fields {
		if f.Def == ref.Definition {
			return f, nil
		}
	}
	return nil, diagnostics.NewMissingFieldError(declType.QualifiedName() + "." + ref.Definition.Name)
}

// ResolveArrayType interns and returns the array type descriptor for
// rank-dimensional arrays of elem, the same construction ResolveType
// performs for an ArrayRef — exposed directly for `newarr`, which
// names only the element type, not a full array TypeRef.
func (r *Resolver) ResolveArrayType(elem *metadata.TypeDescriptor, rank int) *metadata.TypeDescriptor {
	return r.internArray(elem, rank)
}

// ResolveGenericType builds (or returns the interned) TypeDescriptor
// for def instantiated with typeArgs that the caller has already
// resolved — the shape the public API's fully-generic `interpret_call`
// overload needs, since a caller there supplies interpreter type
// descriptors (or host reflection types already translated to
// descriptors) directly rather than metadata.TypeRef values.
func (r *Resolver) ResolveGenericType(def *metadata.TypeDef, typeArgs []*metadata.TypeDescriptor) (*metadata.TypeDescriptor, error) {
	key := typeKey{def: def, args: argsKey(typeArgs)}
	r.mu.Lock()
	if existing, ok := r.types[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.mu.Unlock()

	desc, err := r.buildDescriptor(def, typeArgs, metadata.EmptyScope)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.types[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.types[key] = desc
	r.mu.Unlock()
	return desc, nil
}

// ResolveGenericMethod is ResolveGenericType's counterpart for a
// method whose declaring type and own type arguments the caller has
// already resolved.
func (r *Resolver) ResolveGenericMethod(methodDef *metadata.MethodDef, declType *metadata.TypeDescriptor, methodTypeArgs []*metadata.TypeDescriptor) (*metadata.MethodDescriptor, error) {
	if len(methodTypeArgs) == 0 {
		for _, m := range declType.Methods {
			if m.Def == methodDef {
				return m, nil
			}
		}
	}

	key := methodKey{def: methodDef, declType: declType, args: argsKey(methodTypeArgs)}
	r.mu.Lock()
	if existing, ok := r.methods[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.mu.Unlock()

	ownScope := metadata.EmptyScope
	if len(declType.TypeArgs) > 0 {
		ownScope = ownScope.ExtendAll(il.OwnerType, declType.TypeArgs)
	}
	m, err := r.buildMethodDescriptor(methodDef, methodTypeArgs, declType, ownScope)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.methods[key]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.methods[key] = m
	r.mu.Unlock()
	return m, nil
}

func (r *Resolver) internArray(elem *metadata.TypeDescriptor, rank int) *metadata.TypeDescriptor {
	key := typeKey{def: nil, args: "array:" + argsKey([]*metadata.TypeDescriptor{elem}) + ":" + itoa(rank)}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[key]; ok {
		return existing
	}
	desc := &metadata.TypeDescriptor{
		Kind: metadata.KindArray, Name: elem.Name + "[]", Namespace: elem.Namespace,
		ElementType: elem, ArrayRank: rank,
	}
	r.types[key] = desc
	return desc
}

func (r *Resolver) internCompound(kind metadata.TypeKind, elem *metadata.TypeDescriptor) *metadata.TypeDescriptor {
	suffix := "*"
	if kind == metadata.KindByRef {
		suffix = "&"
	}
	key := typeKey{def: nil, args: suffix + argsKey([]*metadata.TypeDescriptor{elem})}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[key]; ok {
		return existing
	}
	desc := &metadata.TypeDescriptor{Kind: kind, Name: elem.Name + suffix, Namespace: elem.Namespace, ElementType: elem}
	r.types[key] = desc
	return desc
}
