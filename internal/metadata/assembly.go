package metadata

import "fmt"

// Token is a metadata token: an opaque, assembly-scoped identifier for
// a row in one of the definition tables. The interpreter never
// interprets the bit layout of a real ECMA-335 token; it only uses it
// as a lookup key into the owning assembly's table.
type Token uint32

// Assembly is an immutable bundle of type definitions plus the
// constant token table used to resolve metadata references. It is
// produced and owned by an external metadata reader; the interpreter
// only traverses it.
type Assembly struct {
	Name    string
	Version string
	Path    string // on-disk path, set by the loader once resolved
	Types   []*TypeDef

	tokens map[Token]any // Token -> *TypeDef | *MethodDef | *FieldDef
}

// NewAssembly creates an empty assembly image with the given identity.
func NewAssembly(name, version string) *Assembly {
	return &Assembly{Name: name, Version: version, tokens: make(map[Token]any)}
}

// Register associates a token with a definition so later references
// by token can be resolved without a linear scan.
func (a *Assembly) Register(tok Token, entry any) {
	if a.tokens == nil {
		a.tokens = make(map[Token]any)
	}
	a.tokens[tok] = entry
}

// Lookup resolves a token to the definition it was registered with.
func (a *Assembly) Lookup(tok Token) (any, bool) {
	v, ok := a.tokens[tok]
	return v, ok
}

// FindType looks up a declared type by namespace-qualified name.
func (a *Assembly) FindType(namespace, name string) (*TypeDef, bool) {
	for _, t := range a.Types {
		if t.Namespace == namespace && t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// AddType registers a type definition with the assembly and indexes
// its token.
func (a *Assembly) AddType(t *TypeDef) {
	t.Assembly = a
	a.Types = append(a.Types, t)
	if t.Token != 0 {
		a.Register(t.Token, t)
	}
}

// String implements fmt.Stringer for diagnostics.
func (a *Assembly) String() string {
	return fmt.Sprintf("%s, Version=%s", a.Name, a.Version)
}
