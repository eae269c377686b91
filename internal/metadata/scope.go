package metadata

import "github.com/cwbudde/go-cilrun/internal/il"

// GenericScope is an ordered, immutable mapping from each generic
// parameter in lexical nesting (type parameters outer, method
// parameters inner) to a concrete type descriptor. Scopes are
// persistent: Extend is O(1) and the result can be freely shared
// between concurrent resolutions without the extension being visible
// through the original scope.
type GenericScope struct {
	owner il.GenericOwner
	index int
	arg   *TypeDescriptor
	next  *GenericScope
}

// EmptyScope is the shared, argument-free scope.
var EmptyScope = (*GenericScope)(nil)

// Extend returns a new scope that additionally binds (owner, index)
// to arg, shadowing any existing binding for the same key.
func (s *GenericScope) Extend(owner il.GenericOwner, index int, arg *TypeDescriptor) *GenericScope {
	return &GenericScope{owner: owner, index: index, arg: arg, next: s}
}

// ExtendAll binds a full ordered vector of arguments for one owner
// level (the type's parameters, or the method's parameters).
func (s *GenericScope) ExtendAll(owner il.GenericOwner, args []*TypeDescriptor) *GenericScope {
	for i, a := range args {
		s = s.Extend(owner, i, a)
	}
	return s
}

// Lookup resolves a generic parameter reference within the scope.
func (s *GenericScope) Lookup(owner il.GenericOwner, index int) (*TypeDescriptor, bool) {
	for n := s; n != nil; n = n.next {
		if n.owner == owner && n.index == index {
			return n.arg, true
		}
	}
	return nil, false
}

// TypeArgsOf returns a copy of args, in the same order. The owner
// argument is not consulted.
func TypeArgsOf(owner il.GenericOwner, args []*TypeDescriptor) []*TypeDescriptor {
	out := make([]*TypeDescriptor, len(args))
	copy(out, args)
	return out
}
