package metadata

import (
	"reflect"
	"strings"

	"github.com/cwbudde/go-cilrun/internal/il"
)

// TypeDescriptor is the resolver's concrete, scope-bound output: a
// type reference fully resolved against a generic scope and interned
// so that identity implies equality. Two descriptors are equal iff
// their (definition identity, ordered type-argument tuple) are equal;
// the resolver enforces this by construction, so descriptor identity
// (pointer equality) is always safe to use for comparisons.
type TypeDescriptor struct {
	Def       *TypeDef // nil for host-bridged primitives and array/pointer/byref compounds
	Kind      TypeKind
	Name      string
	Namespace string
	Assembly  *Assembly

	Fields     []*FieldDescriptor
	Methods    []*MethodDescriptor
	BaseType   *TypeDescriptor
	Interfaces []*TypeDescriptor

	Arity    int               // declared generic arity
	TypeArgs []*TypeDescriptor // non-nil only for a constructed generic instance
	GenericOf *TypeDescriptor  // the open generic definition; the resolver does not set it (constructed instances carry Def and TypeArgs)

	ElementType *TypeDescriptor // array/pointer/byref
	ArrayRank   int

	// HostType is non-nil when this descriptor bridges a native host
	// type (all primitives, and any library type resolved through the
	// host runtime's loader rather than an interpreted assembly).
	HostType reflect.Type

	vtable   []*MethodDescriptor          // slot -> most-derived implementation
	ifaceMap map[ifaceSlotKey]*MethodDescriptor

	cctor cctorState
}

type ifaceSlotKey struct {
	iface *TypeDescriptor
	slot  int
}

// cctorState tracks the static-constructor-has-run-at-most-once
// discipline (ECMA-335 §I.8.9.5). State transitions: notStarted ->
// running(threadID) -> done. A re-entrant call on the same thread is
// treated as done-for-this-thread to avoid deadlock (ECMA-335 §I.8.9.5).
type cctorState struct {
	status   int32 // 0 = not started, 1 = running, 2 = done
	threadID int64
}

// QualifiedName returns "Namespace.Name" for the type, following
// nested type-argument formatting for constructed generics.
func (t *TypeDescriptor) QualifiedName() string {
	base := t.Name
	if t.Namespace != "" {
		base = t.Namespace + "." + t.Name
	}
	if len(t.TypeArgs) == 0 {
		return base
	}
	parts := make([]string, len(t.TypeArgs))
	for i, a := range t.TypeArgs {
		parts[i] = a.QualifiedName()
	}
	return base + "<" + strings.Join(parts, ",") + ">"
}

// String implements fmt.Stringer.
func (t *TypeDescriptor) String() string { return t.QualifiedName() }

// IsValueType reports whether instances of this type have by-value
// copy semantics.
func (t *TypeDescriptor) IsValueType() bool { return t.Kind.IsValueLike() }

// VTable returns the precomputed slot->method v-table, building it
// lazily from the type's method list plus its base type's v-table.
func (t *TypeDescriptor) VTable() []*MethodDescriptor {
	if t.vtable != nil {
		return t.vtable
	}
	var base []*MethodDescriptor
	if t.BaseType != nil {
		base = t.BaseType.VTable()
	}
	vt := make([]*MethodDescriptor, len(base))
	copy(vt, base)
	for _, m := range t.Methods {
		if !m.Attrs.Has(il.AttrVirtual) {
			continue
		}
		slot := m.VTableSlot
		if slot < 0 {
			continue
		}
		for len(vt) <= slot {
			vt = append(vt, nil)
		}
		vt[slot] = m
	}
	t.vtable = vt
	return vt
}

// InterfaceMethod returns the most-derived implementation of the
// given interface method slot for this type, populating the
// per-type interface map lazily.
func (t *TypeDescriptor) InterfaceMethod(iface *TypeDescriptor, slot int) (*MethodDescriptor, bool) {
	if t.ifaceMap == nil {
		t.ifaceMap = make(map[ifaceSlotKey]*MethodDescriptor)
	}
	key := ifaceSlotKey{iface, slot}
	if m, ok := t.ifaceMap[key]; ok {
		return m, m != nil
	}
	// Default binding: a method with the same name as the interface
	// method's declaring slot, found by a name-based search over the
	// v-table (entries recorded by BindInterfaceMethod take precedence;
	// the resolver does not record any).
	if slot >= 0 && slot < len(iface.VTable()) {
		want := iface.VTable()[slot]
		if want != nil {
			for _, m := range t.VTable() {
				if m != nil && m.Name == want.Name {
					t.ifaceMap[key] = m
					return m, true
				}
			}
		}
	}
	t.ifaceMap[key] = nil
	return nil, false
}

// BindInterfaceMethod records an explicit interface-map entry, for a
// type whose methods implement an interface via explicit interface
// implementation rather than name-matching. The resolver does not call
// it.
func (t *TypeDescriptor) BindInterfaceMethod(iface *TypeDescriptor, slot int, m *MethodDescriptor) {
	if t.ifaceMap == nil {
		t.ifaceMap = make(map[ifaceSlotKey]*MethodDescriptor)
	}
	t.ifaceMap[ifaceSlotKey{iface, slot}] = m
}

// IsAssignableFrom reports whether a value of type other can be used
// wherever a value of type t is expected: identity, base-type chain,
// or interface implementation.
func (t *TypeDescriptor) IsAssignableFrom(other *TypeDescriptor) bool {
	if other == nil {
		return false
	}
	for cur := other; cur != nil; cur = cur.BaseType {
		if cur == t {
			return true
		}
		if t.Kind == KindInterface {
			for _, impl := range cur.Interfaces {
				if impl == t || t.IsAssignableFrom(impl) {
					return true
				}
			}
		}
	}
	return false
}

// MethodDescriptor is the resolver's concrete output for a method
// reference: signature types and generic method arguments fully
// substituted against a generic scope.
type MethodDescriptor struct {
	Def            *MethodDef
	Name           string
	DeclaringType  *TypeDescriptor
	Params         []*TypeDescriptor
	Return         *TypeDescriptor
	ThisKind       il.ThisKind
	VarArgs        bool
	Arity          int
	MethodTypeArgs []*TypeDescriptor // set only for a constructed generic method
	Attrs          il.MethodAttrs
	VTableSlot     int
}

// IsStatic reports whether the method takes no receiver.
func (m *MethodDescriptor) IsStatic() bool { return m.Attrs.Has(il.AttrStatic) }

// IsVirtual reports whether the method occupies a v-table slot.
func (m *MethodDescriptor) IsVirtual() bool { return m.Attrs.Has(il.AttrVirtual) && m.VTableSlot >= 0 }

// IsInterpretable reports whether this method has a managed body and
// is not an internal-call/PInvoke intrinsic.
func (m *MethodDescriptor) IsInterpretable() bool {
	if m.Def == nil || m.Def.Body == nil {
		return false
	}
	return !m.Attrs.Has(il.AttrInternalCall) && !m.Attrs.Has(il.AttrPInvoke)
}

// String implements fmt.Stringer.
func (m *MethodDescriptor) String() string {
	owner := ""
	if m.DeclaringType != nil {
		owner = m.DeclaringType.QualifiedName() + "."
	}
	return owner + m.Name
}

// FieldDescriptor is the resolver's concrete output for a field
// reference.
type FieldDescriptor struct {
	Def           *FieldDef
	Name          string
	DeclaringType *TypeDescriptor
	FieldType     *TypeDescriptor
	Static        bool
	Offset        int
	Index         int
}

// String implements fmt.Stringer.
func (f *FieldDescriptor) String() string {
	owner := ""
	if f.DeclaringType != nil {
		owner = f.DeclaringType.QualifiedName() + "."
	}
	return owner + f.Name
}
