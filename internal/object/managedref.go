package object

import "fmt"

// ManagedRef is a by-ref pointer into a local, argument, field, or
// array element — distinct from an object reference. It is produced
// by ldloca/ldarga/ldflda/ldsflda/ldelema/unbox and consumed by
// ldind/stind-style indirect access and by var/ref parameter passing.
type ManagedRef struct {
	Kind string // "local", "arg", "field", "static", "element", "boxed"
	Get  func() Value
	Set  func(Value) error
}

func (*ManagedRef) ilValue() {}

// DebugString renders the reference.
func (r *ManagedRef) DebugString() string { return fmt.Sprintf("&<%s>", r.Kind) }

// Deref reads through the reference.
func (r *ManagedRef) Deref() Value { return r.Get() }

// Assign writes through the reference.
func (r *ManagedRef) Assign(v Value) error { return r.Set(v) }

// NewSlotRef builds a ManagedRef over a mutable Value slot addressed
// by a slice index — the common case for locals and arguments, which
// are stored as []Value in the frame.
func NewSlotRef(kind string, slots []Value, index int) *ManagedRef {
	return &ManagedRef{
		Kind: kind,
		Get:  func() Value { return slots[index] },
		Set: func(v Value) error {
			slots[index] = v
			return nil
		},
	}
}
