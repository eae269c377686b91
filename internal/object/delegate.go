package object

import "github.com/cwbudde/go-cilrun/internal/metadata"

// Delegate is an interpreted object carrying a target receiver
// (nullable) and a method descriptor; it may chain to another
// delegate for multicast.
type Delegate struct {
	Type    *metadata.TypeDescriptor
	Target  Value // nullable receiver; nil for a delegate over a static method
	Method  *metadata.MethodDescriptor
	Next    *Delegate // multicast chain, invoked after this one
}

func (*Delegate) ilValue() {}

// DebugString renders the delegate.
func (d *Delegate) DebugString() string {
	s := "delegate:" + d.Method.String()
	if d.Next != nil {
		s += " + " + d.Next.DebugString()
	}
	return s
}

// Combine implements System.Delegate.Combine: appends other to the
// end of this delegate's invocation chain, returning a new delegate
// head (delegates are immutable once constructed).
func (d *Delegate) Combine(other *Delegate) *Delegate {
	if d == nil {
		return other
	}
	clone := &Delegate{Type: d.Type, Target: d.Target, Method: d.Method}
	if d.Next == nil {
		clone.Next = other
	} else {
		clone.Next = d.Next.Combine(other)
	}
	return clone
}

// Targets returns the flattened invocation-order list of single-cast
// delegates making up this (possibly multicast) delegate.
func (d *Delegate) Targets() []*Delegate {
	var out []*Delegate
	for cur := d; cur != nil; cur = cur.Next {
		single := &Delegate{Type: cur.Type, Target: cur.Target, Method: cur.Method}
		out = append(out, single)
	}
	return out
}
