package resolver

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-cilrun/internal/metadata"
)

// typeKey interns TypeDescriptor instances by (definition identity,
// ordered type-argument tuple), so descriptor identity's uniqueness
// invariant. Since resolved type arguments are themselves interned
// descriptors, their pointer identity is stable and safe to encode
// into a string key.
type typeKey struct {
	def  *metadata.TypeDef
	args string
}

type methodKey struct {
	def      *metadata.MethodDef
	declType *metadata.TypeDescriptor
	args     string
}

type fieldKey struct {
	def      *metadata.FieldDef
	declType *metadata.TypeDescriptor
}

// argsKey builds a stable string encoding of an ordered descriptor
// tuple's identity for use as a map key component.
func argsKey(args []*metadata.TypeDescriptor) string {
	if len(args) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, a := range args {
		fmt.Fprintf(&sb, "%p,", a)
	}
	return sb.String()
}
