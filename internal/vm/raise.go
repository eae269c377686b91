package vm

import (
	"strings"

	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
)

// raise implements opcodes.Runtime.Raise: it builds a managed
// exception of the named well-known runtime exception type
// (System.NullReferenceException, System.InvalidCastException,
// System.IndexOutOfRangeException, System.DivideByZeroException,
// System.OverflowException — the handful the engine itself raises)
// with message set, wrapped as an *object.Thrown so it propagates
// through the interpreter loop's error channel.
func (m *Machine) raise(name, message string) error {
	t := m.exceptionType(name)
	msgField := messageField(t)
	return &object.Thrown{Exception: object.NewRuntimeException(t, msgField, message)}
}

// exceptionType resolves name ("System.NullReferenceException") to a
// type descriptor, preferring one a loaded assembly or the host
// bridge already defines (so a user catch clause naming the same type
// matches by descriptor identity) and falling back to a synthetic,
// per-name-interned descriptor carrying just a Message field when
// nothing registered it.
func (m *Machine) exceptionType(name string) *metadata.TypeDescriptor {
	if t, ok := m.Host.LookupType(name); ok {
		return t
	}
	if m.synthExceptions == nil {
		m.synthExceptions = make(map[string]*metadata.TypeDescriptor)
	}
	if t, ok := m.synthExceptions[name]; ok {
		return t
	}
	ns, short := splitQualified(name)
	t := &metadata.TypeDescriptor{
		Kind:      metadata.KindReference,
		Name:      short,
		Namespace: ns,
		Fields:    []*metadata.FieldDescriptor{{Name: "Message", FieldType: m.rt.Prims.String}},
	}
	m.synthExceptions[name] = t
	return t
}

func messageField(t *metadata.TypeDescriptor) *metadata.FieldDescriptor {
	for _, f := range t.Fields {
		if f.Name == "Message" {
			return f
		}
	}
	return nil
}

func splitQualified(name string) (namespace, short string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
