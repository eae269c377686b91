// Package metadata implements the interpreter's core data model: the
// assembly/type/method/field definition graph as produced by an
// external metadata reader, the reference types used to address that
// graph from method bodies (potentially open over generic
// parameters), and the concrete, interned descriptors the resolver
// hands back once a reference has been bound to a generic scope.
//
// Definitions (TypeDef, MethodDef, FieldDef) are immutable and owned
// by the assembly that declares them. References (TypeRef, MethodRef,
// FieldRef) describe how a site names a member, possibly through open
// generic parameters. Descriptors (TypeDescriptor, MethodDescriptor,
// FieldDescriptor) are the resolver's concrete, scope-bound output;
// two descriptors are equal iff their (definition identity, ordered
// type-argument tuple) are equal, which the resolver enforces by
// interning.
package metadata
