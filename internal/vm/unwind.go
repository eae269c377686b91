package vm

import (
	"github.com/cwbudde/go-cilrun/internal/frame"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/metadata"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/internal/opcodes"
)

// unwind responds to an error raised at throwOffset by scanning the
// protected regions active there, innermost first (ECMA-335
// §III.3.64): a matching catch resumes normal execution at its
// handler start; a finally/fault runs to completion and the original
// exception keeps propagating; a non-matching filter moves on to the
// next outer region. A non-*object.Thrown error (an engine or
// resolution error) is never catchable and is reported unhandled
// immediately.
func (m *Machine) unwind(fr *frame.Context, body *metadata.MethodBody, throwOffset int, err error) (next int, handled bool, fatal error) {
	thrown, ok := err.(*object.Thrown)
	if !ok {
		return 0, false, nil
	}
	exc := thrown.Exception

	regions := frame.RegionsAt(body.ProtectedRegions, throwOffset)
	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i]
		switch r.Kind {
		case il.HandlerCatch:
			matched, cerr := m.catchMatches(fr, r, exc)
			if cerr != nil {
				return 0, false, cerr
			}
			if matched {
				return m.enterHandler(fr, r, exc), true, nil
			}

		case il.HandlerFilter:
			matched, ferr := m.filterMatches(fr, body, r, exc)
			if ferr != nil {
				if newThrown, ok := ferr.(*object.Thrown); ok {
					exc = newThrown.Exception
					continue
				}
				return 0, false, ferr
			}
			if matched {
				return m.enterHandler(fr, r, exc), true, nil
			}

		case il.HandlerFinally, il.HandlerFault:
			if herr := m.runHandlerOnly(fr, body, r.HandlerStart); herr != nil {
				if newThrown, ok := herr.(*object.Thrown); ok {
					exc = newThrown.Exception
					continue
				}
				return 0, false, herr
			}
		}
	}
	return 0, false, nil
}

// enterHandler sets up fr for a catch/filter handler that has just
// matched: the stack starts with exactly the exception object on it,
// per ECMA-335 §III Exception Handling.
func (m *Machine) enterHandler(fr *frame.Context, r il.ProtectedRegion, exc object.Value) int {
	fr.CurrentException = exc
	fr.Stack.Clear()
	fr.Stack.Push(exc)
	return r.HandlerStart
}

// catchMatches resolves r's declared catch type against fr's generic
// scope and reports whether it can hold exc.
func (m *Machine) catchMatches(fr *frame.Context, r il.ProtectedRegion, exc object.Value) (bool, error) {
	ref, _ := r.CatchType.(*metadata.TypeRef)
	catchType, err := m.Resolver.ResolveType(ref, fr.Scope)
	if err != nil {
		return false, err
	}
	excType := object.ExceptionType(exc, m.rt.Prims)
	return catchType.IsAssignableFrom(excType), nil
}

// filterMatches runs a `filter` block (the boolean expression ahead of
// a filter handler) to completion, reporting whether it selected the
// handler. The filter body ends in `endfilter`, which the handler
// dispatch table maps to SigEndfilter so run can bound execution to
// just that block.
func (m *Machine) filterMatches(fr *frame.Context, body *metadata.MethodBody, r il.ProtectedRegion, exc object.Value) (bool, error) {
	fr.Stack.Clear()
	fr.Stack.Push(exc)
	fr.Cursor = r.FilterStart
	_, _, err := m.run(fr, body, []opcodes.Signal{opcodes.SigEndfilter})
	if err != nil {
		return false, err
	}
	result := fr.Stack.Pop()
	b, ok := result.(object.Int32)
	return ok && b != 0, nil
}

// runHandlerOnly executes a finally/fault handler body to its
// `endfinally`, reporting any exception the handler itself raises.
func (m *Machine) runHandlerOnly(fr *frame.Context, body *metadata.MethodBody, start int) error {
	fr.Stack.Clear()
	fr.Cursor = start
	_, _, err := m.run(fr, body, []opcodes.Signal{opcodes.SigEndfinally})
	return err
}

// runInterveningFinally runs every finally/fault handler that protects
// `from` but not `to`, innermost first, before a `leave` actually
// jumps (ECMA-335 §III.3.64). A handler that itself throws is routed
// back through unwind at the leave instruction's own offset; a
// handler that throws while itself nested inside a still-deeper try
// within the same finally block is therefore treated as throwing from
// the `leave` site rather than its own — a documented simplification
// that only matters for the (rare) case of a nested try directly
// inside a finally body.
func (m *Machine) runInterveningFinally(fr *frame.Context, body *metadata.MethodBody, from, to int) (int, error) {
	regions := frame.RegionsAt(body.ProtectedRegions, from)
	for i := len(regions) - 1; i >= 0; i-- {
		r := regions[i]
		if r.Contains(to) {
			continue // still inside this region from the target's perspective; nothing to unwind
		}
		if r.Kind != il.HandlerFinally && r.Kind != il.HandlerFault {
			continue
		}
		if err := m.runHandlerOnly(fr, body, r.HandlerStart); err != nil {
			return 0, err
		}
	}
	return to, nil
}
