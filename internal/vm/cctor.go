package vm

import (
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/metadata"
)

// runCctor implements opcodes.Runtime.RunCctor: it runs t's static
// constructor at most once process-wide (ECMA-335 §I.8.9.5), treating
// a re-entrant call on the same OS thread as already-done so a .cctor
// that (directly or transitively) touches its own type's statics does
// not deadlock against itself.
func (m *Machine) runCctor(t *metadata.TypeDescriptor) error {
	cctor := t.HasCctor()
	if cctor == nil {
		return nil
	}
	shouldRun, _ := t.CctorBegin(currentThreadID())
	if !shouldRun {
		return nil
	}

	scope := metadata.EmptyScope
	if len(t.TypeArgs) > 0 {
		scope = scope.ExtendAll(il.OwnerType, t.TypeArgs)
	}
	if _, err := m.Invoker.Invoke(cctor, scope, nil, nil); err != nil {
		return err
	}
	t.CctorFinish()
	return nil
}
