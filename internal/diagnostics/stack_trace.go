package diagnostics

import (
	"fmt"
	"strings"
)

// Frame represents a single entry in a managed call stack: the
// method being executed and its current IL offset. Grounded on the
// teacher's errors.StackFrame, which paired a function name with a
// source line/column; here the position is method+offset since CIL
// frames have no source line.
type Frame struct {
	Method string
	Offset int
}

// String renders "Method +0xNN", matching the teacher's
// "FunctionName [line: N, column: M]" habit of putting the location
// after the name.
func (f Frame) String() string {
	return fmt.Sprintf("%s +0x%x", f.Method, f.Offset)
}

// StackTrace is a complete call stack, oldest (bottom) first.
type StackTrace []Frame

// String renders one frame per line, newest last.
func (st StackTrace) String() string {
	if len(st) == 0 {
		return ""
	}
	lines := make([]string, len(st))
	for i, f := range st {
		lines[i] = f.String()
	}
	return strings.Join(lines, "\n")
}

// Push returns a new trace with frame appended (traces are treated as
// immutable snapshots so a captured exception's trace is unaffected
// by further unwinding).
func (st StackTrace) Push(frame Frame) StackTrace {
	out := make(StackTrace, len(st)+1)
	copy(out, st)
	out[len(st)] = frame
	return out
}
