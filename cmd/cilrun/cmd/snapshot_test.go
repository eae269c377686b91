package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/go-cilrun/internal/config"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/pkg/cilrun"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestSnapshotInspectOutput locks down the JSON document `inspect`
// builds for a resolved assembly candidate, the way the teacher's own
// fixture tests snapshot formatted output instead of asserting on it
// field by field.
func TestSnapshotInspectOutput(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "Acme.Widgets.dll")
	if err := os.WriteFile(imagePath, []byte("not a real PE image, just loader bait"), 0o644); err != nil {
		t.Fatalf("writing fake assembly image: %v", err)
	}

	manifest := &config.Manifest{
		AssemblyPaths: map[string]string{
			"Acme.Widgets, Version=1.2.3.4": imagePath,
		},
	}
	engine := cilrun.New(manifest)

	doc, err := buildInspectDoc(engine, manifest, "Acme.Widgets", "")
	if err != nil {
		t.Fatalf("buildInspectDoc: %v", err)
	}

	snaps.MatchSnapshot(t, "inspect_output", normalizeInspectDoc(doc, dir))
}

// normalizeInspectDoc replaces the temp-dir path sjson embedded with a
// stable placeholder so the snapshot does not churn on every run's
// fresh t.TempDir().
func normalizeInspectDoc(doc, dir string) string {
	return strings.ReplaceAll(doc, dir, "<tempdir>")
}

// TestSnapshotExecutionTrace snapshots the per-instruction trace
// Engine.SetTraceHook produces while running the recursive factorial
// scenario, the full-trace coverage promised alongside the inspect
// snapshot.
func TestSnapshotExecutionTrace(t *testing.T) {
	engine := cilrun.New(nil)

	var lines []string
	engine.SetTraceHook(func(method string, instr il.Instruction, stackDepth int) {
		lines = append(lines, fmt.Sprintf("%s +0x%x %s (stack depth %d)", method, instr.Offset, instr.Opcode, stackDepth))
	})

	method := buildFactorialMethod()
	result, err := engine.InterpretCall(method, []object.Value{object.Int32(3)})
	if err != nil {
		t.Fatalf("Factorial.Compute(3): unexpected error: %v", err)
	}
	if got, ok := result.(object.Int32); !ok || got != 6 {
		t.Fatalf("Factorial.Compute(3) = %v, want 6", result)
	}

	snaps.MatchSnapshot(t, "factorial_trace", strings.Join(lines, "\n"))
}
