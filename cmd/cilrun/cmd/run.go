package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-cilrun/internal/config"
	"github.com/cwbudde/go-cilrun/internal/il"
	"github.com/cwbudde/go-cilrun/internal/object"
	"github.com/cwbudde/go-cilrun/pkg/cilrun"
	"github.com/spf13/cobra"
)

var (
	factorialN   int32
	identityType string
	identityArg  string
)

var runCmd = &cobra.Command{
	Use:   "run demo {factorial|identity}",
	Short: "Interpret one of the built-in demonstration method bodies",
	Args:  cobra.ExactArgs(2),
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int32Var(&factorialN, "n", 5, "argument for the factorial demo")
	runCmd.Flags().StringVar(&identityType, "type", "string", "type argument for the identity demo (string|int32)")
	runCmd.Flags().StringVar(&identityArg, "value", "hello", "argument for the identity demo")
}

func runDemo(cmd *cobra.Command, args []string) error {
	if args[0] != "demo" {
		return fmt.Errorf("unknown run target %q (only 'demo' is supported)", args[0])
	}

	manifest, err := config.Load(configPath)
	if err != nil {
		return err
	}
	engine := cilrun.New(manifest)
	if manifest.TraceInstructions {
		engine.SetTraceHook(traceToStderr)
	}

	switch args[1] {
	case "factorial":
		method := buildFactorialMethod()
		result, err := engine.InterpretCall(method, []object.Value{object.Int32(factorialN)})
		if err != nil {
			return err
		}
		fmt.Printf("Factorial.Compute(%d) = %v\n", factorialN, result)
		return nil

	case "identity":
		method := buildIdentityMethod()
		typeArg, ok := lookupGenericIdentityTypeArg(engine, identityType)
		if !ok {
			return fmt.Errorf("unsupported identity demo type %q (use string|int32)", identityType)
		}
		var arg object.Value
		if identityCollator.CompareString(identityType, "int32") == 0 {
			var n int32
			if _, err := fmt.Sscanf(identityArg, "%d", &n); err != nil {
				return fmt.Errorf("--value %q is not a valid int32: %w", identityArg, err)
			}
			arg = object.Int32(n)
		} else {
			arg = object.String(identityArg)
		}
		result, err := engine.InterpretCallGeneric(nil, method, []cilrun.TypeArg{typeArg}, nil, []object.Value{arg})
		if err != nil {
			return err
		}
		fmt.Printf("Identity.Id<%s>(%v) = %v\n", identityType, identityArg, result)
		return nil

	default:
		return fmt.Errorf("unknown demo %q (use factorial|identity)", args[1])
	}
}

// traceToStderr is the --trace-equivalent (config.Manifest.
// TraceInstructions) hook printed to stderr, one line per instruction.
func traceToStderr(method string, instr il.Instruction, stackDepth int) {
	fmt.Fprintf(os.Stderr, "trace: %s +0x%x %s (stack depth %d)\n", method, instr.Offset, instr.Opcode, stackDepth)
}
