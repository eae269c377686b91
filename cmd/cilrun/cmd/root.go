package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cilrun",
	Short: "A standalone ECMA-335 CIL interpreter",
	Long: `cilrun embeds a CIL (Common Intermediate Language) bytecode
interpreter: given a resolved method body it drives the evaluation
stack, protected-region exception handling, and static-constructor
discipline ECMA-335 specifies.

This binary carries no general-purpose .NET metadata reader — an
embedder supplies the assembly/type/method/field graph (internal/resolver.Loader's
decode hook); this CLI's own 'run demo' subcommand exercises the engine
against a small set of hand-built method bodies instead.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "cilrun.yaml", "path to the assembly search-path manifest")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
