package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"disambig/internal/version"
)

// errReported means the failure was already printed as diagnostics.
var errReported = errors.New("diagnostics reported")

var rootCmd = &cobra.Command{
	Use:   "disambig",
	Short: "Collision-free identifiers for reflected type universes",
	Long: `disambig assigns every member, function and parameter of a reflected
type universe a name that collides with nothing in its scope, its ancestors
or the reserved words of the generated language.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return prepareRun(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		finishRun()
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(namesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(gosrcCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to disambig.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("jobs", 0, "build workers (0 = GOMAXPROCS, 1 = sequential)")
	rootCmd.PersistentFlags().Bool("timings", false, "print phase timings to stderr")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr, .ndjson for JSON lines)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().Bool("no-reserved", false, "skip the reserved-word check")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to keep (default from config)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go execution trace to this file")
}

func main() {
	err := rootCmd.Execute()
	finishRun()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
