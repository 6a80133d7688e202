package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"disambig/internal/driver"
	"disambig/internal/gosource"
	"disambig/internal/trace"
	"disambig/internal/universe"
)

var (
	gosrcEmit string
	gosrcArch string
)

func init() {
	gosrcCmd.Flags().StringVar(&gosrcEmit, "emit", "", "write the universe to this file (.yaml, .json, .toml or .msgpack) instead of printing names")
	gosrcCmd.Flags().StringVar(&gosrcArch, "arch", "amd64", "GOARCH whose size model gives offsets and sizes")
	gosrcCmd.Flags().StringVar(&namesFormat, "format", "text", "output format (text|json)")
	gosrcCmd.Flags().BoolVar(&namesOnlyCollisions, "only-collisions", false, "list renamed symbols only")
}

var gosrcCmd = &cobra.Command{
	Use:   "gosrc <dir> [patterns...]",
	Short: "Disambiguate the struct types of Go packages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settingsFrom(cmd)
		ctx := cmd.Context()

		phase := s.timer.Start("load")
		span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "gosource", 0)
		doc, err := gosource.LoadDocument(ctx, gosource.Options{Dir: args[0], Arch: gosrcArch}, args[1:]...)
		span.End("")
		if err != nil {
			phase.Stop(0, args[0])
			return err
		}
		phase.Stop(len(doc.Types), args[0])

		if gosrcEmit != "" {
			format, err := universe.FormatFromPath(gosrcEmit)
			if err != nil {
				return err
			}
			data, err := universe.Encode(doc, format)
			if err != nil {
				return err
			}
			if err := os.WriteFile(gosrcEmit, data, 0o644); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d types)\n", gosrcEmit, len(doc.Types))
			return err
		}

		u, err := universe.Build(doc)
		if err != nil {
			return err
		}
		res, err := driver.Build(ctx, u, s.buildOptions())
		if err != nil {
			return err
		}
		if err := printDiagnostics(cmd.ErrOrStderr(), res.Bag, s); err != nil {
			return err
		}
		return printNames(cmd.OutOrStdout(), res.Resolver, namesFormat, s.color)
	},
}
