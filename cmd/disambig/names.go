package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"disambig/internal/collide"
	"disambig/internal/diag"
	"disambig/internal/driver"
	"disambig/internal/report"
	"disambig/internal/trace"
	"disambig/internal/universe"
)

var (
	namesFormat         string
	namesOnlyCollisions bool
	namesCounts         bool
	namesWidth          int
)

func init() {
	namesCmd.Flags().StringVar(&namesFormat, "format", "text", "output format (text|json)")
	namesCmd.Flags().BoolVar(&namesOnlyCollisions, "only-collisions", false, "list renamed symbols only")
	namesCmd.Flags().BoolVar(&namesCounts, "counts", false, "show collision counters")
	namesCmd.Flags().IntVar(&namesWidth, "width", 0, "truncate name columns to this many cells (0 = no limit)")
}

var namesCmd = &cobra.Command{
	Use:   "names <universe>",
	Short: "Resolve and print the final name of every symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settingsFrom(cmd)
		res, err := buildUniverseFile(cmd, s, args[0])
		if err != nil {
			return err
		}
		if err := printDiagnostics(cmd.ErrOrStderr(), res.Bag, s); err != nil {
			return err
		}
		return printNames(cmd.OutOrStdout(), res.Resolver, namesFormat, s.color)
	},
}

var checkFormat string

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "pretty", "diagnostics format (pretty|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check <universe>",
	Short: "Build the index and report problems; exits 1 on errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settingsFrom(cmd)
		res, err := buildUniverseFile(cmd, s, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch checkFormat {
		case "json":
			err = report.DiagnosticsJSON(out, res.Bag, report.JSONOpts{IncludeNotes: true})
		case "pretty":
			err = report.Diagnostics(out, res.Bag, report.PrettyOpts{Color: s.color, ShowNotes: true})
			if err == nil && res.Bag.Len() == 0 {
				_, err = fmt.Fprintf(out, "ok: %d types, %d symbols\n", len(res.Universe.Types), res.Index.Translation().Len())
			}
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", checkFormat)
		}
		if err != nil {
			return err
		}
		if res.Bag.HasErrors() {
			return errReported
		}
		return nil
	},
}

// loadUniverse reads path, reporting a malformed file as a diagnostic.
func loadUniverse(cmd *cobra.Command, s *runSettings, path string) (*universe.Universe, error) {
	phase := s.timer.Start("load")
	span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopePhase, "load", 0)
	u, err := universe.LoadFile(path)
	span.End(path)
	if err != nil {
		phase.Stop(0, path)
		bag := diag.NewBag(1)
		bag.Add(diag.NewError(diag.LoadBadUniverse, diag.Subject{Scope: path}, err.Error()))
		if perr := printDiagnostics(cmd.ErrOrStderr(), bag, s); perr != nil {
			return nil, perr
		}
		return nil, errReported
	}
	phase.Stop(len(u.Types), path)
	return u, nil
}

func buildUniverseFile(cmd *cobra.Command, s *runSettings, path string) (*driver.Result, error) {
	u, err := loadUniverse(cmd, s, path)
	if err != nil {
		return nil, err
	}
	return driver.Build(cmd.Context(), u, s.buildOptions())
}

func printDiagnostics(w io.Writer, bag *diag.Bag, s *runSettings) error {
	if bag.Len() == 0 {
		return nil
	}
	return report.Diagnostics(w, bag, report.PrettyOpts{Color: s.color && isTerminal(os.Stderr), ShowNotes: true})
}

func printNames(w io.Writer, r *collide.Resolver, format string, colored bool) error {
	entries, err := r.Entries()
	if err != nil {
		return err
	}
	opts := report.NamesOpts{
		Color:          colored,
		OnlyCollisions: namesOnlyCollisions,
		Counts:         namesCounts,
		MaxWidth:       namesWidth,
	}
	switch strings.ToLower(format) {
	case "text":
		return report.Names(w, entries, opts)
	case "json":
		return report.NamesJSON(w, entries, opts)
	}
	return fmt.Errorf("unsupported format %q (must be text or json)", format)
}
