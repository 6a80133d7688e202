package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"disambig/internal/diag"
	"disambig/internal/snapshot"
	"disambig/internal/trace"
)

var snapshotOutput string

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "names.mp", "snapshot file to write")
	inspectCmd.Flags().StringVar(&namesFormat, "format", "text", "output format (text|json)")
	inspectCmd.Flags().BoolVar(&namesOnlyCollisions, "only-collisions", false, "list renamed symbols only")
	inspectCmd.Flags().BoolVar(&namesCounts, "counts", false, "show collision counters")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <universe>",
	Short: "Build the index and freeze it to a msgpack snapshot",
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
		if res.Bag.HasErrors() {
			return errReported
		}

		phase := s.timer.Start("snapshot")
		span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopePhase, "snapshot", 0)
		snap, err := snapshot.Write(snapshotOutput, res.Resolver)
		span.End(snapshotOutput)
		if err != nil {
			phase.Stop(0, "")
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		phase.Stop(len(snap.Entries), snapshotOutput)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (build %s, %d symbols)\n", snapshotOutput, snap.BuildID, len(snap.Entries))
		return err
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>",
	Short: "Print the names stored in a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settingsFrom(cmd)
		snap, err := snapshot.Read(args[0])
		if err != nil {
			return err
		}
		r, err := snap.Resolver()
		if err != nil {
			return err
		}
		bag := diag.NewBag(s.cfg.Build.MaxDiagnostics)
		if r.Verify(diag.BagReporter{Bag: bag}) > 0 {
			if err := printDiagnostics(cmd.ErrOrStderr(), bag, s); err != nil {
				return err
			}
			return errReported
		}
		if namesFormat == "text" {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "build %s  created %s  super suffix %s\n\n",
				snap.BuildID, snap.CreatedAt.Format(time.RFC3339), snap.Policy)
			if err != nil {
				return err
			}
		}
		return printNames(cmd.OutOrStdout(), r, namesFormat, s.color)
	},
}
