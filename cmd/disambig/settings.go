package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"disambig/internal/config"
	"disambig/internal/driver"
	"disambig/internal/observ"
	"disambig/internal/prof"
)

// runSettings is disambig.toml with the global flags applied on top.
type runSettings struct {
	cfg     *config.Config
	color   bool
	timings bool
	timer   *observ.Timer
	prof    *prof.Session
	cleanup func()
}

type settingsKey struct{}

func prepareRun(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOrDefault(".")
	}
	if err != nil {
		return err
	}

	if flags.Changed("jobs") {
		if cfg.Build.Jobs, err = flags.GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Build.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	noReserved, err := flags.GetBool("no-reserved")
	if err != nil {
		return fmt.Errorf("failed to get no-reserved flag: %w", err)
	}
	if noReserved {
		cfg.Names.CheckReserved = false
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flags.GetString("trace"); err != nil {
			return fmt.Errorf("failed to get trace flag: %w", err)
		}
		if cfg.Trace.Level == "off" {
			cfg.Trace.Level = "phase"
		}
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return fmt.Errorf("failed to get trace-level flag: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	colorFlag, err := flags.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readColorMode(colorFlag)
	if err != nil {
		return err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	s := &runSettings{cfg: cfg, color: applyColorMode(mode), timings: timings, timer: observ.NewTimer()}
	if s.prof, err = setupProfiling(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, s.cleanup, err = setupTracing(ctx, cmd, cfg.Trace)
	if err != nil {
		_ = s.prof.Stop()
		return err
	}
	cmd.SetContext(context.WithValue(ctx, settingsKey{}, s))
	active = s
	return nil
}

// active is the settings of the running command; finishRun clears it.
var active *runSettings

// finishRun flushes timings, the trace and the profiles. Cobra skips the
// post-run hook when a command fails, so main calls it too.
func finishRun() {
	s := active
	if s == nil {
		return
	}
	active = nil
	if s.timings {
		fmt.Fprint(os.Stderr, s.timer.Summary())
	}
	s.cleanup()
	if err := s.prof.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
	}
}

func settingsFrom(cmd *cobra.Command) *runSettings {
	s, _ := cmd.Context().Value(settingsKey{}).(*runSettings)
	return s
}

// buildOptions turns the settings into driver options.
func (s *runSettings) buildOptions() driver.Options {
	opts := driver.Options{
		Jobs:           s.cfg.Build.Jobs,
		CheckReserved:  s.cfg.Names.CheckReserved,
		Policy:         s.cfg.SuffixPolicy(),
		MaxDiagnostics: s.cfg.Build.MaxDiagnostics,
		Timer:          s.timer,
	}
	if s.cfg.Names.CheckReserved {
		opts.Reserved = s.cfg.ReservedWords()
	}
	return opts
}

func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()
	var paths prof.Paths
	var err error
	if paths.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if paths.Mem, err = flags.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if paths.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	return prof.Start(paths)
}
