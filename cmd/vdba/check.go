package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/vdba/internal/config"
	"github.com/zoobzio/vdba/internal/logger"
	"github.com/zoobzio/vdba/testing/conformance"
)

type checkFlags struct {
	driver   string
	dsn      string
	database string
	run      string
}

func newCheckCmd(cfgFile *string) *cobra.Command {
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the conformance cases against a driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applyFlags(cmd, cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runCheck(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&flags.driver, "driver", "", "driver name or alias")
	cmd.Flags().StringVar(&flags.dsn, "dsn", "", "data source name")
	cmd.Flags().StringVar(&flags.database, "database", "", "database the cases work on")
	cmd.Flags().StringVar(&flags.run, "run", "", "run only cases whose group/name matches this regexp")
	return cmd
}

// applyFlags overrides loaded settings with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags checkFlags) {
	if cmd.Flags().Changed("driver") {
		cfg.Driver = flags.driver
	}
	if cmd.Flags().Changed("dsn") {
		cfg.Connection.DSN = flags.dsn
	}
	if cmd.Flags().Changed("database") {
		cfg.Connection.Database = flags.database
	}
	if cmd.Flags().Changed("run") {
		cfg.Run = flags.run
	}
}

func runCheck(cmd *cobra.Command, cfg *config.Config) error {
	reg := registry()
	drv, ok := reg.Lookup(cfg.Driver)
	if !ok {
		return fmt.Errorf("unknown driver %q (known: %s)", cfg.Driver, strings.Join(reg.Names(), ", "))
	}
	pattern, err := cfg.Pattern()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	log = log.Named("check").With("driver", drv.Name())

	env := conformance.Env{
		Driver:   drv,
		Config:   cfg.Connection,
		Registry: reg,
		Pattern:  pattern,
	}
	env.Config.Logger = log.Zap()

	out := cmd.OutOrStdout()
	total := 0
	start := time.Now()
	failed := conformance.Check(cmd.Context(), env, func(o conformance.Outcome) {
		total++
		report(out, o)
		if !o.Passed {
			log.Warn("case failed", "case", o.Case.Path(), "failures", len(o.Failures))
		}
	})

	fmt.Fprintf(out, "%d cases, %d passed, %d failed (%s)\n",
		total, total-failed, failed, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%s: %d of %d cases failed", drv.Name(), failed, total)
	}
	return nil
}

func report(w io.Writer, o conformance.Outcome) {
	status := "PASS"
	if !o.Passed {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s  %s (%s)\n", status, o.Case.Path(), o.Duration.Round(time.Millisecond))
	for _, f := range o.Failures {
		for _, line := range strings.Split(strings.TrimRight(f, "\n"), "\n") {
			fmt.Fprintf(w, "      %s\n", line)
		}
	}
}
