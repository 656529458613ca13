package main

import (
	"fmt"
	"time"

	"suntheme/internal/clock"
	"suntheme/internal/config"
	"suntheme/internal/controller"
	"suntheme/internal/host"

	"github.com/spf13/cobra"
)

var checkOpts struct {
	apply bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate day or night once and print the result",
	Long: `Evaluate the settings once and print the resolved state, the rule that
decided it and the theme pair that would be applied. With --apply the pair is
also sent to the configured hosts.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&checkOpts.apply, "apply", false,
		"Apply the resolved themes to the configured hosts")
}

func runCheck(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(opts.ConfigPath, logger)

	hosts := host.Multi{}
	if checkOpts.apply {
		var err error
		if hosts, err = buildHosts(opts, logger); err != nil {
			return err
		}
		if err := hosts.Connect(); err != nil {
			return fmt.Errorf("failed to connect hosts: %w", err)
		}
		defer hosts.Disconnect()
	}

	ctrl, err := controller.NewController(loader, hosts, clock.NewRealClock(), logger, opts.ReadOnly)
	if err != nil {
		return err
	}

	var decision controller.Decision
	if checkOpts.apply {
		decision, err = ctrl.Tick()
	} else {
		decision, err = ctrl.Evaluate(time.Now())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "State:        %s (%s)\n", decision.State, decision.Reason())
	fmt.Fprintf(out, "Local time:   %s %s\n", decision.Now.Format("2006-01-02 15:04"), ctrl.Zone())
	fmt.Fprintf(out, "Color scheme: %s\n", valueOrNone(decision.Themes.ColorScheme))
	fmt.Fprintf(out, "Window theme: %s\n", valueOrNone(decision.Themes.WindowTheme))
	return err
}

func valueOrNone(s string) string {
	if s == "" {
		return "(unchanged)"
	}
	return s
}
