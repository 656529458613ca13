package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"suntheme/internal/api"
	"suntheme/internal/clock"
	"suntheme/internal/config"
	"suntheme/internal/controller"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runOpts struct {
	hosts   []string
	apiPort int
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the theme switcher",
	Long: `Run the theme switcher until interrupted.

The settings file is re-read on every check and watched for changes; a change
triggers an immediate check. Location, time zone, zenith, algorithm and
checkCycle are read once at start-up.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runOpts.hosts, "hosts", nil,
		"Hosts to drive: preferences, websocket, mqtt (default $SUNTHEME_HOSTS)")
	runCmd.Flags().IntVar(&runOpts.apiPort, "api-port", 0,
		"HTTP API port, 0 disables it (default $SUNTHEME_API_PORT)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("hosts") {
		opts.Hosts = runOpts.hosts
	}
	if cmd.Flags().Changed("api-port") {
		opts.APIPort = runOpts.apiPort
	}

	logger.Info("Starting suntheme",
		zap.String("version", version),
		zap.String("config", opts.ConfigPath),
		zap.Strings("hosts", opts.Hosts),
		zap.Bool("read_only", opts.ReadOnly))

	loader := config.NewLoader(opts.ConfigPath, logger)

	hosts, err := buildHosts(opts, logger)
	if err != nil {
		return err
	}
	if err := hosts.Connect(); err != nil {
		return fmt.Errorf("failed to connect hosts: %w", err)
	}
	defer hosts.Disconnect()

	clk := clock.NewRealClock()
	ctrl, err := controller.NewController(loader, hosts, clk, logger, opts.ReadOnly)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := loader.Watch(ctx, func() {
		logger.Info("Settings file changed, re-evaluating")
		if _, err := ctrl.Reevaluate(); err != nil {
			logger.Error("Re-evaluation failed", zap.Error(err))
		}
	}); err != nil {
		logger.Warn("Settings file will not be watched", zap.Error(err))
	}

	if err := ctrl.Start(); err != nil {
		return fmt.Errorf("failed to start controller: %w", err)
	}
	defer ctrl.Stop()

	if opts.APIPort > 0 {
		server := api.NewServer(ctrl, clk, logger, opts.APIPort)
		if err := server.Start(); err != nil {
			return err
		}
		defer server.Stop()
	}

	logger.Info("Application running. Press Ctrl+C to exit.")
	<-ctx.Done()

	logger.Info("Shutting down gracefully...")
	return nil
}
