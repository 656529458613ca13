// Command suntheme switches an editor's color scheme and window theme
// between a day pair and a night pair at local sunrise and sunset.
package main

import (
	"fmt"
	"os"

	"suntheme/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Set via ldflags
var version = "dev"

var (
	globalOpts struct {
		configPath string
		debug      bool
		readOnly   bool
	}

	logger *zap.Logger
	opts   config.Options
)

var rootCmd = &cobra.Command{
	Use:   "suntheme",
	Short: "Switch editor themes at sunrise and sunset",
	Long: `suntheme decides whether it is day or night at a configured location and
applies the matching color scheme and window theme to the editor.

Settings (location, time zone, theme names, overrides) are read from a YAML,
TOML or JSON settings file. Process options come from SUNTHEME_* environment
variables or a .env file.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if globalOpts.debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		opts = config.LoadOptions(logger)
		if cmd.Flags().Changed("config") {
			opts.ConfigPath = globalOpts.configPath
		}
		if cmd.Flags().Changed("read-only") {
			opts.ReadOnly = globalOpts.readOnly
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalOpts.configPath, "config", "c", "",
		"Settings file (default $SUNTHEME_CONFIG or ~/.config/suntheme/settings.yaml)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.debug, "debug", false,
		"Development logging")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.readOnly, "read-only", false,
		"Log theme changes instead of applying them (default $READ_ONLY)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
