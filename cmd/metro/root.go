package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/metro"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	noColor      bool
	configFile   string
	storeAdapter string

	// Set by the root command before any subcommand runs.
	config *metro.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "metro",
	Short: "Normalize, extract and persist 3D asset metadata",
	Long: `metro keeps one canonical metadata record per 3D asset.

It derives technical metrics from a scene description, maps external metadata
(glTF extras, registry payloads) onto the canonical schema without dropping
unrecognized keys, and persists the record to a property store, a sidecar
document or the extras of a glTF file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			color.NoColor = true
		}

		cfg, err := metro.LoadConfig(configFile)
		if err != nil {
			return err
		}
		config = cfg

		level, _ := cfg.LogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: metro.yaml in the project root)")
	rootCmd.PersistentFlags().StringVar(&storeAdapter, "store", "", "Property store adapter: file, redis, sqlite (overrides config)")
}

func cliLogger() *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
