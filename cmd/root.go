package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/axiom-sh/axiom/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "axiom",
	Short:         "Axiom - periodic screen-capture driver",
	Long:          "Axiom captures screenshots on an interval, stores them locally, and optionally relays each capture to a git repository or an HTTP endpoint.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := buildLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		zap.ReplaceGlobals(logger)

		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		path, err := config.LoadDotenv(cwd)
		if err != nil {
			return err
		}
		if path != "" {
			zap.S().Debugw("loaded env file", "path", path)
		}
		return nil
	},
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
}

func Execute() {
	err := rootCmd.Execute()
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// timestampName builds the UTC-timestamped capture file name.
func timestampName(prefix string, t time.Time) string {
	return prefix + t.UTC().Format("20060102T150405Z") + ".png"
}
