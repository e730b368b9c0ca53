// Command reportctl works with property reports offline: it recomputes
// metrics for a saved report and inspects the report schema.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"property_report/pkg/core/schema"
)

var (
	// Global flags
	verbose    bool
	schemaPath string

	logger *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reportctl",
		Short: "Inspect property reports and the report schema",
		Long: `reportctl recomputes the investment metrics of a saved report and checks
the report schema against the contract the server enforces.

Reports may be raw JSON, fenced in markdown or lightly malformed; the same
defensive extraction the server uses is applied.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.OutputPaths = []string{"stderr"}
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			} else {
				config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&schemaPath, "schema", "", "Report schema file (default: embedded schema)")

	root.AddCommand(newMetricsCmd(), newValidateCmd(), newSchemaCmd())
	return root
}

func loadSchema() (*schema.Schema, error) {
	if schemaPath == "" {
		return schema.Default()
	}
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return schema.Load(data)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func log() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
