package main

import (
	"fmt"
	"os"
	"time"

	"campusmap/internal/config"
	"campusmap/internal/env"
	"campusmap/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose     bool
	envFile     string
	source      string
	highlight   time.Duration
	addr        string
	metricsAddr string
	logFile     string
	asJSON      bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "campusmap",
	Short: "Browse campus buildings on a map",
	Long: `campusmap fetches the campus building list once and shows it as map
markers that can be filtered by name.

The building list comes from CAMPUSMAP_SOURCE (or --source):
  https://...                the public buildings feed (default)
  s3://bucket/key            a JSON snapshot in MinIO / S3
  postgres://...?table=name  rows of a buildings table`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		env.LoadEnv(zap.NewNop(), files...)

		var err error
		if cfg, err = config.FromEnv(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		applyFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		// the terminal UI owns the screen, so it only logs to a file
		if cmd.Name() == "tui" && logFile == "" {
			logger = zap.NewNop()
			return nil
		}
		opts := logging.Options{Level: cfg.LogLevel, Verbose: verbose}
		if logFile != "" {
			opts.OutputPaths = []string{logFile}
		}
		logger, err = logging.New(opts)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = source
	}
	if flags.Changed("highlight") {
		cfg.Highlight = highlight
	}
	if flags.Changed("addr") {
		cfg.Addr = addr
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Building source URL (overrides CAMPUSMAP_SOURCE)")
	rootCmd.PersistentFlags().DurationVar(&highlight, "highlight", 0, "How long a selected marker bounces; 0 toggles instead")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")

	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "Address for the map UI")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", config.DefaultMetricsAddr, "Address for /metrics")

	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
