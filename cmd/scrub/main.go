// Command scrub cleans the titles catalog and runs the HR attrition pipeline.
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/paveg/scrub/internal/attrition"
	"github.com/paveg/scrub/internal/catalog"
	"github.com/paveg/scrub/internal/config"
	scrubio "github.com/paveg/scrub/internal/io"
	"github.com/paveg/scrub/internal/logging"
	"github.com/paveg/scrub/internal/monitoring"
	"github.com/paveg/scrub/internal/version"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	logLevel    string
	logEncoding string
	metrics     bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:          "scrub",
		Short:        "Tabular cleaning and attrition modeling pipelines",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logEncoding, "log-format", "console", "log encoding (console or json)")
	root.PersistentFlags().BoolVar(&flags.metrics, "metrics", true, "record and log per-stage metrics")

	root.AddCommand(newCatalogCmd(&flags), newAttritionCmd(&flags), newVersionCmd())
	return root
}

func newCatalogCmd(flags *globalFlags) *cobra.Command {
	opts := catalog.DefaultOptions()
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Clean the titles catalog CSV",
		Long: `Clean the titles catalog: normalize text and list columns, move durations
recorded as ratings, impute dates and ratings per release year and kind, and
split durations into value and unit.

Example:
  scrub catalog --input data/netflix_titles.csv --output data/netflix_clean.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Format = scrubio.FormatFromPath(opts.OutputPath)
			if format != "" {
				f, err := scrubio.ParseFormat(format)
				if err != nil {
					return err
				}
				opts.Format = f
			}

			logger, err := logging.New(logging.Config{
				Level:       flags.logLevel,
				Encoding:    flags.logEncoding,
				OutputPaths: []string{"stdout"},
			})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			result, err := catalog.NewPipeline(opts, logger, monitoring.NewMetricsCollector(flags.metrics)).Run()
			if err != nil {
				logger.Error("catalog pipeline failed", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned %d rows: %s\n", result.Rows, result.OutputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.InputPath, "input", opts.InputPath, "catalog CSV to clean")
	cmd.Flags().StringVar(&opts.FallbackInputPath, "fallback", opts.FallbackInputPath, "input tried when --input is missing")
	cmd.Flags().StringVar(&opts.OutputPath, "output", opts.OutputPath, "cleaned output path")
	cmd.Flags().StringVar(&format, "format", "", "output format (csv or parquet); inferred from --output when empty")
	cmd.Flags().IntVar(&opts.PreviewRows, "preview", opts.PreviewRows, "rows shown at each end of the profile")
	return cmd
}

func newAttritionCmd(flags *globalFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "attrition",
		Short: "Run the HR attrition pipeline",
		Long: `Clean the HR dataset, write descriptive statistics and charts, train and
evaluate the attrition classifier and write the run manifest.

Example:
  scrub attrition --config config.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = flags.logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Logging.Encoding = flags.logEncoding
			}

			if err := attrition.CheckInput(cfg); err != nil {
				return err
			}
			logger, err := attrition.NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			logger.Info("configuration loaded", zap.String("path", configPath))

			result, err := attrition.NewPipeline(cfg, logger, monitoring.NewMetricsCollector(flags.metrics)).Run()
			if err != nil {
				logger.Error("attrition pipeline failed", zap.Error(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pipeline finished (auc %.4f), see %s\n", result.Manifest.AUC, result.ManifestPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to config.yaml")
	return cmd
}

// loadConfig reads path. When the default path is absent and was not asked
// for explicitly, defaults plus environment overrides are used.
func loadConfig(path string, explicit bool) (config.Config, error) {
	if _, err := os.Stat(path); stderrors.Is(err, fs.ErrNotExist) && !explicit {
		cfg := config.LoadFromEnv()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}

func newVersionCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Info()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprint(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print build information as JSON")
	return cmd
}
