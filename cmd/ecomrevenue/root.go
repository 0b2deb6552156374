package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ecomrevenue/internal/app"
	"github.com/JonMunkholm/ecomrevenue/internal/config"
	"github.com/JonMunkholm/ecomrevenue/internal/core"
	"github.com/JonMunkholm/ecomrevenue/internal/logging"
)

// flags override the configuration loaded from the environment.
type flags struct {
	dataDir  string
	storeURL string
	output   string
	top      int
	strict   bool
	currency string
	envFile  string
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "ecomrevenue",
		Short: "Load e-commerce CSV data and report revenue per customer",
		Long: `ecomrevenue validates customers, products, orders, order items and payments
from <data-dir>/<entity>.csv, replaces the store tables with the accepted rows
and computes the customer revenue report.

Configuration comes from the environment (and a .env file); flags override it.

Exit codes:
  0  success
  1  configuration or usage error
  2  a source file could not be read
  3  strict mode aborted the load
  4  store access failed
  5  the report could not be computed`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.dataDir, "data-dir", "", "Directory holding <entity>.csv files (DATA_DIR)")
	pf.StringVar(&f.storeURL, "store", "", "Store location: postgres://..., duckdb://path, *.duckdb or :memory: (STORE_URL)")
	pf.StringVar(&f.output, "output", "", "Report CSV path (REPORT_OUTPUT)")
	pf.IntVar(&f.top, "top", 0, "Size of the revenue ranking (REPORT_TOP_N)")
	pf.BoolVar(&f.strict, "strict", false, "Abort an entity and its dependents on any rejected row (INGEST_STRICT)")
	pf.StringVar(&f.currency, "currency", "", "Currency prefix for console amounts (REPORT_CURRENCY)")
	pf.StringVar(&f.envFile, "env-file", ".env", "Environment file to load if present")

	setup := func(cmd *cobra.Command) (*app.App, error) {
		cfg, err := loadConfig(cmd, f)
		if err != nil {
			return nil, err
		}
		logger := logging.Setup(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
		logger.Debug("configuration loaded", "config", cfg.String())
		return app.New(cfg, cmd.OutOrStdout(), logger), nil
	}

	root.AddCommand(
		newLoadCmd(setup),
		newReportCmd(setup),
		newRunCmd(setup),
		newServeCmd(setup),
		newSchemaCmd(),
	)
	return root
}

// loadConfig reads the env file, the environment and the flags, in that
// order of precedence from lowest to highest.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	if err := godotenv.Overload(f.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &core.ConfigError{Err: err}
	} else if err == nil {
		slog.Debug("loaded env file", "path", f.envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, &core.ConfigError{Err: err}
	}

	changed := cmd.Flags().Changed
	if changed("data-dir") {
		cfg.Ingest.DataDir = f.dataDir
	}
	if changed("store") {
		cfg.Store.URL = f.storeURL
	}
	if changed("output") {
		cfg.Report.Output = f.output
	}
	if changed("top") {
		cfg.Report.TopN = f.top
	}
	if changed("strict") {
		cfg.Ingest.Strict = f.strict
	}
	if changed("currency") {
		cfg.Report.Currency = f.currency
	}

	if err := cfg.Validate(); err != nil {
		return nil, &core.ConfigError{Err: err}
	}
	return cfg, nil
}
