// Copyright 2025-2026
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4"
	"github.com/regime-lab/regimelab/common"
	"github.com/regime-lab/regimelab/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Database
	viper.BindEnv("database.url", "DATABASE_URL")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))

	// Data providers
	viper.BindEnv("data.provider", "RL_DATA_PROVIDER")
	rootCmd.PersistentFlags().String("data-provider", "csvdir", "EOD data provider, one of: csvdir, eod, database")
	viper.BindPFlag("data.provider", rootCmd.PersistentFlags().Lookup("data-provider"))

	viper.BindEnv("data.dir", "RL_DATA_DIR")
	rootCmd.PersistentFlags().String("data-dir", ".", "Directory holding <TICKER>.csv price files")
	viper.BindPFlag("data.dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	viper.BindEnv("eod.token", "EOD_TOKEN")
	rootCmd.PersistentFlags().String("eod-token", "", "EOD data api token")
	viper.BindPFlag("eod.token", rootCmd.PersistentFlags().Lookup("eod-token"))

	viper.BindEnv("cache.size", "RL_CACHE_SIZE")
	rootCmd.PersistentFlags().Int("cache-size", 256, "Number of price series to hold in the LRU cache")
	viper.BindPFlag("cache.size", rootCmd.PersistentFlags().Lookup("cache-size"))

	// Logging configuration
	viper.BindEnv("log.level", "RL_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "RL_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "RL_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "RL_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Use colorized console log output")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// OpenTelemetry
	viper.BindEnv("otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP trace collector endpoint, if blank tracing is disabled")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))

	viper.BindEnv("otlp.http", "OTEL_EXPORTER_OTLP_HTTP")
	rootCmd.PersistentFlags().Bool("otlp-http", false, "Use OTLP over http instead of grpc")
	viper.BindPFlag("otlp.http", rootCmd.PersistentFlags().Lookup("otlp-http"))
}

var rootCmd = &cobra.Command{
	Use:     "regimelab",
	Version: common.CurrentVersion.String(),
	Short:   "Regime-conditioned backtesting engine",
	Long:    `Backtest allocation rules that switch a portfolio between assets based on externally fitted market regime labels.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
	},
}

// buildManager constructs the configured data provider wrapped in a caching
// manager
func buildManager(ctx context.Context) (*data.Manager, error) {
	var provider data.Provider

	switch viper.GetString("data.provider") {
	case "csvdir":
		provider = data.NewCSVDir(viper.GetString("data.dir"))
	case "eod":
		provider = data.NewEODHttp(viper.GetString("eod.token"))
	case "database":
		conn, err := pgx.Connect(ctx, viper.GetString("database.url"))
		if err != nil {
			log.Error().Err(err).Msg("could not connect to database")
			return nil, err
		}
		provider = data.NewPgDb(conn)
	default:
		return nil, fmt.Errorf("unknown data provider %q", viper.GetString("data.provider"))
	}

	return data.NewManager(provider, viper.GetInt("cache.size"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
