// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
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

	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var otelShutdown func(context.Context) error

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "PVGROWTH_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PVGROWTH_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PVGROWTH_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "PVGROWTH_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", true, "Format logs for humans instead of as JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Data provider
	viper.BindEnv("data.provider", "PVGROWTH_DATA_PROVIDER")
	rootCmd.PersistentFlags().String("provider", "tiingo", "Price data provider one of: `tiingo`, `pvdb`, or `csv`")
	viper.BindPFlag("data.provider", rootCmd.PersistentFlags().Lookup("provider"))

	viper.BindEnv("data.tiingo_token", "TIINGO_TOKEN")
	rootCmd.PersistentFlags().String("tiingo-token", "", "Tiingo API token")
	viper.BindPFlag("data.tiingo_token", rootCmd.PersistentFlags().Lookup("tiingo-token"))

	viper.BindEnv("data.tiingo_url", "TIINGO_URL")
	viper.SetDefault("data.tiingo_url", "https://api.tiingo.com")

	viper.BindEnv("data.csv_dir", "PVGROWTH_CSV_DIR")
	rootCmd.PersistentFlags().String("csv-dir", ".", "Directory of {SYMBOL}.csv files used by the csv provider")
	viper.BindPFlag("data.csv_dir", rootCmd.PersistentFlags().Lookup("csv-dir"))

	viper.BindEnv("data.timezone", "PVGROWTH_TIMEZONE")
	rootCmd.PersistentFlags().String("timezone", common.DefaultTimezone, "Timezone that price dates are expressed in")
	viper.BindPFlag("data.timezone", rootCmd.PersistentFlags().Lookup("timezone"))

	// Database
	viper.BindEnv("database.url", "DATABASE_URL")
	rootCmd.PersistentFlags().String("database-url", "", "PostgreSQL connection string")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database-url"))

	viper.BindEnv("database.role", "PVGROWTH_DATABASE_ROLE")

	// Cache
	viper.BindEnv("cache.enabled", "PVGROWTH_CACHE")
	rootCmd.PersistentFlags().Bool("cache", false, "Cache downloaded prices")
	viper.BindPFlag("cache.enabled", rootCmd.PersistentFlags().Lookup("cache"))

	viper.SetDefault("cache.local_size", 256)
	viper.SetDefault("cache.ttl", 86400)

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	viper.BindEnv("cache.redis", "PVGROWTH_CACHE_REDIS")

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	viper.BindEnv("otlp.headers", "OTEL_EXPORTER_OTLP_HEADERS")
}

var rootCmd = &cobra.Command{
	Use:     "pvgrowth",
	Version: common.CurrentVersion.String(),
	Short:   "Simulate portfolio growth with monthly contributions",
	Long: `pvgrowth simulates the value of a portfolio of assets that receives a lump
sum and a monthly contribution, and compares it with a benchmark index
that receives the same contributions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		common.SetupLogging()

		if viper.GetBool("cache.enabled") {
			if err := common.SetupCache(); err != nil {
				return err
			}
		}

		shutdown, err := opentelemetry.Setup(cmd.Context())
		if err != nil {
			log.Error().Err(err).Msg("could not configure tracing")
			return err
		}
		otelShutdown = shutdown
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if otelShutdown == nil {
			return nil
		}
		return otelShutdown(context.Background())
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
