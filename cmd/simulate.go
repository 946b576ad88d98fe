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
	"fmt"
	"strings"

	"github.com/penny-vault/pv-growth/data"
	"github.com/penny-vault/pv-growth/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	simulateScenarioFn string
	simulateWeights    string
	simulateFormat     string
	simulateSeries     bool
	simulateDefaults   Scenario
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateDefaults.Begin, "begin", "2018-07-30", "First day of the simulation (YYYY-MM-DD)")
	simulateCmd.Flags().StringVar(&simulateDefaults.End, "end", "2023-07-30", "Last day of the simulation, inclusive (YYYY-MM-DD)")
	simulateCmd.Flags().Float64Var(&simulateDefaults.Initial, "initial", 10000, "Initial investment")
	simulateCmd.Flags().Float64Var(&simulateDefaults.Monthly, "monthly", 1000, "Monthly contribution")
	simulateCmd.Flags().StringVar(&simulateDefaults.Schedule, "schedule", portfolio.OnCalendarFirst.String(), "Contribution schedule one of: `calendar-first` or `first-trading-day`")
	simulateCmd.Flags().BoolVar(&simulateDefaults.Strict, "strict", false, "Fail when assets do not share the same trading dates instead of dropping dates")
	simulateCmd.Flags().StringVar(&simulateWeights, "weights", "", "Asset weights as SYMBOL=WEIGHT,... (default equal weight)")
	simulateCmd.Flags().StringVar(&simulateScenarioFn, "scenario", "", "Load simulation inputs from a toml file; flags override its values")
	simulateCmd.Flags().StringVar(&simulateFormat, "format", "table", "Output format one of: `table` or `json`")
	simulateCmd.Flags().BoolVar(&simulateSeries, "series", true, "Include the daily value series in table output")

	simulateCmd.Flags().String("benchmark", "^BVSP", "Benchmark symbol simulated with the same contributions; empty to skip")
	viper.BindPFlag("simulate.benchmark", simulateCmd.Flags().Lookup("benchmark"))

	simulateCmd.Flags().String("currency", "BRL", "Currency code used to format amounts")
	viper.BindPFlag("simulate.currency", simulateCmd.Flags().Lookup("currency"))

	simulateCmd.Flags().Float64("weight-tolerance", portfolio.DefaultWeightTolerance, "Allowed distance of the sum of weights from 1; negative disables the check")
	viper.BindPFlag("simulate.weight_tolerance", simulateCmd.Flags().Lookup("weight-tolerance"))
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [flags] SYMBOL...",
	Short: "Simulate a portfolio with monthly contributions against a benchmark",
	Long: `Simulate the value of an equal weight (or --weights) portfolio of SYMBOLs
that receives an initial investment and a monthly contribution, and compare
it with the benchmark receiving the same contributions.`,
	Example: `  pvgrowth simulate TAEE11.SA ITSA4.SA --begin 2018-07-30 --end 2023-07-30
  pvgrowth simulate --scenario scenario.toml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := buildScenario(cmd, args)
		if err != nil {
			return err
		}

		req, err := sc.Request()
		if err != nil {
			return err
		}

		provider, err := data.NewProviderFromConfig(cmd.Context())
		if err != nil {
			return err
		}

		sim := portfolio.NewSimulator()
		sim.WeightTolerance = sc.WeightTolerance

		result, err := sim.Run(cmd.Context(), data.NewManager(provider), req)
		if err != nil {
			return err
		}

		currency := strings.ToUpper(viper.GetString("simulate.currency"))
		switch simulateFormat {
		case "json":
			out, err := renderJSON(result, currency)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
		default:
			fmt.Fprint(cmd.OutOrStdout(), renderTable(result, currency, simulateSeries))
		}

		return nil
	},
}

// buildScenario layers the flag defaults, the scenario file and explicitly
// set flags, in that order
func buildScenario(cmd *cobra.Command, args []string) (Scenario, error) {
	sc := simulateDefaults
	sc.Benchmark = viper.GetString("simulate.benchmark")
	sc.WeightTolerance = viper.GetFloat64("simulate.weight_tolerance")

	weights, err := ParseWeights(simulateWeights)
	if err != nil {
		return sc, err
	}
	sc.Weights = weights

	if simulateScenarioFn != "" {
		if sc, err = LoadScenario(simulateScenarioFn, sc); err != nil {
			return sc, err
		}
		log.Debug().Str("Scenario", simulateScenarioFn).Strs("Assets", sc.Assets).Msg("loaded scenario")

		flags := cmd.Flags()
		if flags.Changed("begin") {
			sc.Begin = simulateDefaults.Begin
		}
		if flags.Changed("end") {
			sc.End = simulateDefaults.End
		}
		if flags.Changed("initial") {
			sc.Initial = simulateDefaults.Initial
		}
		if flags.Changed("monthly") {
			sc.Monthly = simulateDefaults.Monthly
		}
		if flags.Changed("schedule") {
			sc.Schedule = simulateDefaults.Schedule
		}
		if flags.Changed("strict") {
			sc.Strict = simulateDefaults.Strict
		}
		if flags.Changed("weights") {
			sc.Weights = weights
		}
		if flags.Changed("benchmark") {
			sc.Benchmark = viper.GetString("simulate.benchmark")
		}
		if flags.Changed("weight-tolerance") {
			sc.WeightTolerance = viper.GetFloat64("simulate.weight_tolerance")
		}
	}

	if len(args) > 0 {
		sc.Assets = args
	}

	if len(sc.Assets) == 0 {
		return sc, fmt.Errorf("%w: no assets given", portfolio.ErrConfiguration)
	}

	return sc, nil
}
