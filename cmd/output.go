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
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/penny-vault/pv-growth/portfolio"
	"github.com/shopspring/decimal"
)

type jsonPoint struct {
	Date     string           `json:"date"`
	Value    *decimal.Decimal `json:"value"`
	Relative *decimal.Decimal `json:"relative"`
}

type jsonSummary struct {
	Begin            string           `json:"begin"`
	End              string           `json:"end"`
	FinalBalance     *decimal.Decimal `json:"finalBalance"`
	TotalDeposited   decimal.Decimal  `json:"totalDeposited"`
	Contributions    int              `json:"contributions"`
	NetProfit        *decimal.Decimal `json:"netProfit"`
	NetProfitPercent *decimal.Decimal `json:"netProfitPercent"`
	TWRR             *decimal.Decimal `json:"twrr"`
	StdDev           *decimal.Decimal `json:"stdDev"`
	MaxDrawDown      *decimal.Decimal `json:"maxDrawDown"`
}

type jsonSeries struct {
	Symbols []string     `json:"symbols"`
	Weights []jsonWeight `json:"weights,omitempty"`
	Summary *jsonSummary `json:"summary"`
	Values  []jsonPoint  `json:"values"`
}

type jsonWeight struct {
	Symbol string          `json:"symbol"`
	Weight decimal.Decimal `json:"weight"`
}

type jsonResult struct {
	RunID     string      `json:"runId"`
	Currency  string      `json:"currency"`
	Schedule  string      `json:"schedule"`
	Excluded  []string    `json:"excludedDates"`
	Portfolio *jsonSeries `json:"portfolio"`
	Benchmark *jsonSeries `json:"benchmark,omitempty"`
}

// currencyFraction returns the number of decimal places used by currency
func currencyFraction(currency string) int32 {
	if cur := money.GetCurrency(currency); cur != nil {
		return int32(cur.Fraction)
	}
	return 2
}

// formatMoney renders amount in currency, e.g. R$1.234,56 for BRL
func formatMoney(amount float64, currency string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	if money.GetCurrency(currency) == nil {
		return decimal.NewFromFloat(amount).StringFixed(2)
	}
	fraction := currencyFraction(currency)
	minor := decimal.NewFromFloat(amount).Round(fraction).Shift(fraction).IntPart()
	return money.New(minor, currency).Display()
}

func formatPercent(val float64) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return "-"
	}
	return decimal.NewFromFloat(val*100).StringFixed(2) + "%"
}

func optionalDecimal(val float64, places int32) *decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return nil
	}
	d := decimal.NewFromFloat(val).Round(places)
	return &d
}

func newJSONSummary(summary *portfolio.Summary, currency string) *jsonSummary {
	fraction := currencyFraction(currency)
	js := &jsonSummary{
		FinalBalance:     optionalDecimal(summary.FinalBalance, fraction),
		TotalDeposited:   decimal.NewFromFloat(summary.TotalDeposited).Round(fraction),
		Contributions:    summary.Contributions,
		NetProfit:        optionalDecimal(summary.NetProfit, fraction),
		NetProfitPercent: optionalDecimal(summary.NetProfitPercent, 6),
		TWRR:             optionalDecimal(summary.TWRR, 6),
		StdDev:           optionalDecimal(summary.StdDev, 6),
	}
	if !summary.Begin.IsZero() {
		js.Begin = summary.Begin.Format("2006-01-02")
		js.End = summary.End.Format("2006-01-02")
	}
	if summary.MaxDrawDown != nil {
		js.MaxDrawDown = optionalDecimal(summary.MaxDrawDown.LossPercent, 6)
	}
	return js
}

func newJSONSeries(symbols []string, alloc portfolio.Allocation, values, relative *dataframe.DataFrame, summary *portfolio.Summary, currency string) *jsonSeries {
	fraction := currencyFraction(currency)
	series := &jsonSeries{
		Symbols: symbols,
		Summary: newJSONSummary(summary, currency),
		Values:  make([]jsonPoint, values.Len()),
	}

	for _, symbol := range alloc.Assets() {
		series.Weights = append(series.Weights, jsonWeight{
			Symbol: symbol,
			Weight: decimal.NewFromFloat(alloc[symbol]).Round(6),
		})
	}

	for idx, dt := range values.Dates {
		series.Values[idx] = jsonPoint{
			Date:     dt.Format("2006-01-02"),
			Value:    optionalDecimal(values.Vals[0][idx], fraction),
			Relative: optionalDecimal(relative.Vals[0][idx], 4),
		}
	}
	return series
}

// renderJSON encodes the result with amounts rounded to currency precision
func renderJSON(result *portfolio.Result, currency string) ([]byte, error) {
	out := jsonResult{
		RunID:    result.RunID.String(),
		Currency: currency,
		Schedule: result.Request.Policy.Schedule.String(),
		Excluded: make([]string, len(result.Excluded)),
		Portfolio: newJSONSeries(result.Request.Assets, result.Request.Allocation,
			result.Portfolio, result.PortfolioRelative, result.PortfolioSummary, currency),
	}

	for idx, dt := range result.Excluded {
		out.Excluded[idx] = dt.Format("2006-01-02")
	}

	if result.Benchmark != nil {
		out.Benchmark = newJSONSeries([]string{result.Request.Benchmark}, nil,
			result.Benchmark, result.BenchmarkRelative, result.BenchmarkSummary, currency)
	}

	return json.MarshalIndent(out, "", "  ")
}

// renderTable formats the value and relative series followed by a summary
// of both simulations
func renderTable(result *portfolio.Result, currency string, showSeries bool) string {
	s := &strings.Builder{}

	if showSeries {
		series := dataframe.Map{
			"1": result.Portfolio.Copy().Rename(portfolio.ValueColumn, "Portfolio"),
			"2": result.PortfolioRelative.Copy().Rename(portfolio.RelativeColumn, "Portfolio %"),
		}
		if result.Benchmark != nil {
			series["3"] = result.Benchmark.Copy().Rename(portfolio.ValueColumn, result.Request.Benchmark)
			series["4"] = result.BenchmarkRelative.Copy().Rename(portfolio.RelativeColumn, result.Request.Benchmark+" %")
		}
		s.WriteString(series.Join().Table())
		s.WriteString("\n")
	}

	header := []string{"Metric", "Portfolio"}
	if result.BenchmarkSummary != nil {
		header = append(header, result.Request.Benchmark)
	}

	table := tablewriter.NewWriter(s)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	summaries := []*portfolio.Summary{result.PortfolioSummary}
	if result.BenchmarkSummary != nil {
		summaries = append(summaries, result.BenchmarkSummary)
	}

	addRow := func(name string, fn func(*portfolio.Summary) string) {
		row := []string{name}
		for _, summary := range summaries {
			row = append(row, fn(summary))
		}
		table.Append(row)
	}

	addRow("Period", func(summary *portfolio.Summary) string {
		return fmt.Sprintf("%s - %s", formatDate(summary.Begin), formatDate(summary.End))
	})
	addRow("Final Balance", func(summary *portfolio.Summary) string { return formatMoney(summary.FinalBalance, currency) })
	addRow("Total Deposited", func(summary *portfolio.Summary) string { return formatMoney(summary.TotalDeposited, currency) })
	addRow("Contributions", func(summary *portfolio.Summary) string { return fmt.Sprintf("%d", summary.Contributions) })
	addRow("Net Profit", func(summary *portfolio.Summary) string { return formatMoney(summary.NetProfit, currency) })
	addRow("Net Profit %", func(summary *portfolio.Summary) string { return formatPercent(summary.NetProfitPercent) })
	addRow("Time-weighted Return", func(summary *portfolio.Summary) string { return formatPercent(summary.TWRR) })
	addRow("Std. Dev.", func(summary *portfolio.Summary) string { return formatPercent(summary.StdDev) })
	addRow("Max Draw Down", func(summary *portfolio.Summary) string {
		if summary.MaxDrawDown == nil {
			return "-"
		}
		return formatPercent(summary.MaxDrawDown.LossPercent)
	})

	table.Render()

	if len(result.Excluded) > 0 {
		fmt.Fprintf(s, "\n%d dates excluded because some assets had no price\n", len(result.Excluded))
	}

	return s.String()
}

func formatDate(dt time.Time) string {
	if dt.IsZero() {
		return "-"
	}
	return dt.Format("2006-01-02")
}
