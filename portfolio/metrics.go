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

package portfolio

import (
	"fmt"
	"math"
	"time"

	"github.com/penny-vault/pv-growth/dataframe"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is used to annualize daily statistics
const TradingDaysPerYear = 252

// DrawDown is a period in which the time-weighted index fell from a peak
type DrawDown struct {
	Begin       time.Time
	End         time.Time
	Recovery    time.Time
	LossPercent float64
}

// Summary collects the headline statistics of a simulated value series
type Summary struct {
	Begin            time.Time
	End              time.Time
	FinalBalance     float64
	TotalDeposited   float64
	Contributions    int
	NetProfit        float64
	NetProfitPercent float64
	TWRR             float64
	StdDev           float64
	MaxDrawDown      *DrawDown
}

// Summarize computes the summary of values produced by simulating blended
// under policy. Statistics that cannot be computed are NaN.
func Summarize(values *dataframe.DataFrame, blended *dataframe.DataFrame, policy ContributionPolicy) (*Summary, error) {
	if values == nil || blended == nil || values.ColCount() != 1 || blended.ColCount() != 1 {
		return nil, fmt.Errorf("%w: summary requires single column value and return series", ErrConfiguration)
	}
	if values.Len() != blended.Len() {
		return nil, fmt.Errorf("%w: value series has %d rows but return series has %d", ErrConfiguration, values.Len(), blended.Len())
	}

	summary := &Summary{
		Begin:            values.Start(),
		End:              values.End(),
		FinalBalance:     math.NaN(),
		NetProfit:        math.NaN(),
		NetProfitPercent: math.NaN(),
		TWRR:             math.NaN(),
		StdDev:           math.NaN(),
	}

	if values.Len() == 0 {
		return summary, nil
	}

	vals := values.Vals[0]
	rets := blended.Vals[0]

	summary.Contributions = policy.ContributionCount(values.Dates)
	summary.TotalDeposited = policy.TotalDeposited(values.Dates)
	summary.FinalBalance = vals[len(vals)-1]
	summary.NetProfit = summary.FinalBalance - summary.TotalDeposited
	if summary.TotalDeposited > 0 {
		summary.NetProfitPercent = summary.NetProfit / summary.TotalDeposited
	}

	summary.TWRR = twrr(blended.Dates, rets)
	if len(rets) > 1 {
		summary.StdDev = stat.StdDev(rets, nil) * math.Sqrt(TradingDaysPerYear)
	}
	summary.MaxDrawDown = maxDrawDown(blended.Dates, rets)

	return summary, nil
}

// twrr compounds the blended returns; periods longer than a year are
// annualized
func twrr(dates []time.Time, rets []float64) float64 {
	rate := 1.0
	for _, r := range rets {
		rate *= 1 + r
	}

	years := toYears(dates[len(dates)-1].Sub(dates[0]))
	if years > 1 {
		return math.Pow(rate, 1.0/years) - 1
	}
	return rate - 1
}

// maxDrawDown finds the deepest decline of the time-weighted index built
// from rets. Recovery is zero when the index never regains the peak.
func maxDrawDown(dates []time.Time, rets []float64) *DrawDown {
	var worst *DrawDown

	index := 1.0
	peak := 1.0
	peakDate := dates[0]
	var current *DrawDown

	for ii, r := range rets {
		index *= 1 + r

		if index >= peak {
			if current != nil {
				current.Recovery = dates[ii]
				current = nil
			}
			peak = index
			peakDate = dates[ii]
			continue
		}

		loss := index/peak - 1
		if current == nil {
			current = &DrawDown{
				Begin:       peakDate,
				End:         dates[ii],
				LossPercent: loss,
			}
			if worst == nil || loss < worst.LossPercent {
				worst = current
			}
		}

		if loss < current.LossPercent {
			current.End = dates[ii]
			current.LossPercent = loss
		}

		if current.LossPercent < worst.LossPercent {
			worst = current
		}
	}

	return worst
}

func toYears(d time.Duration) float64 {
	return d.Hours() / (24 * 365.25)
}
