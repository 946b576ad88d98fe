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
	"time"

	"github.com/penny-vault/pv-growth/dataframe"
)

const (
	ValueColumn    = "value"
	BlendedColumn  = "blended"
	RelativeColumn = "relative"
)

// Simulator compounds a contribution policy over a table of returns
type Simulator struct {
	// WeightTolerance bounds |sum(weights) - 1|; negative disables the check
	WeightTolerance float64
}

func NewSimulator() *Simulator {
	return &Simulator{
		WeightTolerance: DefaultWeightTolerance,
	}
}

// Simulate runs the default simulator
func Simulate(returns *dataframe.DataFrame, allocation Allocation, policy ContributionPolicy) (*dataframe.DataFrame, error) {
	return NewSimulator().Simulate(returns, allocation, policy)
}

// Simulate produces the portfolio value for every return date. The first
// date's return is applied to the initial investment. On each following
// date any scheduled contribution is added before the day's blended return
// is applied.
func (s *Simulator) Simulate(returns *dataframe.DataFrame, allocation Allocation, policy ContributionPolicy) (*dataframe.DataFrame, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	blended, err := s.blend(returns, allocation)
	if err != nil {
		return nil, err
	}

	values := &dataframe.DataFrame{
		Dates:    make([]time.Time, 0, blended.Len()),
		ColNames: []string{ValueColumn},
		Vals:     [][]float64{make([]float64, 0, blended.Len())},
	}

	if blended.Len() == 0 {
		return values, nil
	}

	r := blended.Vals[0]
	dates := blended.Dates

	value := policy.InitialInvestment + r[0]*policy.InitialInvestment
	values.InsertRow(dates[0], value)

	for ii := 1; ii < len(dates); ii++ {
		for cnt := policy.contributions(dates[ii-1], dates[ii]); cnt > 0; cnt-- {
			value += policy.MonthlyContribution
		}
		value *= 1 + r[ii]
		values.InsertRow(dates[ii], value)
	}

	return values, nil
}

// BlendedReturns computes the allocation weighted sum of each day's returns
func BlendedReturns(returns *dataframe.DataFrame, allocation Allocation) (*dataframe.DataFrame, error) {
	return NewSimulator().BlendedReturns(returns, allocation)
}

// BlendedReturns computes the allocation weighted sum of each day's returns
func (s *Simulator) BlendedReturns(returns *dataframe.DataFrame, allocation Allocation) (*dataframe.DataFrame, error) {
	return s.blend(returns, allocation)
}

func (s *Simulator) blend(returns *dataframe.DataFrame, allocation Allocation) (*dataframe.DataFrame, error) {
	if returns == nil {
		return nil, fmt.Errorf("%w: missing returns", ErrConfiguration)
	}

	if err := allocation.Validate(s.WeightTolerance); err != nil {
		return nil, err
	}

	for _, asset := range allocation.Assets() {
		if returns.ColIndex(asset) == -1 {
			return nil, fmt.Errorf("%w: allocation references %s which has no return column", ErrConfiguration, asset)
		}
	}

	if returns.Len() == 0 {
		return &dataframe.DataFrame{
			Dates:    []time.Time{},
			ColNames: []string{BlendedColumn},
			Vals:     [][]float64{{}},
		}, nil
	}

	return returns.Dot(BlendedColumn, allocation)
}

// SimulateBenchmark simulates a single benchmark series with a weight of 1
func SimulateBenchmark(returns *dataframe.DataFrame, symbol string, policy ContributionPolicy) (*dataframe.DataFrame, error) {
	return NewSimulator().SimulateBenchmark(returns, symbol, policy)
}

// SimulateBenchmark simulates a single benchmark series with a weight of 1
func (s *Simulator) SimulateBenchmark(returns *dataframe.DataFrame, symbol string, policy ContributionPolicy) (*dataframe.DataFrame, error) {
	return s.Simulate(returns, Allocation{symbol: 1.0}, policy)
}

// RelativePerformance expresses each value as the percent gain over the
// initial investment
func RelativePerformance(values *dataframe.DataFrame, initialInvestment float64) (*dataframe.DataFrame, error) {
	if !(initialInvestment > 0) {
		return nil, fmt.Errorf("%w: initial investment must be > 0 to compute relative performance, got %v", ErrInvalidParameter, initialInvestment)
	}
	if values == nil || values.ColCount() != 1 {
		return nil, fmt.Errorf("%w: relative performance requires a single value column", ErrConfiguration)
	}

	res := values.AddScalar(-initialInvestment).MulScalar(100 / initialInvestment)
	res.ColNames = []string{RelativeColumn}
	return res, nil
}
