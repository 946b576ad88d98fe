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
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/portfolio"
)

var (
	ErrInvalidWeights = errors.New("weights must be formatted as SYMBOL=WEIGHT[,SYMBOL=WEIGHT...]")
	ErrInvalidDate    = errors.New("dates must be formatted as YYYY-MM-DD")
)

// Scenario is the set of simulation inputs that may be stored in a toml file
// and overridden on the command line
type Scenario struct {
	Assets          []string           `toml:"assets"`
	Weights         map[string]float64 `toml:"weights"`
	Benchmark       string             `toml:"benchmark"`
	Begin           string             `toml:"begin"`
	End             string             `toml:"end"`
	Initial         float64            `toml:"initial"`
	Monthly         float64            `toml:"monthly"`
	Schedule        string             `toml:"schedule"`
	Strict          bool               `toml:"strict"`
	WeightTolerance float64            `toml:"weight_tolerance"`
}

// LoadScenario reads fn on top of base; keys missing from the file keep
// their value in base
func LoadScenario(fn string, base Scenario) (Scenario, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		return base, err
	}

	sc := base
	if err := toml.Unmarshal(raw, &sc); err != nil {
		return base, fmt.Errorf("could not parse scenario %s: %w", fn, err)
	}
	return sc, nil
}

// ParseWeights parses SYM=W pairs separated by commas
func ParseWeights(str string) (map[string]float64, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, nil
	}

	weights := make(map[string]float64)
	for _, pair := range strings.Split(str, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidWeights, pair)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidWeights, pair)
		}
		weights[strings.TrimSpace(parts[0])] = weight
	}
	return weights, nil
}

// Request converts the scenario into a simulation request
func (sc Scenario) Request() (portfolio.Request, error) {
	req := portfolio.Request{
		Assets:    sc.Assets,
		Benchmark: sc.Benchmark,
		Policy: portfolio.ContributionPolicy{
			InitialInvestment:   sc.Initial,
			MonthlyContribution: sc.Monthly,
		},
	}

	if sc.Weights != nil {
		req.Allocation = portfolio.Allocation(sc.Weights)
	}

	var err error
	tz := common.GetTimezone()
	if req.Begin, err = parseDate(sc.Begin, tz); err != nil {
		return req, err
	}
	if req.End, err = parseDate(sc.End, tz); err != nil {
		return req, err
	}

	if req.Policy.Schedule, err = portfolio.ParseSchedule(sc.Schedule); err != nil {
		return req, err
	}

	if sc.Strict {
		req.Alignment = portfolio.AlignStrict
	}

	return req, nil
}

func parseDate(str string, tz *time.Location) (time.Time, error) {
	dt, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(str), tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: '%s'", ErrInvalidDate, str)
	}
	return dt, nil
}
