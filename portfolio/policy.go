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
	"strings"
	"time"
)

// Schedule decides on which return dates a monthly contribution is made
type Schedule int

const (
	// OnCalendarFirst contributes only on trading days that fall on the
	// first day of a month. Months whose 1st is not a trading day receive
	// no contribution.
	OnCalendarFirst Schedule = iota

	// OnFirstTradingDay contributes on the first trading day of every new
	// month. If the series skips whole months, one contribution per month
	// crossed is made on the next available date.
	OnFirstTradingDay
)

func (s Schedule) String() string {
	switch s {
	case OnCalendarFirst:
		return "calendar-first"
	case OnFirstTradingDay:
		return "first-trading-day"
	default:
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
}

// ParseSchedule converts the textual name of a schedule
func ParseSchedule(name string) (Schedule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "calendar-first":
		return OnCalendarFirst, nil
	case "first-trading-day":
		return OnFirstTradingDay, nil
	default:
		return OnCalendarFirst, fmt.Errorf("%w: unknown schedule '%s'", ErrInvalidParameter, name)
	}
}

// ContributionPolicy describes the lump sum invested on the first return
// date and the recurring monthly deposit
type ContributionPolicy struct {
	InitialInvestment   float64
	MonthlyContribution float64
	Schedule            Schedule
}

// Validate rejects negative or non-finite amounts
func (policy ContributionPolicy) Validate() error {
	if math.IsNaN(policy.InitialInvestment) || math.IsInf(policy.InitialInvestment, 0) || policy.InitialInvestment < 0 {
		return fmt.Errorf("%w: initial investment must be >= 0, got %v", ErrInvalidParameter, policy.InitialInvestment)
	}
	if math.IsNaN(policy.MonthlyContribution) || math.IsInf(policy.MonthlyContribution, 0) || policy.MonthlyContribution < 0 {
		return fmt.Errorf("%w: monthly contribution must be >= 0, got %v", ErrInvalidParameter, policy.MonthlyContribution)
	}
	if policy.Schedule != OnCalendarFirst && policy.Schedule != OnFirstTradingDay {
		return fmt.Errorf("%w: unknown schedule %s", ErrInvalidParameter, policy.Schedule)
	}
	return nil
}

// contributions returns how many monthly deposits are made on date given the
// previous return date
func (policy ContributionPolicy) contributions(prev, date time.Time) int {
	switch policy.Schedule {
	case OnFirstTradingDay:
		months := (date.Year()-prev.Year())*12 + int(date.Month()) - int(prev.Month())
		if months > 0 {
			return months
		}
		return 0
	default:
		if date.Day() == 1 {
			return 1
		}
		return 0
	}
}

// ContributionCount returns the number of monthly deposits made over dates.
// The first date carries the initial investment and never a deposit.
func (policy ContributionPolicy) ContributionCount(dates []time.Time) int {
	cnt := 0
	for ii := 1; ii < len(dates); ii++ {
		cnt += policy.contributions(dates[ii-1], dates[ii])
	}
	return cnt
}

// TotalDeposited is the initial investment plus every monthly deposit made
// over dates
func (policy ContributionPolicy) TotalDeposited(dates []time.Time) float64 {
	if len(dates) == 0 {
		return 0
	}
	return policy.InitialInvestment + float64(policy.ContributionCount(dates))*policy.MonthlyContribution
}
