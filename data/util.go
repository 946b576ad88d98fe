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

package data

import (
	"fmt"
	"strings"
	"time"

	"github.com/penny-vault/pv-growth/common"
)

// NormalizeSymbol upper cases and trims a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// dayRange expands begin and end to cover whole calendar days in the
// configured timezone. Only the year, month and day of each argument are
// used, in whatever location the caller wrote them. Both ends are inclusive.
func dayRange(begin, end time.Time) (time.Time, time.Time, error) {
	tz := common.GetTimezone()
	a := time.Date(begin.Year(), begin.Month(), begin.Day(), 0, 0, 0, 0, tz)
	b := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, tz)
	if b.Before(a) {
		return a, b, fmt.Errorf("%w: begin=%s end=%s", ErrInvalidTimeRange, a.Format("2006-01-02"), b.Format("2006-01-02"))
	}
	return a, b, nil
}

// marketClose returns the reference timestamp used for an end-of-day price
func marketClose(year int, month time.Month, day int, tz *time.Location) time.Time {
	return time.Date(year, month, day, 16, 0, 0, 0, tz)
}
