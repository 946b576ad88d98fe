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
	"github.com/rs/zerolog/log"
)

// AlignmentPolicy controls what happens when price series do not share the
// same trading dates
type AlignmentPolicy int

const (
	// AlignDrop excludes every return date where any asset is missing a
	// price on that date or the date before it
	AlignDrop AlignmentPolicy = iota

	// AlignStrict fails with ErrMisalignedData when any asset is missing a
	// date present for another
	AlignStrict
)

func (a AlignmentPolicy) String() string {
	switch a {
	case AlignDrop:
		return "drop"
	case AlignStrict:
		return "strict"
	default:
		return fmt.Sprintf("AlignmentPolicy(%d)", int(a))
	}
}

// ExtractReturns converts price series into a date aligned table of daily
// fractional returns, one column per series. Series are outer joined on
// date before computing returns; no values are filled in. The returned
// dates are the return dates that were excluded because of gaps.
func ExtractReturns(prices dataframe.Map, alignment AlignmentPolicy) (*dataframe.DataFrame, []time.Time, error) {
	if len(prices) == 0 {
		return nil, nil, fmt.Errorf("%w: no price series", ErrConfiguration)
	}

	joined := prices.Join()

	for _, symbol := range prices.Keys() {
		if prices[symbol].Len() < 2 {
			log.Debug().Str("Symbol", symbol).Int("Rows", prices[symbol].Len()).Msg("not enough prices to compute returns")
			return emptyLike(joined), []time.Time{}, nil
		}
	}

	gaps := joined.DatesContaining(math.NaN())
	if len(gaps) > 0 && alignment == AlignStrict {
		return nil, nil, fmt.Errorf("%w: %d dates missing for some assets, first %s", ErrMisalignedData, len(gaps), gaps[0].Format("2006-01-02"))
	}

	returns := joined.PctChange()
	excluded := returns.DatesContaining(math.NaN())
	returns.Drop(math.NaN())

	if len(excluded) > 0 {
		log.Warn().Strs("Symbols", prices.Keys()).Int("ExcludedDates", len(excluded)).Time("FirstExcluded", excluded[0]).Msg("dropped return dates missing for some assets")
	}

	return returns, excluded, nil
}

func emptyLike(df *dataframe.DataFrame) *dataframe.DataFrame {
	res := &dataframe.DataFrame{
		Dates:    []time.Time{},
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.ColNames)),
	}
	copy(res.ColNames, df.ColNames)
	for idx := range res.Vals {
		res.Vals[idx] = []float64{}
	}
	return res
}
