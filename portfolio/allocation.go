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
	"sort"
	"strings"
)

// DefaultWeightTolerance is the largest accepted distance between the sum of
// an allocation's weights and 1
const DefaultWeightTolerance = 1e-6

// Allocation maps an asset symbol to its fractional weight. Weights that do
// not sum to 1 scale the blended daily return, not the invested capital.
type Allocation map[string]float64

// EqualWeight gives each asset a weight of 1/n
func EqualWeight(assets ...string) (Allocation, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: empty asset list", ErrConfiguration)
	}

	alloc := make(Allocation, len(assets))
	for _, asset := range assets {
		alloc[asset] = 0
	}
	weight := 1.0 / float64(len(alloc))
	for asset := range alloc {
		alloc[asset] = weight
	}
	return alloc, nil
}

// Assets returns the allocation's symbols in sorted order
func (alloc Allocation) Assets() []string {
	assets := make([]string, 0, len(alloc))
	for asset := range alloc {
		assets = append(assets, asset)
	}
	sort.Strings(assets)
	return assets
}

// Sum returns the total of all weights
func (alloc Allocation) Sum() float64 {
	sum := 0.0
	for _, asset := range alloc.Assets() {
		sum += alloc[asset]
	}
	return sum
}

// Validate checks that the allocation is non-empty, every weight is finite,
// and the weights sum to 1 within tolerance. A negative tolerance disables
// the sum check.
func (alloc Allocation) Validate(tolerance float64) error {
	if len(alloc) == 0 {
		return fmt.Errorf("%w: empty allocation", ErrConfiguration)
	}

	for asset, weight := range alloc {
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return fmt.Errorf("%w: weight for %s is not a number", ErrConfiguration, asset)
		}
	}

	if tolerance < 0 {
		return nil
	}

	if sum := alloc.Sum(); math.Abs(sum-1.0) > tolerance {
		return fmt.Errorf("%w: weights sum to %.6f, expected 1 (tolerance %g)", ErrConfiguration, sum, tolerance)
	}

	return nil
}

// String renders the allocation as SYM=W pairs in symbol order
func (alloc Allocation) String() string {
	parts := make([]string, 0, len(alloc))
	for _, asset := range alloc.Assets() {
		parts = append(parts, fmt.Sprintf("%s=%.4f", asset, alloc[asset]))
	}
	return strings.Join(parts, " ")
}
