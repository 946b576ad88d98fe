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

package dataframe

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()
	for colIdx := range df.Vals {
		floats.AddConst(scalar, df.Vals[colIdx])
	}
	return df
}

// Dot computes the weighted sum of each row and returns it as a single column
// dataframe named `name`. Columns missing from weights are given a weight of 0;
// weights that reference a column not in the dataframe return ErrColumnNotFound.
func (df *DataFrame) Dot(name string, weights map[string]float64) (*DataFrame, error) {
	weightVec := make([]float64, len(df.ColNames))
	for colName, weight := range weights {
		colIdx := df.ColIndex(colName)
		if colIdx == -1 {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, colName)
		}
		weightVec[colIdx] = weight
	}

	res := &DataFrame{
		Dates:    df.Dates,
		ColNames: []string{name},
		Vals:     [][]float64{make([]float64, df.Len())},
	}

	row := make([]float64, len(df.ColNames))
	for rowIdx := range df.Dates {
		for colIdx, col := range df.Vals {
			row[colIdx] = col[rowIdx]
		}
		res.Vals[0][rowIdx] = floats.Dot(row, weightVec)
	}

	return res, nil
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()
	for colIdx := range df.Vals {
		floats.Scale(scalar, df.Vals[colIdx])
	}
	return df
}

// PctChange computes the fractional change between each row and the row before
// it: (x[t] - x[t-1]) / x[t-1]. The first row has no prior value and is dropped,
// so the result is one row shorter than df. A missing (NaN) value on either
// side yields NaN. Fewer than 2 rows results in an empty dataframe.
func (df *DataFrame) PctChange() *DataFrame {
	res := &DataFrame{
		ColNames: make([]string, len(df.ColNames)),
		Dates:    []time.Time{},
		Vals:     make([][]float64, len(df.ColNames)),
	}
	copy(res.ColNames, df.ColNames)

	if df.Len() < 2 {
		for colIdx := range res.Vals {
			res.Vals[colIdx] = []float64{}
		}
		return res
	}

	res.Dates = make([]time.Time, df.Len()-1)
	copy(res.Dates, df.Dates[1:])

	for colIdx, col := range df.Vals {
		changes := make([]float64, len(col)-1)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			prev := col[rowIdx-1]
			if math.IsNaN(prev) || math.IsNaN(col[rowIdx]) {
				changes[rowIdx-1] = math.NaN()
				continue
			}
			changes[rowIdx-1] = (col[rowIdx] - prev) / prev
		}
		res.Vals[colIdx] = changes
	}

	return res
}
