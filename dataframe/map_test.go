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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-growth/dataframe"
)

var _ = Describe("DataFrame map", func() {
	var (
		d1, d2, d3, d4 time.Time
		dfMap          dataframe.Map
	)

	BeforeEach(func() {
		d1 = time.Date(2021, time.January, 4, 16, 0, 0, 0, time.UTC)
		d2 = time.Date(2021, time.January, 5, 16, 0, 0, 0, time.UTC)
		d3 = time.Date(2021, time.January, 6, 16, 0, 0, 0, time.UTC)
		d4 = time.Date(2021, time.January, 7, 16, 0, 0, 0, time.UTC)

		dfMap = dataframe.Map{
			"VFINX": {
				Dates:    []time.Time{d1, d2, d3, d4},
				ColNames: []string{"VFINX"},
				Vals:     [][]float64{{1, 2, 3, 4}},
			},
			"PRIDX": {
				Dates:    []time.Time{d2, d4},
				ColNames: []string{"PRIDX"},
				Vals:     [][]float64{{20, 40}},
			},
		}
	})

	It("lists keys in sorted order", func() {
		Expect(dfMap.Keys()).To(Equal([]string{"PRIDX", "VFINX"}))
	})

	It("outer joins on the union of dates", func() {
		df := dfMap.Join()
		Expect(df.Dates).To(Equal([]time.Time{d1, d2, d3, d4}))
		Expect(df.ColNames).To(Equal([]string{"PRIDX", "VFINX"}))
		Expect(df.Vals[1]).To(Equal([]float64{1, 2, 3, 4}))
	})

	It("fills missing values with NaN", func() {
		df := dfMap.Join()
		Expect(math.IsNaN(df.Vals[0][0])).To(BeTrue())
		Expect(df.Vals[0][1]).To(BeNumerically("==", 20))
		Expect(math.IsNaN(df.Vals[0][2])).To(BeTrue())
		Expect(df.Vals[0][3]).To(BeNumerically("==", 40))
	})

	It("produces an empty dataframe from an empty map", func() {
		df := dataframe.Map{}.Join()
		Expect(df.Len()).To(Equal(0))
		Expect(df.ColCount()).To(Equal(0))
	})
})
