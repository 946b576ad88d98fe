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

var _ = Describe("DataFrame math", func() {
	var (
		df    *dataframe.DataFrame
		dates []time.Time
	)

	BeforeEach(func() {
		dates = []time.Time{
			time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC),
			time.Date(2021, time.January, 7, 0, 0, 0, 0, time.UTC),
		}

		df = &dataframe.DataFrame{
			Dates:    dates,
			ColNames: []string{"VFINX", "PRIDX"},
			Vals: [][]float64{
				{100.0, 110.0, 99.0, 99.0},
				{50.0, 50.0, 55.0, math.NaN()},
			},
		}
	})

	Describe("when computing percent change", func() {
		It("drops the first row", func() {
			pct := df.PctChange()
			Expect(pct.Len()).To(Equal(3))
			Expect(pct.Dates).To(Equal(dates[1:]))
			Expect(pct.ColNames).To(Equal([]string{"VFINX", "PRIDX"}))
		})

		It("computes the simple return between rows", func() {
			pct := df.PctChange()
			Expect(pct.Vals[0][0]).To(BeNumerically("~", 0.10, 1e-12))
			Expect(pct.Vals[0][1]).To(BeNumerically("~", -0.10, 1e-12))
			Expect(pct.Vals[0][2]).To(BeNumerically("==", 0.0))
			Expect(pct.Vals[1][0]).To(BeNumerically("==", 0.0))
			Expect(pct.Vals[1][1]).To(BeNumerically("~", 0.10, 1e-12))
		})

		It("propagates missing values", func() {
			pct := df.PctChange()
			Expect(math.IsNaN(pct.Vals[1][2])).To(BeTrue())
		})

		It("does not modify the source dataframe", func() {
			df.PctChange()
			Expect(df.Len()).To(Equal(4))
			Expect(df.Vals[0][0]).To(BeNumerically("==", 100.0))
		})

		DescribeTable("with too few rows", func(n int) {
			short := &dataframe.DataFrame{
				Dates:    dates[:n],
				ColNames: []string{"VFINX"},
				Vals:     [][]float64{[]float64{100.0}[:n]},
			}
			pct := short.PctChange()
			Expect(pct.Len()).To(Equal(0))
			Expect(pct.ColNames).To(Equal([]string{"VFINX"}))
		},
			Entry("no rows", 0),
			Entry("a single row", 1),
		)
	})

	Describe("when computing a weighted row sum", func() {
		It("sums each row by weight", func() {
			dot, err := df.Trim(dates[0], dates[2]).Dot("blend", map[string]float64{"VFINX": 0.5, "PRIDX": 0.5})
			Expect(err).To(BeNil())
			Expect(dot.ColNames).To(Equal([]string{"blend"}))
			Expect(dot.Vals[0]).To(Equal([]float64{75.0, 80.0, 77.0}))
		})

		It("treats columns without a weight as zero", func() {
			dot, err := df.Dot("blend", map[string]float64{"VFINX": 1.0})
			Expect(err).To(BeNil())
			Expect(dot.Vals[0]).To(Equal([]float64{100.0, 110.0, 99.0, 99.0}))
		})

		It("errors when a weight references a missing column", func() {
			_, err := df.Dot("blend", map[string]float64{"VTSAX": 1.0})
			Expect(err).To(MatchError(dataframe.ErrColumnNotFound))
		})
	})

	Describe("when applying scalar operations", func() {
		It("adds a scalar to every value", func() {
			res := df.AddScalar(-100.0)
			Expect(res.Vals[0]).To(Equal([]float64{0.0, 10.0, -1.0, -1.0}))
			Expect(df.Vals[0][0]).To(BeNumerically("==", 100.0))
		})

		It("multiplies every value by a scalar", func() {
			res := df.MulScalar(2.0)
			Expect(res.Vals[0]).To(Equal([]float64{200.0, 220.0, 198.0, 198.0}))
		})
	})
})
