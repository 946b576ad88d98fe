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

package portfolio_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-growth/data"
	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/penny-vault/pv-growth/portfolio"
)

type staticProvider struct {
	prices dataframe.Map
}

func (p *staticProvider) DataType() string {
	return "static"
}

func (p *staticProvider) GetPrices(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame, error) {
	df, ok := p.prices[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", data.ErrDataUnavailable, symbol)
	}
	return df.Trim(begin, end), nil
}

var _ = Describe("Run", func() {
	var (
		ctx      context.Context
		manager  *data.Manager
		provider *staticProvider
		req      portfolio.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		dates := []time.Time{day(2021, 1, 28), day(2021, 1, 29), day(2021, 2, 1), day(2021, 2, 2)}
		provider = &staticProvider{
			prices: dataframe.Map{
				"AAA":   returnsFrame(dates, []string{"AAA"}, []float64{10, 11, 11, 12.1}),
				"BBB":   returnsFrame(dates, []string{"BBB"}, []float64{20, 22, 22, 24.2}),
				"^BVSP": returnsFrame(dates, []string{"^BVSP"}, []float64{100, 100, 95, 95}),
			},
		}
		manager = data.NewManager(provider)
		req = portfolio.Request{
			Assets:    []string{"aaa", "BBB"},
			Benchmark: "^bvsp",
			Begin:     time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			End:       time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
			Policy: portfolio.ContributionPolicy{
				InitialInvestment:   1000,
				MonthlyContribution: 100,
			},
		}
	})

	It("simulates the portfolio and the benchmark", func() {
		result, err := portfolio.Run(ctx, manager, req)
		Expect(err).To(BeNil())
		Expect(result.RunID).ToNot(Equal(uuid.Nil))
		Expect(result.Request.Assets).To(Equal([]string{"AAA", "BBB"}))
		Expect(result.Request.Allocation).To(Equal(portfolio.Allocation{"AAA": 0.5, "BBB": 0.5}))
		Expect(result.Excluded).To(BeEmpty())

		// 1000 * 1.1 -> +100 on Feb 1 -> * 1.1
		Expect(result.Portfolio.Vals[0]).To(HaveLen(3))
		Expect(result.Portfolio.Vals[0][0]).To(BeNumerically("~", 1100, 1e-9))
		Expect(result.Portfolio.Vals[0][1]).To(BeNumerically("~", 1200, 1e-9))
		Expect(result.Portfolio.Vals[0][2]).To(BeNumerically("~", 1320, 1e-9))
		Expect(result.PortfolioRelative.Vals[0][2]).To(BeNumerically("~", 32, 1e-9))
		Expect(result.PortfolioSummary.TotalDeposited).To(Equal(1100.0))

		Expect(result.Benchmark.Vals[0][0]).To(BeNumerically("~", 1000, 1e-9))
		Expect(result.Benchmark.Vals[0][1]).To(BeNumerically("~", 1045, 1e-9))
		Expect(result.Benchmark.Vals[0][2]).To(BeNumerically("~", 1045, 1e-9))
		Expect(result.BenchmarkRelative.Vals[0][1]).To(BeNumerically("~", 4.5, 1e-9))
		Expect(result.BenchmarkSummary.Contributions).To(Equal(1))
	})

	It("skips the benchmark when none is requested", func() {
		req.Benchmark = ""
		result, err := portfolio.Run(ctx, manager, req)
		Expect(err).To(BeNil())
		Expect(result.Benchmark).To(BeNil())
		Expect(result.BenchmarkSummary).To(BeNil())
	})

	It("uses an explicit allocation", func() {
		req.Allocation = portfolio.Allocation{"aaa": 1.0}
		result, err := portfolio.Run(ctx, manager, req)
		Expect(err).To(BeNil())
		Expect(result.Request.Allocation).To(Equal(portfolio.Allocation{"AAA": 1.0}))
	})

	It("reports dates dropped for misaligned assets", func() {
		provider.prices["BBB"] = returnsFrame([]time.Time{day(2021, 1, 28), day(2021, 2, 1), day(2021, 2, 2)}, []string{"BBB"},
			[]float64{20, 22, 24.2})
		result, err := portfolio.Run(ctx, manager, req)
		Expect(err).To(BeNil())
		Expect(result.Excluded).To(Equal([]time.Time{day(2021, 1, 29), day(2021, 2, 1)}))
		Expect(result.Portfolio.Len()).To(Equal(1))

		req.Alignment = portfolio.AlignStrict
		_, err = portfolio.Run(ctx, manager, req)
		Expect(err).To(MatchError(portfolio.ErrMisalignedData))
	})

	It("aborts when any price series is unavailable", func() {
		req.Assets = append(req.Assets, "MISSING")
		result, err := portfolio.Run(ctx, manager, req)
		Expect(result).To(BeNil())
		Expect(err).To(MatchError(data.ErrDataUnavailable))
	})

	DescribeTable("rejects invalid requests before downloading",
		func(modify func(*portfolio.Request), expected error) {
			modify(&req)
			_, err := portfolio.Run(ctx, data.NewManager(&staticProvider{}), req)
			Expect(err).To(MatchError(expected))
		},
		Entry("empty assets", func(r *portfolio.Request) { r.Assets = []string{" "} }, portfolio.ErrConfiguration),
		Entry("end before begin", func(r *portfolio.Request) { r.End = r.Begin.AddDate(0, 0, -1) }, portfolio.ErrInvalidParameter),
		Entry("zero initial investment", func(r *portfolio.Request) { r.Policy.InitialInvestment = 0 }, portfolio.ErrInvalidParameter),
		Entry("negative contribution", func(r *portfolio.Request) { r.Policy.MonthlyContribution = -1 }, portfolio.ErrInvalidParameter),
		Entry("allocation outside assets", func(r *portfolio.Request) { r.Allocation = portfolio.Allocation{"ZZZ": 1} }, portfolio.ErrConfiguration),
		Entry("weights not summing to one", func(r *portfolio.Request) { r.Allocation = portfolio.Allocation{"AAA": 0.5} }, portfolio.ErrConfiguration),
	)
})
