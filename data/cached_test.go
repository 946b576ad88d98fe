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

package data_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/data"
)

var _ = Describe("CachedProvider", func() {
	var (
		ctx      context.Context
		provider *fakeProvider
		cached   *data.CachedProvider
		tz       *time.Location
		begin    time.Time
	)

	BeforeEach(func() {
		viper.Set("cache.local_size", 16)
		viper.Set("cache.redis", false)
		Expect(common.SetupCache()).To(Succeed())

		ctx = context.Background()
		tz = common.GetTimezone()
		begin = time.Date(2021, 1, 4, 16, 0, 0, 0, tz)
		provider = newFakeProvider()
		provider.series["VFINX"] = priceSeries("VFINX", begin, 100, 101.5, 99.25)
		cached = data.NewCachedProvider(provider)
	})

	It("reports the wrapped provider's type", func() {
		Expect(cached.DataType()).To(Equal("fake"))
	})

	It("serves repeated requests from the cache", func() {
		first, err := cached.GetPrices(ctx, "VFINX", begin, begin.AddDate(0, 0, 2))
		Expect(err).To(BeNil())
		second, err := cached.GetPrices(ctx, "VFINX", begin, begin.AddDate(0, 0, 2))
		Expect(err).To(BeNil())

		Expect(provider.callCount("VFINX")).To(Equal(1))
		Expect(second.Vals).To(Equal(first.Vals))
		Expect(second.ColNames).To(Equal([]string{"VFINX"}))
		Expect(second.Dates).To(HaveLen(3))
		for idx := range first.Dates {
			Expect(second.Dates[idx].Equal(first.Dates[idx])).To(BeTrue())
		}
	})

	It("keys entries by date range", func() {
		_, err := cached.GetPrices(ctx, "VFINX", begin, begin.AddDate(0, 0, 2))
		Expect(err).To(BeNil())
		df, err := cached.GetPrices(ctx, "VFINX", begin, begin.AddDate(0, 0, 1))
		Expect(err).To(BeNil())
		Expect(df.Len()).To(Equal(2))
		Expect(provider.callCount("VFINX")).To(Equal(2))
	})

	It("does not cache failures", func() {
		_, err := cached.GetPrices(ctx, "MISSING", begin, begin)
		Expect(err).To(MatchError(data.ErrDataUnavailable))
		_, err = cached.GetPrices(ctx, "MISSING", begin, begin)
		Expect(err).To(MatchError(data.ErrDataUnavailable))
		Expect(provider.callCount("MISSING")).To(Equal(2))
	})
})

var _ = Describe("NewProviderFromConfig", func() {
	AfterEach(func() {
		viper.Set("data.provider", "")
		viper.Set("cache.enabled", false)
	})

	DescribeTable("selects the provider",
		func(name string, cacheEnabled bool, expected interface{}) {
			viper.Set("data.provider", name)
			viper.Set("data.csv_dir", "testdata/csv")
			viper.Set("cache.enabled", cacheEnabled)
			provider, err := data.NewProviderFromConfig(context.Background())
			Expect(err).To(BeNil())
			Expect(provider).To(BeAssignableToTypeOf(expected))
		},
		Entry("tiingo by default", "", false, &data.Tiingo{}),
		Entry("csv directory", "csv", false, &data.CSVDir{}),
		Entry("cached csv directory", "csv", true, &data.CachedProvider{}),
	)

	It("rejects unknown providers", func() {
		viper.Set("data.provider", "bloomberg")
		_, err := data.NewProviderFromConfig(context.Background())
		Expect(err).To(MatchError(data.ErrUnknownProvider))
	})
})
