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
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/data"
)

var _ = Describe("Tiingo", func() {
	var (
		ctx    context.Context
		tiingo *data.Tiingo
		tz     *time.Location
	)

	BeforeEach(func() {
		httpmock.Activate()
		ctx = context.Background()
		tiingo = data.NewTiingo("test-token", "")
		tz = common.GetTimezone()
	})

	AfterEach(func() {
		httpmock.DeactivateAndReset()
	})

	Context("when tiingo returns csv data", func() {
		BeforeEach(func() {
			body, err := os.ReadFile("testdata/tiingo_spy.csv")
			Expect(err).To(BeNil())
			httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/SPY/prices",
				httpmock.NewBytesResponder(200, body))
		})

		It("parses the adjusted close column", func() {
			df, err := tiingo.GetPrices(ctx, "SPY", time.Date(2021, 1, 4, 0, 0, 0, 0, tz), time.Date(2021, 1, 7, 0, 0, 0, 0, tz))
			Expect(err).To(BeNil())
			Expect(df.ColNames).To(Equal([]string{"SPY"}))
			Expect(df.Len()).To(Equal(4))
			Expect(df.Vals[0]).To(Equal([]float64{358.011, 360.477, 362.632, 368.020}))
		})

		It("places each price at market close in the configured timezone", func() {
			df, err := tiingo.GetPrices(ctx, "SPY", time.Date(2021, 1, 4, 0, 0, 0, 0, tz), time.Date(2021, 1, 7, 0, 0, 0, 0, tz))
			Expect(err).To(BeNil())
			Expect(df.Start()).To(Equal(time.Date(2021, 1, 4, 16, 0, 0, 0, tz)))
			Expect(df.End()).To(Equal(time.Date(2021, 1, 7, 16, 0, 0, 0, tz)))
		})

		It("sends the token and date range", func() {
			var query url.Values
			body, err := os.ReadFile("testdata/tiingo_spy.csv")
			Expect(err).To(BeNil())
			httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/SPY/prices",
				func(req *http.Request) (*http.Response, error) {
					query = req.URL.Query()
					return httpmock.NewBytesResponse(200, body), nil
				})

			_, err = tiingo.GetPrices(ctx, "SPY", time.Date(2021, 1, 4, 0, 0, 0, 0, tz), time.Date(2021, 1, 7, 0, 0, 0, 0, tz))
			Expect(err).To(BeNil())
			Expect(httpmock.GetTotalCallCount()).To(Equal(1))
			Expect(query.Get("token")).To(Equal("test-token"))
			Expect(query.Get("startDate")).To(Equal("2021-01-04"))
			Expect(query.Get("endDate")).To(Equal("2021-01-07"))
			Expect(query.Get("format")).To(Equal("csv"))
		})

		It("rejects an end date before the begin date", func() {
			_, err := tiingo.GetPrices(ctx, "SPY", time.Date(2021, 1, 7, 0, 0, 0, 0, tz), time.Date(2021, 1, 4, 0, 0, 0, 0, tz))
			Expect(err).To(MatchError(data.ErrInvalidTimeRange))
		})
	})

	Context("when tiingo fails", func() {
		It("returns ErrDataUnavailable on a 404", func() {
			httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/NOPE/prices",
				httpmock.NewStringResponder(http.StatusNotFound, "Error: Ticker 'NOPE' not found"))
			_, err := tiingo.GetPrices(ctx, "NOPE", time.Date(2021, 1, 4, 0, 0, 0, 0, tz), time.Date(2021, 1, 7, 0, 0, 0, 0, tz))
			Expect(err).To(MatchError(data.ErrDataUnavailable))
		})

		It("returns ErrDataUnavailable when no rows are returned", func() {
			httpmock.RegisterResponder("GET", "https://api.tiingo.com/tiingo/daily/SPY/prices",
				httpmock.NewStringResponder(200, "date,close,adjClose\n"))
			_, err := tiingo.GetPrices(ctx, "SPY", time.Date(2021, 1, 4, 0, 0, 0, 0, tz), time.Date(2021, 1, 7, 0, 0, 0, 0, tz))
			Expect(err).To(MatchError(data.ErrDataUnavailable))
		})
	})
})
