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
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/data"
)

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		provider *fakeProvider
		manager  *data.Manager
		tz       *time.Location
		begin    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		tz = common.GetTimezone()
		begin = time.Date(2021, 1, 4, 16, 0, 0, 0, tz)
		provider = newFakeProvider()
		provider.series["VFINX"] = priceSeries("VFINX", begin, 100, 101, 102)
		provider.series["PRIDX"] = priceSeries("PRIDX", begin, 50, 51, 52)
		manager = data.NewManager(provider)
	})

	It("downloads every symbol", func() {
		res, err := manager.GetPrices(ctx, []string{"VFINX", "PRIDX"}, begin, begin.AddDate(0, 0, 2))
		Expect(err).To(BeNil())
		Expect(res.Keys()).To(Equal([]string{"PRIDX", "VFINX"}))
		Expect(res["VFINX"].Vals[0]).To(Equal([]float64{100, 101, 102}))
	})

	It("normalizes and de-duplicates symbols", func() {
		res, err := manager.GetPrices(ctx, []string{" vfinx", "VFINX", ""}, begin, begin.AddDate(0, 0, 2))
		Expect(err).To(BeNil())
		Expect(res).To(HaveLen(1))
		Expect(provider.callCount("VFINX")).To(Equal(1))
	})

	It("returns no partial result when any symbol fails", func() {
		res, err := manager.GetPrices(ctx, []string{"VFINX", "MISSING"}, begin, begin.AddDate(0, 0, 2))
		Expect(res).To(BeNil())
		Expect(err).To(MatchError(data.ErrDataUnavailable))
		Expect(err.Error()).To(ContainSubstring("MISSING"))
	})

	It("wraps provider failures as unavailable data", func() {
		cause := errors.New("connection refused")
		provider.fail["PRIDX"] = cause
		_, err := manager.GetPrices(ctx, []string{"VFINX", "PRIDX"}, begin, begin.AddDate(0, 0, 2))
		Expect(err).To(MatchError(data.ErrDataUnavailable))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("rejects an inverted range", func() {
		_, err := manager.GetPrices(ctx, []string{"VFINX"}, begin.AddDate(0, 0, 2), begin)
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
	})
})
