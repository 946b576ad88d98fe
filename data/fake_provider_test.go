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
	"fmt"
	"sync"
	"time"

	"github.com/penny-vault/pv-growth/data"
	"github.com/penny-vault/pv-growth/dataframe"
)

// fakeProvider serves fixed series and counts calls per symbol
type fakeProvider struct {
	series map[string]*dataframe.DataFrame
	fail   map[string]error
	calls  map[string]int
	lock   sync.Mutex
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		series: make(map[string]*dataframe.DataFrame),
		fail:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeProvider) DataType() string {
	return "fake"
}

func (f *fakeProvider) GetPrices(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	f.calls[symbol]++
	if err, ok := f.fail[symbol]; ok {
		return nil, err
	}
	df, ok := f.series[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", data.ErrDataUnavailable, symbol)
	}
	return df.Trim(begin, end), nil
}

func (f *fakeProvider) callCount(symbol string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls[symbol]
}

func priceSeries(symbol string, start time.Time, vals ...float64) *dataframe.DataFrame {
	df := &dataframe.DataFrame{
		ColNames: []string{symbol},
	}
	for idx, val := range vals {
		df.InsertRow(start.AddDate(0, 0, idx), val)
	}
	return df
}
