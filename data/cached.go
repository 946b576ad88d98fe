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

package data

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

// CachedProvider stores price histories returned by another provider in
// the common byte cache
type CachedProvider struct {
	provider Provider
}

type cachedSeries struct {
	Symbol string      `json:"symbol"`
	Dates  []time.Time `json:"dates"`
	Vals   []float64   `json:"vals"`
}

func NewCachedProvider(provider Provider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
	}
}

func (c *CachedProvider) DataType() string {
	return c.provider.DataType()
}

func (c *CachedProvider) GetPrices(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame, error) {
	begin, end, err := dayRange(begin, end)
	if err != nil {
		return nil, err
	}

	key := cacheKey(c.provider.DataType(), symbol, begin, end)
	subLog := log.With().Str("Symbol", symbol).Str("CacheKey", key).Logger()

	raw, err := common.CacheGet(ctx, key)
	switch {
	case err == nil:
		series := cachedSeries{}
		if err := json.Unmarshal(raw, &series); err == nil {
			subLog.Debug().Msg("cache hit")
			return &dataframe.DataFrame{
				Dates:    series.Dates,
				ColNames: []string{symbol},
				Vals:     [][]float64{series.Vals},
			}, nil
		}
		subLog.Warn().Err(err).Msg("could not decode cached prices; refreshing")
	case errors.Is(err, common.ErrCacheMiss):
		subLog.Debug().Msg("cache miss")
	default:
		subLog.Warn().Err(err).Msg("cache read failed")
	}

	df, err := c.provider.GetPrices(ctx, symbol, begin, end)
	if err != nil {
		return nil, err
	}

	series := cachedSeries{
		Symbol: symbol,
		Dates:  df.Dates,
		Vals:   df.Vals[0],
	}
	if raw, err := json.Marshal(series); err != nil {
		subLog.Warn().Err(err).Msg("could not encode prices for cache")
	} else if err := common.CacheSet(ctx, key, raw); err != nil {
		subLog.Warn().Err(err).Msg("cache write failed")
	}

	return df, nil
}

func cacheKey(provider, symbol string, begin, end time.Time) string {
	h := blake3.New()
	fmt.Fprintf(h, "%s:%s:%s:%s", provider, symbol, begin.Format(time.RFC3339), end.Format(time.RFC3339))
	return fmt.Sprintf("prices:%s", hex.EncodeToString(h.Sum(nil)))
}
