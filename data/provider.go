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
	"fmt"
	"time"

	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/penny-vault/pv-growth/data/database"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Provider returns the adjusted close price history of a single symbol.
// The returned dataframe has one column named after the symbol with
// strictly increasing dates covering the calendar days [begin, end].
// Providers return ErrDataUnavailable when no rows exist.
type Provider interface {
	DataType() string
	GetPrices(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame, error)
}

// NewProviderFromConfig builds the provider named by `data.provider`
// (tiingo, pvdb or csv) and wraps it with a cache when `cache.enabled`
func NewProviderFromConfig(ctx context.Context) (Provider, error) {
	var provider Provider

	name := viper.GetString("data.provider")
	switch name {
	case "tiingo", "":
		provider = NewTiingo(viper.GetString("data.tiingo_token"), viper.GetString("data.tiingo_url"))
	case "pvdb":
		if err := database.Connect(ctx); err != nil {
			return nil, err
		}
		provider = NewPvDb()
	case "csv":
		provider = NewCSVDir(viper.GetString("data.csv_dir"))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	log.Debug().Str("Provider", provider.DataType()).Bool("Cache", viper.GetBool("cache.enabled")).Msg("configured data provider")

	if viper.GetBool("cache.enabled") {
		return NewCachedProvider(provider), nil
	}
	return provider, nil
}
