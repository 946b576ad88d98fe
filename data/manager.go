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
	"errors"
	"fmt"
	"time"

	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/penny-vault/pv-growth/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Manager fetches the price histories of several symbols concurrently
type Manager struct {
	provider Provider
}

type quoteResult struct {
	Symbol string
	Data   *dataframe.DataFrame
	Err    error
}

func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
	}
}

// Provider returns the underlying provider
func (m *Manager) Provider() Provider {
	return m.provider
}

// GetPrices downloads every symbol and returns them keyed by normalized
// symbol. Either all symbols succeed or an error joining every failure is
// returned.
func (m *Manager) GetPrices(ctx context.Context, symbols []string, begin, end time.Time) (dataframe.Map, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "manager.GetPrices")
	defer span.End()

	subLog := log.With().Strs("Symbols", symbols).Time("Begin", begin).Time("End", end).Logger()

	if _, _, err := dayRange(begin, end); err != nil {
		return nil, err
	}

	uniq := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		symbol = NormalizeSymbol(symbol)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		uniq = append(uniq, symbol)
	}

	ch := make(chan quoteResult, len(uniq))
	for _, symbol := range uniq {
		go m.downloadWorker(ctx, ch, symbol, begin, end)
	}

	results := make(map[string]quoteResult, len(uniq))
	for range uniq {
		v := <-ch
		results[v.Symbol] = v
	}

	res := make(dataframe.Map, len(uniq))
	errs := make([]error, 0)
	for _, symbol := range uniq {
		v := results[symbol]
		if v.Err != nil {
			subLog.Warn().Err(v.Err).Str("Symbol", symbol).Msg("cannot download symbol data")
			if errors.Is(v.Err, ErrDataUnavailable) {
				errs = append(errs, v.Err)
			} else {
				errs = append(errs, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, symbol, v.Err))
			}
			continue
		}
		res[symbol] = v.Data
	}

	if len(errs) != 0 {
		err := errors.Join(errs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		return nil, err
	}

	return res, nil
}

func (m *Manager) downloadWorker(ctx context.Context, result chan<- quoteResult, symbol string, begin, end time.Time) {
	df, err := m.provider.GetPrices(ctx, symbol, begin, end)
	result <- quoteResult{
		Symbol: symbol,
		Data:   df,
		Err:    err,
	}
}
