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

	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/data/database"
	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/penny-vault/pv-growth/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const eodQuery = "SELECT event_date, adj_close FROM eod WHERE ticker=$1 AND event_date BETWEEN $2 AND $3 ORDER BY event_date"

// PvDb reads adjusted close prices from the penny-vault `eod` table
type PvDb struct{}

func NewPvDb() *PvDb {
	return &PvDb{}
}

func (p *PvDb) DataType() string {
	return "pvdb"
}

func (p *PvDb) GetPrices(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "pvdb.GetPrices")
	defer span.End()

	begin, end, err := dayRange(begin, end)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("Symbol", symbol))
	subLog := log.With().Str("Symbol", symbol).Time("Begin", begin).Time("End", end).Logger()

	trx, err := database.Trx(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not start transaction")
		subLog.Error().Stack().Err(err).Msg("could not get transaction")
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, symbol, err)
	}

	rows, err := trx.Query(ctx, eodQuery, symbol, begin, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "eod query failed")
		subLog.Error().Stack().Err(err).Str("Query", eodQuery).Msg("eod query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, symbol, err)
	}

	tz := common.GetTimezone()
	df := &dataframe.DataFrame{
		Dates:    make([]time.Time, 0, 252),
		ColNames: []string{symbol},
		Vals:     [][]float64{make([]float64, 0, 252)},
	}

	skipped := 0
	for rows.Next() {
		var dt time.Time
		var val float64
		if err := rows.Scan(&dt, &val); err != nil {
			rows.Close()
			subLog.Error().Stack().Err(err).Msg("could not scan eod row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
		if !usablePrice(val) {
			skipped++
			continue
		}
		df.Dates = append(df.Dates, marketClose(dt.Year(), dt.Month(), dt.Day(), tz))
		df.Vals[0] = append(df.Vals[0], val)
	}
	rows.Close()

	if skipped > 0 {
		subLog.Warn().Int("Skipped", skipped).Msg("skipped eod rows without a usable price")
	}

	if err := rows.Err(); err != nil {
		subLog.Error().Stack().Err(err).Msg("error reading eod rows")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
		return nil, err
	}

	if df.Len() == 0 {
		span.SetStatus(codes.Error, "no results returned")
		subLog.Warn().Msg("no eod rows for symbol")
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}

	return df, nil
}
