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
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/penny-vault/pv-growth/common"
	"github.com/penny-vault/pv-growth/dataframe"
	rdf "github.com/rocketlaunchr/dataframe-go"
	imports "github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"
)

// parseEodCSV reads an end-of-day CSV with a `date` column and a value
// column named valueCol. The result holds one column named symbol limited
// to [begin, end]; rows without a usable price are skipped.
func parseEodCSV(ctx context.Context, body []byte, symbol, valueCol string, begin, end time.Time) (*dataframe.DataFrame, error) {
	subLog := log.With().Str("Symbol", symbol).Str("Column", valueCol).Logger()

	if countRecords(body) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", ErrDataUnavailable, symbol)
	}

	tz := common.GetTimezone()

	floatConverter := imports.Converter{
		ConcreteType: float64(0),
		ConverterFunc: func(in interface{}) (interface{}, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(in.(string)), 64)
			if err != nil {
				return math.NaN(), nil
			}
			return v, nil
		},
	}

	res, err := imports.LoadFromCSV(ctx, bytes.NewReader(body), imports.CSVLoadOptions{
		DictateDataType: map[string]interface{}{
			"date": imports.Converter{
				ConcreteType: time.Time{},
				ConverterFunc: func(in interface{}) (interface{}, error) {
					str := strings.TrimSpace(in.(string))
					if len(str) > 10 {
						str = str[:10]
					}
					dt, err := time.ParseInLocation("2006-01-02", str, tz)
					if err != nil {
						return nil, err
					}
					return marketClose(dt.Year(), dt.Month(), dt.Day(), tz), nil
				},
			},
			valueCol: floatConverter,
		},
	})
	if err != nil {
		subLog.Error().Err(err).Msg("could not parse eod csv")
		return nil, err
	}

	dateIdx, err := res.NameToColumn("date")
	if err != nil {
		return nil, fmt.Errorf("%w: date", ErrMissingColumn)
	}
	valIdx, err := res.NameToColumn(valueCol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, valueCol)
	}

	return seriesToDataFrame(res.Series[dateIdx], res.Series[valIdx], symbol, begin, end), nil
}

func seriesToDataFrame(dateSeries, valSeries rdf.Series, symbol string, begin, end time.Time) *dataframe.DataFrame {
	nrows := dateSeries.NRows()
	df := &dataframe.DataFrame{
		Dates:    make([]time.Time, 0, nrows),
		ColNames: []string{symbol},
		Vals:     [][]float64{make([]float64, 0, nrows)},
	}

	skipped := 0
	var last time.Time
	for row := 0; row < nrows; row++ {
		var dt time.Time
		switch v := dateSeries.Value(row).(type) {
		case time.Time:
			dt = v
		case *time.Time:
			dt = *v
		default:
			skipped++
			continue
		}

		val, ok := valSeries.Value(row).(float64)
		if !ok || !usablePrice(val) {
			skipped++
			continue
		}

		if !last.IsZero() && !dt.After(last) {
			skipped++
			continue
		}

		df.Dates = append(df.Dates, dt)
		df.Vals[0] = append(df.Vals[0], val)
		last = dt
	}

	if skipped > 0 {
		log.Warn().Str("Symbol", symbol).Int("Skipped", skipped).Msg("skipped eod rows without a usable price")
	}

	return df.Trim(begin, end)
}

// usablePrice reports whether val can be used to compute a return
func usablePrice(val float64) bool {
	return val > 0 && !math.IsInf(val, 0)
}

// countRecords returns the number of non-blank lines after the header
func countRecords(body []byte) int {
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	cnt := 0
	for _, ll := range lines[1:] {
		if strings.TrimSpace(ll) != "" {
			cnt++
		}
	}
	return cnt
}
