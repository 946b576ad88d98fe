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
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/rs/zerolog/log"
)

// CSVDir reads `{SYMBOL}.csv` files with `date,adjClose` columns from a
// local directory
type CSVDir struct {
	dir string
}

func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{
		dir: dir,
	}
}

func (c *CSVDir) DataType() string {
	return "csv"
}

func (c *CSVDir) GetPrices(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame, error) {
	begin, end, err := dayRange(begin, end)
	if err != nil {
		return nil, err
	}

	fn := filepath.Join(c.dir, fmt.Sprintf("%s.csv", symbol))
	subLog := log.With().Str("Symbol", symbol).Str("FileName", fn).Logger()

	body, err := os.ReadFile(fn)
	if errors.Is(err, fs.ErrNotExist) {
		subLog.Warn().Msg("no price file for symbol")
		return nil, fmt.Errorf("%w: %s: no file %s", ErrDataUnavailable, symbol, fn)
	}
	if err != nil {
		subLog.Error().Err(err).Msg("could not read price file")
		return nil, err
	}

	df, err := parseEodCSV(ctx, body, symbol, "adjClose", begin, end)
	if err != nil {
		return nil, err
	}

	if df.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}

	return df, nil
}
