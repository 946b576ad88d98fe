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

package pgxmockhelper

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pashagolub/pgxmock"
	"github.com/rs/zerolog/log"
)

// CSVRows holds fixture rows read from a CSV file so they can be served by pgxmock
type CSVRows struct {
	rows    [][]any
	header  []string
	dateCol int
}

// NewCSVRows reads csvFn and converts columns listed in typeMap ("date" or
// "float64"); all other columns are passed through as strings
func NewCSVRows(csvFn string, typeMap map[string]string) *CSVRows {
	subLog := log.With().Str("CsvFn", csvFn).Logger()

	rows := &CSVRows{
		dateCol: -1,
		rows:    make([][]any, 0),
	}
	rawData, err := os.ReadFile(csvFn)
	if err != nil {
		subLog.Panic().Err(err).Msg("could not read file")
	}

	lines := strings.Split(strings.TrimRight(string(rawData), "\n"), "\n")
	if len(lines) < 1 || lines[0] == "" {
		subLog.Panic().Msg("input file must have a header")
	}

	rows.header = strings.Split(lines[0], ",")
	for _, ll := range lines[1:] {
		parts := strings.Split(ll, ",")
		if len(parts) != len(rows.header) {
			subLog.Panic().Str("Line", ll).Int("NumCols", len(rows.header)).Msg("line does not match header")
		}

		cols := make([]any, len(rows.header))
		for idx, val := range parts {
			switch typeMap[rows.header[idx]] {
			case "date":
				parsed, err := time.Parse("2006-01-02", val)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to datetime of format 2006-01-02")
				}
				cols[idx] = parsed
				rows.dateCol = idx
			case "float64":
				parsed, err := strconv.ParseFloat(val, 64)
				if err != nil {
					subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to float64")
				}
				cols[idx] = parsed
			default:
				cols[idx] = val
			}
		}
		rows.rows = append(rows.rows, cols)
	}

	return rows
}

// Between keeps rows whose date column falls in [a, b]
func (csvRows *CSVRows) Between(a time.Time, b time.Time) *CSVRows {
	if len(csvRows.rows) == 0 {
		return csvRows
	}
	if csvRows.dateCol == -1 {
		log.Panic().Time("a", a).Time("b", b).Msg("no date column found")
	}

	newRows := make([][]any, 0, len(csvRows.rows))
	for _, row := range csvRows.rows {
		t := row[csvRows.dateCol].(time.Time)
		if !t.Before(a) && !t.After(b) {
			newRows = append(newRows, row)
		}
	}
	csvRows.rows = newRows
	return csvRows
}

// Where keeps rows whose column `colName` equals val
func (csvRows *CSVRows) Where(colName string, val any) *CSVRows {
	colIdx := -1
	for idx, name := range csvRows.header {
		if name == colName {
			colIdx = idx
		}
	}
	if colIdx == -1 {
		log.Panic().Str("Column", colName).Msg("column not in header")
	}

	newRows := make([][]any, 0, len(csvRows.rows))
	for _, row := range csvRows.rows {
		if row[colIdx] == val {
			newRows = append(newRows, row)
		}
	}
	csvRows.rows = newRows
	return csvRows
}

// Columns restricts the rows to the named columns, in order
func (csvRows *CSVRows) Columns(names ...string) *CSVRows {
	idxs := make([]int, len(names))
	for ii, name := range names {
		idxs[ii] = -1
		for idx, col := range csvRows.header {
			if col == name {
				idxs[ii] = idx
			}
		}
		if idxs[ii] == -1 {
			log.Panic().Str("Column", name).Msg("column not in header")
		}
	}

	newRows := make([][]any, len(csvRows.rows))
	for rowIdx, row := range csvRows.rows {
		newRows[rowIdx] = make([]any, len(idxs))
		for ii, idx := range idxs {
			newRows[rowIdx][ii] = row[idx]
		}
	}

	csvRows.dateCol = -1
	for ii, idx := range idxs {
		if idx == csvRows.dateCol {
			csvRows.dateCol = ii
		}
	}

	csvRows.header = names
	csvRows.rows = newRows
	return csvRows
}

// Rows converts the fixture to pgxmock rows
func (csvRows *CSVRows) Rows() *pgxmock.Rows {
	r := pgxmock.NewRows(csvRows.header)
	for _, row := range csvRows.rows {
		r.AddRow(row...)
	}
	return r
}

// MockEodQuery registers a transaction that returns `ticker`'s adjusted close
// prices between a and b from the eod fixture in fn
func MockEodQuery(db pgxmock.PgxConnIface, fn string, ticker string, a, b time.Time) {
	db.ExpectBegin()
	db.ExpectQuery("SELECT event_date, adj_close FROM eod").WillReturnRows(
		NewCSVRows(fn, map[string]string{
			"event_date": "date",
			"adj_close":  "float64",
		}).Where("ticker", ticker).Between(a, b).Columns("event_date", "adj_close").Rows())
	db.ExpectCommit()
}
