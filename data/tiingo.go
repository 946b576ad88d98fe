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
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/penny-vault/pv-growth/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultTiingoURL is the base URL of the tiingo REST api
const DefaultTiingoURL = "https://api.tiingo.com"

// Tiingo downloads adjusted close prices from tiingo's end-of-day endpoint
type Tiingo struct {
	apikey  string
	baseURL string
	client  *http.Client
}

// NewTiingo Create a new Tiingo data provider
func NewTiingo(key string, baseURL string) *Tiingo {
	if baseURL == "" {
		baseURL = DefaultTiingoURL
	}
	return &Tiingo{
		apikey:  key,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (t *Tiingo) DataType() string {
	return "tiingo"
}

func (t *Tiingo) GetPrices(ctx context.Context, symbol string, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "tiingo.GetPrices")
	defer span.End()

	begin, end, err := dayRange(begin, end)
	if err != nil {
		return nil, err
	}

	subLog := log.With().Str("Symbol", symbol).Time("Begin", begin).Time("End", end).Logger()

	endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices", t.baseURL, url.PathEscape(symbol))
	query := url.Values{}
	query.Set("startDate", begin.Format("2006-01-02"))
	query.Set("endDate", end.Format("2006-01-02"))
	query.Set("format", "csv")
	query.Set("resampleFreq", "daily")

	span.SetAttributes(
		attribute.String("Url", fmt.Sprintf("%s?%s", endpoint, query.Encode())),
		attribute.String("Symbol", symbol),
	)

	query.Set("token", t.apikey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", endpoint, query.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		span.RecordError(err)
		msg := "tiingo http request failed"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		msg := "could not read tiingo body"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Err(err).Msg(msg)
		return nil, err
	}

	if resp.StatusCode >= 400 {
		span.SetAttributes(attribute.Int("StatusCode", resp.StatusCode))
		msg := "tiingo returned invalid response code"
		span.SetStatus(codes.Error, msg)
		subLog.Error().Int("HTTPResponseStatusCode", resp.StatusCode).Bytes("Body", body).Msg(msg)
		return nil, fmt.Errorf("%w: %s: HTTP request returned invalid status code: %d", ErrDataUnavailable, symbol, resp.StatusCode)
	}

	df, err := parseEodCSV(ctx, body, symbol, "adjClose", begin, end)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not parse tiingo response")
		return nil, err
	}

	if df.Len() == 0 {
		span.SetStatus(codes.Error, "no results returned")
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}

	subLog.Debug().Int("Rows", df.Len()).Msg("loaded prices from tiingo")
	return df, nil
}
