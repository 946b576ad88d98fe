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

package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pv-growth/data"
	"github.com/penny-vault/pv-growth/dataframe"
	"github.com/penny-vault/pv-growth/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Request holds every input of a simulation run
type Request struct {
	Assets []string

	// Allocation defaults to equal weights across Assets when nil
	Allocation Allocation

	// Benchmark is simulated with the same policy; empty skips the benchmark
	Benchmark string

	// Begin and End name an inclusive range of calendar days. Only their
	// year, month and day are used; the clock time and location are ignored
	// and prices are looked up in the configured market timezone.
	Begin time.Time
	End   time.Time

	Policy    ContributionPolicy
	Alignment AlignmentPolicy
}

// Result is the output of a simulation run
type Result struct {
	RunID   uuid.UUID
	Request Request

	Portfolio         *dataframe.DataFrame
	PortfolioRelative *dataframe.DataFrame
	PortfolioSummary  *Summary

	Benchmark         *dataframe.DataFrame
	BenchmarkRelative *dataframe.DataFrame
	BenchmarkSummary  *Summary

	// Excluded lists portfolio return dates dropped because some asset
	// was missing a price
	Excluded []time.Time
}

// Run simulates req with the default simulator
func Run(ctx context.Context, manager *data.Manager, req Request) (*Result, error) {
	return NewSimulator().Run(ctx, manager, req)
}

// Run downloads prices for the request's assets and benchmark, simulates
// both under the request's contribution policy and computes their relative
// performance and summaries. No partial result is returned on error.
func (s *Simulator) Run(ctx context.Context, manager *data.Manager, req Request) (*Result, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "portfolio.Run")
	defer span.End()

	req, err := s.normalize(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	result := &Result{
		RunID:   uuid.New(),
		Request: req,
	}

	span.SetAttributes(
		attribute.String("RunID", result.RunID.String()),
		attribute.StringSlice("Assets", req.Assets),
		attribute.String("Benchmark", req.Benchmark),
	)

	subLog := log.With().Str("RunID", result.RunID.String()).Logger()
	subLog.Info().Object("Request", &req).Msg("starting simulation")

	symbols := append([]string{}, req.Assets...)
	if req.Benchmark != "" {
		symbols = append(symbols, req.Benchmark)
	}

	prices, err := manager.GetPrices(ctx, symbols, req.Begin, req.End)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "price download failed")
		subLog.Error().Err(err).Msg("could not download prices")
		return nil, err
	}

	assetPrices := make(dataframe.Map, len(req.Assets))
	for _, asset := range req.Assets {
		assetPrices[asset] = prices[asset]
	}

	returns, excluded, err := ExtractReturns(assetPrices, req.Alignment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not extract returns")
		return nil, err
	}
	result.Excluded = excluded

	result.Portfolio, result.PortfolioRelative, result.PortfolioSummary, err = s.simulateSeries(returns, req.Allocation, req.Policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "portfolio simulation failed")
		return nil, err
	}

	if req.Benchmark != "" {
		benchReturns, _, err := ExtractReturns(dataframe.Map{req.Benchmark: prices[req.Benchmark]}, AlignDrop)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "could not extract benchmark returns")
			return nil, err
		}

		result.Benchmark, result.BenchmarkRelative, result.BenchmarkSummary, err = s.simulateSeries(benchReturns, Allocation{req.Benchmark: 1.0}, req.Policy)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "benchmark simulation failed")
			return nil, err
		}
		subLog.Info().Object("Summary", result.BenchmarkSummary).Str("Benchmark", req.Benchmark).Msg("benchmark simulated")
	}

	subLog.Info().Object("Summary", result.PortfolioSummary).Int("ExcludedDates", len(excluded)).Msg("portfolio simulated")

	return result, nil
}

func (s *Simulator) simulateSeries(returns *dataframe.DataFrame, allocation Allocation, policy ContributionPolicy) (values, relative *dataframe.DataFrame, summary *Summary, err error) {
	blended, err := s.BlendedReturns(returns, allocation)
	if err != nil {
		return
	}

	if values, err = s.Simulate(returns, allocation, policy); err != nil {
		return
	}

	if relative, err = RelativePerformance(values, policy.InitialInvestment); err != nil {
		return
	}

	summary, err = Summarize(values, blended, policy)
	return
}

// normalize validates req and fills in defaults. Validation happens before
// any price is downloaded.
func (s *Simulator) normalize(req Request) (Request, error) {
	assets := make([]string, 0, len(req.Assets))
	seen := make(map[string]bool, len(req.Assets))
	for _, asset := range req.Assets {
		asset = data.NormalizeSymbol(asset)
		if asset == "" || seen[asset] {
			continue
		}
		seen[asset] = true
		assets = append(assets, asset)
	}
	if len(assets) == 0 {
		return req, fmt.Errorf("%w: empty asset list", ErrConfiguration)
	}
	req.Assets = assets
	req.Benchmark = data.NormalizeSymbol(req.Benchmark)

	if req.End.Before(req.Begin) {
		return req, fmt.Errorf("%w: end %s is before begin %s", ErrInvalidParameter, req.End.Format("2006-01-02"), req.Begin.Format("2006-01-02"))
	}

	if err := req.Policy.Validate(); err != nil {
		return req, err
	}
	if !(req.Policy.InitialInvestment > 0) {
		return req, fmt.Errorf("%w: initial investment must be > 0 to compute relative performance", ErrInvalidParameter)
	}

	if req.Allocation == nil {
		alloc, err := EqualWeight(assets...)
		if err != nil {
			return req, err
		}
		req.Allocation = alloc
	} else {
		alloc := make(Allocation, len(req.Allocation))
		for asset, weight := range req.Allocation {
			alloc[data.NormalizeSymbol(asset)] += weight
		}
		for asset := range alloc {
			if !seen[asset] {
				return req, fmt.Errorf("%w: allocation references %s which is not in the asset list", ErrConfiguration, asset)
			}
		}
		req.Allocation = alloc
	}

	if err := req.Allocation.Validate(s.WeightTolerance); err != nil {
		return req, err
	}

	return req, nil
}
