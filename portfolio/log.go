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
	"github.com/rs/zerolog"
)

func (o *DrawDown) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", o.Begin).Time("End", o.End).Time("RecoveryDate", o.Recovery).Float64("LossPercent", o.LossPercent)
}

func (summary *Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Time("Begin", summary.Begin)
	e.Time("End", summary.End)
	e.Float64("FinalBalance", summary.FinalBalance)
	e.Float64("TotalDeposited", summary.TotalDeposited)
	e.Int("Contributions", summary.Contributions)
	e.Float64("NetProfit", summary.NetProfit)
	e.Float64("NetProfitPercent", summary.NetProfitPercent)
	e.Float64("TWRR", summary.TWRR)
	e.Float64("StdDev", summary.StdDev)
	if summary.MaxDrawDown != nil {
		e.Object("MaxDrawDown", summary.MaxDrawDown)
	}
}

func (policy ContributionPolicy) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("InitialInvestment", policy.InitialInvestment)
	e.Float64("MonthlyContribution", policy.MonthlyContribution)
	e.Stringer("Schedule", policy.Schedule)
}

func (req *Request) MarshalZerologObject(e *zerolog.Event) {
	e.Strs("Assets", req.Assets)
	if req.Allocation != nil {
		e.Stringer("Allocation", req.Allocation)
	}
	e.Str("Benchmark", req.Benchmark)
	e.Time("Begin", req.Begin)
	e.Time("End", req.End)
	e.Object("Policy", req.Policy)
	e.Stringer("Alignment", req.Alignment)
}
