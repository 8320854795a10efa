// Copyright 2025-2026
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package allocation

import (
	"time"

	"github.com/regime-lab/regimelab/regime"
	"github.com/rs/zerolog/log"
)

// Schedule is a date-indexed series of target weight vectors, one row per
// trading day. Weights[t] is the allocation held during period t.
type Schedule struct {
	Dates       []time.Time
	Assets      []string
	Weights     [][]float64
	RuleVersion string
	Lag         int
}

// Len returns the number of scheduled periods
func (s *Schedule) Len() int {
	return len(s.Dates)
}

// BuildSchedule translates a regime label sequence into lagged target
// weights. The allocation applied at period t is the rule entry for the label
// observed at t-lag; the first lag periods have no usable signal and receive
// the rule's fallback weights. This shift is what keeps the backtest free of
// lookahead: a label can only influence allocations strictly after it was
// observed.
func BuildSchedule(seq *regime.Sequence, rule *Rule, lag int) (*Schedule, error) {
	if lag < 0 {
		return nil, ErrNegativeLag
	}
	if lag > 0 && rule.Fallback == nil {
		return nil, ErrNoFallback
	}
	if err := rule.Validate(seq.Distinct()); err != nil {
		return nil, err
	}

	n := seq.Len()
	weights := make([][]float64, n)
	for t := 0; t < n; t++ {
		var src []float64
		if t < lag {
			src = rule.Fallback
		} else {
			src = rule.Weights[seq.Labels[t-lag]]
		}

		// copy so later rule mutation cannot change a built schedule
		row := make([]float64, len(src))
		copy(row, src)
		weights[t] = row
	}

	dates := make([]time.Time, n)
	copy(dates, seq.Dates)

	log.Debug().Int("Lag", lag).Int("Periods", n).Str("RuleVersion", rule.Version).Msg("built allocation schedule")

	return &Schedule{
		Dates:       dates,
		Assets:      rule.Assets,
		Weights:     weights,
		RuleVersion: rule.Version,
		Lag:         lag,
	}, nil
}

// ConstantSchedule holds a single weight vector for every period; used for
// equal-weight and buy-and-hold benchmark portfolios
func ConstantSchedule(dates []time.Time, assets []string, weights []float64) (*Schedule, error) {
	if err := checkWeightVector(weights, len(assets)); err != nil {
		return nil, err
	}

	rows := make([][]float64, len(dates))
	for t := range rows {
		row := make([]float64, len(weights))
		copy(row, weights)
		rows[t] = row
	}

	datesCopy := make([]time.Time, len(dates))
	copy(datesCopy, dates)

	return &Schedule{
		Dates:       datesCopy,
		Assets:      assets,
		Weights:     rows,
		RuleVersion: "constant",
		Lag:         0,
	}, nil
}
