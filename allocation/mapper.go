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
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/regime-lab/regimelab/dataframe"
	"github.com/regime-lab/regimelab/regime"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SelectMethod chooses how conditional performance is turned into weights
type SelectMethod string

const (
	// SelectBest assigns full weight to the single best-performing asset
	// for each regime
	SelectBest SelectMethod = "best"

	// SelectProportional assigns weight proportional to each asset's
	// positive conditional mean return
	SelectProportional SelectMethod = "proportional"
)

// ConditionalReturns holds each asset's historical mean return conditional on
// regime
type ConditionalReturns struct {
	Assets []string
	Labels []regime.Label
	Mean   map[regime.Label][]float64
}

// Compute groups realized returns by regime label and takes the per-asset
// mean within each group. Returns and sequence must share an identical index.
func Compute(returns *dataframe.DataFrame, seq *regime.Sequence) (*ConditionalReturns, error) {
	if returns.Len() < 2 {
		return nil, dataframe.ErrInsufficientData
	}
	if err := seq.AlignTo(returns.Dates); err != nil {
		return nil, err
	}

	byLabel := make(map[regime.Label][]int, 8)
	for idx, label := range seq.Labels {
		byLabel[label] = append(byLabel[label], idx)
	}

	cond := &ConditionalReturns{
		Assets: returns.ColNames,
		Labels: seq.Distinct(),
		Mean:   make(map[regime.Label][]float64, len(byLabel)),
	}

	for label, rows := range byLabel {
		means := make([]float64, returns.ColCount())
		for colIdx := range returns.ColNames {
			vals := make([]float64, 0, len(rows))
			for _, rowIdx := range rows {
				vals = append(vals, returns.Vals[colIdx][rowIdx])
			}
			means[colIdx] = stat.Mean(vals, nil)
		}
		cond.Mean[label] = means
	}

	return cond, nil
}

// Table renders conditional mean returns in basis points per period
func (cond *ConditionalReturns) Table() string {
	header := append([]string{"Regime"}, cond.Assets...)

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(header)
	table.SetBorder(false)

	for _, label := range cond.Labels {
		row := make([]string, 0, len(cond.Assets)+1)
		row = append(row, string(label))
		for _, mean := range cond.Mean[label] {
			row = append(row, fmt.Sprintf("%.2f bps", mean*10000))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}

// bestAsset returns the index of the highest conditional mean. MaxIdx takes
// the first maximum, so ties break to the lowest column index and rule
// fitting is reproducible.
func bestAsset(means []float64) int {
	return floats.MaxIdx(means)
}

// FitRule derives a target weight vector per regime from conditional asset
// performance. The resulting table covers every label observed in seq and
// carries an equal-weight fallback for the pre-signal warmup; callers may
// override the fallback before building a schedule.
func FitRule(returns *dataframe.DataFrame, seq *regime.Sequence, method SelectMethod, version string) (*Rule, error) {
	cond, err := Compute(returns, seq)
	if err != nil {
		return nil, err
	}

	if version == "" {
		version = "v1"
	}

	rule := &Rule{
		Version:  version,
		Assets:   cond.Assets,
		Weights:  make(map[regime.Label][]float64, len(cond.Labels)),
		Fallback: EqualWeights(len(cond.Assets)),
	}

	for _, label := range cond.Labels {
		means := cond.Mean[label]
		weights := make([]float64, len(cond.Assets))

		switch method {
		case SelectProportional:
			sum := 0.0
			for _, m := range means {
				if m > 0 {
					sum += m
				}
			}
			if sum > 0 {
				for idx, m := range means {
					if m > 0 {
						weights[idx] = m / sum
					}
				}
			} else {
				// no asset has a positive conditional mean; hold the
				// least-bad asset rather than go unallocated
				weights[bestAsset(means)] = 1.0
			}
		case SelectBest:
			weights[bestAsset(means)] = 1.0
		default:
			return nil, fmt.Errorf("unknown selection method %q", method)
		}

		rule.Weights[label] = weights
	}

	log.Debug().Str("Version", rule.Version).Str("Method", string(method)).Int("NumRegimes", len(rule.Weights)).Msg("fit allocation rule")
	return rule, nil
}
