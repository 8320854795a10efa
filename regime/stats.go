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

package regime

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/regime-lab/regimelab/dataframe"
	"gonum.org/v1/gonum/stat"
)

// Stat holds descriptive statistics of the volatility indicator conditional
// on one regime
type Stat struct {
	Label Label
	Name  string
	Mean  float64
	Std   float64
	Count int
}

// Stats computes per-regime mean/std/count of the indicator and orders the
// result by ascending mean. For two- and three-state models the regimes are
// named Low/Medium/High Vol; other state counts keep their raw labels.
// The indicator frame must hold exactly one column aligned 1:1 with seq.
func Stats(seq *Sequence, indicator *dataframe.DataFrame) ([]*Stat, error) {
	if indicator.ColCount() != 1 {
		return nil, dataframe.ErrColumnNotFound
	}
	if err := seq.AlignTo(indicator.Dates); err != nil {
		return nil, err
	}

	byLabel := make(map[Label][]float64, 8)
	for idx, label := range seq.Labels {
		byLabel[label] = append(byLabel[label], indicator.Vals[0][idx])
	}

	stats := make([]*Stat, 0, len(byLabel))
	for label, vals := range byLabel {
		stats = append(stats, &Stat{
			Label: label,
			Mean:  stat.Mean(vals, nil),
			Std:   stat.StdDev(vals, nil),
			Count: len(vals),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Mean == stats[j].Mean {
			return stats[i].Label < stats[j].Label
		}
		return stats[i].Mean < stats[j].Mean
	})

	switch len(stats) {
	case 2:
		stats[0].Name = "Low Vol"
		stats[1].Name = "High Vol"
	case 3:
		stats[0].Name = "Low Vol"
		stats[1].Name = "Medium Vol"
		stats[2].Name = "High Vol"
	default:
		for _, s := range stats {
			s.Name = fmt.Sprintf("State %s", s.Label)
		}
	}

	return stats, nil
}

// StatsTable renders regime statistics as an ASCII table
func StatsTable(stats []*Stat) string {
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader([]string{"Regime", "Label", "Mean", "Std", "Count"})
	table.SetBorder(false)

	for _, st := range stats {
		table.Append([]string{
			st.Name,
			string(st.Label),
			fmt.Sprintf("%.4f", st.Mean),
			fmt.Sprintf("%.4f", st.Std),
			fmt.Sprintf("%d", st.Count),
		})
	}

	table.Render()
	return s.String()
}

// Transitions is the empirical state-transition matrix of a label sequence.
// This is a descriptive statistic of the supplied labels, not a re-estimate
// of the generating model.
type Transitions struct {
	Labels []Label
	Probs  [][]float64
}

// TransitionMatrix counts label-to-label transitions and normalizes each row
func TransitionMatrix(seq *Sequence) *Transitions {
	labels := seq.Distinct()
	index := make(map[Label]int, len(labels))
	for idx, label := range labels {
		index[label] = idx
	}

	counts := make([][]float64, len(labels))
	for idx := range counts {
		counts[idx] = make([]float64, len(labels))
	}

	for ii := 1; ii < len(seq.Labels); ii++ {
		from := index[seq.Labels[ii-1]]
		to := index[seq.Labels[ii]]
		counts[from][to]++
	}

	for _, row := range counts {
		total := 0.0
		for _, v := range row {
			total += v
		}
		if total > 0 {
			for idx := range row {
				row[idx] /= total
			}
		}
	}

	return &Transitions{
		Labels: labels,
		Probs:  counts,
	}
}

// Table renders the transition matrix as an ASCII table
func (t *Transitions) Table() string {
	header := make([]string, 0, len(t.Labels)+1)
	header = append(header, "From \\ To")
	for _, label := range t.Labels {
		header = append(header, string(label))
	}

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(header)
	table.SetBorder(false)

	for idx, label := range t.Labels {
		row := make([]string, 0, len(t.Labels)+1)
		row = append(row, string(label))
		for _, p := range t.Probs[idx] {
			row = append(row, fmt.Sprintf("%.3f", p))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}
