// Copyright 2025-2026
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

package regime_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/regime-lab/regimelab/dataframe"
	"github.com/regime-lab/regimelab/regime"
)

func seqDates(n int) []time.Time {
	dates := make([]time.Time, n)
	dt := time.Date(2021, 1, 4, 16, 0, 0, 0, time.UTC)
	for idx := range dates {
		dates[idx] = dt
		dt = dt.AddDate(0, 0, 1)
	}
	return dates
}

var _ = Describe("Sequence", func() {
	It("rejects empty input", func() {
		_, err := regime.NewSequence([]time.Time{}, []regime.Label{})
		Expect(err).To(MatchError(regime.ErrEmptySequence))
	})

	It("rejects mismatched lengths", func() {
		_, err := regime.NewSequence(seqDates(3), []regime.Label{"0", "1"})
		Expect(err).To(MatchError(regime.ErrMisaligned))
	})

	Context("with a fitted sequence", func() {
		var seq *regime.Sequence

		BeforeEach(func() {
			var err error
			seq, err = regime.NewSequence(seqDates(5), []regime.Label{"1", "0", "0", "1", "0"})
			Expect(err).To(BeNil())
		})

		It("reports sorted distinct labels", func() {
			Expect(seq.Distinct()).To(Equal([]regime.Label{"0", "1"}))
		})

		It("aligns to an identical index", func() {
			Expect(seq.AlignTo(seqDates(5))).To(BeNil())
		})

		It("rejects a shifted index", func() {
			shifted := seqDates(5)
			shifted[2] = shifted[2].Add(time.Hour)
			Expect(seq.AlignTo(shifted)).To(MatchError(regime.ErrMisaligned))
		})

		It("trims inclusively", func() {
			sub := seq.Trim(seq.Dates[1], seq.Dates[3])
			Expect(sub.Len()).To(Equal(3))
			Expect(sub.Labels).To(Equal([]regime.Label{"0", "0", "1"}))
		})
	})
})

var _ = Describe("Stats", func() {
	var (
		seq       *regime.Sequence
		indicator *dataframe.DataFrame
	)

	BeforeEach(func() {
		var err error
		dates := seqDates(6)
		seq, err = regime.NewSequence(dates, []regime.Label{"1", "1", "0", "0", "1", "0"})
		Expect(err).To(BeNil())

		indicator = &dataframe.DataFrame{
			ColNames: []string{"VIX"},
			Dates:    dates,
			Vals:     [][]float64{{30, 32, 14, 15, 28, 16}},
		}
	})

	It("orders regimes by ascending indicator mean", func() {
		stats, err := regime.Stats(seq, indicator)
		Expect(err).To(BeNil())
		Expect(stats).To(HaveLen(2))
		Expect(stats[0].Label).To(Equal(regime.Label("0")))
		Expect(stats[0].Name).To(Equal("Low Vol"))
		Expect(stats[0].Mean).To(BeNumerically("~", 15.0, 1e-12))
		Expect(stats[0].Count).To(Equal(3))
		Expect(stats[1].Name).To(Equal("High Vol"))
		Expect(stats[1].Mean).To(BeNumerically("~", 30.0, 1e-12))
	})

	It("rejects a misaligned indicator", func() {
		_, err := regime.Stats(seq, indicator.Trim(indicator.Dates[1], indicator.Dates[5]))
		Expect(err).To(MatchError(regime.ErrMisaligned))
	})
})

var _ = Describe("TransitionMatrix", func() {
	It("row-normalizes empirical transition counts", func() {
		seq, err := regime.NewSequence(seqDates(5), []regime.Label{"0", "0", "1", "1", "0"})
		Expect(err).To(BeNil())

		t := regime.TransitionMatrix(seq)
		Expect(t.Labels).To(Equal([]regime.Label{"0", "1"}))

		// from 0: one self transition, one to 1
		Expect(t.Probs[0][0]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(t.Probs[0][1]).To(BeNumerically("~", 0.5, 1e-12))

		// from 1: one self transition, one to 0
		Expect(t.Probs[1][0]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(t.Probs[1][1]).To(BeNumerically("~", 0.5, 1e-12))
	})
})

var _ = Describe("ReadCSV", func() {
	It("parses a label file with a header", func() {
		content := "date,label\n2021-01-04,0\n2021-01-05,1\n2021-01-06,0\n"
		seq, err := regime.ReadCSV(strings.NewReader(content))
		Expect(err).To(BeNil())
		Expect(seq.Len()).To(Equal(3))
		Expect(seq.Labels).To(Equal([]regime.Label{"0", "1", "0"}))
		Expect(seq.Dates[0].Hour()).To(Equal(16))
	})

	It("accepts state as the label column name", func() {
		content := "date,state\n2021-01-04,high\n2021-01-05,low\n"
		seq, err := regime.ReadCSV(strings.NewReader(content))
		Expect(err).To(BeNil())
		Expect(seq.Labels[0]).To(Equal(regime.Label("high")))
	})

	It("rejects out-of-order dates", func() {
		content := "date,label\n2021-01-05,0\n2021-01-04,1\n"
		_, err := regime.ReadCSV(strings.NewReader(content))
		Expect(err).To(MatchError(regime.ErrMisaligned))
	})

	It("rejects a file without the required columns", func() {
		content := "day,value\n2021-01-04,0\n"
		_, err := regime.ReadCSV(strings.NewReader(content))
		Expect(err).To(MatchError(regime.ErrMisaligned))
	})
})
