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

package dataframe_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/regime-lab/regimelab/dataframe"
)

func tradingDates(n int) []time.Time {
	dates := make([]time.Time, n)
	dt := time.Date(2021, 1, 4, 16, 0, 0, 0, time.UTC)
	for idx := range dates {
		dates[idx] = dt
		dt = dt.AddDate(0, 0, 1)
	}
	return dates
}

var _ = Describe("DataFrame", func() {
	Context("with no values", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			df = &dataframe.DataFrame{}
		})

		It("has zero length", func() {
			Expect(df.Len()).To(Equal(0))
		})

		It("has zero columns", func() {
			Expect(df.ColCount()).To(Equal(0))
		})

		It("does not error on trim", func() {
			df = df.Trim(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
			Expect(df.Len()).To(Equal(0))
		})
	})

	Context("with 10 days of values and two columns", func() {
		var df *dataframe.DataFrame

		BeforeEach(func() {
			dates := tradingDates(10)
			col1 := make([]float64, 10)
			col2 := make([]float64, 10)
			for idx := range col1 {
				col1[idx] = float64(idx)
				col2[idx] = float64(idx) * 10
			}
			df = &dataframe.DataFrame{
				ColNames: []string{"SPY", "VFINX"},
				Dates:    dates,
				Vals:     [][]float64{col1, col2},
			}
		})

		It("has expected length", func() {
			Expect(df.Len()).To(Equal(10))
		})

		It("finds columns by name", func() {
			col, err := df.Col("VFINX")
			Expect(err).To(BeNil())
			Expect(col[3]).To(Equal(30.0))
		})

		It("returns an error for an unknown column", func() {
			_, err := df.Col("AAPL")
			Expect(err).To(MatchError(dataframe.ErrColumnNotFound))
		})

		It("trims to an interior range", func() {
			sub := df.Trim(df.Dates[2], df.Dates[5])
			Expect(sub.Len()).To(Equal(4))
			Expect(sub.Start()).To(Equal(df.Dates[2]))
			Expect(sub.End()).To(Equal(df.Dates[5]))
		})

		It("excludes an end date not present in the index", func() {
			sub := df.Trim(df.Dates[0], df.Dates[5].Add(time.Hour))
			Expect(sub.Len()).To(Equal(6))
			Expect(sub.End()).To(Equal(df.Dates[5]))
		})

		It("copies values deeply", func() {
			cp := df.Copy()
			cp.Vals[0][0] = 999
			Expect(df.Vals[0][0]).To(Equal(0.0))
		})

		It("keeps only the last row with Last", func() {
			last := df.Last()
			Expect(last.Len()).To(Equal(1))
			Expect(last.Vals[1][0]).To(Equal(90.0))
		})

		It("inserts a new column", func() {
			col := make([]float64, 10)
			df = df.Insert("ZERO", col)
			Expect(df.ColCount()).To(Equal(3))
			Expect(df.ColIndex("ZERO")).To(Equal(2))
		})

		It("drops rows containing a value", func() {
			df = df.Drop(30.0)
			Expect(df.Len()).To(Equal(9))
			Expect(df.Vals[0]).ToNot(ContainElement(3.0))
		})

		It("drops rows containing NaN", func() {
			df.Vals[0][4] = math.NaN()
			df = df.Drop(math.NaN())
			Expect(df.Len()).To(Equal(9))
		})

		It("renders an ascii table", func() {
			out := df.Table()
			Expect(out).To(ContainSubstring("SPY"))
			Expect(out).To(ContainSubstring("2021-01-04"))
		})
	})

	Context("when merging a dataframe map", func() {
		It("produces deterministic column order", func() {
			dates := tradingDates(3)
			dfMap := dataframe.Map{
				"ZVZZT": &dataframe.DataFrame{ColNames: []string{"ZVZZT"}, Dates: dates, Vals: [][]float64{{1, 2, 3}}},
				"AAPL":  &dataframe.DataFrame{ColNames: []string{"AAPL"}, Dates: dates, Vals: [][]float64{{4, 5, 6}}},
			}

			merged, err := dfMap.DataFrame()
			Expect(err).To(BeNil())
			Expect(merged.ColNames).To(Equal([]string{"AAPL", "ZVZZT"}))
		})

		It("errors when date indexes differ inside the common window", func() {
			dates := tradingDates(3)
			dfMap := dataframe.Map{
				"A": &dataframe.DataFrame{ColNames: []string{"A"}, Dates: []time.Time{dates[0], dates[2]}, Vals: [][]float64{{1, 3}}},
				"B": &dataframe.DataFrame{ColNames: []string{"B"}, Dates: dates, Vals: [][]float64{{1, 2, 3}}},
			}

			_, err := dfMap.DataFrame()
			Expect(err).To(MatchError(dataframe.ErrDateIndexNotAligned))
		})

		It("aligns frames to their common window", func() {
			long := tradingDates(6)
			dfMap := dataframe.Map{
				"A": &dataframe.DataFrame{ColNames: []string{"A"}, Dates: long, Vals: [][]float64{{1, 2, 3, 4, 5, 6}}},
				"B": &dataframe.DataFrame{ColNames: []string{"B"}, Dates: long[2:], Vals: [][]float64{{3, 4, 5, 6}}},
			}

			dfMap = dfMap.Align()
			Expect(dfMap["A"].Len()).To(Equal(4))
			Expect(dfMap["A"].Start()).To(Equal(long[2]))
		})
	})
})
