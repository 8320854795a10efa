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

package data_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/regime-lab/regimelab/common"
	"github.com/regime-lab/regimelab/data"
)

const spyCSV = `date,close,adj_close
2021-01-04,368.79,362.01
2021-01-05,371.33,364.50
2021-01-06,373.55,366.68
2021-01-07,379.10,
2021-01-08,381.26,374.25
`

var _ = Describe("CSVDir", func() {
	var (
		ctx      context.Context
		dir      string
		provider *data.CSVDir
		begin    time.Time
		end      time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "SPY.csv"), []byte(spyCSV), 0600)).To(Succeed())

		provider = data.NewCSVDir(dir)
		tz := common.GetTimezone()
		begin = time.Date(2021, 1, 4, 0, 0, 0, 0, tz)
		end = time.Date(2021, 1, 8, 23, 59, 59, 0, tz)
	})

	It("loads the adjusted close column", func() {
		dfMap, err := provider.GetEOD(ctx, data.SecuritiesFromTickerList([]string{"spy"}), data.MetricAdjustedClose, begin, end)
		Expect(err).To(BeNil())
		Expect(dfMap).To(HaveLen(1))

		df := dfMap["SPY"]
		// the 2021-01-07 row has no adjusted close and is dropped
		Expect(df.Len()).To(Equal(4))
		Expect(df.Vals[0]).To(Equal([]float64{362.01, 364.50, 366.68, 374.25}))
		Expect(df.Dates[0].Hour()).To(Equal(16))
	})

	It("loads the close column", func() {
		dfMap, err := provider.GetEOD(ctx, data.SecuritiesFromTickerList([]string{"SPY"}), data.MetricClose, begin, end)
		Expect(err).To(BeNil())
		Expect(dfMap["SPY"].Len()).To(Equal(5))
		Expect(dfMap["SPY"].Vals[0][3]).To(Equal(379.10))
	})

	It("restricts rows to the requested range", func() {
		tz := common.GetTimezone()
		dfMap, err := provider.GetEOD(ctx, data.SecuritiesFromTickerList([]string{"SPY"}), data.MetricClose,
			time.Date(2021, 1, 5, 0, 0, 0, 0, tz), time.Date(2021, 1, 6, 23, 59, 59, 0, tz))
		Expect(err).To(BeNil())
		Expect(dfMap["SPY"].Len()).To(Equal(2))
	})

	It("errors when the ticker file does not exist", func() {
		_, err := provider.GetEOD(ctx, data.SecuritiesFromTickerList([]string{"TSLA"}), data.MetricClose, begin, end)
		Expect(err).To(MatchError(data.ErrNotFound))
	})

	It("errors when no rows fall in range", func() {
		tz := common.GetTimezone()
		_, err := provider.GetEOD(ctx, data.SecuritiesFromTickerList([]string{"SPY"}), data.MetricClose,
			time.Date(2022, 1, 1, 0, 0, 0, 0, tz), time.Date(2022, 1, 31, 0, 0, 0, 0, tz))
		Expect(err).To(MatchError(data.ErrEmptyResult))
	})

	It("errors when the range is inverted", func() {
		_, err := provider.GetEOD(ctx, data.SecuritiesFromTickerList([]string{"SPY"}), data.MetricClose, end, begin)
		Expect(err).To(MatchError(data.ErrInvalidTimeRange))
	})

	It("errors on a malformed file", func() {
		Expect(os.WriteFile(filepath.Join(dir, "BAD.csv"), []byte("date,close\n2021-01-04,not-a-number\n"), 0600)).To(Succeed())
		_, err := provider.GetEOD(ctx, data.SecuritiesFromTickerList([]string{"BAD"}), data.MetricClose, begin, end)
		Expect(err).To(MatchError(data.ErrMalformedCSV))
	})
})

var _ = Describe("SecuritiesFromTickerList", func() {
	It("upper-cases and dedupes preserving order", func() {
		securities := data.SecuritiesFromTickerList([]string{"spy", "tlt", "SPY"})
		Expect(securities).To(HaveLen(2))
		Expect(securities[0].Ticker).To(Equal("SPY"))
		Expect(securities[1].Ticker).To(Equal("TLT"))
	})
})
