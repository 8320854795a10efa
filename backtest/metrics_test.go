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

package backtest_test

import (
	"bytes"
	"math"
	"strings"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/regime-lab/regimelab/backtest"
)

func curveFromValues(name string, values []float64) *backtest.EquityCurve {
	return &backtest.EquityCurve{
		RunID:  uuid.New(),
		Name:   name,
		Dates:  btDates(len(values)),
		Values: values,
	}
}

var _ = Describe("Metrics", func() {
	Describe("MaxDrawdown", func() {
		It("finds the largest peak-to-trough loss", func() {
			dd := backtest.MaxDrawdown([]float64{1.0, 1.2, 0.9, 1.1})
			Expect(dd).To(BeNumerically("~", 0.9/1.2-1.0, 1e-12))
		})

		It("is zero for a monotone curve", func() {
			Expect(backtest.MaxDrawdown([]float64{1.0, 1.1, 1.2})).To(Equal(0.0))
		})
	})

	Describe("Summary", func() {
		It("computes total return from the full curve", func() {
			curve := curveFromValues("Test", []float64{1.0, 1.1, 1.21})
			metrics := backtest.Summary(curve, nil)
			Expect(metrics["total_return"]).To(BeNumerically("~", 0.21, 1e-12))
			Expect(metrics["num_observations"]).To(Equal(3.0))
		})

		It("annualizes geometrically", func() {
			curve := curveFromValues("Test", []float64{1.0, 1.1, 1.21})
			metrics := backtest.Summary(curve, nil)
			expected := math.Pow(1.21, 252.0/2.0) - 1.0
			Expect(metrics["annual_return"]).To(BeNumerically("~", expected, 1e-9))
		})

		It("reports zero ratios for a flat curve", func() {
			curve := curveFromValues("Flat", []float64{1.0, 1.0, 1.0, 1.0})
			metrics := backtest.Summary(curve, nil)
			Expect(metrics["annual_volatility"]).To(Equal(0.0))
			Expect(metrics["sharpe_ratio"]).To(Equal(0.0))
			Expect(metrics["sortino_ratio"]).To(Equal(0.0))
			Expect(metrics["max_drawdown"]).To(Equal(0.0))
		})

		It("reports zero sortino when no period lost money", func() {
			curve := curveFromValues("Up", []float64{1.0, 1.01, 1.03})
			metrics := backtest.Summary(curve, nil)
			Expect(metrics["sortino_ratio"]).To(Equal(0.0))
			Expect(metrics["sharpe_ratio"]).To(BeNumerically(">", 0.0))
		})

		It("annualizes turnover over the realized window", func() {
			curve := curveFromValues("Test", []float64{1.0, 1.0, 1.0, 1.0, 1.0})
			curve.Turnover = 2.0
			metrics := backtest.Summary(curve, nil)
			Expect(metrics["turnover_per_year"]).To(BeNumerically("~", 2.0*252.0/4.0, 1e-12))
		})

		It("uses the compounded annual return in the sharpe numerator", func() {
			curve := curveFromValues("Test", []float64{1.0, 1.02, 1.01, 1.04})
			metrics := backtest.Summary(curve, nil)
			Expect(metrics["sharpe_ratio"]).To(BeNumerically("~", metrics["annual_return"]/metrics["annual_volatility"], 1e-12))
		})

		It("subtracts the risk-free rate from risk-adjusted ratios", func() {
			curve := curveFromValues("Test", []float64{1.0, 1.02, 1.01, 1.04})
			base := backtest.Summary(curve, nil)
			excess := backtest.Summary(curve, &backtest.Opts{RiskFreeRate: 0.05})
			Expect(excess["sharpe_ratio"]).To(BeNumerically("<", base["sharpe_ratio"]))
			Expect(excess["sharpe_ratio"]).To(BeNumerically("~", base["sharpe_ratio"]-0.05/base["annual_volatility"], 1e-9))
			Expect(excess["total_return"]).To(Equal(base["total_return"]))
		})

		It("honors a custom annualization factor", func() {
			curve := curveFromValues("Test", []float64{1.0, 1.1, 1.21})
			metrics := backtest.Summary(curve, &backtest.Opts{PeriodsPerYear: 2})
			Expect(metrics["annual_return"]).To(BeNumerically("~", 0.21, 1e-12))
		})

		It("handles a single observation without NaN", func() {
			curve := curveFromValues("Tiny", []float64{1.0})
			metrics := backtest.Summary(curve, nil)
			for name, val := range metrics {
				Expect(math.IsNaN(val)).To(BeFalse(), name)
				Expect(math.IsInf(val, 0)).To(BeFalse(), name)
			}
		})
	})

	Describe("CompareTable", func() {
		It("renders one column per curve", func() {
			a := curveFromValues("Regime", []float64{1.0, 1.05})
			b := curveFromValues("EqualWeight", []float64{1.0, 1.02})
			table := backtest.CompareTable(nil, a, b)
			Expect(table).To(ContainSubstring("REGIME"))
			Expect(table).To(ContainSubstring("EQUALWEIGHT"))
			Expect(table).To(ContainSubstring("sharpe_ratio"))
		})
	})

	Describe("WriteMetricsCSV", func() {
		It("writes a header and one row per metric", func() {
			curve := curveFromValues("Regime", []float64{1.0, 1.05, 1.02})
			buf := &bytes.Buffer{}
			Expect(backtest.WriteMetricsCSV(buf, nil, curve)).To(BeNil())

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			Expect(lines[0]).To(Equal("metric,Regime"))
			Expect(lines).To(HaveLen(len(backtest.MetricNames) + 1))
		})
	})
})
