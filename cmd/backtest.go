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

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/regime-lab/regimelab/allocation"
	"github.com/regime-lab/regimelab/backtest"
	"github.com/regime-lab/regimelab/common"
	"github.com/regime-lab/regimelab/data"
	"github.com/regime-lab/regimelab/observability/opentelemetry"
	"github.com/regime-lab/regimelab/regime"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	labelFile     string
	ruleFile      string
	saveRuleFile  string
	selectMethod  string
	lagDays       int
	benchmark     string
	exportMetrics string
	useClose      bool
	riskFreeRate  float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&labelFile, "labels", "", "CSV file of fitted regime labels (date,label)")
	backtestCmd.MarkFlagRequired("labels")
	backtestCmd.Flags().StringVar(&ruleFile, "rule", "", "JSON rule table to use instead of fitting one")
	backtestCmd.Flags().StringVar(&saveRuleFile, "save-rule", "", "Write the fitted rule table to this JSON file")
	backtestCmd.Flags().StringVar(&selectMethod, "method", "best", "Rule fitting method, one of: best, proportional")
	backtestCmd.Flags().IntVar(&lagDays, "lag", 1, "Trading days between label observation and allocation change")
	backtestCmd.Flags().StringVar(&benchmark, "benchmark", "", "Buy-and-hold benchmark ticker, defaults to the first asset")
	backtestCmd.Flags().StringVar(&exportMetrics, "export-metrics", "", "Write performance metrics to this CSV file")
	backtestCmd.Flags().BoolVar(&useClose, "close", false, "Use unadjusted close instead of adjusted close prices")
	backtestCmd.Flags().Float64Var(&riskFreeRate, "risk-free", 0, "Annualized risk-free rate used in sharpe and sortino")
}

var backtestCmd = &cobra.Command{
	Use:        "backtest [flags] TICKER...",
	Short:      "Backtest a regime-conditioned allocation rule",
	Args:       cobra.MinimumNArgs(1),
	ArgAliases: []string{"TICKER"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if viper.GetString("otlp.endpoint") != "" {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Error().Err(err).Msg("could not initialize tracing")
			} else {
				defer shutdown(ctx)
			}
		}

		seq, err := regime.LoadCSV(labelFile)
		if err != nil {
			log.Fatal().Err(err).Str("File", labelFile).Msg("could not load regime labels")
		}

		mgr, err := buildManager(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build data manager")
		}

		metric := data.MetricAdjustedClose
		if useClose {
			metric = data.MetricClose
		}

		securities := data.SecuritiesFromTickerList(args)
		begin := seq.Dates[0]
		end := seq.Dates[len(seq.Dates)-1]

		prices, err := mgr.GetEOD(ctx, securities, metric, begin, end)
		if err != nil {
			log.Fatal().Stack().Err(err).Msg("could not load eod prices")
		}

		returns, err := prices.PctChange()
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute returns")
		}

		// restrict both series to their common window; the simulator
		// requires an exact date match
		begin = common.MaxTime(seq.Dates[0], returns.Start())
		end = common.MinTime(seq.Dates[len(seq.Dates)-1], returns.End())
		seq = seq.Trim(begin, end)
		returns = returns.Trim(begin, end)

		var rule *allocation.Rule
		if ruleFile != "" {
			if rule, err = allocation.LoadRule(ruleFile); err != nil {
				log.Fatal().Err(err).Msg("could not load rule table")
			}
		} else {
			cond, err := allocation.Compute(returns, seq)
			if err != nil {
				log.Fatal().Err(err).Msg("could not compute conditional returns")
			}
			fmt.Println("Conditional mean returns by regime:")
			fmt.Println(cond.Table())

			if rule, err = allocation.FitRule(returns, seq, allocation.SelectMethod(selectMethod), ""); err != nil {
				log.Fatal().Err(err).Msg("could not fit rule table")
			}
		}

		if saveRuleFile != "" {
			if err := rule.Save(saveRuleFile); err != nil {
				log.Fatal().Err(err).Msg("could not save rule table")
			}
		}

		schedule, err := allocation.BuildSchedule(seq, rule, lagDays)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build allocation schedule")
		}

		curve, err := backtest.NewSimulator().Run(ctx, "Regime", schedule, returns)
		if err != nil {
			log.Fatal().Stack().Err(err).Msg("simulation failed")
		}

		curves := []*backtest.EquityCurve{curve}

		// a comparison table missing its benchmark columns is worse than
		// no table at all; any benchmark failure aborts the run
		ewSchedule, err := allocation.ConstantSchedule(returns.Dates, schedule.Assets, allocation.EqualWeights(len(schedule.Assets)))
		if err != nil {
			log.Fatal().Err(err).Msg("could not build equal-weight benchmark schedule")
		}
		ew, err := backtest.NewSimulator().Run(ctx, "EqualWeight", ewSchedule, returns)
		if err != nil {
			log.Fatal().Stack().Err(err).Msg("equal-weight benchmark simulation failed")
		}
		curves = append(curves, ew)

		bhTicker := benchmark
		if bhTicker == "" {
			bhTicker = schedule.Assets[0]
		}
		bhWeights, err := allocation.OneHotWeights(schedule.Assets, bhTicker)
		if err != nil {
			log.Fatal().Err(err).Str("Ticker", bhTicker).Msg("benchmark ticker not in asset universe")
		}
		bhSchedule, err := allocation.ConstantSchedule(returns.Dates, schedule.Assets, bhWeights)
		if err != nil {
			log.Fatal().Err(err).Str("Ticker", bhTicker).Msg("could not build buy-and-hold benchmark schedule")
		}
		bh, err := backtest.NewSimulator().Run(ctx, fmt.Sprintf("BuyHold %s", bhTicker), bhSchedule, returns)
		if err != nil {
			log.Fatal().Stack().Err(err).Str("Ticker", bhTicker).Msg("buy-and-hold benchmark simulation failed")
		}
		curves = append(curves, bh)

		opts := &backtest.Opts{RiskFreeRate: riskFreeRate}
		fmt.Printf("Rule version: %s  Lag: %d days  Window: %s to %s\n\n",
			schedule.RuleVersion, lagDays, begin.Format("2006-01-02"), end.Format("2006-01-02"))
		fmt.Println(backtest.CompareTable(opts, curves...))

		if exportMetrics != "" {
			fh, err := os.Create(exportMetrics)
			if err != nil {
				log.Fatal().Err(err).Str("File", exportMetrics).Msg("could not create metrics file")
			}
			defer fh.Close()
			if err := backtest.WriteMetricsCSV(fh, opts, curves...); err != nil {
				log.Fatal().Err(err).Msg("could not write metrics")
			}
		}
	},
}
