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

	"github.com/regime-lab/regimelab/common"
	"github.com/regime-lab/regimelab/data"
	"github.com/regime-lab/regimelab/regime"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	regimeLabelFile string
	indicatorDiff   bool
)

func init() {
	rootCmd.AddCommand(regimesCmd)

	regimesCmd.Flags().StringVar(&regimeLabelFile, "labels", "", "CSV file of fitted regime labels (date,label)")
	regimesCmd.MarkFlagRequired("labels")
	regimesCmd.Flags().BoolVar(&indicatorDiff, "diff", true, "Use the first difference of the indicator, matching how volatility regimes are typically fit")
}

var regimesCmd = &cobra.Command{
	Use:        "regimes [flags] INDICATOR_TICKER",
	Short:      "Describe a fitted regime label sequence",
	Long:       `Report per-regime statistics of a volatility indicator and the empirical transition matrix of the label sequence.`,
	Args:       cobra.ExactArgs(1),
	ArgAliases: []string{"INDICATOR_TICKER"},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		seq, err := regime.LoadCSV(regimeLabelFile)
		if err != nil {
			log.Fatal().Err(err).Str("File", regimeLabelFile).Msg("could not load regime labels")
		}

		mgr, err := buildManager(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not build data manager")
		}

		securities := data.SecuritiesFromTickerList(args)
		indicator, err := mgr.GetEOD(ctx, securities, data.MetricClose, seq.Dates[0], seq.Dates[len(seq.Dates)-1])
		if err != nil {
			log.Fatal().Stack().Err(err).Msg("could not load indicator series")
		}

		if indicatorDiff {
			if indicator, err = indicator.Diff(); err != nil {
				log.Fatal().Err(err).Msg("could not difference indicator")
			}
		}

		begin := common.MaxTime(seq.Dates[0], indicator.Start())
		end := common.MinTime(seq.Dates[len(seq.Dates)-1], indicator.End())
		seq = seq.Trim(begin, end)
		indicator = indicator.Trim(begin, end)

		stats, err := regime.Stats(seq, indicator)
		if err != nil {
			log.Fatal().Err(err).Msg("could not compute regime statistics")
		}

		fmt.Printf("Indicator: %s  Observations: %d\n\n", securities[0].Ticker, seq.Len())
		fmt.Println("Latest indicator reading:")
		fmt.Println(indicator.Last().Table())
		fmt.Println(regime.StatsTable(stats))
		fmt.Println("Empirical transition matrix:")
		fmt.Println(regime.TransitionMatrix(seq).Table())
	},
}
