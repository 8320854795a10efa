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

package backtest

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/regime-lab/regimelab/allocation"
	"github.com/regime-lab/regimelab/dataframe"
	"github.com/regime-lab/regimelab/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// RebalanceEpsilon is the L-infinity drift threshold below which the
// portfolio is left to drift rather than traded back to target
const RebalanceEpsilon = 1e-6

type simState int

const (
	stateUninitialized simState = iota
	stateRunning
	stateCompleted
)

// Simulator runs a target weight schedule against realized asset returns and
// produces an equity curve. A simulator is single-use; every run gets a fresh
// instance so no state can leak between backtests.
type Simulator struct {
	StartValue float64

	state simState
}

// NewSimulator creates a simulator with 1.0 starting capital
func NewSimulator() *Simulator {
	return &Simulator{
		StartValue: 1.0,
		state:      stateUninitialized,
	}
}

func checkAligned(schedule *allocation.Schedule, returns *dataframe.DataFrame) error {
	if schedule.Len() != returns.Len() {
		return ErrAlignment
	}
	for idx := range schedule.Dates {
		if !schedule.Dates[idx].Equal(returns.Dates[idx]) {
			return ErrAlignment
		}
	}

	if len(schedule.Assets) != returns.ColCount() {
		return ErrAlignment
	}
	for idx, asset := range schedule.Assets {
		if asset != returns.ColNames[idx] {
			return ErrAlignment
		}
	}

	return nil
}

// Run simulates the portfolio over the full schedule. The curve starts at
// StartValue on the first date holding the first target weights. Weights
// adopted on date t earn the return of the period that follows, so the value
// recorded on each subsequent date applies the just-elapsed period's returns
// to the weights carried in, lets them drift, and trades to that date's
// target when drift exceeds RebalanceEpsilon. Turnover is the sum of absolute
// weight changes across all rebalance trades.
func (sim *Simulator) Run(ctx context.Context, name string, schedule *allocation.Schedule, returns *dataframe.DataFrame) (*EquityCurve, error) {
	_, span := otel.Tracer(opentelemetry.Name).Start(ctx, "backtest.Run")
	defer span.End()
	span.SetAttributes(attribute.String("Name", name))

	if sim.state != stateUninitialized {
		return nil, ErrAlreadyRun
	}
	sim.state = stateRunning

	if err := checkAligned(schedule, returns); err != nil {
		log.Error().Err(err).Str("Name", name).Msg("schedule does not align with returns")
		return nil, err
	}
	if schedule.Len() < 2 {
		return nil, ErrInsufficientData
	}

	n := schedule.Len()
	numAssets := len(schedule.Assets)

	curve := &EquityCurve{
		RunID:  uuid.New(),
		Name:   name,
		Dates:  schedule.Dates,
		Values: make([]float64, n),
	}

	held := make([]float64, numAssets)
	copy(held, schedule.Weights[0])
	curve.Values[0] = sim.StartValue

	drifted := make([]float64, numAssets)
	for t := 1; t < n; t++ {
		// the weights adopted on the previous date earn the return
		// realized over the elapsed period
		portRet := 0.0
		for idx := 0; idx < numAssets; idx++ {
			portRet += held[idx] * returns.Vals[idx][t-1]
		}
		curve.Values[t] = curve.Values[t-1] * (1.0 + portRet)

		// weights drift with relative asset performance
		for idx := 0; idx < numAssets; idx++ {
			drifted[idx] = held[idx] * (1.0 + returns.Vals[idx][t-1]) / (1.0 + portRet)
		}

		target := schedule.Weights[t]
		maxDiff := 0.0
		for idx := 0; idx < numAssets; idx++ {
			if diff := math.Abs(target[idx] - drifted[idx]); diff > maxDiff {
				maxDiff = diff
			}
		}

		if maxDiff > RebalanceEpsilon {
			traded := 0.0
			for idx := 0; idx < numAssets; idx++ {
				traded += math.Abs(target[idx] - drifted[idx])
			}
			curve.Turnover += traded
			curve.Rebalances = append(curve.Rebalances, RebalanceEvent{
				Date:     schedule.Dates[t],
				Turnover: traded,
				Target:   target,
			})
			copy(held, target)
		} else {
			copy(held, drifted)
		}
	}

	sim.state = stateCompleted
	log.Info().Str("Name", name).Str("RunID", curve.RunID.String()).Int("Periods", n).Int("NumRebalances", len(curve.Rebalances)).Float64("FinalValue", curve.FinalValue()).Msg("simulation complete")

	return curve, nil
}
