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
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlignment        = errors.New("schedule and returns must share identical dates and assets")
	ErrAlreadyRun       = errors.New("simulator has already run; create a new one")
	ErrInsufficientData = errors.New("not enough observations to simulate")
)

// RebalanceEvent records one trade back to target weights
type RebalanceEvent struct {
	Date     time.Time
	Turnover float64
	Target   []float64
}

// EquityCurve is the result of one simulation run: the portfolio value at
// every date plus the rebalance trades that produced it. Values are in units
// of starting capital.
type EquityCurve struct {
	RunID      uuid.UUID
	Name       string
	Dates      []time.Time
	Values     []float64
	Rebalances []RebalanceEvent
	Turnover   float64
}

// Len returns the number of observations in the curve
func (ec *EquityCurve) Len() int {
	return len(ec.Values)
}

// FinalValue returns the last portfolio value
func (ec *EquityCurve) FinalValue() float64 {
	if len(ec.Values) == 0 {
		return 0
	}
	return ec.Values[len(ec.Values)-1]
}

// Returns computes the simple period-over-period returns of the curve
func (ec *EquityCurve) Returns() []float64 {
	if len(ec.Values) < 2 {
		return []float64{}
	}

	rets := make([]float64, len(ec.Values)-1)
	for idx := 1; idx < len(ec.Values); idx++ {
		rets[idx-1] = ec.Values[idx]/ec.Values[idx-1] - 1.0
	}
	return rets
}

// Years returns the calendar span of the curve in years
func (ec *EquityCurve) Years() float64 {
	if len(ec.Dates) < 2 {
		return 0
	}
	return ec.Dates[len(ec.Dates)-1].Sub(ec.Dates[0]).Hours() / (24 * 365.25)
}
