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
	"context"
	"time"
)

// Detector is the external regime-classification model, typically a Gaussian
// HMM fitted to a volatility indicator. The backtesting engine treats the
// resulting labels as opaque categorical input; parameter estimation is not
// implemented here.
type Detector interface {
	// Fit estimates model parameters from the indicator series
	Fit(ctx context.Context, indicator []float64) error

	// Predict assigns a label to every observation; dates and indicator
	// must be parallel slices
	Predict(ctx context.Context, dates []time.Time, indicator []float64) (*Sequence, error)

	// NumStates reports the configured number of regimes
	NumStates() int
}
