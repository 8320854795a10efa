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

package allocation

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
	"github.com/regime-lab/regimelab/regime"
	"github.com/rs/zerolog/log"
)

// WeightEpsilon is the tolerance used for full-investment checks
const WeightEpsilon = 1e-6

var (
	ErrUnmappedRegime   = errors.New("regime label has no allocation rule entry")
	ErrNotFullyInvested = errors.New("weights must be non-negative and sum to 1")
	ErrBadWeights       = errors.New("weight vector length does not match asset universe")
	ErrNoFallback       = errors.New("no fallback weights configured")
	ErrNegativeLag      = errors.New("lag must be >= 0")
	ErrUnknownAsset     = errors.New("asset is not part of the universe")
)

// Rule is an explicitly versioned regime to target-weight mapping. The rule
// table is fit once and held fixed for the length of a backtest so that
// allocation changes are auditable independent of the simulator.
type Rule struct {
	Version  string                     `json:"version"`
	Assets   []string                   `json:"assets"`
	Weights  map[regime.Label][]float64 `json:"weights"`
	Fallback []float64                  `json:"fallback"`
}

// EqualWeights returns a fully invested 1/n weight vector
func EqualWeights(n int) []float64 {
	weights := make([]float64, n)
	for idx := range weights {
		weights[idx] = 1.0 / float64(n)
	}
	return weights
}

// OneHotWeights returns a weight vector fully invested in the named asset.
// Used for buy-and-hold benchmarks.
func OneHotWeights(assets []string, ticker string) ([]float64, error) {
	weights := make([]float64, len(assets))
	for idx, asset := range assets {
		if asset == ticker {
			weights[idx] = 1.0
			return weights, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, ticker)
}

func checkWeightVector(weights []float64, numAssets int) error {
	if len(weights) != numAssets {
		return ErrBadWeights
	}

	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return ErrNotFullyInvested
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightEpsilon {
		return ErrNotFullyInvested
	}
	return nil
}

// Validate checks that every observed label is mapped, that all weight
// vectors cover the asset universe, and that each vector is fully invested.
// An unmapped label is an error, never a default.
func (r *Rule) Validate(observed []regime.Label) error {
	for _, label := range observed {
		weights, ok := r.Weights[label]
		if !ok {
			return fmt.Errorf("%w: %s (rule version %s)", ErrUnmappedRegime, label, r.Version)
		}
		if err := checkWeightVector(weights, len(r.Assets)); err != nil {
			return fmt.Errorf("label %s: %w", label, err)
		}
	}

	if r.Fallback != nil {
		if err := checkWeightVector(r.Fallback, len(r.Assets)); err != nil {
			return fmt.Errorf("fallback: %w", err)
		}
	}

	return nil
}

// LoadRule reads a rule table from a JSON file
func LoadRule(path string) (*Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("File", path).Msg("could not read rule table")
		return nil, err
	}

	rule := &Rule{}
	if err := json.Unmarshal(raw, rule); err != nil {
		log.Error().Err(err).Str("File", path).Msg("could not parse rule table")
		return nil, err
	}

	return rule, nil
}

// Save writes the rule table to a JSON file for audit
func (r *Rule) Save(path string) error {
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, raw, 0600); err != nil {
		log.Error().Err(err).Str("File", path).Msg("could not write rule table")
		return err
	}

	return nil
}
