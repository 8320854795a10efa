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

package dataframe

import (
	"math"
)

// LogReturns computes r_t = ln(v_t / v_{t-1}) for every column and returns a
// new dataframe. The first row has no prior value and is dropped, so the
// result is one row shorter than the input. Requires at least 2 rows.
func (df *DataFrame) LogReturns() (*DataFrame, error) {
	if df.Len() < 2 {
		return nil, ErrInsufficientData
	}

	rets := &DataFrame{
		Dates:    df.Dates[1:],
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.Vals)),
	}
	copy(rets.ColNames, df.ColNames)

	for colIdx, col := range df.Vals {
		rets.Vals[colIdx] = make([]float64, len(col)-1)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			rets.Vals[colIdx][rowIdx-1] = math.Log(col[rowIdx] / col[rowIdx-1])
		}
	}

	return rets, nil
}

// PctChange computes the simple return v_t / v_{t-1} - 1 for every column and
// returns a new dataframe. The first row has no prior value and is dropped.
// Requires at least 2 rows.
func (df *DataFrame) PctChange() (*DataFrame, error) {
	if df.Len() < 2 {
		return nil, ErrInsufficientData
	}

	rets := &DataFrame{
		Dates:    df.Dates[1:],
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.Vals)),
	}
	copy(rets.ColNames, df.ColNames)

	for colIdx, col := range df.Vals {
		rets.Vals[colIdx] = make([]float64, len(col)-1)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			rets.Vals[colIdx][rowIdx-1] = col[rowIdx]/col[rowIdx-1] - 1.0
		}
	}

	return rets, nil
}

// Diff computes the first difference v_t - v_{t-1} for every column and
// returns a new dataframe. The first row is dropped. Requires at least 2 rows.
func (df *DataFrame) Diff() (*DataFrame, error) {
	if df.Len() < 2 {
		return nil, ErrInsufficientData
	}

	diff := &DataFrame{
		Dates:    df.Dates[1:],
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.Vals)),
	}
	copy(diff.ColNames, df.ColNames)

	for colIdx, col := range df.Vals {
		diff.Vals[colIdx] = make([]float64, len(col)-1)
		for rowIdx := 1; rowIdx < len(col); rowIdx++ {
			diff.Vals[colIdx][rowIdx-1] = col[rowIdx] - col[rowIdx-1]
		}
	}

	return diff, nil
}
