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
	"sort"
	"time"

	"github.com/regime-lab/regimelab/common"
)

type Map map[string]*DataFrame

// Align finds the maximum start and minimum end across all dataframes and trims them to match
func (dfMap Map) Align() Map {
	// find max start and min end
	var start time.Time
	var end time.Time

	// initialize end time with a value from dfMap
	for _, df := range dfMap {
		end = df.End()
		break
	}

	for _, df := range dfMap {
		start = common.MaxTime(start, df.Start())
		end = common.MinTime(end, df.End())
	}

	// trim df's to expected time range
	dfMapTrimmed := make(Map, len(dfMap))
	for k, df := range dfMap {
		dfMapTrimmed[k] = df.Trim(start, end)
	}

	return dfMapTrimmed
}

// Drop calls dataframe.Drop on each dataframe in the map
func (dfMap Map) Drop(val float64) Map {
	for _, v := range dfMap {
		v.Drop(val)
	}
	return dfMap
}

// DataFrame converts each item in the map to a column in the dataframe. If
// dataframes do not align they are trimmed to the max start and min end.
// Columns are ordered by map key so the result is deterministic. Returns
// ErrDateIndexNotAligned when the trimmed indexes still differ.
func (dfMap Map) DataFrame() (*DataFrame, error) {
	keys := make([]string, 0, len(dfMap))
	for k := range dfMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	df := &DataFrame{}
	first := true
	dfMap2 := dfMap.Align()
	for _, k := range keys {
		v := dfMap2[k]
		if first {
			df.Dates = v.Dates
			df.ColNames = v.ColNames
			df.Vals = v.Vals
			first = false
			continue
		}

		if len(df.Dates) != len(v.Dates) ||
			!df.Start().Equal(v.Start()) ||
			!df.End().Equal(v.End()) {
			return nil, ErrDateIndexNotAligned
		}
		for colIdx, colName := range v.ColNames {
			df = df.Insert(colName, v.Vals[colIdx])
		}
	}

	return df, nil
}
