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

package data

import (
	"context"
	"time"

	"github.com/regime-lab/regimelab/dataframe"
)

// Metric identifies an end-of-day quote field
type Metric string

const (
	MetricClose         Metric = "Close"
	MetricAdjustedClose Metric = "AdjustedClose"
)

// Provider retrieves end-of-day quotes for a set of securities. Each entry of
// the returned map holds a single-column dataframe keyed and named by ticker.
// Rows with missing values are dropped before the data is returned; alignment
// across securities is the Manager's job.
type Provider interface {
	DataType() string
	GetEOD(ctx context.Context, securities []*Security, metric Metric, begin, end time.Time) (dataframe.Map, error)
}
