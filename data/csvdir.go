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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/regime-lab/regimelab/dataframe"
	"github.com/rs/zerolog/log"
)

// CSVDir serves end-of-day quotes from a directory of <TICKER>.csv files.
// This is the offline research workflow: download once, iterate locally.
type CSVDir struct {
	dir string
}

// NewCSVDir creates a csv directory provider
func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

func (c *CSVDir) DataType() string {
	return "csvdir"
}

// GetEOD loads quotes for each security from <dir>/<TICKER>.csv
func (c *CSVDir) GetEOD(ctx context.Context, securities []*Security, metric Metric, begin, end time.Time) (dataframe.Map, error) {
	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	securities = uniqueSecurities(securities)
	dfMap := make(dataframe.Map, len(securities))

	for _, security := range securities {
		fn := filepath.Join(c.dir, fmt.Sprintf("%s.csv", security.Ticker))
		fh, err := os.Open(fn)
		if err != nil {
			log.Error().Err(err).Str("File", fn).Str("Ticker", security.Ticker).Msg("could not open eod csv file")
			return nil, fmt.Errorf("%w: %s", ErrNotFound, security.Ticker)
		}

		df, err := parseEODCSV(fh, security.Ticker, metric, begin, end)
		closeErr := fh.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			log.Warn().Err(closeErr).Str("File", fn).Msg("could not close eod csv file")
		}
		if df.Len() == 0 {
			return nil, fmt.Errorf("%w: %s has no rows in range", ErrEmptyResult, security.Ticker)
		}

		dfMap[security.Ticker] = df
	}

	return dfMap, nil
}
