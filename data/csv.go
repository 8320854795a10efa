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
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/regime-lab/regimelab/common"
	"github.com/regime-lab/regimelab/dataframe"
)

// metricToCSVColumn maps a metric to the column name used in EOD csv files
func metricToCSVColumn(metric Metric) (string, error) {
	switch metric {
	case MetricClose:
		return "close", nil
	case MetricAdjustedClose:
		return "adj_close", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedMetric, metric)
}

// parseEODCSV reads an end-of-day quote csv with a header row and returns a
// single-column dataframe for the requested metric trimmed to [begin, end].
// Rows with an empty value for the metric are dropped; that is the explicit
// missing-data policy for csv sources. Rows that cannot be parsed at all are
// an error, not a skip.
func parseEODCSV(r io.Reader, ticker string, metric Metric, begin, end time.Time) (*dataframe.DataFrame, error) {
	colName, err := metricToCSVColumn(metric)
	if err != nil {
		return nil, err
	}

	tz := common.GetTimezone()
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedCSV)
	}

	dateIdx := -1
	valIdx := -1
	for idx, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date":
			dateIdx = idx
		case colName:
			valIdx = idx
		}
	}
	if dateIdx == -1 || valIdx == -1 {
		return nil, fmt.Errorf("%w: required columns date/%s not found", ErrMalformedCSV, colName)
	}

	df := &dataframe.DataFrame{
		ColNames: []string{ticker},
		Dates:    make([]time.Time, 0, 252),
		Vals:     [][]float64{make([]float64, 0, 252)},
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedCSV, err.Error())
		}

		raw := strings.TrimSpace(record[valIdx])
		if raw == "" {
			// explicitly documented: csv rows without a quote are dropped
			continue
		}

		dt, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrMalformedCSV, record[dateIdx])
		}
		dt = time.Date(dt.Year(), dt.Month(), dt.Day(), 16, 0, 0, 0, tz)
		if dt.Before(begin) || dt.After(end) {
			continue
		}

		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad value %q", ErrMalformedCSV, raw)
		}

		df.Dates = append(df.Dates, dt)
		df.Vals[0] = append(df.Vals[0], val)
	}

	return df, nil
}
