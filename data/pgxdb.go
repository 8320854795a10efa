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
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/regime-lab/regimelab/common"
	"github.com/regime-lab/regimelab/dataframe"
	"github.com/regime-lab/regimelab/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// PgxIface is the subset of the pgx connection API used by the database
// provider; satisfied by *pgx.Conn, *pgxpool.Pool, and pgxmock
type PgxIface interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PgDb serves end-of-day quotes from a PostgreSQL eod table
type PgDb struct {
	conn PgxIface
}

// NewPgDb creates a new PostgreSQL data provider
func NewPgDb(conn PgxIface) *PgDb {
	return &PgDb{conn: conn}
}

func (p *PgDb) DataType() string {
	return "pgdb"
}

func metricToColumn(metric Metric) (string, error) {
	switch metric {
	case MetricClose:
		return "close", nil
	case MetricAdjustedClose:
		return "adj_close", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedMetric, metric)
}

// GetEOD fetches EOD metrics from the database
func (p *PgDb) GetEOD(ctx context.Context, securities []*Security, metric Metric, begin, end time.Time) (dataframe.Map, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "pgdb.GetEOD")
	defer span.End()
	tz := common.GetTimezone()

	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	securities = uniqueSecurities(securities)

	column, err := metricToColumn(metric)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "unsupported metric")
		return nil, err
	}

	// build SQL query
	args := make([]interface{}, len(securities)+2)
	args[0] = begin
	args[1] = end

	tickerSet := make([]string, len(securities))
	for idx, security := range securities {
		tickerSet[idx] = fmt.Sprintf("$%d", idx+3)
		args[idx+2] = security.Ticker
	}
	tickerArgs := strings.Join(tickerSet, ", ")
	sql := fmt.Sprintf("SELECT event_date, ticker, %s FROM eod WHERE ticker IN (%s) AND event_date BETWEEN $1 AND $2 ORDER BY event_date, ticker", column, tickerArgs)

	rows, err := p.conn.Query(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		msg := "failed to load eod prices -- db query failed"
		span.SetStatus(codes.Error, msg)
		log.Warn().Stack().Err(err).Str("SQL", sql).Msg(msg)
		return nil, err
	}

	dfMap := make(dataframe.Map, len(securities))
	for _, security := range securities {
		dfMap[security.Ticker] = &dataframe.DataFrame{
			ColNames: []string{security.Ticker},
			Dates:    make([]time.Time, 0, 252),
			Vals:     [][]float64{make([]float64, 0, 252)},
		}
	}

	for rows.Next() {
		var eventDate time.Time
		var ticker string
		var val float64
		if err := rows.Scan(&eventDate, &ticker, &val); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "db scan failed")
			log.Error().Stack().Err(err).Msg("could not scan eod row")
			return nil, err
		}

		df, ok := dfMap[ticker]
		if !ok {
			continue
		}

		dt := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 16, 0, 0, 0, tz)
		df.Dates = append(df.Dates, dt)
		df.Vals[0] = append(df.Vals[0], val)
	}

	for ticker, df := range dfMap {
		if df.Len() == 0 {
			span.SetStatus(codes.Error, "no eod rows for ticker")
			return nil, fmt.Errorf("%w: %s has no rows in range", ErrEmptyResult, ticker)
		}
	}

	return dfMap, nil
}
