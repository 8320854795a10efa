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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/regime-lab/regimelab/dataframe"
	"github.com/regime-lab/regimelab/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var eodAPI = "https://api.eoddata.example.com"

// EODHttp downloads end-of-day quotes in csv format from a market data
// service
type EODHttp struct {
	apikey string
}

type quoteResult struct {
	Ticker string
	Data   *dataframe.DataFrame
	Err    error
}

// NewEODHttp creates a new http quote provider with the given api token
func NewEODHttp(apikey string) *EODHttp {
	return &EODHttp{apikey: apikey}
}

func (t *EODHttp) DataType() string {
	return "eodhttp"
}

// GetEOD downloads quotes for all requested securities, one worker per
// security, and returns a map of single-column dataframes keyed by ticker
func (t *EODHttp) GetEOD(ctx context.Context, securities []*Security, metric Metric, begin, end time.Time) (dataframe.Map, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "eodhttp.GetEOD")
	defer span.End()

	if end.Before(begin) {
		return nil, ErrInvalidTimeRange
	}

	securities = uniqueSecurities(securities)
	subLog := log.With().Str("Metric", string(metric)).Time("Begin", begin).Time("End", end).Logger()

	ch := make(chan quoteResult)
	for _, security := range securities {
		go t.downloadWorker(ch, security.Ticker, metric, begin, end)
	}

	dfMap := make(dataframe.Map, len(securities))
	errs := []error{}
	for range securities {
		v := <-ch
		if v.Err != nil {
			subLog.Warn().Err(v.Err).Str("Ticker", v.Ticker).Msg("cannot download ticker data")
			errs = append(errs, v.Err)
			continue
		}
		dfMap[v.Ticker] = v.Data
	}

	if len(errs) != 0 {
		span.SetStatus(codes.Error, "eod download failed")
		return nil, errs[0]
	}

	return dfMap, nil
}

func (t *EODHttp) downloadWorker(result chan<- quoteResult, ticker string, metric Metric, begin, end time.Time) {
	df, err := t.loadTicker(ticker, metric, begin, end)
	result <- quoteResult{
		Ticker: ticker,
		Data:   df,
		Err:    err,
	}
}

func (t *EODHttp) loadTicker(ticker string, metric Metric, begin, end time.Time) (*dataframe.DataFrame, error) {
	subLog := log.With().Str("Ticker", ticker).Str("Metric", string(metric)).Time("Begin", begin).Time("End", end).Logger()

	url := fmt.Sprintf("%s/eod/%s/prices?startDate=%s&endDate=%s&format=csv&token=%s",
		eodAPI, ticker, begin.Format("2006-01-02"), end.Format("2006-01-02"), t.apikey)

	resp, err := http.Get(url)
	if err != nil {
		subLog.Warn().Err(err).Str("Url", url).Msg("failed to load eod prices")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		subLog.Warn().Err(err).Int("HTTPResponseStatusCode", resp.StatusCode).Msg("read eod price body failed")
		return nil, err
	}

	if resp.StatusCode >= 400 {
		subLog.Warn().Int("HTTPResponseStatusCode", resp.StatusCode).Msg("eod price request rejected")
		return nil, fmt.Errorf("%w: %s (HTTP %d)", ErrNotFound, ticker, resp.StatusCode)
	}

	df, err := parseEODCSV(bytes.NewReader(body), ticker, metric, begin, end)
	if err != nil {
		return nil, err
	}
	if df.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no rows in range", ErrEmptyResult, ticker)
	}

	return df, nil
}
