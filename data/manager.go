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
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/regime-lab/regimelab/dataframe"
	"github.com/regime-lab/regimelab/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
)

// Manager wraps a Provider with a read-through LRU cache. Cached frames are
// never mutated; callers receive copies. A Manager is an explicitly
// constructed object owned by the caller -- there is no process-wide
// singleton.
type Manager struct {
	provider Provider
	cache    *lru.Cache
}

// NewManager creates a data manager around the given provider
func NewManager(provider Provider, cacheSize int) (*Manager, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}

	return &Manager{
		provider: provider,
		cache:    cache,
	}, nil
}

func cacheKey(ticker string, metric Metric, begin, end time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%d", ticker, metric, begin.Unix(), end.Unix())
}

// GetEOD returns a single dataframe with one column per security, aligned to
// the common date range across all requested securities. Per-security frames
// are cached; only cache misses hit the underlying provider.
func (m *Manager) GetEOD(ctx context.Context, securities []*Security, metric Metric, begin, end time.Time) (*dataframe.DataFrame, error) {
	ctx, span := otel.Tracer(opentelemetry.Name).Start(ctx, "manager.GetEOD")
	defer span.End()

	securities = uniqueSecurities(securities)
	dfMap := make(dataframe.Map, len(securities))
	toPull := make([]*Security, 0, len(securities))

	for _, security := range securities {
		key := cacheKey(security.Ticker, metric, begin, end)
		if cached, ok := m.cache.Get(key); ok {
			dfMap[security.Ticker] = cached.(*dataframe.DataFrame).Copy()
			continue
		}
		toPull = append(toPull, security)
	}

	if len(toPull) > 0 {
		log.Debug().Int("NumSecurities", len(toPull)).Str("Provider", m.provider.DataType()).Msg("pulling securities not in cache")
		pulled, err := m.provider.GetEOD(ctx, toPull, metric, begin, end)
		if err != nil {
			return nil, err
		}

		for ticker, df := range pulled {
			m.cache.Add(cacheKey(ticker, metric, begin, end), df.Copy())
			dfMap[ticker] = df
		}
	}

	return dfMap.DataFrame()
}
