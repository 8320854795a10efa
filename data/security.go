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

import "strings"

// Security represents a tradeable asset or market indicator
type Security struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// SecuritiesFromTickerList builds a security per ticker; tickers are
// upper-cased and de-duplicated preserving the order of first appearance
func SecuritiesFromTickerList(tickers []string) []*Security {
	seen := make(map[string]bool, len(tickers))
	securities := make([]*Security, 0, len(tickers))
	for _, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		securities = append(securities, &Security{Ticker: ticker})
	}
	return securities
}

func uniqueSecurities(securities []*Security) []*Security {
	seen := make(map[string]bool, len(securities))
	unique := make([]*Security, 0, len(securities))
	for _, security := range securities {
		if seen[security.Ticker] {
			continue
		}
		seen[security.Ticker] = true
		unique = append(unique, security)
	}
	return unique
}
