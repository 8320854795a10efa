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

package regime

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/regime-lab/regimelab/common"
	"github.com/rs/zerolog/log"
)

// LoadCSV reads a fitted label sequence from a csv file with a header row and
// columns date,label. Dates must be strictly increasing; anything else is a
// data-quality error surfaced to the caller.
func LoadCSV(path string) (*Sequence, error) {
	fh, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("File", path).Msg("could not open regime label file")
		return nil, err
	}
	defer fh.Close()

	return ReadCSV(fh)
}

// ReadCSV parses a label sequence from csv content
func ReadCSV(r io.Reader) (*Sequence, error) {
	tz := common.GetTimezone()
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header row", ErrMisaligned)
	}

	dateIdx := -1
	labelIdx := -1
	for idx, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date":
			dateIdx = idx
		case "label", "state", "regime":
			labelIdx = idx
		}
	}
	if dateIdx == -1 || labelIdx == -1 {
		return nil, fmt.Errorf("%w: required columns date/label not found", ErrMisaligned)
	}

	dates := make([]time.Time, 0, 252)
	labels := make([]Label, 0, 252)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		dt, err := time.Parse("2006-01-02", strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrMisaligned, record[dateIdx])
		}
		dt = time.Date(dt.Year(), dt.Month(), dt.Day(), 16, 0, 0, 0, tz)

		if len(dates) > 0 && !dates[len(dates)-1].Before(dt) {
			return nil, fmt.Errorf("%w: dates not strictly increasing at %s", ErrMisaligned, dt.Format("2006-01-02"))
		}

		dates = append(dates, dt)
		labels = append(labels, Label(strings.TrimSpace(record[labelIdx])))
	}

	return NewSequence(dates, labels)
}
