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
	"errors"
	"sort"
	"time"
)

var (
	ErrMisaligned    = errors.New("regime sequence does not align with date index")
	ErrEmptySequence = errors.New("regime sequence is empty")
)

// Label is an opaque regime identifier produced by an external model fit
type Label string

// Sequence is an ordered regime label series, one label per trading day,
// aligned 1:1 with a return series index. Immutable once constructed.
type Sequence struct {
	Dates  []time.Time
	Labels []Label
}

// NewSequence builds a sequence from parallel date and label slices
func NewSequence(dates []time.Time, labels []Label) (*Sequence, error) {
	if len(dates) == 0 {
		return nil, ErrEmptySequence
	}
	if len(dates) != len(labels) {
		return nil, ErrMisaligned
	}

	return &Sequence{
		Dates:  dates,
		Labels: labels,
	}, nil
}

// Len returns the number of observations in the sequence
func (seq *Sequence) Len() int {
	return len(seq.Labels)
}

// Distinct returns the sorted set of labels observed in the sequence
func (seq *Sequence) Distinct() []Label {
	seen := make(map[Label]bool, 8)
	for _, label := range seq.Labels {
		seen[label] = true
	}

	distinct := make([]Label, 0, len(seen))
	for label := range seen {
		distinct = append(distinct, label)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })
	return distinct
}

// AlignTo verifies the sequence shares an identical date index with dates.
// Any difference in length or ordering is an error, never a silent skip.
func (seq *Sequence) AlignTo(dates []time.Time) error {
	if len(seq.Dates) != len(dates) {
		return ErrMisaligned
	}
	for idx, dt := range seq.Dates {
		if !dt.Equal(dates[idx]) {
			return ErrMisaligned
		}
	}
	return nil
}

// Trim returns the subsequence within [begin, end] inclusive
func (seq *Sequence) Trim(begin, end time.Time) *Sequence {
	beginIdx := sort.Search(len(seq.Dates), func(i int) bool {
		return !seq.Dates[i].Before(begin)
	})
	endIdx := sort.Search(len(seq.Dates), func(i int) bool {
		return seq.Dates[i].After(end)
	})

	return &Sequence{
		Dates:  seq.Dates[beginIdx:endIdx],
		Labels: seq.Labels[beginIdx:endIdx],
	}
}
