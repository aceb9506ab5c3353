// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package wait

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	durations []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.durations = append(s.durations, d)
}

func TestPoll(t *testing.T) {
	t.Parallel()

	errBus := errors.New("bus fault")

	tests := []struct {
		wantErr    error
		name       string
		doneAfter  int
		failAt     int
		iterations int
		wantPolls  int
		wantSleeps int
	}{
		{
			name:       "satisfied on first poll",
			iterations: 1000,
			doneAfter:  1,
			wantPolls:  1,
			wantSleeps: 0,
		},
		{
			name:       "satisfied after several polls",
			iterations: 1000,
			doneAfter:  5,
			wantPolls:  5,
			wantSleeps: 4,
		},
		{
			name:       "budget exhausted",
			iterations: 1000,
			wantPolls:  1000,
			wantSleeps: 1000,
			wantErr:    ErrExhausted,
		},
		{
			name:       "operation error stops polling",
			iterations: 1000,
			failAt:     3,
			wantPolls:  3,
			wantSleeps: 2,
			wantErr:    errBus,
		},
		{
			name:       "zero budget",
			iterations: 0,
			wantPolls:  0,
			wantSleeps: 0,
			wantErr:    ErrExhausted,
		},
	}

	for _, tt := range tests {
		tt := tt // capture loop variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := &sleepRecorder{}
			calls := 0
			got, polls, err := Poll(Budget{
				Iterations: tt.iterations,
				Interval:   time.Millisecond,
				Sleep:      rec.sleep,
			}, func() (int, bool, error) {
				calls++
				if tt.failAt > 0 && calls == tt.failAt {
					return 0, false, errBus
				}
				return calls, tt.doneAfter > 0 && calls >= tt.doneAfter, nil
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.doneAfter, got)
			}
			assert.Equal(t, tt.wantPolls, polls)
			assert.Len(t, rec.durations, tt.wantSleeps)
			for _, d := range rec.durations {
				assert.Equal(t, time.Millisecond, d)
			}
		})
	}
}

func TestSettle(t *testing.T) {
	t.Parallel()

	rec := &sleepRecorder{}
	Settle(rec.sleep, 50*time.Millisecond)
	Settle(rec.sleep, 0)
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, rec.durations)
}
