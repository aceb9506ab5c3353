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

// Package wait provides the bounded polling loops used while the reader chip
// works through a command.
package wait

import (
	"errors"
	"time"
)

// ErrExhausted is returned when a poll runs out of iterations before its
// condition is satisfied.
var ErrExhausted = errors.New("poll budget exhausted")

// Operation represents a single poll of the chip.
// Returns: data, done, error
// - data: the value observed by this poll
// - done: true once the awaited condition holds
// - error: a fault that should stop polling immediately
type Operation[T any] func() (T, bool, error)

// Budget bounds a poll by iteration count rather than wall-clock time, so a
// slow or stuck chip cannot hang the caller.
type Budget struct {
	// Sleep pauses between polls. Nil means time.Sleep.
	Sleep      func(time.Duration)
	Iterations int
	Interval   time.Duration
}

// Poll runs operation until it reports done, returns an error, or the budget
// runs out. The interval sleep follows every unsatisfied poll, including the
// last one. The returned count is the number of polls performed.
func Poll[T any](budget Budget, operation Operation[T]) (result T, polls int, err error) {
	sleep := budget.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for polls < budget.Iterations {
		polls++
		var done bool
		result, done, err = operation()
		if err != nil {
			return result, polls, err
		}
		if done {
			return result, polls, nil
		}
		if budget.Interval > 0 {
			sleep(budget.Interval)
		}
	}

	return result, polls, ErrExhausted
}

// Settle pauses for d using sleep, or time.Sleep when sleep is nil.
func Settle(sleep func(time.Duration), d time.Duration) {
	if d <= 0 {
		return
	}
	if sleep == nil {
		sleep = time.Sleep
	}
	sleep(d)
}
