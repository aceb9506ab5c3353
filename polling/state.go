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

package polling

import (
	"time"

	"github.com/ZaparooProject/go-mfrc522"
)

// CardDetectionState represents the finite state machine for card detection
type CardDetectionState int

const (
	StateIdle CardDetectionState = iota
	StateCardPresent
	StateVerifying
	StatePostVerifyGrace
)

// String returns the state name
func (s CardDetectionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCardPresent:
		return "card-present"
	case StateVerifying:
		return "verifying"
	case StatePostVerifyGrace:
		return "post-verify-grace"
	default:
		return "unknown"
	}
}

// CardState tracks the state of a card in the reader field
type CardState struct {
	LastSeenTime    time.Time
	VerifyStartTime time.Time
	DetectionState  CardDetectionState
	LastUID         mfrc522.UID
	Present         bool
}

// TransitionToVerifying marks the start of a detection callback. Removal is
// suspended until it returns.
func (cs *CardState) TransitionToVerifying(uid mfrc522.UID, at time.Time) {
	cs.DetectionState = StateVerifying
	cs.Present = true
	cs.LastUID = uid
	cs.LastSeenTime = at
	cs.VerifyStartTime = at
}

// TransitionToPostVerifyGrace moves to the short grace period after a callback
func (cs *CardState) TransitionToPostVerifyGrace() {
	cs.DetectionState = StatePostVerifyGrace
	cs.VerifyStartTime = time.Time{}
}

// TransitionToPresent records another sighting of the current card
func (cs *CardState) TransitionToPresent(at time.Time) {
	cs.DetectionState = StateCardPresent
	cs.LastSeenTime = at
}

// TransitionToIdle resets to idle state
func (cs *CardState) TransitionToIdle() {
	*cs = CardState{}
}

// RemovalTimeout returns how long the card may go unseen in the current
// state before it counts as removed. Zero means removal cannot fire.
func (cs *CardState) RemovalTimeout(timeout time.Duration) time.Duration {
	switch cs.DetectionState {
	case StateCardPresent:
		return timeout
	case StatePostVerifyGrace:
		return timeout / 2
	default:
		return 0
	}
}

// Expired reports whether the card has been absent long enough at now
func (cs *CardState) Expired(now time.Time, timeout time.Duration) bool {
	limit := cs.RemovalTimeout(timeout)
	if !cs.Present || limit == 0 {
		return false
	}
	return now.Sub(cs.LastSeenTime) >= limit
}
