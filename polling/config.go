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
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for a Config that cannot drive a poll loop
var ErrInvalidConfig = errors.New("invalid polling config")

// Config holds the poll loop timing
type Config struct {
	// PollInterval is the time between read cycles.
	PollInterval time.Duration
	// CardRemovalTimeout is how long a present card may go unseen before
	// OnCardRemoved fires. Half of it, the post-detection grace, must exceed
	// one poll interval since a card left in the field answers only every
	// other request.
	CardRemovalTimeout time.Duration
	// IdlePollInterval, when non-zero, replaces PollInterval after no card
	// has been seen for IdleAfter.
	IdlePollInterval time.Duration
	IdleAfter        time.Duration
}

// DefaultConfig returns the 500 ms poll loop of the access daemon
func DefaultConfig() *Config {
	return &Config{
		PollInterval:       500 * time.Millisecond,
		CardRemovalTimeout: 1500 * time.Millisecond,
		IdleAfter:          30 * time.Second,
	}
}

// Validate checks the config for values the monitor cannot run with
func (c *Config) Validate() error {
	switch {
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval must be positive, got %v", ErrInvalidConfig, c.PollInterval)
	case c.CardRemovalTimeout/2 <= c.PollInterval:
		return fmt.Errorf("%w: removal timeout %v must exceed twice the poll interval %v",
			ErrInvalidConfig, c.CardRemovalTimeout, c.PollInterval)
	case c.IdlePollInterval < 0:
		return fmt.Errorf("%w: idle poll interval must not be negative", ErrInvalidConfig)
	case c.IdlePollInterval > 0 && c.IdleAfter <= 0:
		return fmt.Errorf("%w: idle poll interval set without idle delay", ErrInvalidConfig)
	}
	return nil
}
