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

package mfrc522

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithChipConfig replaces the register values written by Init
func WithChipConfig(chip ChipConfig) Option {
	return func(d *Device) error {
		d.config.Chip = chip
		return nil
	}
}

// WithPollBudget sets how many times and how often a transceive polls for
// completion before giving up
func WithPollBudget(iterations int, interval time.Duration) Option {
	return func(d *Device) error {
		if iterations <= 0 {
			return fmt.Errorf("%w: poll iterations must be positive, got %d", ErrInvalidParameter, iterations)
		}
		if interval < 0 {
			return fmt.Errorf("%w: poll interval must not be negative", ErrInvalidParameter)
		}
		d.config.PollIterations = iterations
		d.config.PollInterval = interval
		return nil
	}
}

// WithSettleDelays sets the waits after soft reset and after enabling the antenna
func WithSettleDelays(softReset, antenna time.Duration) Option {
	return func(d *Device) error {
		if softReset < 0 || antenna < 0 {
			return fmt.Errorf("%w: settle delays must not be negative", ErrInvalidParameter)
		}
		d.config.SoftResetDelay = softReset
		d.config.AntennaDelay = antenna
		return nil
	}
}

// WithSleepFunc replaces time.Sleep for every wait the device performs
func WithSleepFunc(sleep func(time.Duration)) Option {
	return func(d *Device) error {
		if sleep == nil {
			return fmt.Errorf("%w: sleep function is nil", ErrInvalidParameter)
		}
		d.sleep = sleep
		return nil
	}
}

// WithLogger sets the logger used for device diagnostics
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Device) error {
		d.logger = logger.With().Str("component", "mfrc522").Logger()
		return nil
	}
}

// WithResetPin sets the line pulsed low during Init to hard reset the chip
func WithResetPin(pin gpio.PinOut) Option {
	return func(d *Device) error {
		d.reset = pin
		return nil
	}
}
