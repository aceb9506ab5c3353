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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/rs/zerolog"
)

// CardReader runs one read cycle. *mfrc522.Device implements it.
type CardReader interface {
	ReadCardContext(ctx context.Context) (mfrc522.UID, error)
}

// MonitorOption configures a Monitor
type MonitorOption func(*Monitor)

// WithMetrics records every cycle in m
func WithMetrics(m *Metrics) MonitorOption {
	return func(mon *Monitor) {
		mon.metrics = m
	}
}

// WithLogger sets the monitor logger
func WithLogger(logger zerolog.Logger) MonitorOption {
	return func(mon *Monitor) {
		mon.logger = logger.With().Str("component", "monitor").Logger()
	}
}

// Monitor handles continuous card monitoring with state machine.
// Callbacks run on the goroutine calling Start or Poll.
type Monitor struct {
	lastActivity   time.Time
	reader         CardReader
	config         *Config
	metrics        *Metrics
	now            func() time.Time
	OnCardDetected func(uid mfrc522.UID) error
	OnCardChanged  func(uid mfrc522.UID) error
	OnCardRemoved  func(uid mfrc522.UID)
	OnPollError    func(err error)
	logger         zerolog.Logger
	state          CardState
	mu             sync.Mutex
}

// NewMonitor creates a new card monitor
func NewMonitor(reader CardReader, config *Config, opts ...MonitorOption) (*Monitor, error) {
	if reader == nil {
		return nil, fmt.Errorf("%w: nil reader", ErrInvalidConfig)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	m := &Monitor{
		reader: reader,
		config: config,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Start polls until ctx is done. The first cycle runs immediately.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	m.lastActivity = m.now()
	m.mu.Unlock()

	interval := m.config.PollInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, _ = m.Poll(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}

		if next := m.nextInterval(); next != interval {
			m.logger.Debug().Dur("interval", next).Msg("poll interval changed")
			interval = next
			ticker.Reset(interval)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll runs a single read cycle and updates the card state. It returns the
// UID on success and the read error otherwise.
func (m *Monitor) Poll(ctx context.Context) (mfrc522.UID, error) {
	start := m.now()
	uid, err := m.reader.ReadCardContext(ctx)
	outcome := classify(err)
	if err != nil && ctx.Err() != nil {
		outcome = OutcomeCanceled
	}
	m.metrics.observeCycle(outcome, m.now().Sub(start))

	switch {
	case err == nil:
		m.cardSeen(uid, start)
		return uid, nil
	case ctx.Err() != nil:
		return mfrc522.UID{}, err
	case errors.Is(err, mfrc522.ErrNoCard):
		m.cardAbsent(start)
		return mfrc522.UID{}, err
	default:
		m.handlePollingError(err)
		return mfrc522.UID{}, err
	}
}

// State returns the current card state
func (m *Monitor) State() CardState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Metrics returns the counters of this monitor
func (m *Monitor) Metrics() MonitorMetrics {
	return m.metrics.Snapshot()
}

// cardSeen updates the state for a successful read and runs the detected or
// changed callback when the UID is new.
func (m *Monitor) cardSeen(uid mfrc522.UID, at time.Time) {
	m.mu.Lock()
	m.lastActivity = at
	callback := m.OnCardChanged
	switch {
	case !m.state.Present:
		callback = m.OnCardDetected
	case m.state.LastUID == uid:
		m.state.TransitionToPresent(at)
		m.mu.Unlock()
		return
	}
	m.state.TransitionToVerifying(uid, at)
	m.mu.Unlock()

	m.metrics.cardDetected()
	m.logger.Info().Stringer("uid", uid).Msg("card detected")
	if callback != nil {
		if err := callback(uid); err != nil {
			m.metrics.callbackError()
			m.logger.Warn().Err(err).Stringer("uid", uid).Msg("card callback failed")
		}
	}

	m.mu.Lock()
	m.state.TransitionToPostVerifyGrace()
	m.mu.Unlock()
}

// cardAbsent fires removal once the card has been unseen for the timeout
func (m *Monitor) cardAbsent(at time.Time) {
	m.mu.Lock()
	if !m.state.Expired(at, m.config.CardRemovalTimeout) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.handleCardRemoval()
}

// handlePollingError handles transport faults. The card is treated as gone
// since the reader can no longer see it.
func (m *Monitor) handlePollingError(err error) {
	m.logger.Warn().Err(err).Msg("poll failed")
	if m.OnPollError != nil {
		m.OnPollError(err)
	}
	m.handleCardRemoval()
}

func (m *Monitor) handleCardRemoval() {
	m.mu.Lock()
	if !m.state.Present {
		m.mu.Unlock()
		return
	}
	uid := m.state.LastUID
	m.state.TransitionToIdle()
	m.mu.Unlock()

	m.metrics.cardRemoved()
	m.logger.Info().Stringer("uid", uid).Msg("card removed")
	if m.OnCardRemoved != nil {
		m.OnCardRemoved(uid)
	}
}

// nextInterval slows polling down after a quiet period when configured
func (m *Monitor) nextInterval() time.Duration {
	if m.config.IdlePollInterval == 0 {
		return m.config.PollInterval
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Present || m.now().Sub(m.lastActivity) < m.config.IdleAfter {
		return m.config.PollInterval
	}
	return m.config.IdlePollInterval
}

func classify(err error) string {
	switch {
	case err == nil:
		return OutcomeCard
	case errors.Is(err, mfrc522.ErrChecksumMismatch):
		return OutcomeChecksum
	case errors.Is(err, mfrc522.ErrLengthMismatch), errors.Is(err, mfrc522.ErrTransceive):
		return OutcomeProtocol
	case errors.Is(err, mfrc522.ErrNoCard):
		return OutcomeNoCard
	default:
		return OutcomeTransport
	}
}
