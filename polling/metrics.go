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
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Poll cycle outcomes used as the "outcome" label.
const (
	OutcomeCard      = "card"
	OutcomeNoCard    = "no_card"
	OutcomeChecksum  = "checksum"
	OutcomeProtocol  = "protocol"
	OutcomeTransport = "transport"
	OutcomeCanceled  = "canceled"
)

// MonitorMetrics is a point-in-time copy of the monitor counters
type MonitorMetrics struct {
	PollCycles      int64         // Total number of polling cycles
	PollErrors      int64         // Cycles that failed with a transport fault
	CardsDetected   int64         // New or changed cards
	CallbackErrors  int64         // Detection callbacks that returned an error
	LastPollLatency time.Duration // Duration of last polling cycle
}

// Metrics counts poll cycles. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cycles         *prometheus.CounterVec
	duration       prometheus.Histogram
	present        prometheus.Gauge
	pollCycles     atomic.Int64
	pollErrors     atomic.Int64
	cardsDetected  atomic.Int64
	callbackErrors atomic.Int64
	lastLatency    atomic.Int64
}

// NewMetrics creates the poll collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mfrc522",
				Subsystem: "poll",
				Name:      "cycles_total",
				Help:      "Read cycles by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mfrc522",
				Subsystem: "poll",
				Name:      "cycle_duration_seconds",
				Help:      "Read cycle duration in seconds.",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		present: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "mfrc522",
				Subsystem: "poll",
				Name:      "card_present",
				Help:      "1 while a card is in the field.",
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.cycles, m.duration, m.present} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register poll metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.pollCycles.Add(1)
	m.lastLatency.Store(d.Nanoseconds())
	if outcome == OutcomeTransport {
		m.pollErrors.Add(1)
	}
	m.cycles.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) cardDetected() {
	if m == nil {
		return
	}
	m.cardsDetected.Add(1)
	m.present.Set(1)
}

func (m *Metrics) cardRemoved() {
	if m == nil {
		return
	}
	m.present.Set(0)
}

func (m *Metrics) callbackError() {
	if m == nil {
		return
	}
	m.callbackErrors.Add(1)
}

// Snapshot returns current operational metrics
func (m *Metrics) Snapshot() MonitorMetrics {
	if m == nil {
		return MonitorMetrics{}
	}
	return MonitorMetrics{
		PollCycles:      m.pollCycles.Load(),
		PollErrors:      m.pollErrors.Load(),
		CardsDetected:   m.cardsDetected.Load(),
		CallbackErrors:  m.callbackErrors.Load(),
		LastPollLatency: time.Duration(m.lastLatency.Load()),
	}
}
