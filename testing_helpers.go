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
	"sync"
	"time"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// RegisterWrite is one register write observed by MockTransport.
type RegisterWrite struct {
	Reg   Register
	Value byte
}

// MockTransport is a register map that records every access. Reads return
// queued values first, then the last value written or set.
type MockTransport struct {
	err       error
	queued    map[Register][]byte
	failCalls map[int]error
	writes    []RegisterWrite
	frames    [][]byte
	regs      [64]byte
	failAfter int
	calls     int
	mu        sync.Mutex
	closed    bool
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		queued:    make(map[Register][]byte),
		failCalls: make(map[int]error),
	}
}

// Tx implements Transport
func (m *MockTransport) Tx(w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrTransportClosed
	}
	m.calls++
	if m.err != nil && m.calls > m.failAfter {
		return m.err
	}
	if err := m.failCalls[m.calls]; err != nil {
		return err
	}
	m.frames = append(m.frames, append([]byte(nil), w...))
	if len(w) < 2 {
		return nil
	}

	reg := Register(frame.RegisterFromAddress(w[0]))
	if !frame.IsRead(w[0]) {
		m.regs[reg] = w[1]
		m.writes = append(m.writes, RegisterWrite{Reg: reg, Value: w[1]})
		return nil
	}

	val := m.regs[reg]
	if q := m.queued[reg]; len(q) > 0 {
		val = q[0]
		m.queued[reg] = q[1:]
	}
	if len(r) >= 2 {
		r[1] = val
	}
	return nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type implements TransportInfo
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// PortName implements TransportInfo
func (*MockTransport) PortName() string {
	return "mock"
}

// SetRegister sets the value returned by reads of reg
func (m *MockTransport) SetRegister(reg Register, val byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[reg] = val
}

// Register returns the current value of reg
func (m *MockTransport) Register(reg Register) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[reg]
}

// QueueReads queues values returned by the next reads of reg, in order
func (m *MockTransport) QueueReads(reg Register, vals ...byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued[reg] = append(m.queued[reg], vals...)
}

// SetError makes every Tx after the first n fail with err
func (m *MockTransport) SetError(err error, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.failAfter = n
}

// FailCall makes only the nth Tx call, counted from 1, fail with err
func (m *MockTransport) FailCall(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCalls[n] = err
}

// Writes returns all register writes in order
func (m *MockTransport) Writes() []RegisterWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RegisterWrite(nil), m.writes...)
}

// WritesTo returns the values written to reg in order
func (m *MockTransport) WritesTo(reg Register) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	var vals []byte
	for _, w := range m.writes {
		if w.Reg == reg {
			vals = append(vals, w.Value)
		}
	}
	return vals
}

// Frames returns the raw bytes of every Tx write buffer
func (m *MockTransport) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.frames...)
}

// Calls returns the number of Tx calls
func (m *MockTransport) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// IsClosed reports whether Close was called
func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// BlockingMockTransport is a mock transport whose Tx blocks until Unblock is called.
// This is used for testing that a detection cycle holds the device lock.
type BlockingMockTransport struct {
	blockChan chan struct{}
	entered   chan struct{}
	timeout   time.Duration
	mu        sync.Mutex
	closed    bool
}

// NewBlockingMockTransport creates a new blocking mock transport
func NewBlockingMockTransport() *BlockingMockTransport {
	return &BlockingMockTransport{
		blockChan: make(chan struct{}),
		entered:   make(chan struct{}, 1),
		timeout:   5 * time.Second,
	}
}

// Tx blocks until Unblock() is called, the timeout expires, or the transport is closed
func (m *BlockingMockTransport) Tx(_, _ []byte) error {
	m.mu.Lock()
	blockChan := m.blockChan
	closed := m.closed
	timeout := m.timeout
	m.mu.Unlock()

	if closed {
		return ErrTransportClosed
	}

	select {
	case m.entered <- struct{}{}:
	default:
	}

	select {
	case <-blockChan:
	case <-time.After(timeout):
		return NewTransportError("Tx", "mock", ErrTimeout, ErrorTypeTimeout)
	}
	return nil
}

// Entered is signalled when a Tx call starts waiting
func (m *BlockingMockTransport) Entered() <-chan struct{} {
	return m.entered
}

// Unblock releases every Tx call currently waiting
func (m *BlockingMockTransport) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		close(m.blockChan)
		m.blockChan = make(chan struct{})
	}
}

// SetTimeout bounds how long Tx waits for Unblock
func (m *BlockingMockTransport) SetTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
}

// Close unblocks all operations and marks transport as closed
func (m *BlockingMockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.blockChan)
	}
	return nil
}
