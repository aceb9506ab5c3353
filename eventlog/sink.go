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

package eventlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("event sink closed")

// Sink stores events.
type Sink interface {
	Record(ctx context.Context, event Event) error
	Close() error
}

// FileSink appends CBOR events to a writer, normally a file.
// It is safe for concurrent use.
type FileSink struct {
	w       io.WriteCloser
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// OpenFileSink opens path for appending, creating it with mode 0644.
func OpenFileSink(path string) (*FileSink, error) {
	// #nosec G302 -- audit log is meant to be readable by operators
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	return NewFileSink(f), nil
}

// NewFileSink writes events to w. Close closes w.
func NewFileSink(w io.WriteCloser) *FileSink {
	return &FileSink{
		w:       w,
		encoder: encMode.NewEncoder(w),
	}
}

// Record writes one event.
func (s *FileSink) Record(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// Close closes the underlying writer. It is safe to call more than once.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}

// MultiSink sends events to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a MultiSink. Nil sinks are skipped.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Len returns the number of sinks.
func (m *MultiSink) Len() int {
	return len(m.sinks)
}

// Record sends the event to every sink and joins their errors.
func (m *MultiSink) Record(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Sink = (*FileSink)(nil)
	_ Sink = (*MultiSink)(nil)
	_ Sink = (*RedisSink)(nil)
)
