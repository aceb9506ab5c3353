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
	"errors"
	"fmt"
)

// Common errors
var (
	// Card exchange errors
	ErrTimeout          = errors.New("transceive timeout")
	ErrTransceive       = errors.New("transceive error")
	ErrLengthMismatch   = errors.New("response length mismatch")
	ErrChecksumMismatch = errors.New("UID checksum mismatch")
	ErrNoCard           = errors.New("no card detected")

	// Device errors
	ErrTransportNotBound = errors.New("transport not bound")
	ErrTransportClosed   = errors.New("transport closed")
	ErrInvalidParameter  = errors.New("invalid parameter")
)

// ErrorType classifies errors for callers that decide whether to try again.
type ErrorType int

const (
	// ErrorTypePermanent errors will not clear by retrying.
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient errors may clear on the next attempt.
	ErrorTypeTransient
	// ErrorTypeTimeout errors mean the chip did not signal completion in time.
	ErrorTypeTimeout
)

// String returns the error type name.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError wraps a failure of the byte transport itself.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error. Everything except permanent
// errors is marked retryable.
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Err:       err,
		Op:        op,
		Port:      port,
		Type:      errType,
		Retryable: errType != ErrorTypePermanent,
	}
}

// TransceiveError reports error flags raised by the chip during a transceive.
type TransceiveError struct {
	ErrorReg byte
}

// Error implements the error interface
func (e *TransceiveError) Error() string {
	return fmt.Sprintf("transceive error: error register 0x%02X", e.ErrorReg)
}

// Is makes errors.Is(err, ErrTransceive) match.
func (*TransceiveError) Is(target error) bool {
	return target == ErrTransceive
}

// Collision reports a bit collision.
func (e *TransceiveError) Collision() bool { return e.ErrorReg&errColl != 0 }

// Parity reports a parity check failure.
func (e *TransceiveError) Parity() bool { return e.ErrorReg&errParity != 0 }

// BufferOverflow reports that the FIFO was full when the chip received data.
func (e *TransceiveError) BufferOverflow() bool { return e.ErrorReg&errOverflow != 0 }

// Protocol reports an SOF or frame length violation.
func (e *TransceiveError) Protocol() bool { return e.ErrorReg&errProtocol != 0 }

// Stage names used in LengthError
const (
	StageRequest       = "request"
	StageAnticollision = "anticollision"
)

// LengthError reports a card answer with an unexpected number of bits.
type LengthError struct {
	Stage string
	Bits  int
	Want  int
}

// Error implements the error interface
func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: received %d bits, want %d", e.Stage, e.Bits, e.Want)
}

// Is makes errors.Is(err, ErrLengthMismatch) match.
func (*LengthError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// ChecksumError reports a UID whose BCC does not match.
type ChecksumError struct {
	Computed byte
	Received byte
}

// Error implements the error interface
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("UID checksum mismatch: computed 0x%02X, received 0x%02X", e.Computed, e.Received)
}

// Is makes errors.Is(err, ErrChecksumMismatch) match.
func (*ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// IsRetryable returns true if the error is likely to clear on another attempt
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	return GetErrorType(err) != ErrorTypePermanent
}

// GetErrorType returns the classification of err
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransceive),
		errors.Is(err, ErrLengthMismatch),
		errors.Is(err, ErrChecksumMismatch):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}

// noCard wraps a failed detection cycle so it matches both ErrNoCard and the
// cause. Transport faults pass through untouched.
func noCard(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNoCard, err)
}
