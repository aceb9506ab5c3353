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

// Package eventlog records access decisions and reader events. Events are
// CBOR encoded with integer keys and can be written to a file, published on
// Redis, or both.
package eventlog

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies an event.
type Kind uint8

const (
	// KindAccess is a whitelist decision for a presented card.
	KindAccess Kind = 0
	// KindCardRemoved is logged when a card leaves the field.
	KindCardRemoved Kind = 1
	// KindReaderError is a transport fault reported by the poll loop.
	KindReaderError Kind = 2
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAccess:
		return "ACCESS"
	case KindCardRemoved:
		return "CARD_REMOVED"
	case KindReaderError:
		return "READER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is one audit record.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ID uniquely identifies the event (UUID).
	ID string `cbor:"2,keyasint"`

	// Reader names the reader that produced the event.
	Reader string `cbor:"3,keyasint,omitempty"`

	// UID is the card identifier in upper-case hex.
	UID string `cbor:"4,keyasint,omitempty"`

	// Name is the whitelist entry name for granted cards.
	Name string `cbor:"5,keyasint,omitempty"`

	// Label is the message shown to the user.
	Label string `cbor:"6,keyasint,omitempty"`

	// Error holds the fault text for KindReaderError.
	Error string `cbor:"7,keyasint,omitempty"`

	Kind    Kind `cbor:"8,keyasint"`
	Granted bool `cbor:"9,keyasint"`
}

// NewEvent returns an event of kind with a fresh ID.
func NewEvent(kind Kind, at time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: at,
		Kind:      kind,
	}
}
