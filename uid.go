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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// UID is a single-size ISO14443A card identifier.
type UID [frame.UIDSize]byte

// Checksum returns the BCC of the UID.
func (u UID) Checksum() byte {
	return frame.CalculateBCC(u[:])
}

// String returns the UID as upper-case hex, for example "DEADBEEF".
func (u UID) String() string {
	return strings.ToUpper(hex.EncodeToString(u[:]))
}

// Bytes returns a copy of the UID bytes.
func (u UID) Bytes() []byte {
	b := make([]byte, len(u))
	copy(b, u[:])
	return b
}

// IsZero reports whether every UID byte is zero.
func (u UID) IsZero() bool {
	return u == UID{}
}

// MarshalText implements encoding.TextMarshaler.
func (u UID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UID) UnmarshalText(text []byte) error {
	parsed, err := ParseUID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUID parses a hex UID. Bytes may be separated by colons, dashes or
// spaces, and a leading 0x is accepted: "DE:AD:BE:EF", "de ad be ef" and
// "0xDEADBEEF" all parse to the same UID.
func ParseUID(s string) (UID, error) {
	var uid UID

	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
		clean = clean[2:]
	}
	clean = strings.NewReplacer(":", "", "-", "", " ", "").Replace(clean)

	b, err := hex.DecodeString(clean)
	if err != nil {
		return uid, fmt.Errorf("%w: UID %q is not hex: %w", ErrInvalidParameter, s, err)
	}
	if len(b) != len(uid) {
		return uid, fmt.Errorf("%w: UID %q has %d bytes, want %d", ErrInvalidParameter, s, len(b), len(uid))
	}
	copy(uid[:], b)
	return uid, nil
}
