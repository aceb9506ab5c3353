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

package testing

import "github.com/ZaparooProject/go-mfrc522/internal/frame"

// UIDs used across the test suites
var (
	TestUIDDeadBeef = [frame.UIDSize]byte{0xDE, 0xAD, 0xBE, 0xEF}
	TestUID12345678 = [frame.UIDSize]byte{0x12, 0x34, 0x56, 0x78}
	TestUIDUnknown  = [frame.UIDSize]byte{0xAA, 0xBB, 0xCC, 0xDD}
)

// ATQA of a MIFARE Classic 1K card
var DefaultATQA = [2]byte{0x04, 0x00}

// BuildATQAResponse creates the two byte answer to REQA/WUPA
func BuildATQAResponse(atqa [2]byte) []byte {
	return []byte{atqa[0], atqa[1]}
}

// BuildAnticollisionResponse creates a cascade level 1 answer: the UID
// followed by its BCC
func BuildAnticollisionResponse(uid [frame.UIDSize]byte) []byte {
	return BuildAnticollisionResponseWithBCC(uid, frame.CalculateBCC(uid[:]))
}

// BuildAnticollisionResponseWithBCC creates an anticollision answer with an
// explicit, possibly wrong, BCC
func BuildAnticollisionResponseWithBCC(uid [frame.UIDSize]byte, bcc byte) []byte {
	resp := make([]byte, 0, frame.AnticollSize)
	resp = append(resp, uid[:]...)
	return append(resp, bcc)
}
