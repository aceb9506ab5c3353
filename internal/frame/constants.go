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

// Package frame provides register address framing and ISO14443A frame helpers for MFRC522 communication
package frame

// Register address framing. The MFRC522 SPI interface shifts the 6-bit register
// address left by one and uses the MSB as the read flag.
const (
	AddressMask = 0x7E // Valid address bits after the shift
	ReadFlag    = 0x80 // MSB set selects a register read
)

// FIFO and bit framing limits
const (
	FIFOCapacity = 64 // Bytes held by the chip FIFO
	LastBitsMask = 0x07
	BitsPerByte  = 8
)

// ISO14443A sizes for the first cascade level
const (
	// UIDSize is the length of a single-size UID.
	UIDSize = 4
	// ATQABits is the bit length of a REQA/WUPA answer.
	ATQABits = 16
	// AnticollSize is the UID plus its BCC.
	AnticollSize = UIDSize + 1
	// AnticollBits is the bit length of a complete anticollision answer.
	AnticollBits = AnticollSize * BitsPerByte
)

// WriteAddress returns the SPI address byte for writing reg.
func WriteAddress(reg byte) byte {
	return (reg << 1) & AddressMask
}

// ReadAddress returns the SPI address byte for reading reg.
func ReadAddress(reg byte) byte {
	return (reg<<1)&AddressMask | ReadFlag
}

// IsRead reports whether an address byte selects a register read.
func IsRead(addr byte) bool {
	return addr&ReadFlag != 0
}

// RegisterFromAddress recovers the register number from an address byte.
func RegisterFromAddress(addr byte) byte {
	return (addr & AddressMask) >> 1
}
