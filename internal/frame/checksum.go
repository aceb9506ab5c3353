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

package frame

// CalculateBCC returns the block check character of data: the XOR of all bytes.
func CalculateBCC(data []byte) byte {
	var bcc byte
	for _, b := range data {
		bcc ^= b
	}
	return bcc
}

// ValidateBCC reports whether bcc matches the XOR of data.
func ValidateBCC(data []byte, bcc byte) bool {
	return CalculateBCC(data) == bcc
}

// BitLength returns the number of valid bits in a response of n bytes whose
// final byte carries lastBits valid bits. Zero lastBits means the final byte is
// complete.
func BitLength(n int, lastBits byte) int {
	if n <= 0 {
		return 0
	}
	lastBits &= LastBitsMask
	if lastBits > 0 {
		return (n-1)*BitsPerByte + int(lastBits)
	}
	return n * BitsPerByte
}

// SplitBits is the inverse of BitLength: it returns the byte count and the
// number of valid bits in the final byte needed to carry bits.
func SplitBits(bits int) (n int, lastBits byte) {
	if bits <= 0 {
		return 0, 0
	}
	n = (bits + BitsPerByte - 1) / BitsPerByte
	return n, byte(bits % BitsPerByte)
}
