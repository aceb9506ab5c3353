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

/*
Package mfrc522 provides a pure Go driver for NXP MFRC522 contactless reader ICs.

The MFRC522 is a 13.56 MHz reader/writer for ISO14443A cards. This library
talks to its register interface over SPI and implements the card detection
cycle: a REQA presence request followed by cascade level 1 anticollision,
producing a 4-byte UID whose block check character (BCC) has been verified.

Features:
  - Register access over any full-duplex byte transport
  - Bounded completion polling with an injectable sleep for tests
  - Bit-accurate response lengths for short frames
  - UID checksum validation
  - Optional hardware reset line via periph.io GPIO
  - Structured logging through zerolog

Basic Usage:

	import (
	    "github.com/ZaparooProject/go-mfrc522"
	    "github.com/ZaparooProject/go-mfrc522/transport/spi"
	)

	// Open the SPI bus the reader is wired to
	transport, err := spi.Open(spi.Config{Port: "/dev/spidev0.0"})
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Create and initialize the device
	device, err := mfrc522.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	// Look for a card
	uid, err := device.ReadCard()
	switch {
	case errors.Is(err, mfrc522.ErrNoCard):
	    // nothing in the field, try again later
	case err != nil:
	    log.Fatal(err)
	default:
	    fmt.Printf("Card detected: %s\n", uid)
	}

Error Handling:

A detection cycle that finds no valid card returns an error matching
ErrNoCard and the specific cause:

	if errors.Is(err, mfrc522.ErrChecksumMismatch) {
	    // a card answered but its UID was corrupted in flight
	}

Transport faults are returned as *TransportError and never match ErrNoCard.
The driver does not retry; callers poll again on their own schedule, and
IsRetryable reports whether that is worthwhile.

Thread Safety:

Device methods may be called from multiple goroutines. Each operation holds
the device lock for its whole duration, including the complete REQA and
anticollision exchange of ReadCard.
*/
package mfrc522
