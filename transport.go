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

// Transport defines the full-duplex byte exchange used to reach the MFRC522
// register interface. SPI is the usual backend.
type Transport interface {
	// Tx writes w and, when r is not nil, reads len(r) bytes clocked in
	// during the same transaction.
	Tx(w, r []byte) error

	// Close releases the underlying bus
	Close() error
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportInfo is optionally implemented by transports that can describe
// themselves. It is used to label errors and log lines.
type TransportInfo interface {
	Type() TransportType
	PortName() string
}

func transportPort(t Transport) string {
	if info, ok := t.(TransportInfo); ok {
		return info.PortName()
	}
	return ""
}
