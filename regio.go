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

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// ReadRegister reads a single register. It is intended for diagnostics; the
// card operations never need it.
func (d *Device) ReadRegister(reg Register) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readRegister(reg)
}

// WriteRegister writes a single register. It is intended for diagnostics.
func (d *Device) WriteRegister(reg Register, val byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writeRegister(reg, val)
}

func (d *Device) writeRegister(reg Register, val byte) error {
	if d.transport == nil {
		return ErrTransportNotBound
	}
	d.txBuf[0] = frame.WriteAddress(byte(reg))
	d.txBuf[1] = val
	if err := d.transport.Tx(d.txBuf[:], nil); err != nil {
		return d.transportError("write "+reg.String(), err)
	}
	return nil
}

func (d *Device) readRegister(reg Register) (byte, error) {
	if d.transport == nil {
		return 0, ErrTransportNotBound
	}
	d.txBuf[0] = frame.ReadAddress(byte(reg))
	d.txBuf[1] = 0x00
	d.rxBuf = [2]byte{}
	if err := d.transport.Tx(d.txBuf[:], d.rxBuf[:]); err != nil {
		return 0, d.transportError("read "+reg.String(), err)
	}
	return d.rxBuf[1], nil
}

// writeRegs writes register/value pairs in order.
func (d *Device) writeRegs(regVals ...byte) error {
	if len(regVals)%2 != 0 {
		panic("odd number of register/value bytes")
	}
	for i := 0; i < len(regVals); i += 2 {
		if err := d.writeRegister(Register(regVals[i]), regVals[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// setBits and clearBits are read-modify-write sequences and rely on the
// caller holding d.mu.
func (d *Device) setBits(reg Register, mask byte) error {
	val, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, val|mask)
}

func (d *Device) clearBits(reg Register, mask byte) error {
	val, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, val&^mask)
}

func (d *Device) transportError(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return NewTransportError(op, transportPort(d.transport), err, ErrorTypeTransient)
}
