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

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
	"github.com/ZaparooProject/go-mfrc522/internal/wait"
)

// FIFOSize is the largest payload sent, and the most response bytes read
// back, by a single transceive.
const FIFOSize = 16

// Response is the answer collected from the FIFO after a transceive.
type Response struct {
	data [FIFOSize]byte
	n    int
	// Bits is the number of valid bits the chip reported. It is computed from
	// the raw FIFO level and may exceed Len()*8 when the read-out was clamped.
	Bits int
}

// Bytes returns the bytes read from the FIFO.
func (r *Response) Bytes() []byte {
	return r.data[:r.n]
}

// Len returns the number of bytes read from the FIFO.
func (r *Response) Len() int {
	return r.n
}

// Transceive sends payload to the card and, when wantResponse is set, collects
// the answer. Payloads longer than FIFOSize are rejected.
func (d *Device) Transceive(payload []byte, wantResponse bool) (Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transceive(payload, wantResponse)
}

func (d *Device) transceive(payload []byte, wantResponse bool) (Response, error) {
	if len(payload) > FIFOSize {
		return Response{}, fmt.Errorf("%w: payload of %d bytes exceeds %d byte limit",
			ErrInvalidParameter, len(payload), FIFOSize)
	}

	if err := d.startTransceive(payload); err != nil {
		return Response{}, err
	}

	waitErr := d.waitForCompletion()
	// StartSend is cleared whatever the wait produced.
	clearErr := d.clearBits(RegBitFraming, startSend)

	err := waitErr
	if err == nil {
		err = clearErr
	}

	var resp Response
	if err == nil {
		resp, err = d.collectResponse(wantResponse)
	}

	if idleErr := d.writeRegister(RegCommand, CmdIdle); err == nil {
		err = idleErr
	}
	if err != nil {
		return Response{}, err
	}
	return resp, nil
}

func (d *Device) startTransceive(payload []byte) error {
	if err := d.writeRegister(RegComIEn, comIEnAll|comIEnInv); err != nil {
		return err
	}
	if err := d.clearBits(RegComIrq, irqSet1); err != nil {
		return err
	}
	if err := d.setBits(RegFIFOLevel, fifoFlush); err != nil {
		return err
	}
	for _, b := range payload {
		if err := d.writeRegister(RegFIFOData, b); err != nil {
			return err
		}
	}
	if err := d.writeRegister(RegCommand, CmdTransceive); err != nil {
		return err
	}
	return d.setBits(RegBitFraming, startSend)
}

func (d *Device) waitForCompletion() error {
	_, polls, err := wait.Poll(wait.Budget{
		Iterations: d.config.PollIterations,
		Interval:   d.config.PollInterval,
		Sleep:      d.sleep,
	}, func() (byte, bool, error) {
		irq, err := d.readRegister(RegComIrq)
		if err != nil {
			return 0, false, err
		}
		return irq, irq&(irqRx|irqIdle) != 0, nil
	})

	if errors.Is(err, wait.ErrExhausted) {
		d.logger.Warn().Int("polls", polls).Msg("transceive timed out waiting for the card")
		return ErrTimeout
	}
	return err
}

func (d *Device) collectResponse(wantResponse bool) (Response, error) {
	var resp Response

	errReg, err := d.readRegister(RegError)
	if err != nil {
		return resp, err
	}
	if errReg&errAbort != 0 {
		d.logger.Warn().Str("error_reg", fmt.Sprintf("0x%02X", errReg)).Msg("chip reported transceive error")
		return resp, &TransceiveError{ErrorReg: errReg}
	}

	if !wantResponse {
		return resp, nil
	}

	level, err := d.readRegister(RegFIFOLevel)
	if err != nil {
		return resp, err
	}
	control, err := d.readRegister(RegControl)
	if err != nil {
		return resp, err
	}

	n := int(level & fifoLevel)
	resp.Bits = frame.BitLength(n, control&rxLastBits)

	if n > FIFOSize {
		d.logger.Debug().Int("fifo_level", n).Int("limit", FIFOSize).Msg("clamping FIFO read-out")
		n = FIFOSize
	}
	for i := 0; i < n; i++ {
		if resp.data[i], err = d.readRegister(RegFIFOData); err != nil {
			return Response{}, err
		}
	}
	resp.n = n

	return resp, nil
}
