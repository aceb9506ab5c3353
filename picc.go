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
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// ISO14443A short frame commands accepted by Request
const (
	PICCReqIdle byte = 0x26 // REQA: wakes cards in the idle state
	PICCWakeUp  byte = 0x52 // WUPA: wakes idle and halted cards
)

// Anticollision command for cascade level 1
const (
	piccSelectCL1   = 0x93
	piccAnticollNVB = 0x20 // NVB: two valid bytes, SEL and NVB only
)

// CycleState is the position of the card exchange state machine.
type CycleState int

const (
	// CycleIdle means no exchange has run yet.
	CycleIdle CycleState = iota
	// CycleRequestSent means REQA was sent and the answer is being judged.
	CycleRequestSent
	// CycleAnticollSent means the anticollision command was sent.
	CycleAnticollSent
	// CycleValidated means the last exchange produced a UID with a matching BCC.
	CycleValidated
	// CycleChecksumFailed means the last UID failed its BCC check.
	CycleChecksumFailed
	// CycleTimeout means the chip never signalled completion.
	CycleTimeout
	// CycleError covers chip error flags, short answers and transport faults.
	CycleError
)

// String returns the state name.
func (s CycleState) String() string {
	switch s {
	case CycleIdle:
		return "idle"
	case CycleRequestSent:
		return "request-sent"
	case CycleAnticollSent:
		return "anticoll-sent"
	case CycleValidated:
		return "validated"
	case CycleChecksumFailed:
		return "checksum-failed"
	case CycleTimeout:
		return "timeout"
	case CycleError:
		return "error"
	default:
		return fmt.Sprintf("CycleState(%d)", int(s))
	}
}

// Request sends a REQA or WUPA short frame and reports whether a card
// answered with a well formed ATQA. A false result always carries the reason.
func (d *Device) Request(mode byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.request(mode)
}

func (d *Device) request(mode byte) (bool, error) {
	if mode != PICCReqIdle && mode != PICCWakeUp {
		return false, fmt.Errorf("%w: request mode 0x%02X", ErrInvalidParameter, mode)
	}

	if err := d.writeRegister(RegBitFraming, shortFrame); err != nil {
		d.lastCycle = CycleError
		_ = d.writeRegister(RegBitFraming, fullFrame)
		return false, err
	}
	d.lastCycle = CycleRequestSent

	resp, err := d.transceive([]byte{mode}, true)
	// Back to whole-byte framing for the exchanges that follow.
	if restoreErr := d.writeRegister(RegBitFraming, fullFrame); err == nil {
		err = restoreErr
	}
	if err != nil {
		d.failCycle(err)
		return false, err
	}

	if resp.Bits != frame.ATQABits {
		d.lastCycle = CycleError
		return false, &LengthError{Stage: StageRequest, Bits: resp.Bits, Want: frame.ATQABits}
	}
	return true, nil
}

// Anticollision runs the cascade level 1 anticollision exchange and returns
// the UID once its BCC has been checked.
func (d *Device) Anticollision() (UID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.anticollision()
}

func (d *Device) anticollision() (UID, error) {
	var uid UID

	if err := d.writeRegister(RegBitFraming, fullFrame); err != nil {
		d.lastCycle = CycleError
		return uid, err
	}
	d.lastCycle = CycleAnticollSent

	resp, err := d.transceive([]byte{piccSelectCL1, piccAnticollNVB}, true)
	if err != nil {
		d.failCycle(err)
		return uid, err
	}

	if resp.Bits < frame.AnticollBits || resp.Len() < frame.AnticollSize {
		d.logger.Warn().Int("bits", resp.Bits).Msg("anticollision answer too short")
		d.lastCycle = CycleError
		return uid, &LengthError{Stage: StageAnticollision, Bits: resp.Bits, Want: frame.AnticollBits}
	}

	data := resp.Bytes()
	copy(uid[:], data[:frame.UIDSize])
	received := data[frame.UIDSize]
	if computed := uid.Checksum(); computed != received {
		d.logger.Warn().
			Str("computed", fmt.Sprintf("0x%02X", computed)).
			Str("received", fmt.Sprintf("0x%02X", received)).
			Msg("UID checksum mismatch")
		d.lastCycle = CycleChecksumFailed
		return UID{}, &ChecksumError{Computed: computed, Received: received}
	}

	d.lastCycle = CycleValidated
	return uid, nil
}

// ReadCard runs one detection cycle: REQA followed by anticollision. When no
// valid card answers the error matches ErrNoCard as well as the specific
// cause. Transport faults are returned as they are.
func (d *Device) ReadCard() (UID, error) {
	return d.ReadCardContext(context.Background())
}

// ReadCardContext is ReadCard with a context checked before the cycle starts.
// A cycle in progress always runs to completion.
func (d *Device) ReadCardContext(ctx context.Context) (UID, error) {
	if err := ctx.Err(); err != nil {
		return UID{}, fmt.Errorf("read card: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.request(PICCReqIdle); err != nil {
		return UID{}, noCard(err)
	}

	uid, err := d.anticollision()
	if err != nil {
		return UID{}, noCard(err)
	}

	d.logger.Info().Stringer("uid", uid).Msg("card detected")
	return uid, nil
}

func (d *Device) failCycle(err error) {
	if errors.Is(err, ErrTimeout) {
		d.lastCycle = CycleTimeout
		return
	}
	d.lastCycle = CycleError
}
