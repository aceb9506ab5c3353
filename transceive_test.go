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
	"sync/atomic"
	"testing"
	"time"

	testutil "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_TransceiveSequence(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	sim.SetCard(testutil.NewVirtualCard(testutil.TestUIDDeadBeef))

	resp, err := device.Transceive([]byte{0x93, 0x20}, true)
	require.NoError(t, err)

	assert.Equal(t, []testutil.RegisterWrite{
		{Reg: byte(RegComIEn), Value: 0xF7},
		{Reg: byte(RegComIrq), Value: 0x00},
		{Reg: byte(RegFIFOLevel), Value: 0x80},
		{Reg: byte(RegFIFOData), Value: 0x93},
		{Reg: byte(RegFIFOData), Value: 0x20},
		{Reg: byte(RegCommand), Value: CmdTransceive},
		{Reg: byte(RegBitFraming), Value: 0x80},
		{Reg: byte(RegBitFraming), Value: 0x00},
		{Reg: byte(RegCommand), Value: CmdIdle},
	}, sim.Writes())
	assert.Equal(t, []byte{0x93, 0x20}, sim.LastFrame())

	assert.Equal(t, 40, resp.Bits)
	assert.Equal(t, 5, resp.Len())
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x22}, resp.Bytes())
	assert.Zero(t, sim.Register(byte(RegBitFraming))&0x80, "StartSend cleared after success")
}

func TestDevice_TransceiveTimeout(t *testing.T) {
	t.Parallel()

	var sleeps atomic.Int64
	device, sim := newSimDevice(t, WithSleepFunc(func(d time.Duration) {
		if d == time.Millisecond {
			sleeps.Add(1)
		}
	}))

	_, err := device.Transceive([]byte{0x93, 0x20}, true)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.Equal(t, int64(1000), sleeps.Load(), "wait bounded by the 1000 poll budget")

	framing := sim.WritesTo(byte(RegBitFraming))
	require.NotEmpty(t, framing)
	assert.Equal(t, byte(0x00), framing[len(framing)-1], "StartSend cleared after timeout")
	assert.Zero(t, sim.Register(byte(RegBitFraming))&0x80)

	commands := sim.WritesTo(byte(RegCommand))
	assert.Equal(t, CmdIdle, commands[len(commands)-1])
}

func TestDevice_TransceiveCustomBudget(t *testing.T) {
	t.Parallel()

	var sleeps int
	device, _ := newSimDevice(t,
		WithPollBudget(25, 2*time.Millisecond),
		WithSleepFunc(func(d time.Duration) {
			if d == 2*time.Millisecond {
				sleeps++
			}
		}),
	)

	_, err := device.Transceive([]byte{0x26}, true)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 25, sleeps)
}

func TestDevice_TransceiveErrorRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		errorReg      byte
		wantErr       bool
		wantCollision bool
		wantParity    bool
		wantOverflow  bool
		wantProtocol  bool
	}{
		{name: "Clean", errorReg: 0x00},
		{name: "CRC_Only_Ignored", errorReg: 0x04},
		{name: "Collision", errorReg: 0x08, wantErr: true, wantCollision: true},
		{name: "Parity", errorReg: 0x02, wantErr: true, wantParity: true},
		{name: "Overflow", errorReg: 0x10, wantErr: true, wantOverflow: true},
		{name: "Protocol", errorReg: 0x01, wantErr: true, wantProtocol: true},
		{name: "Combined", errorReg: 0x1B, wantErr: true, wantCollision: true, wantParity: true,
			wantOverflow: true, wantProtocol: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, sim := newSimDevice(t)
			sim.SetCard(testutil.NewVirtualCard(testutil.TestUID12345678))
			sim.SetErrorRegister(tt.errorReg)

			resp, err := device.Transceive([]byte{0x93, 0x20}, true)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, 40, resp.Bits)
				return
			}

			require.ErrorIs(t, err, ErrTransceive)
			var te *TransceiveError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.errorReg, te.ErrorReg)
			assert.Equal(t, tt.wantCollision, te.Collision())
			assert.Equal(t, tt.wantParity, te.Parity())
			assert.Equal(t, tt.wantOverflow, te.BufferOverflow())
			assert.Equal(t, tt.wantProtocol, te.Protocol())
			assert.Zero(t, resp.Len())
			assert.Zero(t, sim.Register(byte(RegBitFraming))&0x80)
		})
	}
}

func TestDevice_TransceiveFIFOClamp(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	sim.SetCard(testutil.NewVirtualCard(testutil.TestUIDDeadBeef))
	sim.SetFIFOLevel(40)

	resp, err := device.Transceive([]byte{0x93, 0x20}, true)
	require.NoError(t, err)
	assert.Equal(t, 320, resp.Bits, "bit length uses the raw FIFO level")
	assert.Equal(t, FIFOSize, resp.Len(), "read-out clamped to the buffer")
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x22}, resp.Bytes()[:5])
}

func TestDevice_TransceiveNoResponseExpected(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	sim.SetCard(testutil.NewVirtualCard(testutil.TestUIDDeadBeef))

	resp, err := device.Transceive([]byte{0x93, 0x20}, false)
	require.NoError(t, err)
	assert.Zero(t, resp.Len())
	assert.Zero(t, resp.Bits)
}

func TestDevice_TransceivePayloadTooLarge(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	calls := sim.Calls()

	_, err := device.Transceive(make([]byte, FIFOSize+1), true)
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, calls, sim.Calls(), "nothing sent to the chip")
}

func TestDevice_TransceiveTransportFault(t *testing.T) {
	t.Parallel()

	busErr := errors.New("spi: transfer failed")
	device, sim := newSimDevice(t)
	// Fail during the completion poll.
	sim.SetTxError(busErr, 14)

	_, err := device.Transceive([]byte{0x26}, true)
	require.ErrorIs(t, err, busErr)
	assert.NotErrorIs(t, err, ErrTimeout)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}
