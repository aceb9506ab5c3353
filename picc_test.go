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
	"strconv"
	"testing"

	testutil "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_ReadCard_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr   error
		card      func() *testutil.VirtualCard
		name      string
		wantUID   string
		wantCycle CycleState
	}{
		{
			name: "DEADBEEF_Accepted",
			card: func() *testutil.VirtualCard {
				return testutil.NewVirtualCard(testutil.TestUIDDeadBeef)
			},
			wantUID:   "DEADBEEF",
			wantCycle: CycleValidated,
		},
		{
			name: "12345678_Accepted",
			card: func() *testutil.VirtualCard {
				return testutil.NewVirtualCard(testutil.TestUID12345678)
			},
			wantUID:   "12345678",
			wantCycle: CycleValidated,
		},
		{
			name: "Corrupted_BCC_Rejected",
			card: func() *testutil.VirtualCard {
				card := testutil.NewVirtualCard(testutil.TestUIDDeadBeef)
				card.BCC = 0x00
				return card
			},
			wantErr:   ErrChecksumMismatch,
			wantCycle: CycleChecksumFailed,
		},
		{
			name: "Short_Anticollision_Rejected",
			card: func() *testutil.VirtualCard {
				card := testutil.NewVirtualCard(testutil.TestUIDDeadBeef)
				card.AnticollBits = 32
				return card
			},
			wantErr:   ErrLengthMismatch,
			wantCycle: CycleError,
		},
		{
			name:      "No_Card",
			card:      func() *testutil.VirtualCard { return nil },
			wantErr:   ErrTimeout,
			wantCycle: CycleTimeout,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, sim := newSimDevice(t)
			sim.SetCard(tt.card())

			uid, err := device.ReadCard()

			assert.Equal(t, tt.wantCycle, device.LastCycle())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, ErrNoCard)
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, uid.IsZero(), "no partial UID on failure")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUID, uid.String())
			assert.Equal(t, []byte{0x93, 0x20}, sim.LastFrame())
		})
	}
}

func TestDevice_ReadCard_CheckByteIsXOR(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		uid     [4]byte
		bcc     byte
	}{
		{name: "DEADBEEF_0x22", uid: testutil.TestUIDDeadBeef, bcc: 0x22},
		{name: "12345678_0x08", uid: testutil.TestUID12345678, bcc: 0x08},
		{name: "DEADBEEF_0x60", uid: testutil.TestUIDDeadBeef, bcc: 0x60, wantErr: ErrChecksumMismatch},
		{name: "12345678_0x5A", uid: testutil.TestUID12345678, bcc: 0x5A, wantErr: ErrChecksumMismatch},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, sim := newSimDevice(t)
			card := testutil.NewVirtualCard(tt.uid)
			card.BCC = tt.bcc
			sim.SetCard(card)

			uid, err := device.ReadCard()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, UID(tt.uid), uid)
		})
	}
}

func TestDevice_ReadCard_ShortAnticollisionSkipsChecksum(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	card := testutil.NewVirtualCard(testutil.TestUIDDeadBeef)
	card.AnticollBits = 32
	card.BCC = 0x00
	sim.SetCard(card)

	_, err := device.ReadCard()
	var le *LengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, StageAnticollision, le.Stage)
	assert.Equal(t, 32, le.Bits)
	assert.Equal(t, 40, le.Want)
	assert.NotErrorIs(t, err, ErrChecksumMismatch)
}

func TestDevice_Anticollision_BCCProperty(t *testing.T) {
	t.Parallel()

	uids := [][4]byte{
		testutil.TestUIDDeadBeef,
		testutil.TestUID12345678,
		{0x00, 0x00, 0x00, 0x00},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0x01, 0x02, 0x04, 0x08},
	}

	for _, raw := range uids {
		raw := raw
		want := raw[0] ^ raw[1] ^ raw[2] ^ raw[3]
		t.Run(UID(raw).String(), func(t *testing.T) {
			t.Parallel()

			device, sim := newSimDevice(t)
			card := testutil.NewVirtualCard(raw)
			sim.SetCard(card)

			uid, err := device.Anticollision()
			require.NoError(t, err)
			assert.Equal(t, UID(raw), uid)
			assert.Equal(t, want, uid.Checksum())

			for _, bcc := range []byte{want ^ 0x01, want ^ 0x80, ^want} {
				card.BCC = bcc
				uid, err = device.Anticollision()
				var ce *ChecksumError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, want, ce.Computed)
				assert.Equal(t, bcc, ce.Received)
				assert.True(t, uid.IsZero())
			}
		})
	}
}

func TestDevice_Anticollision_ShortBitCounts(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{0, 8, 32, 36, 39} {
		bits := bits
		t.Run(strconv.Itoa(bits)+"_bits", func(t *testing.T) {
			t.Parallel()

			device, sim := newSimDevice(t)
			card := testutil.NewVirtualCard(testutil.TestUIDDeadBeef)
			card.AnticollBits = bits
			sim.SetCard(card)

			uid, err := device.Anticollision()
			require.ErrorIs(t, err, ErrLengthMismatch)
			assert.NotErrorIs(t, err, ErrChecksumMismatch)
			assert.True(t, uid.IsZero())
		})
	}
}

func TestDevice_Request(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr     error
		name        string
		mode        byte
		atqaBits    int
		noCard      bool
		wantPresent bool
	}{
		{name: "REQA_16_Bits", mode: PICCReqIdle, atqaBits: 16, wantPresent: true},
		{name: "WUPA_16_Bits", mode: PICCWakeUp, atqaBits: 16, wantPresent: true},
		{name: "Short_ATQA", mode: PICCReqIdle, atqaBits: 12, wantErr: ErrLengthMismatch},
		{name: "Long_ATQA", mode: PICCReqIdle, atqaBits: 24, wantErr: ErrLengthMismatch},
		{name: "Single_Byte", mode: PICCReqIdle, atqaBits: 8, wantErr: ErrLengthMismatch},
		{name: "Seventeen_Bits", mode: PICCReqIdle, atqaBits: 17, wantErr: ErrLengthMismatch},
		{name: "No_Card", mode: PICCReqIdle, noCard: true, wantErr: ErrTimeout},
		{name: "Invalid_Mode", mode: 0x93, wantErr: ErrInvalidParameter},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, sim := newSimDevice(t)
			if !tt.noCard {
				card := testutil.NewVirtualCard(testutil.TestUIDDeadBeef)
				card.ATQABits = tt.atqaBits
				sim.SetCard(card)
			}

			present, err := device.Request(tt.mode)
			assert.Equal(t, tt.wantPresent, present)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			if tt.wantErr == ErrInvalidParameter {
				assert.Empty(t, sim.Writes())
				return
			}
			framing := sim.WritesTo(byte(RegBitFraming))
			require.NotEmpty(t, framing)
			assert.Equal(t, byte(0x07), framing[0], "short frame for the request")
			assert.Equal(t, byte(0x00), framing[len(framing)-1], "full-byte framing restored")
			assert.Equal(t, []byte{tt.mode}, sim.LastFrame())
		})
	}
}

func TestDevice_Request_RestoresFramingOnTransceiveError(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	sim.SetCard(testutil.NewVirtualCard(testutil.TestUIDDeadBeef))
	sim.SetErrorRegister(0x08)

	present, err := device.Request(PICCReqIdle)
	assert.False(t, present)
	require.ErrorIs(t, err, ErrTransceive)
	assert.Equal(t, byte(0x00), sim.Register(byte(RegBitFraming)))
	assert.Equal(t, CycleError, device.LastCycle())
}

func TestDevice_Request_RestoresFramingWhenShortFrameWriteFails(t *testing.T) {
	t.Parallel()

	busErr := errors.New("spi: transfer failed")
	mock := NewMockTransport()
	mock.FailCall(1, busErr)
	device, err := New(mock, WithSleepFunc(noSleep))
	require.NoError(t, err)

	present, err := device.Request(PICCReqIdle)
	assert.False(t, present)
	require.ErrorIs(t, err, busErr)
	assert.Equal(t, []byte{0x00}, mock.WritesTo(RegBitFraming), "only the restore write landed")
	assert.Equal(t, 2, mock.Calls())
	assert.Equal(t, CycleError, device.LastCycle())
}

func TestDevice_ReadCard_TransportFaultNotNoCard(t *testing.T) {
	t.Parallel()

	busErr := errors.New("spi: transfer failed")
	device, sim := newSimDevice(t)
	sim.SetCard(testutil.NewVirtualCard(testutil.TestUIDDeadBeef))
	sim.SetTxError(busErr, 5)

	_, err := device.ReadCard()
	require.ErrorIs(t, err, busErr)
	assert.NotErrorIs(t, err, ErrNoCard)
	var te *TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, CycleError, device.LastCycle())
}

func TestDevice_ReadCard_CardRemovedBetweenCycles(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	sim.SetCard(testutil.NewVirtualCard(testutil.TestUIDDeadBeef))

	uid, err := device.ReadCard()
	require.NoError(t, err)
	assert.Equal(t, UID(testutil.TestUIDDeadBeef), uid)

	sim.RemoveCard()
	_, err = device.ReadCard()
	require.ErrorIs(t, err, ErrNoCard)

	sim.SetCard(testutil.NewVirtualCard(testutil.TestUID12345678))
	uid, err = device.ReadCard()
	require.NoError(t, err)
	assert.Equal(t, "12345678", uid.String())
}

func TestDevice_ReadCardContext_Canceled(t *testing.T) {
	t.Parallel()

	device, sim := newSimDevice(t)
	sim.SetCard(testutil.NewVirtualCard(testutil.TestUIDDeadBeef))
	calls := sim.Calls()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := device.ReadCardContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNoCard)
	assert.Equal(t, calls, sim.Calls())
}

func TestCycleState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", CycleIdle.String())
	assert.Equal(t, "validated", CycleValidated.String())
	assert.Equal(t, "checksum-failed", CycleChecksumFailed.String())
	assert.Equal(t, "CycleState(42)", CycleState(42).String())
}
