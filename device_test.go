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
	"testing"
	"time"

	testutil "github.com/ZaparooProject/go-mfrc522/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(time.Duration) {}

// newSimDevice returns an initialized device wired to a register-level simulator.
func newSimDevice(t *testing.T, opts ...Option) (*Device, *testutil.VirtualMFRC522) {
	t.Helper()

	sim := testutil.NewVirtualMFRC522()
	device, err := New(sim, append([]Option{WithSleepFunc(noSleep)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, device.Init())
	sim.ResetWrites()
	return device, sim
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transport Transport
		name      string
		opts      []Option
		wantErr   error
	}{
		{
			name:      "Valid_MockTransport",
			transport: NewMockTransport(),
		},
		{
			name:      "Nil_Transport",
			transport: nil, // New() doesn't validate nil transport, Init reports it
		},
		{
			name:      "Custom_Options",
			transport: NewMockTransport(),
			opts: []Option{
				WithPollBudget(10, 2*time.Millisecond),
				WithSettleDelays(time.Millisecond, time.Millisecond),
				WithLogger(zerolog.Nop()),
				WithChipConfig(ChipConfig{TMode: 0x80}),
			},
		},
		{
			name:      "Zero_Poll_Budget",
			transport: NewMockTransport(),
			opts:      []Option{WithPollBudget(0, time.Millisecond)},
			wantErr:   ErrInvalidParameter,
		},
		{
			name:      "Negative_Poll_Interval",
			transport: NewMockTransport(),
			opts:      []Option{WithPollBudget(10, -time.Millisecond)},
			wantErr:   ErrInvalidParameter,
		},
		{
			name:      "Nil_Sleep_Func",
			transport: NewMockTransport(),
			opts:      []Option{WithSleepFunc(nil)},
			wantErr:   ErrInvalidParameter,
		},
		{
			name:      "Negative_Settle_Delay",
			transport: NewMockTransport(),
			opts:      []Option{WithSettleDelays(-1, 0)},
			wantErr:   ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, err := New(tt.transport, tt.opts...)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, device)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, device)
			if tt.transport != nil {
				assert.Equal(t, tt.transport, device.Transport())
			}
		})
	}
}

func TestDefaultDeviceConfig(t *testing.T) {
	t.Parallel()

	config := DefaultDeviceConfig()
	assert.Equal(t, 1000, config.PollIterations)
	assert.Equal(t, time.Millisecond, config.PollInterval)
	assert.Equal(t, 50*time.Millisecond, config.SoftResetDelay)
	assert.Equal(t, 20*time.Millisecond, config.AntennaDelay)
	assert.Equal(t, ChipConfig{
		TMode:      0x8D,
		TPrescaler: 0x3E,
		TReload:    30,
		Mode:       0x3D,
		RFGain:     0x70,
	}, config.Chip)
}

func TestDevice_ConfigIsCopied(t *testing.T) {
	t.Parallel()

	device, err := New(NewMockTransport())
	require.NoError(t, err)

	config := device.Config()
	config.Chip.TMode = 0x00
	config.PollIterations = 1

	assert.Equal(t, byte(0x8D), device.Config().Chip.TMode)
	assert.Equal(t, 1000, device.Config().PollIterations)
}

func TestDevice_Close(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := New(mock)
	require.NoError(t, err)

	require.NoError(t, device.Close())
	assert.True(t, mock.IsClosed())

	_, err = device.ReadRegister(RegVersion)
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, ErrTransportClosed)
	assert.Equal(t, "mock", te.Port)
}

func TestDevice_CloseNilTransport(t *testing.T) {
	t.Parallel()

	device, err := New(nil)
	require.NoError(t, err)
	assert.NoError(t, device.Close())
}

func TestConnectDevice(t *testing.T) {
	t.Parallel()

	t.Run("Factory", func(t *testing.T) {
		t.Parallel()

		sim := testutil.NewVirtualMFRC522()
		var gotPath string
		device, err := ConnectDevice("/dev/spidev0.0",
			WithTransportFactory(func(path string) (Transport, error) {
				gotPath = path
				return sim, nil
			}),
			WithDeviceOptions(WithSleepFunc(noSleep)),
		)
		require.NoError(t, err)
		assert.Equal(t, "/dev/spidev0.0", gotPath)
		assert.Equal(t, VersionV2, device.Version())
	})

	t.Run("Missing_Factory", func(t *testing.T) {
		t.Parallel()

		_, err := ConnectDevice("/dev/spidev0.0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "transport factory not provided")
	})

	t.Run("Factory_Error", func(t *testing.T) {
		t.Parallel()

		openErr := errors.New("permission denied")
		_, err := ConnectDevice("/dev/spidev0.0",
			WithTransportFactory(func(string) (Transport, error) { return nil, openErr }))
		require.ErrorIs(t, err, openErr)
	})

	t.Run("Init_Failure_Closes_Transport", func(t *testing.T) {
		t.Parallel()

		mock := NewMockTransport()
		mock.SetError(errors.New("bus fault"), 0)
		_, err := ConnectDevice("/dev/spidev0.0",
			WithTransportFactory(func(string) (Transport, error) { return mock, nil }),
			WithDeviceOptions(WithSleepFunc(noSleep)),
		)
		require.Error(t, err)
		assert.True(t, mock.IsClosed())
	})
}
