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
	"sync"
	"time"

	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// ChipConfig holds the register values written once during initialization.
type ChipConfig struct {
	// TMode sets TAuto and the high prescaler bits.
	TMode byte
	// TPrescaler is the low byte of the timer prescaler.
	TPrescaler byte
	// TReload is the 16-bit timer reload value.
	TReload uint16
	// Mode selects the CRC preset and transmit/receive modes.
	Mode byte
	// RFGain is written to RFCfg.
	RFGain byte
}

// DefaultChipConfig returns the register values of the reference access
// control firmware.
func DefaultChipConfig() ChipConfig {
	return ChipConfig{
		TMode:      0x8D,
		TPrescaler: 0x3E,
		TReload:    30,
		Mode:       0x3D,
		RFGain:     0x70,
	}
}

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	Chip ChipConfig
	// PollIterations bounds the completion wait of a transceive
	PollIterations int
	// PollInterval is the pause between completion polls
	PollInterval time.Duration
	// ResetPulse is how long the reset line is held low
	ResetPulse time.Duration
	// SoftResetDelay is the settle time after the soft reset command
	SoftResetDelay time.Duration
	// AntennaDelay is the settle time after enabling the antenna
	AntennaDelay time.Duration
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Chip:           DefaultChipConfig(),
		PollIterations: 1000,
		PollInterval:   time.Millisecond,
		ResetPulse:     time.Millisecond,
		SoftResetDelay: 50 * time.Millisecond,
		AntennaDelay:   20 * time.Millisecond,
	}
}

// Device represents an MFRC522 reader.
//
// Thread Safety: Device is safe for concurrent use. Every exported operation
// holds one mutex for its whole duration, so a ReadCard cycle is never
// interleaved with another register access on the same reader.
type Device struct {
	transport Transport
	reset     gpio.PinOut
	config    *DeviceConfig
	sleep     func(time.Duration)
	logger    zerolog.Logger
	mu        sync.Mutex
	lastCycle CycleState
	txBuf     [2]byte
	rxBuf     [2]byte
	version   byte
}

// New creates a new MFRC522 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
		sleep:     time.Sleep,
		logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// ConnectOption represents a functional option for ConnectDevice
type ConnectOption func(*connectConfig) error

type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	deviceOptions          []Option
	autoDetect             bool
}

// WithAutoDetection enables automatic device detection instead of using a specific path
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDeviceOptions adds device-level options
func WithDeviceOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceOptions = append(c.deviceOptions, opts...)
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the transport from device factory function
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

// ConnectDevice creates and initializes a device from a path or auto-detection.
//
// Example usage:
//
//	// Connect to a specific bus
//	device, err := mfrc522.ConnectDevice("/dev/spidev0.0",
//	    mfrc522.WithTransportFactory(openSPI))
//
//	// Auto-detect the first spidev node
//	device, err := mfrc522.ConnectDevice("", mfrc522.WithAutoDetection(),
//	    mfrc522.WithTransportFromDeviceFactory(openDetected))
func ConnectDevice(path string, opts ...ConnectOption) (*Device, error) {
	config := &connectConfig{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}

	transport, err := createTransport(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := New(transport, config.deviceOptions...)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	if err := device.Init(); err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("failed to initialize device: %w", err)
	}

	return device, nil
}

func createTransport(path string, config *connectConfig) (Transport, error) {
	if config.autoDetect || path == "" {
		return createAutoDetectedTransport(config.transportDeviceFactory)
	}

	if config.transportFactory == nil {
		return nil, errors.New("transport factory not provided")
	}
	transport, err := config.transportFactory(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
	}
	return transport, nil
}

func createAutoDetectedTransport(factory TransportFromDeviceFactory) (Transport, error) {
	if factory == nil {
		return nil, errors.New("transport device factory not provided")
	}

	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe

	devices, err := detection.DetectAll(&opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, errors.New("no MFRC522 devices found")
	}

	return factory(devices[0])
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Config returns a copy of the device configuration
func (d *Device) Config() DeviceConfig {
	return *d.config
}

// Version returns the chip version read during Init. It is zero before Init.
func (d *Device) Version() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}

// LastCycle returns the final state of the most recent card exchange.
func (d *Device) LastCycle() CycleState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastCycle
}

// Close closes the device connection
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport == nil {
		return nil
	}
	if err := d.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}
