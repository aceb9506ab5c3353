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

// Package spi provides the SPI transport implementation for MFRC522 readers
package spi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// DefaultSpeed is the bus clock used when Config.Speed is zero.
	DefaultSpeed = physic.MegaHertz

	// MaxSpeed is the highest SPI clock the MFRC522 supports.
	MaxSpeed = 10 * physic.MegaHertz

	bitsPerWord = 8
)

// ErrPinMismatch is returned when a configured pin differs from the one the
// SPI port actually uses.
var ErrPinMismatch = errors.New("SPI pin mismatch")

// Config selects the SPI port and pins the reader is wired to.
type Config struct {
	// Port is a periph.io port name ("SPI0.0") or spidev path. Empty selects
	// the first available port.
	Port string
	// MOSI, MISO and SCK are checked against the port when it reports its
	// pins. Empty names are not checked.
	MOSI string
	MISO string
	SCK  string
	// CS names the chip select line. When it is not the port's own chip
	// select it is driven as a GPIO around every transfer.
	CS    string
	Speed physic.Frequency
}

// DefaultConfig returns the wiring of the reference access control board.
func DefaultConfig() Config {
	return Config{Speed: DefaultSpeed}
}

// Transport implements the mfrc522.Transport interface for SPI communication
type Transport struct {
	port conn.Conn
	cs   gpio.PinOut
	// closer is nil when the connection is owned by the caller
	closer spi.PortCloser
	name   string
	mu     sync.Mutex
}

// Open initializes periph.io and connects to the configured SPI port in mode 0.
func Open(cfg Config) (*Transport, error) {
	if cfg.Speed == 0 {
		cfg.Speed = DefaultSpeed
	}
	if cfg.Speed > MaxSpeed {
		return nil, fmt.Errorf("SPI speed %s exceeds %s", cfg.Speed, MaxSpeed)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	if name, ok := detection.SPIPortName(cfg.Port); ok {
		cfg.Port = name
	}

	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", cfg.Port, err)
	}

	c, err := port.Connect(cfg.Speed, spi.Mode0, bitsPerWord)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect to SPI port %s: %w", port, err)
	}

	if err := checkPins(c, cfg); err != nil {
		_ = port.Close()
		return nil, err
	}

	cs, err := softwareChipSelect(c, cfg.CS)
	if err != nil {
		_ = port.Close()
		return nil, err
	}

	name := cfg.Port
	if name == "" {
		name = port.String()
	}

	return &Transport{
		port:   c,
		cs:     cs,
		closer: port,
		name:   name,
	}, nil
}

// NewFromConn wraps an already connected SPI connection. cs may be nil when
// the connection drives chip select itself. Close does not close c.
func NewFromConn(c conn.Conn, name string, cs gpio.PinOut) *Transport {
	return &Transport{port: c, cs: cs, name: name}
}

// OpenPin looks up a GPIO line by name, for the reset or chip select line.
func OpenPin(name string) (gpio.PinIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("GPIO pin %q not found", name)
	}
	return pin, nil
}

// Tx performs one chip-select scoped full-duplex transfer
func (t *Transport) Tx(w, r []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return mfrc522.NewTransportError("Tx", t.name, mfrc522.ErrTransportClosed, mfrc522.ErrorTypePermanent)
	}

	if t.cs != nil {
		if err := t.cs.Out(gpio.Low); err != nil {
			return mfrc522.NewTransportError("chip select", t.name, err, mfrc522.ErrorTypeTransient)
		}
	}

	err := t.port.Tx(w, r)

	if t.cs != nil {
		if csErr := t.cs.Out(gpio.High); csErr != nil && err == nil {
			err = csErr
		}
	}
	if err != nil {
		return mfrc522.NewTransportError("Tx", t.name, err, mfrc522.ErrorTypeTransient)
	}
	return nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.port = nil
	if t.closer == nil {
		return nil
	}
	closer := t.closer
	t.closer = nil
	if err := closer.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port %s: %w", t.name, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportSPI
}

// PortName returns the SPI port name
func (t *Transport) PortName() string {
	return t.name
}

// String implements fmt.Stringer
func (t *Transport) String() string {
	return "spi:" + t.name
}

// checkPins compares configured pin names against the pins the port reports.
func checkPins(c conn.Conn, cfg Config) error {
	pins, ok := c.(spi.Pins)
	if !ok {
		return nil
	}

	checks := []struct {
		pin  namedPin
		role string
		want string
	}{
		{role: "MOSI", want: cfg.MOSI, pin: pins.MOSI()},
		{role: "MISO", want: cfg.MISO, pin: pins.MISO()},
		{role: "SCK", want: cfg.SCK, pin: pins.CLK()},
	}
	for _, check := range checks {
		if check.want == "" || check.pin == nil || check.pin.Name() == gpio.INVALID.Name() {
			continue
		}
		if !samePin(check.pin, check.want) {
			return fmt.Errorf("%w: %s is %s, configured %s", ErrPinMismatch, check.role, check.pin.Name(), check.want)
		}
	}
	return nil
}

// softwareChipSelect returns the GPIO to drive for chip select, or nil when
// the port's own chip select line is used.
func softwareChipSelect(c conn.Conn, name string) (gpio.PinOut, error) {
	if name == "" {
		return nil, nil
	}
	if pins, ok := c.(spi.Pins); ok {
		if hw := pins.CS(); hw != nil && samePin(hw, name) {
			return nil, nil
		}
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("chip select pin %q not found", name)
	}
	if err := pin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("failed to idle chip select %s: %w", name, err)
	}
	return pin, nil
}

type namedPin interface {
	Name() string
	Number() int
}

// samePin accepts either the pin name ("GPIO10") or its number ("10").
func samePin(pin namedPin, want string) bool {
	if strings.EqualFold(pin.Name(), want) {
		return true
	}
	return fmt.Sprint(pin.Number()) == strings.TrimPrefix(strings.ToUpper(want), "GPIO")
}
