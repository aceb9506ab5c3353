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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	// Import the detector to register it
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
	"github.com/ZaparooProject/go-mfrc522/internal/logging"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
)

type config struct {
	port         *string
	csPin        *string
	resetPin     *string
	logLevel     *string
	speed        *int64
	timeout      *time.Duration
	pollInterval *time.Duration
	dump         *bool
	detect       *bool
	watch        *bool
}

func parseFlags() *config {
	cfg := &config{
		port: flag.String("port", "",
			"SPI port (e.g., /dev/spidev0.0 or SPI0.0). Leave empty for auto-detection."),
		csPin:    flag.String("cs", "", "GPIO driven as chip select (default: the port's own CS line)"),
		resetPin: flag.String("reset", "", "GPIO wired to the reader's RST pin"),
		logLevel: flag.String("log-level", "", "Log level (default: $"+logging.EnvLevel+" or info)"),
		speed:    flag.Int64("speed", int64(spi.DefaultSpeed/physic.Hertz), "SPI clock in Hz"),
		timeout:  flag.Duration("timeout", 30*time.Second, "Time to wait for a card"),
		pollInterval: flag.Duration("poll-interval", 100*time.Millisecond,
			"Polling interval for card detection"),
		dump:   flag.Bool("dump", false, "Print the chip registers after init"),
		detect: flag.Bool("detect", false, "List detected readers and exit"),
		watch:  flag.Bool("watch", false, "Keep reading cards until the timeout instead of exiting on the first"),
	}
	flag.Parse()
	return cfg
}

func (cfg *config) spiConfig(port string) spi.Config {
	c := spi.DefaultConfig()
	c.Port = port
	c.CS = *cfg.csPin
	c.Speed = physic.Frequency(*cfg.speed) * physic.Hertz
	return c
}

// newTransport opens the SPI port at path.
func (cfg *config) newTransport(path string) (mfrc522.Transport, error) {
	transport, err := spi.Open(cfg.spiConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create SPI transport: %w", err)
	}
	return transport, nil
}

// newTransportFromDevice opens the port of a detected reader.
func (cfg *config) newTransportFromDevice(device detection.DeviceInfo) (mfrc522.Transport, error) {
	if !strings.EqualFold(device.Transport, "spi") {
		return nil, fmt.Errorf("unsupported transport type: %s", device.Transport)
	}
	return cfg.newTransport(device.Path)
}

func buildConnectOptions(cfg *config, logger zerolog.Logger) ([]mfrc522.ConnectOption, error) {
	var connectOpts []mfrc522.ConnectOption

	if *cfg.port == "" {
		connectOpts = append(connectOpts,
			mfrc522.WithAutoDetection(),
			mfrc522.WithTransportFromDeviceFactory(cfg.newTransportFromDevice))
		_, _ = fmt.Println("Auto-detecting MFRC522 readers...")
	} else {
		connectOpts = append(connectOpts, mfrc522.WithTransportFactory(cfg.newTransport))
		_, _ = fmt.Printf("Opening reader: %s\n", *cfg.port)
	}

	deviceOpts := []mfrc522.Option{mfrc522.WithLogger(logger)}
	if *cfg.resetPin != "" {
		pin, err := spi.OpenPin(*cfg.resetPin)
		if err != nil {
			return nil, err
		}
		deviceOpts = append(deviceOpts, mfrc522.WithResetPin(pin))
	}
	return append(connectOpts, mfrc522.WithDeviceOptions(deviceOpts...)), nil
}

func listDevices() error {
	opts := detection.DefaultOptions()
	opts.Mode = detection.Safe

	devices, err := detection.DetectAll(&opts)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}
	for _, d := range devices {
		_, _ = fmt.Printf("%-20s %-8s %-6s %s\n", d.Path, d.Transport, d.Confidence, d.Name)
	}
	return nil
}

func dumpRegisters(device *mfrc522.Device) error {
	_, _ = fmt.Print("\n=== Registers ===\n")
	for _, reg := range mfrc522.DiagnosticRegisters() {
		value, err := device.ReadRegister(reg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", reg, err)
		}
		_, _ = fmt.Printf("%-12s 0x%02X  0x%02X\n", reg, byte(reg), value)
	}
	_, _ = fmt.Println()
	return nil
}

func waitForCards(ctx context.Context, device *mfrc522.Device, cfg *config, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	monitor, err := polling.NewMonitor(device, &polling.Config{
		PollInterval:       *cfg.pollInterval,
		CardRemovalTimeout: 3 * *cfg.pollInterval,
	}, polling.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to set up polling: %w", err)
	}

	var seen bool
	printCard := func(uid mfrc522.UID) error {
		seen = true
		_, _ = fmt.Printf("UID: %s  BCC: 0x%02X\n", uid, uid.Checksum())
		if !*cfg.watch {
			cancel()
		}
		return nil
	}
	monitor.OnCardDetected = printCard
	monitor.OnCardChanged = printCard
	monitor.OnCardRemoved = func(mfrc522.UID) {
		_, _ = fmt.Println("Card removed - ready for next card...")
	}

	err = monitor.Start(ctx)
	if !seen && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no card detected within %s", *cfg.timeout)
	}
	return nil
}

func run(cfg *config) error {
	logger, err := logging.Init("readuid", *cfg.logLevel)
	if err != nil {
		return err
	}

	if *cfg.detect {
		return listDevices()
	}

	connectOpts, err := buildConnectOptions(cfg, logger)
	if err != nil {
		return err
	}
	device, err := mfrc522.ConnectDevice(*cfg.port, connectOpts...)
	if err != nil {
		return fmt.Errorf("failed to connect to MFRC522 reader: %w", err)
	}
	defer func() { _ = device.Close() }()

	_, _ = fmt.Printf("Chip: %s\n", mfrc522.VersionName(device.Version()))

	if *cfg.dump {
		if err := dumpRegisters(device); err != nil {
			return err
		}
	}

	_, _ = fmt.Printf("Waiting for card (timeout: %s, poll interval: %s)...\n", *cfg.timeout, *cfg.pollInterval)

	ctx, cancel := context.WithTimeout(context.Background(), *cfg.timeout)
	defer cancel()
	return waitForCards(ctx, device, cfg, logger)
}

func main() {
	if err := run(parseFlags()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
