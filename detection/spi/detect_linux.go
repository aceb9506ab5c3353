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

//go:build linux

package spi

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	spitransport "github.com/ZaparooProject/go-mfrc522/transport/spi"
	"golang.org/x/sys/unix"
)

// Overridden in tests.
var (
	spidevPattern = "/dev/spidev*"
	accessible    = func(path string) bool {
		return unix.Access(path, unix.R_OK|unix.W_OK) == nil
	}
	probeVersion = readVersion
)

func detectPlatform(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	matches, err := filepath.Glob(spidevPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for spidev nodes: %w", err)
	}

	devices := make([]detection.DeviceInfo, 0, len(matches))
	for _, path := range matches {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if detection.IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}
		device, ok := describeNode(path, opts.Mode)
		if !ok {
			continue
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// describeNode builds the DeviceInfo for one spidev node. Safe mode reads the
// version register; a node that is neither readable nor confirmed is skipped.
func describeNode(path string, mode detection.Mode) (detection.DeviceInfo, bool) {
	port, ok := detection.SPIPortName(path)
	if !ok {
		return detection.DeviceInfo{}, false
	}

	canOpen := accessible(path)
	device := detection.DeviceInfo{
		Transport:  TransportName,
		Path:       path,
		Name:       "SPI device " + port,
		Confidence: detection.Low,
		Metadata: map[string]string{
			"port":       port,
			"accessible": fmt.Sprint(canOpen),
		},
	}
	if canOpen {
		device.Confidence = detection.Medium
	}

	if mode == detection.Passive {
		return device, true
	}
	if !canOpen {
		return detection.DeviceInfo{}, false
	}

	version, err := probeVersion(port)
	if err != nil || !mfrc522.KnownVersion(version) {
		return device, true
	}
	device.Confidence = detection.High
	device.Name = fmt.Sprintf("%s on %s", mfrc522.VersionName(version), port)
	device.Metadata["version"] = fmt.Sprintf("0x%02X", version)
	return device, true
}

func readVersion(port string) (byte, error) {
	cfg := spitransport.DefaultConfig()
	cfg.Port = port
	tr, err := spitransport.Open(cfg)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tr.Close() }()

	device, err := mfrc522.New(tr)
	if err != nil {
		return 0, err
	}
	return device.ReadRegister(mfrc522.RegVersion)
}
