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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/detection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNodes creates spidev files in a temp dir and points the detector at
// them. The tests in this file share package state and do not run in parallel.
func fakeNodes(t *testing.T, names ...string) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	oldPattern, oldAccess, oldProbe := spidevPattern, accessible, probeVersion
	t.Cleanup(func() {
		spidevPattern, accessible, probeVersion = oldPattern, oldAccess, oldProbe
	})
	spidevPattern = filepath.Join(dir, "spidev*")
	accessible = func(string) bool { return true }
	probeVersion = func(string) (byte, error) {
		t.Fatal("probe must not run")
		return 0, nil
	}
	return dir
}

func TestDetect_Passive(t *testing.T) {
	dir := fakeNodes(t, "spidev0.0", "spidev0.1")

	devices, err := New().Detect(context.Background(), &detection.Options{Mode: detection.Passive})
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, filepath.Join(dir, "spidev0.0"), devices[0].Path)
	assert.Equal(t, "spi", devices[0].Transport)
	assert.Equal(t, detection.Medium, devices[0].Confidence)
	assert.Equal(t, "SPI0.0", devices[0].Metadata["port"])
	assert.Equal(t, "true", devices[0].Metadata["accessible"])
	assert.Equal(t, "SPI0.1", devices[1].Metadata["port"])
}

func TestDetect_PassiveInaccessible(t *testing.T) {
	fakeNodes(t, "spidev1.0")
	accessible = func(string) bool { return false }

	devices, err := New().Detect(context.Background(), &detection.Options{Mode: detection.Passive})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, detection.Low, devices[0].Confidence)
	assert.Equal(t, "false", devices[0].Metadata["accessible"])
}

func TestDetect_SafeProbe(t *testing.T) {
	fakeNodes(t, "spidev0.0", "spidev0.1", "spidev1.0")
	accessible = func(path string) bool { return filepath.Base(path) != "spidev1.0" }
	probeVersion = func(port string) (byte, error) {
		switch port {
		case "SPI0.0":
			return mfrc522.VersionV2, nil
		default:
			return 0x00, nil
		}
	}

	devices, err := New().Detect(context.Background(), &detection.Options{Mode: detection.Safe})
	require.NoError(t, err)
	require.Len(t, devices, 2, "inaccessible node is skipped when probing")

	assert.Equal(t, detection.High, devices[0].Confidence)
	assert.Equal(t, "0x92", devices[0].Metadata["version"])
	assert.Equal(t, "MFRC522 v2.0 on SPI0.0", devices[0].Name)

	assert.Equal(t, detection.Medium, devices[1].Confidence)
	assert.NotContains(t, devices[1].Metadata, "version")
}

func TestDetect_SafeProbeError(t *testing.T) {
	fakeNodes(t, "spidev0.0")
	probeVersion = func(string) (byte, error) { return 0, errors.New("bus busy") }

	devices, err := New().Detect(context.Background(), &detection.Options{Mode: detection.Safe})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, detection.Medium, devices[0].Confidence)
}

func TestDetect_IgnoredPath(t *testing.T) {
	dir := fakeNodes(t, "spidev0.0", "spidev0.1")

	devices, err := New().Detect(context.Background(), &detection.Options{
		Mode:        detection.Passive,
		IgnorePaths: []string{filepath.Join(dir, "spidev0.0")},
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "SPI0.1", devices[0].Metadata["port"])
}

func TestDetect_IgnoredByPortName(t *testing.T) {
	fakeNodes(t, "spidev0.0", "spidev0.1")

	devices, err := New().Detect(context.Background(), &detection.Options{
		Mode:        detection.Passive,
		IgnorePaths: []string{"SPI0.0"},
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "SPI0.1", devices[0].Metadata["port"])
}

func TestDetect_NoNodes(t *testing.T) {
	fakeNodes(t, "ttyUSB0")

	_, err := New().Detect(context.Background(), nil)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestDetect_UnparseableNodeSkipped(t *testing.T) {
	fakeNodes(t, "spidev-bogus")

	_, err := New().Detect(context.Background(), nil)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestDetect_Canceled(t *testing.T) {
	fakeNodes(t, "spidev0.0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Detect(ctx, nil)
	require.ErrorIs(t, err, detection.ErrDetectionTimeout)
}

func TestDetector_Registered(t *testing.T) {
	var found bool
	for _, d := range detection.Detectors() {
		if d.Transport() == TransportName {
			found = true
		}
	}
	assert.True(t, found)
}
