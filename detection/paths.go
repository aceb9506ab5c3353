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

package detection

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// IsPathIgnored checks if a device path should be ignored.
// A spidev node and its periph port name ("/dev/spidev0.1", "SPI0.1") match
// each other; other paths are compared after cleaning, ignoring case.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	deviceKey := ignoreKey(devicePath)

	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		if deviceKey == ignoreKey(ignorePath) || devicePath == ignorePath {
			return true
		}
	}
	return false
}

func ignoreKey(path string) string {
	if name, ok := SPIPortName(path); ok {
		return strings.ToLower(name)
	}
	return strings.ToLower(filepath.Clean(path))
}

// ParseSPIDevPath extracts the bus and chip select numbers from a spidev
// node path such as /dev/spidev0.1.
func ParseSPIDevPath(path string) (bus, cs int, ok bool) {
	nums, found := strings.CutPrefix(filepath.Base(path), "spidev")
	if !found {
		return 0, 0, false
	}
	busStr, csStr, found := strings.Cut(nums, ".")
	if !found {
		return 0, 0, false
	}
	bus, busErr := strconv.Atoi(busStr)
	cs, csErr := strconv.Atoi(csStr)
	if busErr != nil || csErr != nil || bus < 0 || cs < 0 {
		return 0, 0, false
	}
	return bus, cs, true
}

// SPIPortName returns the periph.io port name of a spidev node, e.g. "SPI0.1".
func SPIPortName(path string) (string, bool) {
	bus, cs, ok := ParseSPIDevPath(path)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("SPI%d.%d", bus, cs), true
}
