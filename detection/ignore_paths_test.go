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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPathIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		device string
		ignore []string
		want   bool
	}{
		{name: "EmptyList", device: "/dev/spidev0.0", ignore: nil},
		{name: "EmptyDevice", device: "", ignore: []string{"/dev/spidev0.0"}},
		{name: "NodePath", device: "/dev/spidev0.0", ignore: []string{"/dev/spidev0.0"}, want: true},
		{name: "OtherChipSelect", device: "/dev/spidev0.1", ignore: []string{"/dev/spidev0.0"}},
		{name: "OtherBus", device: "/dev/spidev1.0", ignore: []string{"SPI0.0"}},
		{name: "PortNameMatchesNode", device: "/dev/spidev0.1", ignore: []string{"SPI0.1"}, want: true},
		{name: "NodeMatchesPortName", device: "SPI1.0", ignore: []string{"/dev/spidev1.0"}, want: true},
		{name: "PortNameCase", device: "/dev/spidev0.0", ignore: []string{"spi0.0"}, want: true},
		{name: "NodeCase", device: "/dev/spidev0.0", ignore: []string{"/DEV/SPIDEV0.0"}, want: true},
		{name: "UncleanNode", device: "/dev/../dev/spidev2.1", ignore: []string{"SPI2.1"}, want: true},
		{name: "BlankEntriesSkipped", device: "/dev/spidev0.0", ignore: []string{"", "SPI0.0", ""}, want: true},
		{name: "NonSPIPath", device: "/dev/i2c-1", ignore: []string{"/dev/i2c-1"}, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsPathIgnored(tt.device, tt.ignore),
				"IsPathIgnored(%q, %v)", tt.device, tt.ignore)
		})
	}
}

func TestParseSPIDevPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		wantName string
		wantBus  int
		wantCS   int
		wantOK   bool
	}{
		{path: "/dev/spidev0.0", wantBus: 0, wantCS: 0, wantName: "SPI0.0", wantOK: true},
		{path: "/dev/spidev1.2", wantBus: 1, wantCS: 2, wantName: "SPI1.2", wantOK: true},
		{path: "spidev10.1", wantBus: 10, wantCS: 1, wantName: "SPI10.1", wantOK: true},
		{path: "/dev/spidev0", wantOK: false},
		{path: "/dev/spidev0.x", wantOK: false},
		{path: "/dev/spidev-1.0", wantOK: false},
		{path: "/dev/i2c-1", wantOK: false},
		{path: "SPI0.0", wantOK: false},
		{path: "", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			bus, cs, ok := ParseSPIDevPath(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBus, bus)
			assert.Equal(t, tt.wantCS, cs)

			name, ok := SPIPortName(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestSPIPortName_RoundTrip(t *testing.T) {
	t.Parallel()

	for bus := 0; bus < 3; bus++ {
		for cs := 0; cs < 3; cs++ {
			node := fmt.Sprintf("/dev/spidev%d.%d", bus, cs)
			name, ok := SPIPortName(node)
			assert.True(t, ok, node)
			assert.Equal(t, fmt.Sprintf("SPI%d.%d", bus, cs), name)
			assert.True(t, IsPathIgnored(node, []string{name}), "%s ignored by %s", node, name)
			assert.True(t, IsPathIgnored(name, []string{node}), "%s ignored by %s", name, node)
		}
	}
}
