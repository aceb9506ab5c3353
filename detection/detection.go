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

// Package detection discovers reader hardware attached to the host.
//
// Transport specific detectors register themselves on import:
//
//	import _ "github.com/ZaparooProject/go-mfrc522/detection/spi"
//
//	opts := detection.DefaultOptions()
//	devices, err := detection.DetectAll(&opts)
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound      = errors.New("no devices found")
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
	ErrDetectionTimeout    = errors.New("detection timed out")
)

// Mode controls how intrusive detection is allowed to be.
type Mode int

const (
	// Passive only lists device nodes; nothing is opened.
	Passive Mode = iota
	// Safe opens candidates and reads a read-only identification register.
	Safe
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Safe:
		return "safe"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Confidence expresses how sure a detector is that a device is a reader.
type Confidence int

const (
	// Low means a bus node exists but nothing was confirmed.
	Low Confidence = iota
	// Medium means the node is accessible but was not probed.
	Medium
	// High means the chip answered a probe.
	High
)

// String returns the confidence name.
func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

// DeviceInfo describes a detected device.
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

// Options configures detection.
type Options struct {
	// IgnorePaths lists device paths that must never be opened or reported.
	IgnorePaths []string
	Timeout     time.Duration
	Mode        Mode
}

// DefaultOptions returns the default detection options.
func DefaultOptions() Options {
	return Options{
		Mode:    Passive,
		Timeout: 5 * time.Second,
	}
}

// Detector finds devices reachable over one transport.
type Detector interface {
	// Transport returns the transport name, e.g. "spi"
	Transport() string
	// Detect returns the devices found
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	detectorsMu sync.RWMutex
	detectors   = map[string]Detector{}
)

// RegisterDetector makes a detector available to DetectAll. A later
// registration for the same transport replaces the earlier one.
func RegisterDetector(d Detector) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	detectors[d.Transport()] = d
}

// UnregisterDetector removes the detector for transport.
func UnregisterDetector(transport string) {
	detectorsMu.Lock()
	defer detectorsMu.Unlock()
	delete(detectors, transport)
}

// Detectors returns the registered detectors sorted by transport name.
func Detectors() []Detector {
	detectorsMu.RLock()
	defer detectorsMu.RUnlock()

	list := make([]Detector, 0, len(detectors))
	for _, d := range detectors {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Transport() < list[j].Transport()
	})
	return list
}

// DetectAll runs every registered detector.
func DetectAll(opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return DetectAllContext(ctx, opts)
}

// DetectAllContext runs every registered detector until ctx is done. Devices
// are returned highest confidence first. Detector errors other than "nothing
// found" and "unsupported" are joined into the returned error.
func DetectAllContext(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	var (
		devices []DeviceInfo
		errs    []error
	)

	for _, d := range Detectors() {
		if err := ctx.Err(); err != nil {
			return devices, ErrDetectionTimeout
		}

		found, err := d.Detect(ctx, opts)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoDevicesFound), errors.Is(err, ErrUnsupportedPlatform):
			continue
		default:
			errs = append(errs, fmt.Errorf("%s: %w", d.Transport(), err))
			continue
		}

		for _, dev := range found {
			if IsPathIgnored(dev.Path, opts.IgnorePaths) {
				continue
			}
			devices = append(devices, dev)
		}
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})

	if len(devices) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, ErrNoDevicesFound
	}
	return devices, errors.Join(errs...)
}
