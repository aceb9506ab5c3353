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
	"fmt"
	"time"

	"github.com/ZaparooProject/go-mfrc522/internal/wait"
	"periph.io/x/conn/v3/gpio"
)

// Init initializes the MFRC522
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext resets the chip, programs the timer and RF registers, enables
// the antenna and reads the chip version. The context is checked between
// steps; a register write in progress is never interrupted.
func (d *Device) InitContext(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.hardReset(ctx); err != nil {
		return err
	}

	if d.transport == nil {
		return ErrTransportNotBound
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := d.writeRegister(RegCommand, CmdSoftReset); err != nil {
		return fmt.Errorf("soft reset: %w", err)
	}
	if err := d.settle(ctx, d.config.SoftResetDelay); err != nil {
		return err
	}

	if err := d.applyChipConfig(); err != nil {
		return fmt.Errorf("configure chip: %w", err)
	}

	if err := d.antennaOn(); err != nil {
		return fmt.Errorf("enable antenna: %w", err)
	}
	if err := d.settle(ctx, d.config.AntennaDelay); err != nil {
		return err
	}

	version, err := d.readRegister(RegVersion)
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	d.version = version
	d.lastCycle = CycleIdle

	if version == 0x00 || version == 0xFF {
		d.logger.Warn().
			Str("version", fmt.Sprintf("0x%02X", version)).
			Msg("implausible chip version, check wiring")
		return nil
	}
	d.logger.Info().
		Str("version", fmt.Sprintf("0x%02X", version)).
		Str("chip", VersionName(version)).
		Msg("MFRC522 initialized")
	return nil
}

// AntennaOn enables both antenna drivers if neither is on yet.
func (d *Device) AntennaOn() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.antennaOn()
}

// AntennaOff disables both antenna drivers, removing the RF field.
func (d *Device) AntennaOff() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearBits(RegTxControl, txAntenna)
}

func (d *Device) antennaOn() error {
	val, err := d.readRegister(RegTxControl)
	if err != nil {
		return err
	}
	if val&txAntenna != 0 {
		return nil
	}
	return d.writeRegister(RegTxControl, val|txAntenna)
}

func (d *Device) applyChipConfig() error {
	c := d.config.Chip
	return d.writeRegs(
		byte(RegTMode), c.TMode,
		byte(RegTPrescaler), c.TPrescaler,
		byte(RegTReloadL), byte(c.TReload),
		byte(RegTReloadH), byte(c.TReload>>8),
		byte(RegMode), c.Mode,
		byte(RegRFCfg), c.RFGain,
	)
}

func (d *Device) hardReset(ctx context.Context) error {
	if d.reset == nil {
		return nil
	}
	if err := d.reset.Out(gpio.Low); err != nil {
		return fmt.Errorf("reset line %s: %w", d.reset.Name(), err)
	}
	if err := d.settle(ctx, d.config.ResetPulse); err != nil {
		_ = d.reset.Out(gpio.High)
		return err
	}
	if err := d.reset.Out(gpio.High); err != nil {
		return fmt.Errorf("reset line %s: %w", d.reset.Name(), err)
	}
	return nil
}

func (d *Device) settle(ctx context.Context, dur time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	wait.Settle(d.sleep, dur)
	return nil
}
