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

import "fmt"

// Register is a 6-bit MFRC522 register address.
type Register byte

// MFRC522 registers used by the driver
const (
	RegCommand    Register = 0x01 // Starts and stops command execution
	RegComIEn     Register = 0x02 // Interrupt request enable bits
	RegDivIEn     Register = 0x03
	RegComIrq     Register = 0x04 // Interrupt request bits
	RegDivIrq     Register = 0x05
	RegError      Register = 0x06 // Error status of the last command executed
	RegStatus1    Register = 0x07
	RegStatus2    Register = 0x08
	RegFIFOData   Register = 0x09 // Input and output of the 64 byte FIFO buffer
	RegFIFOLevel  Register = 0x0A // Number of bytes stored in the FIFO buffer
	RegWaterLevel Register = 0x0B
	RegControl    Register = 0x0C // Miscellaneous control registers, RxLastBits
	RegBitFraming Register = 0x0D // Adjustments for bit-oriented frames
	RegColl       Register = 0x0E // First bit-collision detected
	RegMode       Register = 0x11 // General transmit and receive modes
	RegTxMode     Register = 0x12
	RegRxMode     Register = 0x13
	RegTxControl  Register = 0x14 // Antenna driver pins TX1 and TX2
	RegTxASK      Register = 0x15
	RegCRCResultH Register = 0x21
	RegCRCResultL Register = 0x22
	RegRFCfg      Register = 0x26 // Receiver gain
	RegTMode      Register = 0x2A // Internal timer settings
	RegTPrescaler Register = 0x2B
	RegTReloadH   Register = 0x2C // 16-bit timer reload value, high byte
	RegTReloadL   Register = 0x2D // 16-bit timer reload value, low byte
	RegVersion    Register = 0x37 // Chip version
)

// MFRC522 command codes written to RegCommand
const (
	CmdIdle       byte = 0x00
	CmdMem        byte = 0x01
	CmdCalcCRC    byte = 0x03
	CmdTransmit   byte = 0x04
	CmdReceive    byte = 0x08
	CmdTransceive byte = 0x0C
	CmdSoftReset  byte = 0x0F
)

// Register bit masks
const (
	comIEnAll  = 0x77 // TxIEn, RxIEn, IdleIEn, LoAlertIEn, ErrIEn, TimerIEn
	comIEnInv  = 0x80 // IRqInv: IRQ pin inverted
	irqSet1    = 0x80 // ComIrq Set1: written bits are set rather than cleared
	irqRx      = 0x20
	irqIdle    = 0x10
	fifoFlush  = 0x80 // FlushBuffer in FIFOLevel
	fifoLevel  = 0x7F
	rxLastBits = 0x07 // RxLastBits in Control
	startSend  = 0x80 // StartSend in BitFraming
	txAntenna  = 0x03 // Tx1RFEn | Tx2RFEn

	// ErrorReg bits that abort a transceive
	errProtocol = 0x01
	errParity   = 0x02
	errCRC      = 0x04
	errColl     = 0x08
	errOverflow = 0x10
	errAbort    = errProtocol | errParity | errColl | errOverflow
)

// Bit framing values for the card exchanges
const (
	shortFrame = 0x07 // 7 bits of the final byte are transmitted
	fullFrame  = 0x00
)

// Chip version values reported by RegVersion
const (
	VersionFM17522 byte = 0x88
	VersionV1      byte = 0x91
	VersionV2      byte = 0x92
)

var registerNames = map[Register]string{
	RegCommand:    "Command",
	RegComIEn:     "ComIEn",
	RegDivIEn:     "DivIEn",
	RegComIrq:     "ComIrq",
	RegDivIrq:     "DivIrq",
	RegError:      "Error",
	RegStatus1:    "Status1",
	RegStatus2:    "Status2",
	RegFIFOData:   "FIFOData",
	RegFIFOLevel:  "FIFOLevel",
	RegWaterLevel: "WaterLevel",
	RegControl:    "Control",
	RegBitFraming: "BitFraming",
	RegColl:       "Coll",
	RegMode:       "Mode",
	RegTxMode:     "TxMode",
	RegRxMode:     "RxMode",
	RegTxControl:  "TxControl",
	RegTxASK:      "TxASK",
	RegCRCResultH: "CRCResultH",
	RegCRCResultL: "CRCResultL",
	RegRFCfg:      "RFCfg",
	RegTMode:      "TMode",
	RegTPrescaler: "TPrescaler",
	RegTReloadH:   "TReloadH",
	RegTReloadL:   "TReloadL",
	RegVersion:    "Version",
}

// String returns the datasheet name of the register.
func (r Register) String() string {
	if name, ok := registerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reg(0x%02X)", byte(r))
}

// DiagnosticRegisters lists the registers dumped by diagnostic tools, in
// address order.
func DiagnosticRegisters() []Register {
	return []Register{
		RegCommand, RegComIEn, RegComIrq, RegError, RegStatus1, RegStatus2,
		RegFIFOLevel, RegControl, RegBitFraming, RegColl, RegMode, RegTxMode,
		RegRxMode, RegTxControl, RegTxASK, RegRFCfg, RegTMode, RegTPrescaler,
		RegTReloadH, RegTReloadL, RegVersion,
	}
}

// VersionName describes a RegVersion value.
func VersionName(v byte) string {
	switch v {
	case VersionFM17522:
		return "FM17522 clone"
	case VersionV1:
		return "MFRC522 v1.0"
	case VersionV2:
		return "MFRC522 v2.0"
	case 0x00, 0xFF:
		return "no response"
	default:
		return fmt.Sprintf("unknown (0x%02X)", v)
	}
}

// KnownVersion reports whether v identifies a chip this driver supports.
func KnownVersion(v byte) bool {
	return v == VersionFM17522 || v == VersionV1 || v == VersionV2
}
