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

// Package testing provides a register-level MFRC522 simulator and card
// fixtures for the package test suites.
package testing

import (
	"errors"
	"sync"

	"github.com/ZaparooProject/go-mfrc522/internal/frame"
)

// Register addresses and bits the simulator reacts to
const (
	regCommand    = 0x01
	regComIrq     = 0x04
	regError      = 0x06
	regFIFOData   = 0x09
	regFIFOLevel  = 0x0A
	regControl    = 0x0C
	regBitFraming = 0x0D
	regTxControl  = 0x14
	regVersion    = 0x37

	cmdTransceive = 0x0C
	cmdSoftReset  = 0x0F
	cmdMask       = 0x0F

	irqSet1   = 0x80
	irqTx     = 0x40
	irqRx     = 0x20
	irqIdle   = 0x10
	fifoFlush = 0x80
	startSend = 0x80

	errBufferOvfl = 0x10

	piccReqIdle     = 0x26
	piccWakeUp      = 0x52
	piccSelectCL1   = 0x93
	piccAnticollNVB = 0x20

	defaultVersion = 0x92
)

// ErrSimulatorClosed is returned by Tx after Close.
var ErrSimulatorClosed = errors.New("simulator closed")

// RegisterWrite is one register write seen by the simulator.
type RegisterWrite struct {
	Reg   byte
	Value byte
}

// VirtualCard represents a simulated ISO14443A card in the reader field
type VirtualCard struct {
	ATQA [2]byte
	UID  [frame.UIDSize]byte
	// BCC is sent after the UID. NewVirtualCard computes the correct value.
	BCC byte
	// ATQABits is the bit count of the REQA answer.
	ATQABits int
	// AnticollBits is the bit count of the anticollision answer.
	AnticollBits int
}

// NewVirtualCard creates a well-behaved card with the given UID
func NewVirtualCard(uid [frame.UIDSize]byte) *VirtualCard {
	return &VirtualCard{
		ATQA:         DefaultATQA,
		UID:          uid,
		BCC:          frame.CalculateBCC(uid[:]),
		ATQABits:     frame.ATQABits,
		AnticollBits: frame.AnticollBits,
	}
}

// answer returns the card's reply to a frame and its length in bits. A nil
// reply means the card stays silent.
func (c *VirtualCard) answer(cmd []byte, txLastBits byte) ([]byte, int) {
	switch {
	case len(cmd) == 1 && txLastBits == 7 && (cmd[0] == piccReqIdle || cmd[0] == piccWakeUp):
		return BuildATQAResponse(c.ATQA), c.ATQABits
	case len(cmd) == 2 && txLastBits == 0 && cmd[0] == piccSelectCL1 && cmd[1] == piccAnticollNVB:
		return BuildAnticollisionResponseWithBCC(c.UID, c.BCC), c.AnticollBits
	default:
		return nil, 0
	}
}

// VirtualMFRC522 simulates the MFRC522 register interface behind an SPI
// transport. It implements the same Tx/Close methods as a real transport.
type VirtualMFRC522 struct {
	txErr      error
	card       *VirtualCard
	fifo       []byte
	lastFrame  []byte
	writes     []RegisterWrite
	regs       [64]byte
	calls      int
	txErrAfter int
	fifoLevel  int
	exchanges  int
	mu         sync.Mutex
	errorReg   byte
	version    byte
	closed     bool
	forceLevel bool
}

// NewVirtualMFRC522 creates a simulator in its power-on state with no card
// in the field
func NewVirtualMFRC522() *VirtualMFRC522 {
	v := &VirtualMFRC522{version: defaultVersion}
	v.softReset()
	return v
}

// Tx implements the transport interface
func (v *VirtualMFRC522) Tx(w, r []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrSimulatorClosed
	}
	v.calls++
	if v.txErr != nil && v.calls > v.txErrAfter {
		return v.txErr
	}
	if len(w) < 2 {
		return errors.New("simulator: short SPI frame")
	}

	reg := frame.RegisterFromAddress(w[0])
	if frame.IsRead(w[0]) {
		val := v.read(reg)
		if len(r) >= 2 {
			r[0] = 0x00
			r[1] = val
		}
		return nil
	}

	v.writes = append(v.writes, RegisterWrite{Reg: reg, Value: w[1]})
	v.write(reg, w[1])
	return nil
}

// Close implements the transport interface
func (v *VirtualMFRC522) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	return nil
}

func (v *VirtualMFRC522) read(reg byte) byte {
	switch reg {
	case regFIFOData:
		if len(v.fifo) == 0 {
			return 0x00
		}
		b := v.fifo[0]
		v.fifo = v.fifo[1:]
		return b
	case regFIFOLevel:
		if v.forceLevel {
			return byte(v.fifoLevel) & 0x7F
		}
		return byte(len(v.fifo))
	default:
		return v.regs[reg]
	}
}

func (v *VirtualMFRC522) write(reg, val byte) {
	switch reg {
	case regCommand:
		v.regs[regCommand] = val
		if val&cmdMask == cmdSoftReset {
			v.softReset()
		}
	case regComIrq:
		if val&irqSet1 != 0 {
			v.regs[regComIrq] |= val &^ irqSet1
		} else {
			v.regs[regComIrq] &^= val
		}
	case regFIFOLevel:
		if val&fifoFlush != 0 {
			v.fifo = v.fifo[:0]
		}
	case regFIFOData:
		if len(v.fifo) >= frame.FIFOCapacity {
			v.regs[regError] |= errBufferOvfl
			return
		}
		v.fifo = append(v.fifo, val)
	case regBitFraming:
		v.regs[regBitFraming] = val
		if val&startSend != 0 && v.regs[regCommand]&cmdMask == cmdTransceive {
			v.exchange()
		}
	case regVersion:
		// read-only
	default:
		v.regs[reg] = val
	}
}

func (v *VirtualMFRC522) softReset() {
	v.regs = [64]byte{}
	v.regs[regCommand] = 0x20
	v.regs[regTxControl] = 0x80
	v.regs[regVersion] = v.version
	v.fifo = nil
}

func (v *VirtualMFRC522) exchange() {
	v.exchanges++
	sent := append([]byte(nil), v.fifo...)
	v.lastFrame = sent
	v.fifo = v.fifo[:0]
	txLastBits := v.regs[regBitFraming] & frame.LastBitsMask

	v.regs[regError] = v.errorReg
	v.regs[regComIrq] |= irqTx

	if v.card == nil {
		return
	}
	data, bits := v.card.answer(sent, txLastBits)
	if data == nil {
		return
	}

	n, lastBits := frame.SplitBits(bits)
	reply := make([]byte, n)
	copy(reply, data)
	v.fifo = append(v.fifo, reply...)
	v.regs[regControl] = v.regs[regControl]&^frame.LastBitsMask | lastBits
	v.regs[regComIrq] |= irqRx | irqIdle
}

// SetCard places card in the field. Nil removes any card.
func (v *VirtualMFRC522) SetCard(card *VirtualCard) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.card = card
}

// RemoveCard takes the card out of the field
func (v *VirtualMFRC522) RemoveCard() {
	v.SetCard(nil)
}

// SetErrorRegister sets the ErrorReg value raised by every following exchange
func (v *VirtualMFRC522) SetErrorRegister(val byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errorReg = val
}

// SetFIFOLevel makes FIFOLevel reads report level regardless of the FIFO
// contents
func (v *VirtualMFRC522) SetFIFOLevel(level int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fifoLevel = level
	v.forceLevel = true
}

// SetVersion sets the value of VersionReg, surviving soft resets
func (v *VirtualMFRC522) SetVersion(version byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.version = version
	v.regs[regVersion] = version
}

// SetRegister forces a register value
func (v *VirtualMFRC522) SetRegister(reg, val byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.regs[reg] = val
}

// SetTxError makes every Tx after the first n fail with err
func (v *VirtualMFRC522) SetTxError(err error, n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.txErr = err
	v.txErrAfter = v.calls + n
}

// Register returns the stored value of reg
func (v *VirtualMFRC522) Register(reg byte) byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.regs[reg]
}

// Writes returns every register write in order
func (v *VirtualMFRC522) Writes() []RegisterWrite {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]RegisterWrite(nil), v.writes...)
}

// WritesTo returns the values written to reg in order
func (v *VirtualMFRC522) WritesTo(reg byte) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	var vals []byte
	for _, w := range v.writes {
		if w.Reg == reg {
			vals = append(vals, w.Value)
		}
	}
	return vals
}

// ResetWrites forgets recorded writes
func (v *VirtualMFRC522) ResetWrites() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.writes = nil
}

// Exchanges returns how many frames were sent to the field
func (v *VirtualMFRC522) Exchanges() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.exchanges
}

// LastFrame returns the bytes of the most recent frame sent to the field
func (v *VirtualMFRC522) LastFrame() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.lastFrame...)
}

// Calls returns the number of Tx calls
func (v *VirtualMFRC522) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

// IsClosed reports whether Close was called
func (v *VirtualMFRC522) IsClosed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
