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

// Package nextion drives a Nextion HMI panel over its serial instruction set.
// Each instruction is ASCII text terminated by three 0xFF bytes.
package nextion

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// Text colours in RGB565.
const (
	ColorGranted = 2016  // green
	ColorDenied  = 63488 // red
)

// DefaultBaudRate is the panel's factory baud rate.
const DefaultBaudRate = 9600

// Component names on the access page.
const (
	MessageComponent = "t0"
	UIDComponent     = "t1"
)

var terminator = []byte{0xFF, 0xFF, 0xFF}

// ErrClosed is returned after Close.
var ErrClosed = errors.New("nextion display closed")

// Display writes instructions to a panel. It is safe for concurrent use.
type Display struct {
	w      io.Writer
	closer io.Closer
	mu     sync.Mutex
	closed bool
}

// New writes instructions to w. If w is an io.Closer, Close closes it.
func New(w io.Writer) *Display {
	d := &Display{w: w}
	if c, ok := w.(io.Closer); ok {
		d.closer = c
	}
	return d
}

// Open opens the serial port at baud 8N1. A zero baud selects DefaultBaudRate.
func Open(port string, baud int) (*Display, error) {
	if baud == 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open display port %s: %w", port, err)
	}
	return New(p), nil
}

// SendCommand writes one instruction followed by the terminator.
func (d *Display) SendCommand(cmd string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.send(cmd)
}

func (d *Display) send(cmd string) error {
	if d.closed {
		return ErrClosed
	}
	buf := make([]byte, 0, len(cmd)+len(terminator))
	buf = append(buf, cmd...)
	buf = append(buf, terminator...)
	if _, err := d.w.Write(buf); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	return nil
}

// ShowMessage sets the message text and colours it for granted or denied.
func (d *Display) ShowMessage(msg string, granted bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.showMessage(msg, granted)
}

func (d *Display) showMessage(msg string, granted bool) error {
	if err := d.send(SetText(MessageComponent, msg)); err != nil {
		return err
	}
	return d.send(SetColor(MessageComponent, StatusColor(granted)))
}

// ShowAccess shows the decision message and the card UID.
func (d *Display) ShowAccess(uid, msg string, granted bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.showMessage(msg, granted); err != nil {
		return err
	}
	return d.send(SetText(UIDComponent, uid))
}

// Close closes the underlying port when it is closable.
func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// StatusColor returns the text colour for a decision.
func StatusColor(granted bool) int {
	if granted {
		return ColorGranted
	}
	return ColorDenied
}

// SetText builds the instruction that sets a text component.
func SetText(component, text string) string {
	return fmt.Sprintf(`%s.txt="%s"`, component, escape(text))
}

// SetColor builds the instruction that sets a component's font colour.
func SetColor(component string, color int) string {
	return fmt.Sprintf("%s.pco=%d", component, color)
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", `\r`, "\n", `\r`)

// escape makes text safe inside a quoted Nextion string.
func escape(s string) string {
	return escaper.Replace(s)
}
