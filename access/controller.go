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

package access

import (
	"context"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/eventlog"
	"github.com/rs/zerolog"
)

// Display shows a decision to the card holder.
type Display interface {
	ShowAccess(uid, msg string, granted bool) error
}

// Decision is the outcome of one Verify call.
type Decision struct {
	At      time.Time
	Name    string
	Label   string
	UID     mfrc522.UID
	Granted bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDisplay shows every decision on d.
func WithDisplay(d Display) Option {
	return func(c *Controller) {
		c.display = d
	}
}

// WithSink records every decision in s.
func WithSink(s eventlog.Sink) Option {
	return func(c *Controller) {
		c.sink = s
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.With().Str("component", "access").Logger()
	}
}

// WithReaderName tags audit events with the reader name.
func WithReaderName(name string) Option {
	return func(c *Controller) {
		c.reader = name
	}
}

// Controller checks UIDs against a whitelist.
type Controller struct {
	display   Display
	sink      eventlog.Sink
	whitelist *Whitelist
	now       func() time.Time
	reader    string
	logger    zerolog.Logger
}

// NewController creates a controller for whitelist. A nil whitelist denies
// every card.
func NewController(whitelist *Whitelist, opts ...Option) *Controller {
	if whitelist == nil {
		whitelist = NewWhitelist()
	}
	c := &Controller{
		whitelist: whitelist,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Whitelist returns the whitelist in use.
func (c *Controller) Whitelist() *Whitelist {
	return c.whitelist
}

// Verify decides on uid, then shows and records the decision. Display and
// sink failures are logged and do not change the decision.
func (c *Controller) Verify(ctx context.Context, uid mfrc522.UID) Decision {
	name, granted := c.whitelist.Lookup(uid)
	d := Decision{
		UID:     uid,
		Name:    name,
		Granted: granted,
		Label:   LabelDenied,
		At:      c.now(),
	}
	if granted {
		d.Label = LabelGranted
	}

	c.logger.Info().
		Stringer("uid", uid).
		Str("name", name).
		Bool("granted", granted).
		Msg(d.Label)

	if c.display != nil {
		if err := c.display.ShowAccess(uid.String(), d.Label, granted); err != nil {
			c.logger.Warn().Err(err).Msg("failed to update display")
		}
	}
	c.record(ctx, d)
	return d
}

// CardRemoved records that uid left the field.
func (c *Controller) CardRemoved(ctx context.Context, uid mfrc522.UID) {
	event := eventlog.NewEvent(eventlog.KindCardRemoved, c.now())
	event.UID = uid.String()
	c.send(ctx, event)
}

// ReaderError records a reader fault.
func (c *Controller) ReaderError(ctx context.Context, fault error) {
	event := eventlog.NewEvent(eventlog.KindReaderError, c.now())
	event.Error = fault.Error()
	c.send(ctx, event)
}

func (c *Controller) record(ctx context.Context, d Decision) {
	event := eventlog.NewEvent(eventlog.KindAccess, d.At)
	event.UID = d.UID.String()
	event.Name = d.Name
	event.Label = d.Label
	event.Granted = d.Granted
	c.send(ctx, event)
}

func (c *Controller) send(ctx context.Context, event eventlog.Event) {
	if c.sink == nil {
		return
	}
	event.Reader = c.reader
	if err := c.sink.Record(ctx, event); err != nil {
		c.logger.Warn().Err(err).Str("kind", event.Kind.String()).Msg("failed to record event")
	}
}
