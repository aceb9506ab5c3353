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

package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel events are published on.
const DefaultChannel = "mfrc522:events"

// RedisClient is the part of *redis.Client the sink uses.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisSink publishes every event on a channel and keeps the latest event per
// reader under "<channel>:last:<reader>".
type RedisSink struct {
	client  RedisClient
	channel string
}

// NewRedisSink connects to the Redis server at addr.
func NewRedisSink(addr, channel string) *RedisSink {
	return NewRedisSinkFromClient(redis.NewClient(&redis.Options{Addr: addr}), channel)
}

// NewRedisSinkFromClient wraps an existing client.
func NewRedisSinkFromClient(client RedisClient, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{client: client, channel: channel}
}

// Record publishes the event.
func (s *RedisSink) Record(ctx context.Context, event Event) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event on %s: %w", s.channel, err)
	}
	if err := s.client.Set(ctx, s.lastKey(event.Reader), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store last event: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}

func (s *RedisSink) lastKey(reader string) string {
	if reader == "" {
		reader = "default"
	}
	return s.channel + ":last:" + reader
}
