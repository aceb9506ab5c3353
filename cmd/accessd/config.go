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

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/access"
	"github.com/ZaparooProject/go-mfrc522/display/nextion"
	"github.com/ZaparooProject/go-mfrc522/eventlog"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"periph.io/x/conn/v3/physic"
)

// serviceConfig is the resolved daemon configuration.
type serviceConfig struct {
	Audit    auditConfig
	Polling  polling.Config
	Metrics  metricsConfig
	ResetPin string
	Display  displayConfig
	Cards    []access.Entry
	SPI      spi.Config
}

type displayConfig struct {
	Port    string
	Baud    int
	Enabled bool
}

type auditConfig struct {
	File         string
	RedisAddr    string
	RedisChannel string
}

type metricsConfig struct {
	Listen string
}

// accessd.toml key mapping.
type fileConfig struct {
	Reader struct {
		SPIPort    string `toml:"spi_port"`
		MOSIPin    string `toml:"mosi_pin"`
		MISOPin    string `toml:"miso_pin"`
		SCKPin     string `toml:"sck_pin"`
		CSPin      string `toml:"cs_pin"`
		ResetPin   string `toml:"reset_pin"`
		SPISpeedHz int64  `toml:"spi_speed_hz"`
	} `toml:"reader"`
	Polling struct {
		Interval       time.Duration `toml:"interval"`
		RemovalTimeout time.Duration `toml:"removal_timeout"`
		IdleInterval   time.Duration `toml:"idle_interval"`
		IdleAfter      time.Duration `toml:"idle_after"`
	} `toml:"polling"`
	Display struct {
		Port    string `toml:"port"`
		Baud    int    `toml:"baud"`
		Enabled bool   `toml:"enabled"`
	} `toml:"display"`
	Access struct {
		Cards []cardConfig `toml:"card"`
	} `toml:"access"`
	Audit struct {
		File         string `toml:"file"`
		RedisAddr    string `toml:"redis_addr"`
		RedisChannel string `toml:"redis_channel"`
	} `toml:"audit"`
	Metrics struct {
		Listen string `toml:"listen"`
	} `toml:"metrics"`
}

type cardConfig struct {
	Name string      `toml:"name"`
	UID  mfrc522.UID `toml:"uid"`
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		SPI:     spi.DefaultConfig(),
		Polling: *polling.DefaultConfig(),
		Display: displayConfig{
			Port: "/dev/ttyS0",
			Baud: nextion.DefaultBaudRate,
		},
		Audit: auditConfig{
			RedisChannel: eventlog.DefaultChannel,
		},
		Metrics: metricsConfig{Listen: "127.0.0.1:9522"},
		Cards:   access.DefaultWhitelist().Entries(),
	}
}

// loadServiceConfig overlays the TOML file at path on the defaults. An empty
// path returns the defaults.
func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()
	if path == "" {
		return cfg, cfg.validate()
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load accessd config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return serviceConfig{}, fmt.Errorf("load accessd config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("reader", "spi_port") {
		cfg.SPI.Port = strings.TrimSpace(raw.Reader.SPIPort)
	}
	if meta.IsDefined("reader", "spi_speed_hz") {
		cfg.SPI.Speed = physic.Frequency(raw.Reader.SPISpeedHz) * physic.Hertz
	}
	if meta.IsDefined("reader", "mosi_pin") {
		cfg.SPI.MOSI = strings.TrimSpace(raw.Reader.MOSIPin)
	}
	if meta.IsDefined("reader", "miso_pin") {
		cfg.SPI.MISO = strings.TrimSpace(raw.Reader.MISOPin)
	}
	if meta.IsDefined("reader", "sck_pin") {
		cfg.SPI.SCK = strings.TrimSpace(raw.Reader.SCKPin)
	}
	if meta.IsDefined("reader", "cs_pin") {
		cfg.SPI.CS = strings.TrimSpace(raw.Reader.CSPin)
	}
	if meta.IsDefined("reader", "reset_pin") {
		cfg.ResetPin = strings.TrimSpace(raw.Reader.ResetPin)
	}

	if meta.IsDefined("polling", "interval") {
		cfg.Polling.PollInterval = raw.Polling.Interval
	}
	if meta.IsDefined("polling", "removal_timeout") {
		cfg.Polling.CardRemovalTimeout = raw.Polling.RemovalTimeout
	}
	if meta.IsDefined("polling", "idle_interval") {
		cfg.Polling.IdlePollInterval = raw.Polling.IdleInterval
	}
	if meta.IsDefined("polling", "idle_after") {
		cfg.Polling.IdleAfter = raw.Polling.IdleAfter
	}

	if meta.IsDefined("display", "port") {
		cfg.Display.Port = strings.TrimSpace(raw.Display.Port)
	}
	if meta.IsDefined("display", "baud") {
		cfg.Display.Baud = raw.Display.Baud
	}
	if meta.IsDefined("display", "enabled") {
		cfg.Display.Enabled = raw.Display.Enabled
	}

	if meta.IsDefined("access", "card") {
		cfg.Cards = make([]access.Entry, 0, len(raw.Access.Cards))
		for _, c := range raw.Access.Cards {
			cfg.Cards = append(cfg.Cards, access.Entry{UID: c.UID, Name: strings.TrimSpace(c.Name)})
		}
	}

	if meta.IsDefined("audit", "file") {
		cfg.Audit.File = strings.TrimSpace(raw.Audit.File)
	}
	if meta.IsDefined("audit", "redis_addr") {
		cfg.Audit.RedisAddr = strings.TrimSpace(raw.Audit.RedisAddr)
	}
	if meta.IsDefined("audit", "redis_channel") {
		cfg.Audit.RedisChannel = strings.TrimSpace(raw.Audit.RedisChannel)
	}

	if meta.IsDefined("metrics", "listen") {
		cfg.Metrics.Listen = strings.TrimSpace(raw.Metrics.Listen)
	}

	if err := cfg.validate(); err != nil {
		return serviceConfig{}, err
	}
	return cfg, nil
}

func (c serviceConfig) validate() error {
	if err := c.Polling.Validate(); err != nil {
		return fmt.Errorf("load accessd config: %w", err)
	}
	if c.SPI.Speed <= 0 || c.SPI.Speed > spi.MaxSpeed {
		return fmt.Errorf("load accessd config: spi_speed_hz must be in (0, %d]", int64(spi.MaxSpeed/physic.Hertz))
	}
	if c.Display.Enabled {
		if c.Display.Port == "" {
			return errors.New("load accessd config: display enabled without port")
		}
		if c.Display.Baud <= 0 {
			return errors.New("load accessd config: display baud must be positive")
		}
	}
	seen := make(map[mfrc522.UID]bool, len(c.Cards))
	for _, card := range c.Cards {
		if seen[card.UID] {
			return fmt.Errorf("load accessd config: duplicate card %s", card.UID)
		}
		seen[card.UID] = true
	}
	return nil
}
