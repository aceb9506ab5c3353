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

// Command accessd is an access control daemon: it polls an MFRC522 reader,
// checks each card against a whitelist, shows the result on a Nextion panel
// and records it in an audit log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZaparooProject/go-mfrc522"
	"github.com/ZaparooProject/go-mfrc522/access"
	"github.com/ZaparooProject/go-mfrc522/detection"
	// Import the detector to register it
	_ "github.com/ZaparooProject/go-mfrc522/detection/spi"
	"github.com/ZaparooProject/go-mfrc522/display/nextion"
	"github.com/ZaparooProject/go-mfrc522/eventlog"
	"github.com/ZaparooProject/go-mfrc522/internal/logging"
	"github.com/ZaparooProject/go-mfrc522/polling"
	"github.com/ZaparooProject/go-mfrc522/transport/spi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "", "Path to accessd.toml (default: built-in defaults)")
	logLevel := flag.String("log-level", "", "Log level (default: $"+logging.EnvLevel+" or info)")
	flag.Parse()

	logger, err := logging.Init("accessd", *logLevel)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	cfg, err := loadServiceConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("accessd stopped")
		stop()
		os.Exit(1)
	}
	logger.Info().Msg("accessd stopped")
}

func run(ctx context.Context, cfg serviceConfig, logger zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := polling.NewMetrics(registry)
	if err != nil {
		return err
	}

	device, err := connectReader(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = device.Close() }()

	sink, err := openSinks(cfg.Audit)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close audit log")
		}
	}()

	controllerOpts := []access.Option{
		access.WithLogger(logger),
		access.WithSink(sink),
		access.WithReaderName(readerName(device)),
	}
	if cfg.Display.Enabled {
		display, err := nextion.Open(cfg.Display.Port, cfg.Display.Baud)
		if err != nil {
			return err
		}
		defer func() { _ = display.Close() }()
		controllerOpts = append(controllerOpts, access.WithDisplay(display))
	}
	controller := access.NewController(access.NewWhitelist(cfg.Cards...), controllerOpts...)

	monitor, err := polling.NewMonitor(device, &cfg.Polling,
		polling.WithMetrics(metrics),
		polling.WithLogger(logger))
	if err != nil {
		return err
	}
	bindMonitor(ctx, monitor, controller)

	if cfg.Metrics.Listen != "" {
		srv := newMetricsServer(cfg.Metrics.Listen, registry)
		go serveMetrics(ctx, srv, logger)
	}

	logger.Info().
		Str("reader", readerName(device)).
		Str("chip", mfrc522.VersionName(device.Version())).
		Int("cards", controller.Whitelist().Len()).
		Msg("accessd started")

	err = monitor.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// bindMonitor routes card events to the access controller.
func bindMonitor(ctx context.Context, monitor *polling.Monitor, controller *access.Controller) {
	verify := func(uid mfrc522.UID) error {
		controller.Verify(ctx, uid)
		return nil
	}
	monitor.OnCardDetected = verify
	monitor.OnCardChanged = verify
	monitor.OnCardRemoved = func(uid mfrc522.UID) {
		controller.CardRemoved(ctx, uid)
	}
	monitor.OnPollError = func(err error) {
		controller.ReaderError(ctx, err)
	}
}

func connectReader(cfg serviceConfig, logger zerolog.Logger) (*mfrc522.Device, error) {
	deviceOpts := []mfrc522.Option{mfrc522.WithLogger(logger)}
	if cfg.ResetPin != "" {
		pin, err := spi.OpenPin(cfg.ResetPin)
		if err != nil {
			return nil, err
		}
		deviceOpts = append(deviceOpts, mfrc522.WithResetPin(pin))
	}

	openSPI := func(path string) (mfrc522.Transport, error) {
		spiCfg := cfg.SPI
		spiCfg.Port = path
		transport, err := spi.Open(spiCfg)
		if err != nil {
			return nil, err
		}
		return transport, nil
	}
	connectOpts := []mfrc522.ConnectOption{
		mfrc522.WithTransportFactory(openSPI),
		mfrc522.WithTransportFromDeviceFactory(func(d detection.DeviceInfo) (mfrc522.Transport, error) {
			if !strings.EqualFold(d.Transport, "spi") {
				return nil, fmt.Errorf("unsupported transport type: %s", d.Transport)
			}
			return openSPI(d.Path)
		}),
		mfrc522.WithDeviceOptions(deviceOpts...),
	}
	if cfg.SPI.Port == "" {
		connectOpts = append(connectOpts, mfrc522.WithAutoDetection())
	}

	device, err := mfrc522.ConnectDevice(cfg.SPI.Port, connectOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MFRC522 reader: %w", err)
	}
	return device, nil
}

// openSinks opens the configured audit outputs. With none configured the
// returned sink records nothing.
func openSinks(cfg auditConfig) (*eventlog.MultiSink, error) {
	var sinks []eventlog.Sink
	if cfg.File != "" {
		file, err := eventlog.OpenFileSink(cfg.File)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, file)
	}
	if cfg.RedisAddr != "" {
		sinks = append(sinks, eventlog.NewRedisSink(cfg.RedisAddr, cfg.RedisChannel))
	}
	return eventlog.NewMultiSink(sinks...), nil
}

func readerName(device *mfrc522.Device) string {
	if info, ok := device.Transport().(mfrc522.TransportInfo); ok {
		return info.PortName()
	}
	return "mfrc522"
}

func newMetricsServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func serveMetrics(ctx context.Context, srv *http.Server, logger zerolog.Logger) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", srv.Addr).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server failed")
	}
}
