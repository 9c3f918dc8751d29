package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"aprs2influxdb/internal/aprs"
	"aprs2influxdb/internal/config"
	"aprs2influxdb/internal/lineproto"
	"aprs2influxdb/internal/observability"
	"aprs2influxdb/internal/pipeline"
	"aprs2influxdb/internal/storage"
	"aprs2influxdb/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	sink, err := observability.NewRotatingFile(cfg.LogFile, 5)
	if err != nil {
		fmt.Fprintln(os.Stderr, "opening log file:", err)
		os.Exit(1)
	}
	defer sink.Close()
	logger := observability.NewLogger(sink, cfg.Verbose)

	logger.Info("logging into APRS-IS", "callsign", cfg.Callsign, "server", cfg.Server, "port", cfg.Port)
	if cfg.Callsign == "nocall" {
		logger.Warn(`APRS-IS ignores the callsign "nocall"`)
	}

	client := aprs.NewClient(cfg.Server, cfg.Port, cfg.Callsign, aprs.Passcode(cfg.Callsign), logger)
	if err := client.Connect(); err != nil {
		var loginErr *aprs.LoginError
		if errors.As(err, &loginErr) {
			logger.Error("login rejected", "err", err, "callsign", cfg.Callsign, "port", cfg.Port)
		} else {
			logger.Error("connection failed", "err", err)
		}
		os.Exit(1)
	}

	influx := storage.NewClient(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	var dup pipeline.DupFilter
	if cfg.RedisAddr != "" {
		filter, err := store.NewDupFilter(cfg.RedisAddr)
		if err != nil {
			logger.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		dup = filter
	}

	if cfg.MetricsPort != "" {
		go observability.StartMetricsServer(cfg.MetricsPort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interval := time.Duration(cfg.Interval * float64(time.Minute))
	heartbeat := pipeline.NewHeartbeat(client, cfg.Callsign, interval, logger)
	consumer := pipeline.NewConsumer(client, lineproto.NewEncoder(logger), influx, dup, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return heartbeat.Run(gctx) })
	g.Go(func() error { return consumer.Run(gctx) })
	go func() {
		// Unblock the consumer's read loop on shutdown.
		<-gctx.Done()
		_ = client.Close()
	}()

	// Either task failing takes the whole process down; a signal-driven
	// shutdown exits clean.
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("pipeline task failed", "err", err)
		os.Exit(1)
	}
}
