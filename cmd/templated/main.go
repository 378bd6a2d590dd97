// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/jaxminer/config"
	"gitlab.com/jaxnet/jaxminer/node/metrics"
	"gitlab.com/jaxnet/jaxminer/node/tmplstore"
)

var version = "dev"

func main() {
	// Work around defer not working after os.Exit()
	if err := templatedMain(os.Args[1:]); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "FATAL:", err)
		os.Exit(1)
	}
}

// templatedMain is the real main function. It turns the templates read from
// the configured input into mining jobs on stdout until the input ends or a
// shutdown signal arrives.
func templatedMain(args []string) error {
	cfg, _, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		fmt.Println("templated version", version)
		return nil
	}

	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", config.SupportedSubsystems())
		return nil
	}

	loggers, err := config.SetupLoggers(cfg.DebugLevel, cfg.Log)
	if err != nil {
		return err
	}
	log := loggers.Get(config.LogUnitTMPD)

	defer log.Info().Msg("Shutdown complete")
	log.Info().Str("version", version).Str("coin", cfg.Coin).
		Str("store", cfg.Store.Backend).Msg("starting templated")

	params, err := cfg.Params()
	if err != nil {
		return err
	}

	store, err := tmplstore.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("can't close template store")
		}
	}()

	ctx, cancel := interruptContext(context.Background(), log)
	defer cancel()

	recorder, err := startMetrics(ctx, cfg, store, loggers.Get(config.LogUnitMETR))
	if err != nil {
		return err
	}

	input, err := openInput(cfg.Input)
	if err != nil {
		return err
	}
	defer input.Close()

	// Unblock a pending read on shutdown.
	go func() {
		<-ctx.Done()
		_ = input.Close()
	}()

	p := &processor{
		params:      params,
		store:       store,
		recorder:    recorder,
		extraNonces: cfg.ExtraNonces,
		log:         log,
		now:         time.Now,
	}

	stats, err := p.run(ctx, input, os.Stdout)
	log.Info().Int("templates", stats.Templates).Int("rejected", stats.Rejected).
		Int("jobs", stats.Jobs).Msg("input processed")
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func startMetrics(ctx context.Context, cfg *config.Config, store tmplstore.Store,
	log zerolog.Logger) (metrics.Recorder, error) {
	if !cfg.Metrics.Enable {
		return metrics.NoopRecorder{}, nil
	}

	manager := metrics.Metrics(ctx, cfg.Metrics.Interval, log)
	recorder, err := metrics.NewPromRecorder(manager.Registry())
	if err != nil {
		return nil, errors.Wrap(err, "can't register metrics")
	}

	dataDir := ""
	if tmplstore.IsPersistent(cfg.Store.Backend) {
		dataDir = cfg.StorePath()
	}
	manager.Add(metrics.ArchiveMetrics(manager.Registry(), cfg.Store.Backend, store, dataDir, log))

	go func() {
		if err := manager.Listen(ctx, cfg.Metrics.Route, cfg.Metrics.Port); err != nil {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return recorder, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "can't open template input")
	}
	return file, nil
}
