package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ressample/pkg/config"
	"ressample/pkg/log"
	"ressample/pkg/provider"
	"ressample/pkg/resolver"
	"ressample/pkg/sampler"
	"ressample/pkg/server"
	"ressample/pkg/sink"
)

//go:embed VERSION
var Version string

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.SetLevel(cfg.LogLevel)
	if cfg.Debug {
		log.SetDebugMode()
	}

	version := strings.TrimSpace(Version)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sys, err := provider.NewSystem(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Some host counters could not be read, continuing with partial values")
	}

	resolution := resolver.New().Resolve(cfg.DiskPaths, sys.Volumes())
	resolution.Log()

	runID := uuid.New().String()
	primary, err := sink.Open(cfg.Output, sink.Options{Append: cfg.Append, RunID: runID})
	if err != nil {
		log.Fatal().Err(err).Str("output", cfg.Output).Msg("Failed to open output")
	}

	latest := sink.NewLatest()
	outputs := []sink.RecordSink{primary, latest}

	if cfg.PushURL != "" {
		outputs = append(outputs, sink.NewHTTP(cfg.PushURL, sink.HTTPOptions{RunID: runID}))
	}

	if cfg.ValkeyAddr != "" {
		stream, err := sink.OpenValkey(cfg.ValkeyAddr, cfg.ValkeyPassword, cfg.ValkeyStream)
		if err != nil {
			_ = sink.NewMulti(outputs...).Close()
			log.Fatal().Err(err).Str("addr", cfg.ValkeyAddr).Msg("Failed to connect to Valkey")
		}
		outputs = append(outputs, stream)
	}

	sinks := sink.NewMulti(outputs...)
	loop := sampler.New(cfg.SleepTime, resolution.Tracked, sys, sinks, sampler.WithMaxTicks(cfg.Samples))

	log.Info().
		Str("version", version).
		Str("run_id", runID).
		Str("output", cfg.Output).
		Dur("interval", cfg.SleepTime).
		Int("tracked_volumes", resolution.Tracked.Len()).
		Int("sinks", sinks.Len()).
		Msg("Starting ressample")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// A finished sample limit also stops the status server.
		defer cancel()
		if err := loop.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if cfg.Addr != "" {
		status := server.New(version, latest, loop, resolution)
		g.Go(func() error {
			return status.Run(gCtx, cfg.Addr)
		})
	}

	runErr := g.Wait()

	if err := sinks.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close sinks")
	}

	stats := loop.Stats()
	log.Info().
		Uint64("ticks", stats.Ticks).
		Uint64("sink_failures", stats.SinkFailures).
		Uint64("refresh_failures", stats.RefreshFailures).
		Msg("Shutdown complete")

	if runErr != nil {
		log.Fatal().Err(runErr).Msg("Sampler exited with error")
	}
}
