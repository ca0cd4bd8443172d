package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/deskrec/deskrec/config"
	"github.com/deskrec/deskrec/discovery"
	"github.com/deskrec/deskrec/encoder"
	"github.com/deskrec/deskrec/internal/cli"
	"github.com/deskrec/deskrec/record"
)

func main() {
	cfg, err := config.Load(os.Getenv("DESKREC_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	deps := &cli.Dependencies{
		Config: cfg,
		Logger: logger,
		Enumerator: discovery.New(&discovery.Options{
			FFmpegPath: cfg.FFmpegPath,
			Logger:     logger,
		}),
		Prober: encoder.NewProber(&encoder.ProberOptions{
			Path:    cfg.FFmpegPath,
			Timeout: cfg.ProbeTimeout(),
			Logger:  logger,
		}),
		Recorder: record.New(&record.Options{
			Logger:     logger,
			StartGrace: cfg.StartGrace(),
			StopGrace:  cfg.StopGrace(),
		}),
	}

	if err := cli.NewRootCommand(deps).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
