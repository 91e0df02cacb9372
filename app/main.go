package main

import (
	"cmp"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-mirror/app/cfg"
	"github.com/lysyi3m/rss-mirror/app/config"
	"github.com/lysyi3m/rss-mirror/app/feed"
	"github.com/lysyi3m/rss-mirror/app/fetcher"
	"github.com/lysyi3m/rss-mirror/app/mirror"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting rss-mirror", "version", appCfg.Version)

	mirrorConfig, err := config.Load(appCfg.ConfigFile)
	if err != nil {
		slog.Error("Failed to load mirror configuration", "error", err)
		os.Exit(1)
	}

	outFile := cmp.Or(appCfg.OutFile, mirrorConfig.Settings.OutFile)

	endpoints := make([]fetcher.Endpoint, 0, len(mirrorConfig.Endpoints))
	for _, endpoint := range mirrorConfig.Endpoints {
		endpoints = append(endpoints, fetcher.Endpoint{URL: endpoint.URL, Insecure: endpoint.Insecure})
	}

	feedFetcher := fetcher.NewFetcher(fetcher.Config{
		Endpoints:         endpoints,
		MaxAttempts:       mirrorConfig.Settings.MaxAttempts,
		BackoffBase:       mirrorConfig.Settings.BackoffBase,
		Timeout:           time.Duration(mirrorConfig.Settings.Timeout) * time.Second,
		RetryableStatuses: mirrorConfig.Settings.RetryableStatuses,
		UserAgent:         appCfg.UserAgent,
	})

	runner := mirror.NewRunner(feedFetcher, feed.NewParser(), feed.NewMerger(),
		outFile, mirrorConfig.Settings.RetentionDays)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := runner.Run(ctx); err != nil {
		slog.Error("Mirror run failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
