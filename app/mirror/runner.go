package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-mirror/app/feed"
	"github.com/lysyi3m/rss-mirror/app/fetcher"
	"github.com/lysyi3m/rss-mirror/app/store"
)

// Runner executes one mirror pass: load the existing store, fetch and parse
// the feed, merge under the retention window, write the survivors back. Any
// failure before the final write leaves the store untouched.
type Runner struct {
	fetcher       *fetcher.Fetcher
	parser        *feed.Parser
	merger        *feed.Merger
	outFile       string
	retentionDays int

	// Now is the run clock, overridable in tests.
	Now func() time.Time
}

func NewRunner(f *fetcher.Fetcher, parser *feed.Parser, merger *feed.Merger, outFile string, retentionDays int) *Runner {
	return &Runner{
		fetcher:       f,
		parser:        parser,
		merger:        merger,
		outFile:       outFile,
		retentionDays: retentionDays,
		Now:           time.Now,
	}
}

// Run performs a single idempotent pass and returns the number of records
// retained in the store.
func (r *Runner) Run(ctx context.Context) (int, error) {
	now := r.Now().UTC()
	windowStart := now.Add(-time.Duration(r.retentionDays) * 24 * time.Hour)

	existing, err := store.Load(r.outFile)
	if err != nil {
		return 0, fmt.Errorf("failed to load store: %w", err)
	}
	slog.Debug("Store loaded", "path", r.outFile, "records", len(existing))

	data, err := r.fetcher.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch feed: %w", err)
	}

	metadata, items, err := r.parser.Run(data)
	if err != nil {
		return 0, fmt.Errorf("failed to parse feed: %w", err)
	}
	slog.Debug("Feed parsed", "title", metadata.Title, "items", len(items))

	merged := r.merger.Run(existing, items, windowStart, now)

	count, err := store.Write(r.outFile, merged)
	if err != nil {
		return 0, fmt.Errorf("failed to write store: %w", err)
	}

	slog.Info("Mirror run completed",
		"records", count,
		"out", r.outFile,
		"window_start", windowStart.Format(time.RFC3339))

	return count, nil
}
