package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/lysyi3m/rss-mirror/app/feed"
)

// maxLineSize bounds a single stored record; summaries can be long.
const maxLineSize = 1024 * 1024

// Load reads the newline-delimited record store at path. A missing file is an
// empty store (first run). Lines that fail to decode as a well-formed record
// are skipped, never fatal, so a partially corrupted file from an interrupted
// write does not abort the run. Fingerprints are recomputed from record
// content, never trusted from storage; when two lines share a fingerprint the
// later line wins.
func Load(path string) (map[string]feed.Record, error) {
	records := make(map[string]feed.Record)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record feed.Record
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			slog.Debug("Skipping malformed store line", "line", lineNo, "error", err)
			skipped++
			continue
		}
		if record.Published.IsZero() {
			slog.Debug("Skipping store line without published timestamp", "line", lineNo)
			skipped++
			continue
		}

		records[record.Fingerprint()] = record
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	if skipped > 0 {
		slog.Warn("Skipped malformed store lines", "path", path, "skipped", skipped)
	}

	return records, nil
}

// Write replaces the store at path with the given records, one JSON object
// per line, newest first with a fingerprint tiebreak so output is
// deterministic and diff-friendly. The records go to a temporary file that is
// renamed over path, so a crash mid-write leaves the previous store intact
// and no reader ever observes a mix of old and new content.
func Write(path string, records map[string]feed.Record) (int, error) {
	type keyed struct {
		fp     string
		record feed.Record
	}

	sorted := make([]keyed, 0, len(records))
	for fp, record := range records {
		sorted = append(sorted, keyed{fp: fp, record: record})
	}
	slices.SortFunc(sorted, func(a, b keyed) int {
		if c := b.record.Published.Compare(a.record.Published); c != 0 {
			return c
		}
		return strings.Compare(a.fp, b.fp)
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetEscapeHTML(false)
	for _, entry := range sorted {
		if err := encoder.Encode(entry.record); err != nil {
			tmp.Close()
			return 0, fmt.Errorf("failed to encode record: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temporary store file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to replace store file: %w", err)
	}

	return len(sorted), nil
}
