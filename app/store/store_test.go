package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/rss-mirror/app/feed"
)

func TestLoadMissingFile(t *testing.T) {
	records, err := Load(filepath.Join(t.TempDir(), "missing.txt"))

	if err != nil {
		t.Fatalf("Expected no error for a missing store, got: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected an empty store, got %d records", len(records))
	}
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.txt")
	content := `{"title":"Good one","link":"https://example.com/1","published":"2024-03-10T10:00:00Z"}
{this line is broken json
{"title":"Good two","link":"https://example.com/2","published":"2024-03-10T11:00:00Z"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 well-formed records, got %d", len(records))
	}
}

func TestLoadSkipsRecordsWithoutPublished(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.txt")
	content := `{"title":"No date","link":"https://example.com/1"}
{"title":"Dated","link":"https://example.com/2","published":"2024-03-10T11:00:00Z"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestLoadLastLineWinsOnDuplicateFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.txt")
	content := `{"title":"Earlier","link":"https://example.com/same","published":"2024-03-10T10:00:00Z"}
{"title":"Later","link":"https://example.com/same","published":"2024-03-10T10:00:00Z"}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected duplicate fingerprints to collapse, got %d records", len(records))
	}

	for _, record := range records {
		if record.Title != "Later" {
			t.Errorf("Expected the later line to win, got title %q", record.Title)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.txt")

	a := feed.Record{Title: "A", Link: "https://example.com/a", Published: time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)}
	b := feed.Record{Title: "B", Link: "https://example.com/b", Published: time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)}
	records := map[string]feed.Record{
		a.Fingerprint(): a,
		b.Fingerprint(): b,
	}

	count, err := Write(path, records)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 records written, got %d", count)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("Expected 2 records loaded, got %d", len(loaded))
	}
	if loaded[a.Fingerprint()].Title != "A" {
		t.Error("Record A did not survive the round trip")
	}
}

func TestWriteOrdersNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.txt")

	oldest := feed.Record{Title: "Oldest", Link: "https://example.com/1", Published: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)}
	middle := feed.Record{Title: "Middle", Link: "https://example.com/2", Published: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	newest := feed.Record{Title: "Newest", Link: "https://example.com/3", Published: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}

	records := map[string]feed.Record{
		oldest.Fingerprint(): oldest,
		middle.Fingerprint(): middle,
		newest.Fingerprint(): newest,
	}

	if _, err := Write(path, records); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "Newest") {
		t.Errorf("Expected the newest record first, got: %s", lines[0])
	}
	if !strings.Contains(lines[2], "Oldest") {
		t.Errorf("Expected the oldest record last, got: %s", lines[2])
	}
}

func TestWriteBreaksTiesByFingerprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.txt")
	published := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	a := feed.Record{Title: "Tie A", Link: "https://example.com/a", Published: published}
	b := feed.Record{Title: "Tie B", Link: "https://example.com/b", Published: published}
	records := map[string]feed.Record{
		a.Fingerprint(): a,
		b.Fingerprint(): b,
	}

	if _, err := Write(path, records); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Same mapping, same bytes: the tiebreak keeps output deterministic.
	if _, err := Write(path, records); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Error("Expected identical output for identical input mappings")
	}
}

func TestWriteCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "store.txt")

	record := feed.Record{Link: "https://example.com/a", Published: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	if _, err := Write(path, map[string]feed.Record{record.Fingerprint(): record}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected the store file to exist: %v", err)
	}
}

func TestWriteLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.txt")

	record := feed.Record{Link: "https://example.com/a", Published: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	if _, err := Write(path, map[string]feed.Record{record.Fingerprint(): record}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the store file in the directory, found %d entries", len(entries))
	}
}

func TestWriteEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.txt")

	count, err := Write(path, map[string]feed.Record{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 records written, got %d", count)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("Expected an empty store, got %d records", len(loaded))
	}
}
