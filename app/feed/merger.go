package feed

import (
	"log/slog"
	"maps"
	"time"
)

// Merger reconciles freshly fetched items with the previously stored record
// set under a rolling retention window. It exclusively owns the working map
// for the duration of one run.
type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// Run merges items into a copy of existing and applies the retention window.
// An existing record always wins over a fetched item with the same
// fingerprint, so upstream edits never rewrite stored records. Admission and
// pruning both compare against the same windowStart, which means a stale
// entry from the previous store cannot survive this run's window, whatever
// the clock drift between runs.
func (m *Merger) Run(existing map[string]Record, items []Item, windowStart, now time.Time) map[string]Record {
	working := maps.Clone(existing)
	if working == nil {
		working = make(map[string]Record)
	}

	admitted := 0
	duplicates := 0
	for _, item := range items {
		record := m.normalize(item, now)
		if record.Published.Before(windowStart) {
			continue
		}

		fp := item.Fingerprint()
		if _, ok := working[fp]; ok {
			duplicates++
			continue
		}

		working[fp] = record
		admitted++
	}

	for fp, record := range working {
		if record.Published.Before(windowStart) {
			delete(working, fp)
		}
	}

	slog.Debug("Merge completed",
		"fetched", len(items),
		"new", admitted,
		"duplicates", duplicates,
		"kept", len(working))

	return working
}

// normalize converts an item to its storage form. Published resolves from the
// published date, then the updated date, then now; entries lacking both dates
// are treated as just seen, never dropped.
func (m *Merger) normalize(item Item, now time.Time) Record {
	published := now.UTC()
	if item.PublishedAt != nil {
		published = item.PublishedAt.UTC()
	} else if item.UpdatedAt != nil {
		published = item.UpdatedAt.UTC()
	}

	return Record{
		Title:     item.Title,
		Link:      item.Link,
		Published: published,
		Summary:   item.Summary,
	}
}
