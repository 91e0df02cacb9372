package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Item is a single entry as delivered by the upstream feed for one run.
// Every field is optional; absent timestamps stay nil.
type Item struct {
	GUID        string
	Title       string
	Link        string
	Summary     string
	PublishedAt *time.Time
	UpdatedAt   *time.Time
}

// Record is the canonical persisted form of an admitted item: exactly these
// four fields, Published required. A stored record is never mutated in place;
// it is kept unchanged until it falls outside the retention window.
type Record struct {
	Title     string    `json:"title,omitempty"`
	Link      string    `json:"link,omitempty"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary,omitempty"`
}
