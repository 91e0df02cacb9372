package feed

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Fingerprint derives the dedupe key for an entry: the feed-supplied id when
// present, else the link, else the given fallback serialization. The result
// is stable across runs for identical input.
func Fingerprint(id, link string, fallback []byte) string {
	material := cmp.Or(id, link)
	if material == "" {
		material = string(fallback)
	}

	hash := sha256.Sum256([]byte(material))
	return hex.EncodeToString(hash[:])
}

// Fingerprint hashes the item identity. An item with neither GUID nor link
// falls back to hashing all present fields with stable key order, so two such
// items with identical fields share a fingerprint.
func (i Item) Fingerprint() string {
	return Fingerprint(i.GUID, i.Link, i.canonical())
}

// Fingerprint hashes the stored record identity. Records carry no GUID, so
// the link is the primary material.
func (r Record) Fingerprint() string {
	return Fingerprint("", r.Link, r.canonical())
}

// canonical serializes present fields as JSON with sorted keys.
func (i Item) canonical() []byte {
	fields := make(map[string]any)
	if i.GUID != "" {
		fields["guid"] = i.GUID
	}
	if i.Title != "" {
		fields["title"] = i.Title
	}
	if i.Link != "" {
		fields["link"] = i.Link
	}
	if i.Summary != "" {
		fields["summary"] = i.Summary
	}
	if i.PublishedAt != nil {
		fields["published"] = i.PublishedAt.UTC().Format(time.RFC3339)
	}
	if i.UpdatedAt != nil {
		fields["updated"] = i.UpdatedAt.UTC().Format(time.RFC3339)
	}

	data, _ := json.Marshal(fields)
	return data
}

func (r Record) canonical() []byte {
	fields := make(map[string]any)
	if r.Title != "" {
		fields["title"] = r.Title
	}
	if r.Link != "" {
		fields["link"] = r.Link
	}
	if r.Summary != "" {
		fields["summary"] = r.Summary
	}
	if !r.Published.IsZero() {
		fields["published"] = r.Published.UTC().Format(time.RFC3339)
	}

	data, _ := json.Marshal(fields)
	return data
}
