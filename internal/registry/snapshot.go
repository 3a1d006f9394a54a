package registry

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Snapshot is an immutable lookup table built from one upstream export.
// Entries are keyed by normalized registration number.
type Snapshot struct {
	Entries   map[string]Record
	FetchedAt time.Time
}

// NormalizeKey trims surrounding whitespace and uppercases the key using
// Unicode case mapping so lookups match regardless of input casing.
func NormalizeKey(raw string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(raw))
}

// NewSnapshot builds a snapshot from parsed records. Records without a
// registration number are dropped; when two records normalize to the same
// key the later one wins.
func NewSnapshot(records []Record, fetchedAt time.Time) *Snapshot {
	entries := make(map[string]Record, len(records))
	for _, rec := range records {
		key := NormalizeKey(rec.RegistrationNumber)
		if key == "" {
			continue
		}
		entries[key] = rec
	}
	return &Snapshot{Entries: entries, FetchedAt: fetchedAt}
}

// Lookup returns the record for a raw key after normalization.
func (s *Snapshot) Lookup(raw string) (Record, bool) {
	if s == nil {
		return Record{}, false
	}
	rec, ok := s.Entries[NormalizeKey(raw)]
	return rec, ok
}

// Len reports the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}
