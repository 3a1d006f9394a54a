package api

import (
	"time"

	"roster/internal/cache"
	"roster/internal/journal"
	"roster/internal/registry"
)

// FromLookup builds the lookup response for a raw query key. The record is
// ignored unless found is true.
func FromLookup(key string, record registry.Record, found bool, checkedAt time.Time, cacheAge time.Duration) LookupResponse {
	resp := LookupResponse{
		OK:        true,
		Status:    StatusNotFound,
		Key:       key,
		CheckedAt: FormatTime(checkedAt),
		CacheAge:  FormatAge(cacheAge),
	}
	if found {
		company := record.CompanyName
		details := record
		resp.Registered = true
		resp.Status = StatusRegistered
		resp.Company = &company
		resp.Details = &details
	}
	return resp
}

// FromStore summarizes the lookup store for the health endpoint.
func FromStore(store *cache.Store) CacheHealth {
	health := CacheHealth{Entries: store.Len()}
	if last := store.LastUpdate(); !last.IsZero() {
		health.LastUpdate = last.UnixMilli()
		health.Age = FormatAge(store.Age())
	}
	return health
}

// StatsFromStore builds the stats body from the lookup store and the
// configured cache TTL.
func StatsFromStore(store *cache.Store, ttl time.Duration) Stats {
	stats := Stats{
		Entries:    store.Len(),
		AgeMinutes: -1,
		IsLoading:  store.Loading(),
		TTLHours:   int(ttl / time.Hour),
	}
	if last := store.LastUpdate(); !last.IsZero() {
		stats.LastUpdate = last.UnixMilli()
		stats.AgeMinutes = int64(store.Age() / time.Minute)
	}
	return stats
}

// FromJournalEntry renders one journal row for API output.
func FromJournalEntry(entry journal.Entry) RefreshRecord {
	return RefreshRecord{
		ID:         entry.ID,
		Trigger:    entry.Trigger,
		StartedAt:  FormatTime(entry.StartedAt),
		FinishedAt: FormatTime(entry.FinishedAt),
		Outcome:    entry.Outcome,
		Entries:    entry.Entries,
		Error:      entry.Error,
	}
}

// FromJournalEntries renders journal rows preserving their order.
func FromJournalEntries(entries []journal.Entry) []RefreshRecord {
	records := make([]RefreshRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, FromJournalEntry(entry))
	}
	return records
}

// FormatTime renders a timestamp for API output, empty for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// ParseTime parses a timestamp produced by FormatTime.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(dateTimeFormat, value)
}

// FormatAge renders a cache age rounded to whole seconds.
func FormatAge(age time.Duration) string {
	if age < 0 {
		age = 0
	}
	return age.Round(time.Second).String()
}
