package api

import "roster/internal/registry"

// dateTimeFormat renders timestamps with millisecond precision for API
// payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Lookup statuses reported by the lookup endpoint.
const (
	StatusRegistered = "registered"
	StatusNotFound   = "not_found"
)

// LookupResponse is the body of GET /api/lookup. Company and Details are
// explicit nulls on a miss rather than omitted fields.
type LookupResponse struct {
	OK         bool             `json:"ok"`
	Registered bool             `json:"registered"`
	Status     string           `json:"status"`
	Key        string           `json:"key"`
	Company    *string          `json:"company"`
	Details    *registry.Record `json:"details"`
	CheckedAt  string           `json:"checkedAt"`
	CacheAge   string           `json:"cacheAge"`
}

// CacheHealth summarizes the lookup store for the health endpoint.
// LastUpdate is epoch milliseconds, zero when the cache has never been
// filled; Age is a rounded duration string, empty in the same case.
type CacheHealth struct {
	Entries    int    `json:"entries"`
	LastUpdate int64  `json:"lastUpdate"`
	Age        string `json:"age"`
}

// Health is the body of GET /healthz.
type Health struct {
	OK     bool        `json:"ok"`
	Uptime string      `json:"uptime"`
	Cache  CacheHealth `json:"cache"`
}

// Stats is the body of GET /api/stats. AgeMinutes is -1 until the first
// successful refresh.
type Stats struct {
	Entries     int            `json:"entries"`
	LastUpdate  int64          `json:"lastUpdate"`
	AgeMinutes  int64          `json:"ageMinutes"`
	IsLoading   bool           `json:"isLoading"`
	TTLHours    int            `json:"ttlHours"`
	LastRefresh *RefreshRecord `json:"lastRefresh,omitempty"`
}

// RefreshResponse is the body of POST /admin/refresh. The refresh runs in
// the background; Entries reports the count at the time of the request.
type RefreshResponse struct {
	OK             bool `json:"ok"`
	RefreshStarted bool `json:"refreshStarted"`
	Entries        int  `json:"entries"`
}

// RefreshRecord is one journal row rendered for API output.
type RefreshRecord struct {
	ID         string `json:"id"`
	Trigger    string `json:"trigger"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`
	Outcome    string `json:"outcome"`
	Entries    int    `json:"entries"`
	Error      string `json:"error,omitempty"`
}

// RefreshListResponse is the body of GET /api/refreshes.
type RefreshListResponse struct {
	Refreshes []RefreshRecord `json:"refreshes"`
}

// NotifyTestResponse is the body of POST /admin/test-notification.
type NotifyTestResponse struct {
	Sent   bool   `json:"sent"`
	Detail string `json:"detail"`
}

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
