package register

import (
	"context"

	"roster/internal/registry"
)

// Source combines the HTTP client and the export decoder into the single
// fetch step the refresh pipeline consumes.
type Source struct {
	client *Client
}

// NewSource wraps a client. A nil client yields a nil source.
func NewSource(client *Client) *Source {
	if client == nil {
		return nil
	}
	return &Source{client: client}
}

// Fetch downloads the current register export and decodes it into records.
func (s *Source) Fetch(ctx context.Context) ([]registry.Record, error) {
	payload, err := s.client.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(payload)
}
