package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"roster/internal/logging"
	"roster/internal/registry"
	"roster/internal/services"
)

// Mirror persists snapshots to a JSON file so a restarted daemon can serve
// lookups without waiting for a fresh download. The file is rewritten
// wholesale on every save.
type Mirror struct {
	path   string
	logger *slog.Logger
}

// NewMirror creates a mirror writing to the given path.
func NewMirror(path string, logger *slog.Logger) *Mirror {
	return &Mirror{path: path, logger: logging.NewComponentLogger(logger, "mirror")}
}

// Path returns the snapshot file location.
func (m *Mirror) Path() string {
	return m.path
}

type snapshotFile struct {
	LastUpdate int64          `json:"lastUpdate"`
	Count      int            `json:"count"`
	Data       []snapshotPair `json:"data"`
}

// snapshotPair encodes one cache entry as a [key, record] JSON tuple.
type snapshotPair struct {
	Key    string
	Record registry.Record
}

func (p snapshotPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Record})
}

func (p *snapshotPair) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return err
	}
	if len(raw[1]) == 0 {
		return nil
	}
	return json.Unmarshal(raw[1], &p.Record)
}

// Save writes the snapshot to disk atomically via a temp file rename.
func (m *Mirror) Save(snap *registry.Snapshot) error {
	keys := make([]string, 0, snap.Len())
	for key := range snap.Entries {
		keys = append(keys, key)
	}
	// Sort for deterministic output
	sort.Strings(keys)

	file := snapshotFile{
		LastUpdate: snap.FetchedAt.UnixMilli(),
		Count:      len(keys),
		Data:       make([]snapshotPair, 0, len(keys)),
	}
	for _, key := range keys {
		file.Data = append(file.Data, snapshotPair{Key: key, Record: snap.Entries[key]})
	}

	data, err := json.Marshal(file)
	if err != nil {
		return services.Wrap(services.ErrWriteFailed, "mirror", "save", "marshal snapshot", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return services.Wrap(services.ErrWriteFailed, "mirror", "save", "create cache directory", err)
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return services.Wrap(services.ErrWriteFailed, "mirror", "save", "write temp file", err)
	}
	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return services.Wrap(services.ErrWriteFailed, "mirror", "save", "rename temp file", err)
	}

	m.logger.Info("snapshot persisted",
		logging.Int("entries", len(keys)),
		logging.String("path", m.path),
	)
	return nil
}

// Load reads the persisted snapshot from disk. A missing file reports
// services.ErrNotFound; any other failure reports services.ErrReadFailed.
func (m *Mirror) Load() (*registry.Snapshot, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "mirror", "load", "no snapshot on disk", err)
		}
		return nil, services.Wrap(services.ErrReadFailed, "mirror", "load", "read snapshot file", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrReadFailed, "mirror", "load", "parse snapshot file", err)
	}

	records := make([]registry.Record, 0, len(file.Data))
	for _, pair := range file.Data {
		rec := pair.Record
		if rec.RegistrationNumber == "" {
			rec.RegistrationNumber = pair.Key
		}
		records = append(records, rec)
	}

	var fetchedAt time.Time
	if file.LastUpdate > 0 {
		fetchedAt = time.UnixMilli(file.LastUpdate)
	}
	snap := registry.NewSnapshot(records, fetchedAt)

	m.logger.Debug("snapshot loaded",
		logging.Int("entries", snap.Len()),
		logging.String("path", m.path),
	)
	return snap, nil
}
