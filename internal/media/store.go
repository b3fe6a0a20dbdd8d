package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/moby/sys/atomicwriter"

	"github.com/memohai/mediabot/internal/metrics"
)

// DefaultStorePath is the document used when no path is configured.
const DefaultStorePath = "media_db.json"

// Store is the single owner of all media records. The in-memory sequence is
// mirrored to one JSON array on disk, rewritten wholesale after every append.
// Writers are serialized; readers get copies.
type Store struct {
	mu      sync.RWMutex
	path    string
	records []Record
	ids     map[string]struct{}
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewStore creates an empty store backed by path. Call Load before use.
func NewStore(log *slog.Logger, path string, rec *metrics.Recorder) *Store {
	if log == nil {
		log = slog.Default()
	}
	if path == "" {
		path = DefaultStorePath
	}
	return &Store{
		path:    path,
		records: []Record{},
		ids:     map[string]struct{}{},
		metrics: rec,
		logger:  log.With(slog.String("service", "media_store"), slog.String("path", path)),
	}
}

// Path returns the backing document path.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory sequence with the persisted document. A missing
// document yields an empty store; unreadable or malformed content yields a
// *CorruptStoreError and leaves the store untouched.
func (s *Store) Load() error {
	records, err := ReadFile(s.path)
	if err != nil {
		return err
	}
	ids := make(map[string]struct{}, len(records))
	skipped := 0
	for _, r := range records {
		ids[r.ID] = struct{}{}
		if !r.Deliverable() {
			skipped++
		}
	}

	s.mu.Lock()
	s.records = records
	s.ids = ids
	s.mu.Unlock()

	s.metrics.SetRecords(len(records))
	s.logger.Info("media store loaded", slog.Int("records", len(records)), slog.Int("non_deliverable", skipped))
	return nil
}

// ReadFile decodes a persisted document without touching any store.
func ReadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, &CorruptStoreError{Path: path, Err: err}
	}
	records, err := decodeRecords(data)
	if err != nil {
		return nil, &CorruptStoreError{Path: path, Err: err}
	}
	return records, nil
}

func decodeRecords(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("document is empty")
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Append validates record, adds it to the end of the sequence and persists the
// whole store. When persisting fails the record stays visible in memory and a
// *PersistenceError is returned.
func (s *Store) Append(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[record.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
	}
	s.records = append(s.records, record)
	s.ids[record.ID] = struct{}{}
	s.metrics.SetRecords(len(s.records))

	if err := s.persistLocked(); err != nil {
		s.logger.Error("persist after append failed", slog.String("record_id", record.ID), slog.Any("error", err))
		return err
	}
	return nil
}

// Persist overwrites the backing document with the current sequence.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked replaces the document atomically. Caller must hold the write lock.
func (s *Store) persistLocked() error {
	data, err := EncodeRecords(s.records)
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &PersistenceError{Path: s.path, Err: fmt.Errorf("create dir: %w", err)}
	}
	if err := atomicwriter.WriteFile(s.path, data, 0o644); err != nil {
		return &PersistenceError{Path: s.path, Err: fmt.Errorf("replace document: %w", err)}
	}
	return nil
}

// EncodeRecords renders records the way they are persisted: an indented JSON
// array with a trailing newline.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// All returns a copy of every record, oldest first.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Search returns the records whose description contains keyword, ignoring case.
func (s *Store) Search(keyword string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.records, keyword)
}
