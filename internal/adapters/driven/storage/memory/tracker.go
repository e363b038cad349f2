package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
)

// Ensure Tracker implements the interface.
var _ driven.IngestionTracker = (*Tracker)(nil)

// Tracker is an in-memory implementation of driven.IngestionTracker.
type Tracker struct {
	mu      sync.RWMutex
	records map[domain.Fingerprint]domain.TrackerRecord
	now     func() time.Time
}

// NewTracker creates a new in-memory tracker.
func NewTracker() *Tracker {
	return &Tracker{
		records: make(map[domain.Fingerprint]domain.TrackerRecord),
		now:     time.Now,
	}
}

// Initialize is a no-op; the map is always ready.
func (t *Tracker) Initialize(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.records == nil {
		t.records = make(map[domain.Fingerprint]domain.TrackerRecord)
	}
	return nil
}

// IsProcessed reports whether the fingerprint has a record.
func (t *Tracker) IsProcessed(_ context.Context, fp domain.Fingerprint) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.records[fp]
	return ok, nil
}

// Register inserts or replaces a record.
func (t *Tracker) Register(_ context.Context, rec domain.TrackerRecord) error {
	if !rec.Fingerprint.IsValid() {
		return fmt.Errorf("%w: fingerprint %q", domain.ErrInvalidInput, rec.Fingerprint)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	rec.UpdatedAt = t.now().UTC()
	t.records[rec.Fingerprint] = rec
	return nil
}

// Get retrieves a record.
func (t *Tracker) Get(_ context.Context, fp domain.Fingerprint) (*domain.TrackerRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[fp]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

// List returns all records, newest first.
func (t *Tracker) List(_ context.Context) ([]domain.TrackerRecord, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.TrackerRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].FileName < out[j].FileName
	})
	return out, nil
}

// Count returns the number of records.
func (t *Tracker) Count(_ context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records), nil
}

// Drop removes all records.
func (t *Tracker) Drop(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[domain.Fingerprint]domain.TrackerRecord)
	return nil
}

// Close releases resources.
func (t *Tracker) Close() error {
	return nil
}
