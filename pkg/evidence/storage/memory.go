package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/evidence"
)

// MemoryStorage is an in-memory evidence.Storage implementation.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*evidence.VerdictRecord
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of the record.
func (s *MemoryStorage) Store(ctx context.Context, record *evidence.VerdictRecord) error {
	clone := *record

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, &clone)
	return nil
}

// Query returns matching records, newest first.
func (s *MemoryStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.VerdictRecord, error) {
	s.mu.RLock()
	matched := s.filter(query)
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].RecordedAt.After(matched[j].RecordedAt)
	})

	if query != nil {
		if query.Offset > 0 {
			if query.Offset >= len(matched) {
				return []*evidence.VerdictRecord{}, nil
			}
			matched = matched[query.Offset:]
		}
		if query.Limit > 0 && len(matched) > query.Limit {
			matched = matched[:query.Limit]
		}
	}

	return matched, nil
}

// Count returns the number of matching records.
func (s *MemoryStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.filter(query))), nil
}

// DeleteBefore removes records recorded before the cutoff.
func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, record := range s.records {
		if record.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept
	return deleted, nil
}

// DeleteOldest removes the n oldest records.
func (s *MemoryStorage) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sort.Slice(s.records, func(i, j int) bool {
		return s.records[i].RecordedAt.Before(s.records[j].RecordedAt)
	})

	if n > int64(len(s.records)) {
		n = int64(len(s.records))
	}
	s.records = s.records[n:]
	return n, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStorage) Close() error {
	return nil
}

// filter must be called with the lock held.
func (s *MemoryStorage) filter(query *evidence.Query) []*evidence.VerdictRecord {
	matched := make([]*evidence.VerdictRecord, 0, len(s.records))
	for _, record := range s.records {
		if query != nil {
			if query.Stage != "" && record.Stage != query.Stage {
				continue
			}
			if query.Passed != nil && record.Passed != *query.Passed {
				continue
			}
			if query.RequestID != "" && record.RequestID != query.RequestID {
				continue
			}
			if query.StartTime != nil && record.RecordedAt.Before(*query.StartTime) {
				continue
			}
			if query.EndTime != nil && record.RecordedAt.After(*query.EndTime) {
				continue
			}
		}
		matched = append(matched, record)
	}
	return matched
}
