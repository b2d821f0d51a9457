package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of DeploymentStore for testing
type MemoryStore struct {
	mu      sync.RWMutex
	records []*DeploymentRecord
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Open initializes the storage
func (s *MemoryStore) Open() error { return nil }

// Close closes the storage
func (s *MemoryStore) Close() error { return nil }

// Record stores a new record
func (s *MemoryStore) Record(ctx context.Context, record *DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fill(record)
	copied := *record
	s.records = append(s.records, &copied)
	return nil
}

// Get retrieves a record by its ID
func (s *MemoryStore) Get(ctx context.Context, id string) (*DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, ErrRecordNotFound{ID: id}
}

// List retrieves records newest first
func (s *MemoryStore) List(ctx context.Context, name string, limit int) ([]*DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*DeploymentRecord
	for _, r := range s.records {
		if name == "" || r.Name == name {
			copied := *r
			out = append(out, &copied)
		}
	}
	return newestFirst(out, limit), nil
}
