package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store backed by maps. It is used as the test
// double for the repositories and as the "memory" backend for local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[string]map[string]string),
	}
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func (s *MemoryStore) PutRecord(_ context.Context, table, key string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[table]
	if !ok {
		t = make(map[string]map[string]string)
		s.tables[table] = t
	}
	t[key] = copyAttrs(attrs)
	return nil
}

func (s *MemoryStore) GetByKey(_ context.Context, table, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.tables[table][key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAttrs(rec), nil
}

// QueryByIndex scans the table for records whose field equals value. The index
// name is ignored: the in-memory backend has no named indexes.
func (s *MemoryStore) QueryByIndex(_ context.Context, table, _ string, field, value string) ([]map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []map[string]string
	for _, rec := range s.tables[table] {
		if rec[field] == value {
			out = append(out, copyAttrs(rec))
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// UpdateRecord merges attrs into the record at key, creating it when absent.
func (s *MemoryStore) UpdateRecord(_ context.Context, table, key string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[table]
	if !ok {
		t = make(map[string]map[string]string)
		s.tables[table] = t
	}
	rec, ok := t[key]
	if !ok {
		rec = make(map[string]string, len(attrs))
		t[key] = rec
	}
	for k, v := range attrs {
		rec[k] = v
	}
	return nil
}

func (s *MemoryStore) DeleteRecord(_ context.Context, table, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables[table], key)
	return nil
}
