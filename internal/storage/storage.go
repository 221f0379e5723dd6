package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record exists for the requested key
// (or when an index query matches nothing).
var ErrNotFound = errors.New("record not found")

// Store is the key-value store the repositories are built on. A record is a
// flat map of string attributes; every user field is persisted as a string.
//
// GetByKey and QueryByIndex return ErrNotFound on a miss. PutRecord is an
// unconditional upsert, UpdateRecord merges the given attributes into the
// record at key, and DeleteRecord is idempotent.
type Store interface {
	PutRecord(ctx context.Context, table, key string, attrs map[string]string) error
	GetByKey(ctx context.Context, table, key string) (map[string]string, error)
	QueryByIndex(ctx context.Context, table, index, field, value string) ([]map[string]string, error)
	UpdateRecord(ctx context.Context, table, key string, attrs map[string]string) error
	DeleteRecord(ctx context.Context, table, key string) error
}
