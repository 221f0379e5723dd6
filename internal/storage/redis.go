package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. A record is a hash at
// "<table>:<key>"; for every configured secondary-index field a plain key
// "<table>:index:<field>:<value>" points back at the primary key.
type RedisStore struct {
	client  *redis.Client
	indexes map[string][]string // table -> indexed fields
}

// NewRedisStore creates a Redis-backed store. indexes lists the secondary
// index fields maintained per table, e.g. {"users": {"email"}}.
func NewRedisStore(client *redis.Client, indexes map[string][]string) *RedisStore {
	return &RedisStore{client: client, indexes: indexes}
}

func (s *RedisStore) recordKey(table, key string) string {
	return table + ":" + key
}

func (s *RedisStore) indexKey(table, field, value string) string {
	return table + ":index:" + field + ":" + value
}

func toValues(attrs map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// PutRecord replaces the record at key and rewrites its index entries.
func (s *RedisStore) PutRecord(ctx context.Context, table, key string, attrs map[string]string) error {
	rk := s.recordKey(table, key)
	old, err := s.client.HGetAll(ctx, rk).Result()
	if err != nil {
		return fmt.Errorf("redis read %s: %w", rk, err)
	}

	pipe := s.client.TxPipeline()
	for _, field := range s.indexes[table] {
		if ov, ok := old[field]; ok && ov != attrs[field] {
			pipe.Del(ctx, s.indexKey(table, field, ov))
		}
		if nv := attrs[field]; nv != "" {
			pipe.Set(ctx, s.indexKey(table, field, nv), key, 0)
		}
	}
	pipe.Del(ctx, rk)
	if len(attrs) > 0 {
		pipe.HSet(ctx, rk, toValues(attrs))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put %s: %w", rk, err)
	}
	return nil
}

func (s *RedisStore) GetByKey(ctx context.Context, table, key string) (map[string]string, error) {
	rk := s.recordKey(table, key)
	rec, err := s.client.HGetAll(ctx, rk).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", rk, err)
	}
	if len(rec) == 0 {
		return nil, ErrNotFound
	}
	return rec, nil
}

// QueryByIndex resolves the index entry for field=value and loads the record
// it points at. The index name is ignored: Redis indexes are keyed by field.
func (s *RedisStore) QueryByIndex(ctx context.Context, table, _ string, field, value string) ([]map[string]string, error) {
	ik := s.indexKey(table, field, value)
	key, err := s.client.Get(ctx, ik).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis index get %s: %w", ik, err)
	}

	rec, err := s.GetByKey(ctx, table, key)
	if err != nil {
		return nil, err
	}
	return []map[string]string{rec}, nil
}

// UpdateRecord merges attrs into the record at key, moving index entries
// whose field value changed. A missing record is created.
func (s *RedisStore) UpdateRecord(ctx context.Context, table, key string, attrs map[string]string) error {
	rk := s.recordKey(table, key)
	old, err := s.client.HGetAll(ctx, rk).Result()
	if err != nil {
		return fmt.Errorf("redis read %s: %w", rk, err)
	}

	pipe := s.client.TxPipeline()
	for _, field := range s.indexes[table] {
		nv, changed := attrs[field]
		if !changed {
			continue
		}
		if ov, ok := old[field]; ok && ov != nv {
			pipe.Del(ctx, s.indexKey(table, field, ov))
		}
		if nv != "" {
			pipe.Set(ctx, s.indexKey(table, field, nv), key, 0)
		}
	}
	if len(attrs) > 0 {
		pipe.HSet(ctx, rk, toValues(attrs))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis update %s: %w", rk, err)
	}
	return nil
}

// DeleteRecord removes the record and its index entries. Deleting a missing
// record succeeds.
func (s *RedisStore) DeleteRecord(ctx context.Context, table, key string) error {
	rk := s.recordKey(table, key)
	old, err := s.client.HGetAll(ctx, rk).Result()
	if err != nil {
		return fmt.Errorf("redis read %s: %w", rk, err)
	}
	if len(old) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, field := range s.indexes[table] {
		if ov, ok := old[field]; ok && ov != "" {
			pipe.Del(ctx, s.indexKey(table, field, ov))
		}
	}
	pipe.Del(ctx, rk)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete %s: %w", rk, err)
	}
	return nil
}
