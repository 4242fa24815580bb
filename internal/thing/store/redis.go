package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"scaffold/internal/thing/models"
	"scaffold/pkg/platform/sentinel"
)

const keyPrefix = "thing:"

// RedisStore persists things as JSON snapshots under thing:<id>.
type RedisStore struct {
	client *redis.Client
}

var _ models.Repository = (*RedisStore)(nil)

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, thing *models.Thing) error {
	data, err := json.Marshal(thing.Snapshot())
	if err != nil {
		return fmt.Errorf("encode thing: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+thing.ID().String(), data, 0).Err(); err != nil {
		return fmt.Errorf("save thing: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, id models.ThingID) (*models.Thing, error) {
	data, err := s.client.Get(ctx, keyPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find thing: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode thing: %w", err)
	}
	return models.Reconstitute(snap), nil
}
