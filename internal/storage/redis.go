package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	"wayfarer/internal/config"
	"wayfarer/internal/interfaces"
	"wayfarer/internal/models"
)

const defaultSavePrefix = "wayfarer:save:"

// RedisStore keeps game saves as JSON values under prefixed keys, with a
// set holding the id index for listing.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redis and pings it once so a dead backend is
// reported at boot instead of on the first save.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	prefix := cfg.SavePrefix
	if prefix == "" {
		prefix = defaultSavePrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Get implements interfaces.SaveStore.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.GameSave, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, interfaces.ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	var save models.GameSave
	if err := json.Unmarshal([]byte(data), &save); err != nil {
		return nil, fmt.Errorf("failed to unmarshal save %q: %w", id, err)
	}
	return &save, nil
}

// Set implements interfaces.SaveStore.
func (s *RedisStore) Set(ctx context.Context, save *models.GameSave) error {
	data, err := json.Marshal(save)
	if err != nil {
		return fmt.Errorf("failed to marshal save %q: %w", save.ID, err)
	}
	if err := s.client.Set(ctx, s.key(save.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}
	if err := s.client.SAdd(ctx, s.indexKey(), save.ID).Err(); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}
	return nil
}

// List implements interfaces.SaveStore. Ids whose keys have vanished are
// dropped from the index on the way through.
func (s *RedisStore) List(ctx context.Context) ([]models.SaveSummary, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	summaries := make([]models.SaveSummary, 0, len(ids))
	for _, id := range ids {
		save, err := s.Get(ctx, id)
		if err == interfaces.ErrSaveNotFound {
			_ = s.client.SRem(ctx, s.indexKey(), id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, save.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastUpdated.After(summaries[j].LastUpdated)
	})
	return summaries, nil
}

// Delete implements interfaces.SaveStore.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}
	if err := s.client.SRem(ctx, s.indexKey(), id).Err(); err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}
	return nil
}
