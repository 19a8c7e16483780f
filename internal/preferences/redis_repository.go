package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tablePreferences:"

// RedisRepository keeps each owner's root under a single key.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(redisURL string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisRepository{client: client}, nil
}

func NewRedisRepositoryWithClient(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) key(owner string) string {
	return redisKeyPrefix + owner
}

func (r *RedisRepository) Load(ctx context.Context, owner string) (map[string]json.RawMessage, error) {
	data, err := r.client.Get(ctx, r.key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load preference root: %w", err)
	}

	root := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode preference root: %w", err)
	}
	return root, nil
}

func (r *RedisRepository) Save(ctx context.Context, owner string, root map[string]json.RawMessage) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("encode preference root: %w", err)
	}
	if err := r.client.Set(ctx, r.key(owner), data, 0).Err(); err != nil {
		return fmt.Errorf("save preference root: %w", err)
	}
	return nil
}

func (r *RedisRepository) Rename(ctx context.Context, from, to string) error {
	exists, err := r.client.Exists(ctx, r.key(from)).Result()
	if err != nil {
		return fmt.Errorf("check preference root: %w", err)
	}
	if exists == 0 {
		return nil
	}
	if err := r.client.Rename(ctx, r.key(from), r.key(to)).Err(); err != nil {
		return fmt.Errorf("rename preference owner: %w", err)
	}
	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
