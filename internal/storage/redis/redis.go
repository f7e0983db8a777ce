package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"devconnect/internal/models"
	"devconnect/internal/storage"

	"github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, addr, pass string, db int) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

// CachedRepos returns the repo list stored for a GitHub username, or
// storage.ErrCacheMiss when nothing (valid) is cached.
func (r *RedisRepo) CachedRepos(ctx context.Context, username string) ([]models.Repo, error) {
	const op = "storage.redis.CachedRepos"

	key := fmt.Sprintf("github:repos:%s", username)

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrCacheMiss
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var repos []models.Repo
	if err := json.Unmarshal(raw, &repos); err != nil {
		return nil, storage.ErrCacheMiss
	}

	return repos, nil
}

func (r *RedisRepo) SetCachedRepos(ctx context.Context, username string, repos []models.Repo, ttl time.Duration) error {
	const op = "storage.redis.SetCachedRepos"

	key := fmt.Sprintf("github:repos:%s", username)

	raw, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisRepo) Close() {
	r.client.Close()
}
