// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

var _ CacheInterface = (*Redis)(nil)

// Redis is the shared cache backend for multi-instance deployments, so every
// instance sees domain invalidations immediately.
type Redis struct {
	c *rdb.Client
}

func NewRedis(url string) (*Redis, error) {
	opts, err := rdb.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{c: rdb.NewClient(opts)}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.c.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = r.c.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) {
	_ = r.c.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	return r.c.Close()
}
