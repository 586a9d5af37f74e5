// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var _ CacheInterface = (*Memory)(nil)

// Memory is the in-process cache backend, suitable for single-instance
// deployments and tests.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(defaultTTL time.Duration) *Memory {
	return &Memory{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.c.Delete(key)
}
