// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package cache

import (
	"context"
	"time"
)

// CacheInterface is the small read-through surface the tenant resolver uses
// for host lookups. Values are opaque bytes; a miss is (nil, false).
type CacheInterface interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
