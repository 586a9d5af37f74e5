// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"time"
)

// EnvSpec is the basic environment configuration setup needed for the app to start
type EnvSpec struct {
	OtelGRPCEndpoint string `envconfig:"otel_grpc_endpoint"`
	OtelHTTPEndpoint string `envconfig:"otel_http_endpoint"`
	TracingEnabled   bool   `envconfig:"tracing_enabled" default:"true"`

	LogLevel string `envconfig:"log_level" default:"error"`
	Debug    bool   `envconfig:"debug" default:"false"`

	Port int `envconfig:"port" default:"8080"`

	CORSAllowedOrigins []string `envconfig:"cors_allowed_origins" default:"*"`

	DSN string `envconfig:"DSN" required:"true"`

	DBMaxConns        int32         `envconfig:"db_max_conns" default:"25"`
	DBMinConns        int32         `envconfig:"db_min_conns" default:"2"`
	DBMaxConnLifetime time.Duration `envconfig:"db_max_conn_lifetime" default:"1h"`
	DBMaxConnIdleTime time.Duration `envconfig:"db_max_conn_idle_time" default:"30m"`

	// TokenIssuer ends up in the "iss" claim of every access credential.
	TokenIssuer string `envconfig:"token_issuer" default:"proyecto-semilla"`
	// TokenSigningSeed is the base64url-encoded Ed25519 seed used to sign
	// access credentials. When empty an ephemeral key is generated, which is
	// only acceptable for development: credentials do not survive restarts.
	TokenSigningSeed string        `envconfig:"token_signing_seed"`
	AccessTokenTTL   time.Duration `envconfig:"access_token_ttl" default:"15m"`
	RefreshTokenTTL  time.Duration `envconfig:"refresh_token_ttl" default:"720h"`

	CookieDomain string `envconfig:"cookie_domain"`
	CookieSecure bool   `envconfig:"cookie_secure" default:"true"`

	InvitationLifetime time.Duration `envconfig:"invitation_lifetime" default:"24h"`

	// ResolverCacheBackend selects where host->tenant lookups are cached.
	// One of "memory" or "redis".
	ResolverCacheBackend string        `envconfig:"resolver_cache_backend" default:"memory"`
	ResolverCacheTTL     time.Duration `envconfig:"resolver_cache_ttl" default:"1m"`
	RedisURL             string        `envconfig:"redis_url"`

	JanitorInterval time.Duration `envconfig:"janitor_interval" default:"1h"`
}
