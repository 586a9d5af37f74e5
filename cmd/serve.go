// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/authorization"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/cache"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/config"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring/prometheus"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/authentication"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/pipeline"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/session"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/status"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenancy"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenant"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		return fmt.Errorf("issues with environment sourcing: %w", err)
	}

	logger := logging.NewLogger(specs.LogLevel)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("proyecto-semilla", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %w", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	resolverCache, err := newResolverCache(specs)
	if err != nil {
		return err
	}
	resolver := tenancy.NewResolver(s, dbClient, resolverCache, specs.ResolverCacheTTL, tracer, monitor, logger)

	signingSeed := specs.TokenSigningSeed
	if signingSeed == "" {
		logger.Warnf("no signing seed configured, generating an ephemeral key; access tokens will not survive a restart")
		seed := make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return fmt.Errorf("failed to generate signing seed: %w", err)
		}
		signingSeed = base64.RawURLEncoding.EncodeToString(seed)
	}
	signer, err := authentication.NewSigner(specs.TokenIssuer, signingSeed, specs.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token signer: %w", err)
	}
	sessions := authentication.NewSessionManager(signer, s, specs.RefreshTokenTTL, tracer, monitor, logger)

	authorizer := authorization.NewAuthorizer(s, tracer, monitor, logger)
	pl := pipeline.NewPipeline(resolver, sessions, dbClient, authorizer, tracer, monitor, logger)

	tenantService := tenant.NewService(s, dbClient, resolver, specs.InvitationLifetime, tracer, monitor, logger)
	tenantAPI := tenant.NewAPI(tenantService, tracer, monitor, logger)
	sessionAPI := session.NewAPI(s, sessions, tenantService, specs.CookieDomain, specs.CookieSecure, tracer, monitor, logger)
	statusAPI := status.NewAPI(dbClient, s, tracer, monitor, logger)

	router := web.NewRouter(pl, tenantAPI, sessionAPI, statusAPI, specs.CORSAllowedOrigins, tracer, monitor, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Security().SystemStartup()
		logger.Infof("Starting HTTP server on port %v", specs.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return runJanitor(gCtx, s, specs.JanitorInterval, logger)
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		logger.Security().SystemShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newResolverCache(specs *config.EnvSpec) (cache.CacheInterface, error) {
	switch specs.ResolverCacheBackend {
	case "redis":
		c, err := cache.NewRedis(specs.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis cache: %w", err)
		}
		return c, nil
	case "memory":
		return cache.NewMemory(specs.ResolverCacheTTL), nil
	default:
		return nil, fmt.Errorf("unknown resolver cache backend %q", specs.ResolverCacheBackend)
	}
}

// runJanitor periodically removes refresh tokens that are past expiry.
// Revoked rows are kept: they are the replay detection record.
func runJanitor(ctx context.Context, s *storage.Storage, interval time.Duration, logger logging.LoggerInterface) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := time.Now().UTC()
			tokens, err := s.DeleteExpiredRefreshTokens(ctx, now)
			if err != nil {
				logger.Errorf("failed to delete expired refresh tokens: %v", err)
				continue
			}
			invites, err := s.DeleteExpiredInvites(ctx, now)
			if err != nil {
				logger.Errorf("failed to delete expired invites: %v", err)
				continue
			}
			if tokens > 0 || invites > 0 {
				logger.Debugf("janitor removed %d expired refresh tokens, %d expired invites", tokens, invites)
			}
		}
	}
}
