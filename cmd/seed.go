// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/authorization"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/types"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/authentication"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the system administrator account",
	Long: `Create the initial system administrator user and the global superadmin
role. Safe to run repeatedly; existing rows are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		return seed(cmd.Context(), dsn, email, password)
	},
}

func init() {
	seedCmd.Flags().String("dsn", "", "database DSN")
	seedCmd.Flags().String("email", "", "administrator email")
	seedCmd.Flags().String("password", "", "administrator password")
	_ = seedCmd.MarkFlagRequired("dsn")
	_ = seedCmd.MarkFlagRequired("email")
	_ = seedCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(seedCmd)
}

func seed(ctx context.Context, dsn, email, password string) error {
	logger := logging.NewLogger("info")
	defer logger.Sync()

	var tracer tracing.TracingInterface = tracing.NewNoopTracer()
	var monitor monitoring.MonitorInterface = monitoring.NewNoopMonitor()

	dbClient, err := db.NewDBClient(db.Config{DSN: dsn, MaxConns: 2, MinConns: 1}, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %w", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	hash, err := authentication.HashPassword(authentication.DefaultPasswordParams, password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// The administrator and the global role live outside every tenant scope,
	// so the writes run on the audited bypass path.
	return dbClient.WithPrivilegedScope(ctx, "system", "initial administrator seeding", func(ctx context.Context) error {
		if _, err := s.GetUserByEmail(ctx, email); err == nil {
			fmt.Printf("User %s already exists, nothing to do\n", email)
			return nil
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to check for existing user: %w", err)
		}

		user, err := s.CreateUser(ctx, &types.User{
			Email:        email,
			PasswordHash: hash,
			Verified:     true,
			Enabled:      true,
			IsSystem:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to create administrator: %w", err)
		}

		role, err := s.GetRoleByName(ctx, "", "superadmin")
		if errors.Is(err, storage.ErrNotFound) {
			role, err = s.CreateRole(ctx, &types.Role{
				Name:        "superadmin",
				Permissions: []string{authorization.WILDCARD_PERMISSION},
			})
		}
		if err != nil {
			return fmt.Errorf("failed to ensure superadmin role: %w", err)
		}

		fmt.Printf("Administrator created: %s (%s)\n", user.Email, user.ID)
		fmt.Printf("Global role available: %s\n", role.Name)
		return nil
	})
}
