// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/cache"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/db"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/logging"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/monitoring"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/storage"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/internal/tracing"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenancy"
	"github.com/untalcamilomedina/proyecto-semilla-sub002/pkg/tenant"
)

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "Operator commands for tenant administration",
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, _ := cmd.Flags().GetString("dsn")

		svc, _, closeFn, err := operatorService(dsn)
		if err != nil {
			return err
		}
		defer closeFn()

		tenants, err := svc.ListTenants(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tSCOPE\tENABLED\tCREATED")
		for _, t := range tenants {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", t.ID, t.Slug, t.IsolationScope, t.Enabled, t.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}

var enableTenantCmd = &cobra.Command{
	Use:   "enable [tenant-id]",
	Short: "Re-enable a deactivated tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTenantStatus(cmd, args[0], true)
	},
}

var disableTenantCmd = &cobra.Command{
	Use:   "disable [tenant-id]",
	Short: "Deactivate a tenant; its hosts stop resolving",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTenantStatus(cmd, args[0], false)
	},
}

func init() {
	tenantsCmd.PersistentFlags().String("dsn", "", "database DSN")
	_ = tenantsCmd.MarkPersistentFlagRequired("dsn")

	tenantsCmd.AddCommand(listTenantsCmd)
	tenantsCmd.AddCommand(enableTenantCmd)
	tenantsCmd.AddCommand(disableTenantCmd)
	rootCmd.AddCommand(tenantsCmd)
}

func setTenantStatus(cmd *cobra.Command, tenantID string, enabled bool) error {
	dsn, _ := cmd.Flags().GetString("dsn")

	svc, dbClient, closeFn, err := operatorService(dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	// Status changes cross tenant boundaries from outside any request, so
	// they run on the audited bypass path.
	err = dbClient.WithPrivilegedScope(cmd.Context(), "operator", "tenant status change", func(ctx context.Context) error {
		return svc.SetTenantStatus(ctx, tenantID, enabled)
	})
	if err != nil {
		return fmt.Errorf("failed to update tenant %s: %w", tenantID, err)
	}

	fmt.Printf("Tenant %s enabled=%v\n", tenantID, enabled)
	return nil
}

func operatorService(dsn string) (*tenant.Service, *db.DBClient, func(), error) {
	logger := logging.NewLogger("info")

	var tracer tracing.TracingInterface = tracing.NewNoopTracer()
	var monitor monitoring.MonitorInterface = monitoring.NewNoopMonitor()

	dbClient, err := db.NewDBClient(db.Config{DSN: dsn, MaxConns: 2, MinConns: 1}, tracer, monitor, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create database client: %w", err)
	}
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	resolver := tenancy.NewResolver(s, dbClient, cache.NewMemory(time.Minute), time.Minute, tracer, monitor, logger)
	svc := tenant.NewService(s, dbClient, resolver, 24*time.Hour, tracer, monitor, logger)

	closeFn := func() {
		dbClient.Close()
		_ = logger.Sync()
	}
	return svc, dbClient, closeFn, nil
}
