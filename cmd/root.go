// Copyright 2026 Proyecto Semilla Contributors
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "semilla",
	Short: "Multi-tenant access control service",
	Long:  `Multi-tenant access control service: tenant resolution, sessions and row-level isolation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// A missing .env file is not an error; the environment wins either way.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
