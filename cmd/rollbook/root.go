// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the Rollbook CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollbook",
		Short: "Rollbook - credential service for the Rollbook platform",
		Long: `Rollbook manages the credential store of the Rollbook course platform:
password hashing, account registration, authentication checks, and the
database schema behind them.`,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewRegisterCmd())
	cmd.AddCommand(NewLoginCmd())

	return cmd
}
