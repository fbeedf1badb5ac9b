// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package main

import (
	"bufio"
	"context"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rollbook/rollbook/internal/auth"
	"github.com/rollbook/rollbook/internal/auth/postgres"
	"github.com/rollbook/rollbook/internal/logging"
	"github.com/rollbook/rollbook/internal/store"
)

// NewLoginCmd creates the login subcommand, an operational check that runs
// an authentication attempt against the configured store and reports the
// outcome and role set. The password is read from stdin.
func NewLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check a credential against the store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
			}
			return runLogin(cmd.Context(), cmd, cfg, username)
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&username, "username", "", "username to authenticate")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag is registered above
	return cmd
}

func runLogin(ctx context.Context, cmd *cobra.Command, cfg *appConfig, username string) error {
	logging.SetDefault("rollbook", version, cfg.Log.Format)

	hasher, err := auth.NewHasher(cfg.hasherConfig())
	if err != nil {
		return err
	}

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	authSvc, err := auth.NewAuth(postgres.NewCredentialRepository(pool), hasher)
	if err != nil {
		return err
	}

	cmd.PrintErrln("Password:")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return oops.Code("INPUT_FAILED").Wrap(err)
	}
	password := strings.TrimRight(line, "\r\n")

	var sess auth.Session
	if !authSvc.Login(ctx, &sess, username, password) {
		cmd.Println("Authentication failed")
		return nil
	}

	roles, err := authSvc.Roles(ctx, &sess)
	if err != nil {
		return err
	}

	cmd.Printf("Authenticated as %s, roles: %s\n", username, strings.Join(roles, ", "))
	authSvc.Logout(&sess)
	return nil
}
