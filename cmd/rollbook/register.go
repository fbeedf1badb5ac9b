// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

package main

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/rollbook/rollbook/internal/auth"
	"github.com/rollbook/rollbook/internal/auth/postgres"
	"github.com/rollbook/rollbook/internal/logging"
	"github.com/rollbook/rollbook/internal/store"
)

// NewRegisterCmd creates the register subcommand, which runs the full
// registration flow against the configured store. The password and its
// confirmation are read from stdin, one per line, and never appear in argv.
func NewRegisterCmd() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
			}
			return runRegister(cmd.Context(), cmd, cfg, username, email)
		},
	}
	addConfigFlags(cmd.Flags())
	cmd.Flags().StringVar(&username, "username", "", "username for the new credential")
	cmd.Flags().StringVar(&email, "email", "", "email address for the new credential")
	_ = cmd.MarkFlagRequired("username") //nolint:errcheck // flag is registered above
	_ = cmd.MarkFlagRequired("email")    //nolint:errcheck // flag is registered above
	return cmd
}

func runRegister(ctx context.Context, cmd *cobra.Command, cfg *appConfig, username, email string) error {
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

	creds := postgres.NewCredentialRepository(pool)
	passwords := auth.NewPasswordValidator(cfg.breachChecker(), auth.PasswordValidatorOptions{
		FailOpen: cfg.BreachCheck.FailOpen,
	})
	registration, err := auth.NewRegistration(passwords, hasher, creds)
	if err != nil {
		return err
	}

	password, confirm, err := readPasswordPair(cmd)
	if err != nil {
		return err
	}

	cred, err := registration.Create(ctx, auth.RegistrationData{
		Username:     username,
		Password1:    password,
		Password2:    confirm,
		Email:        email,
		EmailConfirm: email,
	})
	if err != nil {
		return err
	}
	if err := registration.Save(ctx, cred); err != nil {
		return err
	}

	cmd.Printf("Credential created: %s (%s)\n", cred.Username, cred.ID)
	return nil
}

// readPasswordPair reads the password and its confirmation from stdin.
func readPasswordPair(cmd *cobra.Command) (password, confirm string, err error) {
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.PrintErrln("Password:")
	password, err = readLine(reader)
	if err != nil {
		return "", "", oops.Code("INPUT_FAILED").Wrap(err)
	}

	cmd.PrintErrln("Confirm password:")
	confirm, err = readLine(reader)
	if err != nil {
		return "", "", oops.Code("INPUT_FAILED").Wrap(err)
	}
	return password, confirm, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err //nolint:wrapcheck // callers wrap with context-specific info
	}
	return strings.TrimRight(line, "\r\n"), nil
}
