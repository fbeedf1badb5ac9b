// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rollbook Contributors

// Package postgres implements auth repository interfaces using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/rollbook/rollbook/internal/auth"
)

// querier is the subset of pgxpool.Pool the repository uses. pgxmock
// satisfies it in tests.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CredentialRepository implements auth.CredentialRepository using PostgreSQL.
type CredentialRepository struct {
	db querier
}

// NewCredentialRepository creates a CredentialRepository backed by db,
// typically a *pgxpool.Pool.
func NewCredentialRepository(db querier) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// GetByUsername retrieves a credential by exact, case-sensitive username.
func (r *CredentialRepository) GetByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, email, created_at, last_login
		FROM credentials
		WHERE username = $1
	`, username)

	cred, err := scanCredential(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CREDENTIAL_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CREDENTIAL_GET_FAILED").
			With("operation", "get credential by username").
			With("username", username).
			Wrap(err)
	}
	return cred, nil
}

// Create stores a new credential. A duplicate username maps to
// CREDENTIAL_USERNAME_TAKEN via the unique constraint, not a pre-read.
func (r *CredentialRepository) Create(ctx context.Context, cred *auth.Credential) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO credentials (id, username, password_hash, email, created_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		cred.ID.String(),
		cred.Username,
		cred.PasswordHash,
		cred.Email,
		cred.CreatedAt,
		cred.LastLogin,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("CREDENTIAL_USERNAME_TAKEN").
				With("username", cred.Username).
				Errorf("username %q is already taken", cred.Username)
		}
		return oops.Code("CREDENTIAL_CREATE_FAILED").
			With("operation", "insert credential").
			With("username", cred.Username).
			Wrap(err)
	}
	return nil
}

// UpdateLastLogin sets last_login for a credential.
func (r *CredentialRepository) UpdateLastLogin(ctx context.Context, id ulid.ULID, at time.Time) error {
	result, err := r.db.Exec(ctx, `
		UPDATE credentials SET last_login = $2 WHERE id = $1
	`, id.String(), at)
	if err != nil {
		return oops.Code("CREDENTIAL_UPDATE_FAILED").
			With("operation", "update last_login").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("CREDENTIAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// GetRoles returns the subject's role names ordered by name. The join table
// enforces set semantics; ORDER BY makes the result deterministic.
func (r *CredentialRepository) GetRoles(ctx context.Context, id ulid.ULID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.name
		FROM roles r
		JOIN credential_roles cr ON cr.role_id = r.id
		WHERE cr.credential_id = $1
		ORDER BY r.name
	`, id.String())
	if err != nil {
		return nil, oops.Code("ROLES_GET_FAILED").
			With("operation", "query roles").
			With("id", id.String()).
			Wrap(err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, oops.Code("ROLES_SCAN_FAILED").Wrap(err)
		}
		roles = append(roles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROLES_GET_FAILED").
			With("operation", "iterate roles").
			Wrap(err)
	}
	return roles, nil
}

// scanCredential scans a single row into a Credential. Callers handle
// pgx.ErrNoRows.
func scanCredential(row pgx.Row) (*auth.Credential, error) {
	var (
		idStr        string
		username     string
		passwordHash string
		email        string
		createdAt    time.Time
		lastLogin    *time.Time
	)

	err := row.Scan(&idStr, &username, &passwordHash, &email, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("CREDENTIAL_SCAN_FAILED").
			With("operation", "scan credential").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("CREDENTIAL_INVALID_ID").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Credential{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		CreatedAt:    createdAt,
		LastLogin:    lastLogin,
	}, nil
}

// Compile-time interface check.
var _ auth.CredentialRepository = (*CredentialRepository)(nil)
