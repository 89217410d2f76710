package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schema is idempotent; it only creates what the password-reset flow reads
// and writes. Catalog, cart and order tables are owned elsewhere.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL,
		email       TEXT NOT NULL UNIQUE,
		password    TEXT NOT NULL,
		is_active   BOOLEAN NOT NULL DEFAULT TRUE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at  TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower
		ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS password_reset_codes (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		email       TEXT NOT NULL,
		code_hash   TEXT NOT NULL,
		expires_at  TIMESTAMPTZ NOT NULL,
		attempts    INTEGER NOT NULL DEFAULT 0,
		used        BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_password_reset_codes_user_created
		ON password_reset_codes (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token       UUID NOT NULL UNIQUE,
		user_agent  TEXT,
		ip_address  TEXT,
		expires_at  TIMESTAMPTZ NOT NULL,
		revoked_at  TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the bootstrap schema in a single transaction.
func Migrate(ctx context.Context, db PgxIface) error {
	return WithTx(ctx, db, func(tx pgx.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
