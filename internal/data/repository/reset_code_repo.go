package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/data/entity"
	"storefront/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrResetCodeSpent is returned by MarkUsed when the row was already used
// or has vanished under a concurrent transaction.
var ErrResetCodeSpent = errors.New("reset code already used or removed")

type ResetCodeRepository interface {
	Create(ctx context.Context, code *entity.ResetCode) error
	// FindLatestForUpdate returns the most recently created code for the
	// user and row-locks it until the surrounding transaction ends.
	FindLatestForUpdate(ctx context.Context, userID uuid.UUID) (*entity.ResetCode, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByUserExcept(ctx context.Context, userID, keepID uuid.UUID) (int64, error)
	// DeleteExpiredBefore removes every code whose expiry is older than cutoff.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type resetCodeRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewResetCodeRepository(db database.Querier, log *zap.Logger) ResetCodeRepository {
	return &resetCodeRepository{
		db:  db,
		log: log.With(zap.String("repository", "reset_code")),
	}
}

func (r *resetCodeRepository) Create(ctx context.Context, code *entity.ResetCode) error {
	query := `
		INSERT INTO password_reset_codes (id, user_id, email, code_hash,
		                                  expires_at, attempts, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		code.ID,
		code.UserID,
		code.Email,
		code.CodeHash,
		code.ExpiresAt,
		code.Attempts,
		code.Used,
		code.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create reset code",
			zap.Error(err),
			zap.String("user_id", code.UserID.String()),
		)
		return fmt.Errorf("create reset code for user %s: %w", code.UserID.String(), err)
	}

	return nil
}

func (r *resetCodeRepository) FindLatestForUpdate(ctx context.Context, userID uuid.UUID) (*entity.ResetCode, error) {
	query := `
		SELECT id, user_id, email, code_hash, expires_at,
		       attempts, used, created_at
		FROM password_reset_codes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`

	var code entity.ResetCode
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&code.ID,
		&code.UserID,
		&code.Email,
		&code.CodeHash,
		&code.ExpiresAt,
		&code.Attempts,
		&code.Used,
		&code.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest reset code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find latest reset code for user %s: %w", userID.String(), err)
	}

	return &code, nil
}

func (r *resetCodeRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE password_reset_codes
		SET attempts = attempts + 1
		WHERE id = $1
		RETURNING attempts
	`

	var attempts int
	err := r.db.QueryRow(ctx, query, id).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("reset code %s not found", id.String())
	}
	if err != nil {
		r.log.Error("Failed to increment reset code attempts",
			zap.Error(err),
			zap.String("reset_code_id", id.String()),
		)
		return 0, fmt.Errorf("increment attempts for reset code %s: %w", id.String(), err)
	}

	return attempts, nil
}

func (r *resetCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE password_reset_codes
		SET used = true
		WHERE id = $1 AND used = false
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark reset code as used",
			zap.Error(err),
			zap.String("reset_code_id", id.String()),
		)
		return fmt.Errorf("mark reset code %s as used: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark reset code %s as used: %w", id.String(), ErrResetCodeSpent)
	}

	return nil
}

func (r *resetCodeRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `DELETE FROM password_reset_codes WHERE user_id = $1`

	result, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to delete reset codes",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("delete reset codes for user %s: %w", userID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *resetCodeRepository) DeleteByUserExcept(ctx context.Context, userID, keepID uuid.UUID) (int64, error) {
	query := `DELETE FROM password_reset_codes WHERE user_id = $1 AND id <> $2`

	result, err := r.db.Exec(ctx, query, userID, keepID)
	if err != nil {
		r.log.Error("Failed to delete sibling reset codes",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("kept_id", keepID.String()),
		)
		return 0, fmt.Errorf("delete reset codes for user %s except %s: %w", userID.String(), keepID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *resetCodeRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM password_reset_codes WHERE expires_at < $1`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to purge expired reset codes", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("purge reset codes before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}
