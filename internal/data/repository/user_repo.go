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

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// LockByID takes a row lock on the user for the rest of the transaction.
	LockByID(ctx context.Context, id uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, updatedAt time.Time) error
}

type userRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewUserRepository(db database.Querier, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT id, name, email, password, is_active,
		       created_at, updated_at, deleted_at
		FROM users
		WHERE lower(email) = $1 AND deleted_at IS NULL
	`

	var user entity.User
	err := ur.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return &user, nil
}

func (ur *userRepository) LockByID(ctx context.Context, id uuid.UUID) error {
	query := `SELECT id FROM users WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	var locked uuid.UUID
	err := ur.db.QueryRow(ctx, query, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("user %s not found", id.String())
	}
	if err != nil {
		ur.log.Error("Failed to lock user",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("lock user %s: %w", id.String(), err)
	}

	return nil
}

func (ur *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string, updatedAt time.Time) error {
	query := `
		UPDATE users
		SET password = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := ur.db.Exec(ctx, query, id, hash, updatedAt)
	if err != nil {
		ur.log.Error("Failed to update password",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return fmt.Errorf("update password for user %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found or already deleted", id.String())
	}

	return nil
}
