package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SessionRepository interface {
	// RevokeAllUserSessions revokes every active session and returns how
	// many were revoked.
	RevokeAllUserSessions(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	// DeleteInactiveBefore removes sessions that expired or were revoked
	// before cutoff.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewSessionRepository(db database.Querier, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

func (r *sessionRepository) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE sessions
		SET revoked_at = $2
		WHERE user_id = $1 AND revoked_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, userID, at)
	if err != nil {
		r.log.Error("Failed to revoke all user sessions",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("revoke sessions for user %s: %w", userID.String(), err)
	}

	return result.RowsAffected(), nil
}

func (r *sessionRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at < $1 OR revoked_at < $1
	`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		r.log.Error("Failed to purge inactive sessions", zap.Error(err), zap.Time("cutoff", cutoff))
		return 0, fmt.Errorf("purge sessions before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	return result.RowsAffected(), nil
}
