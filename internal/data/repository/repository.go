package repository

import (
	"context"

	"storefront/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Transactor runs fn against repositories bound to one database
// transaction. fn returning an error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

type Repository struct {
	User      UserRepository
	ResetCode ResetCodeRepository
	Session   SessionRepository

	db  database.PgxIface
	log *zap.Logger
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	r := newRepository(db, log)
	r.db = db
	return r
}

func newRepository(q database.Querier, log *zap.Logger) *Repository {
	return &Repository{
		User:      NewUserRepository(q, log),
		ResetCode: NewResetCodeRepository(q, log),
		Session:   NewSessionRepository(q, log),
		log:       log,
	}
}

// WithinTx implements Transactor.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(newRepository(tx, r.log))
	})
}

// Ping checks database reachability for the health endpoint.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
