package entity

import (
	"time"

	"github.com/google/uuid"
)

// ResetCode is a pending password-reset verification code. Only the hash of
// the code is ever stored.
type ResetCode struct {
	BaseSimple
	UserID    uuid.UUID `db:"user_id"`
	Email     string    `db:"email"`
	CodeHash  string    `db:"code_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Attempts  int       `db:"attempts"`
	Used      bool      `db:"used"`
}

// IsExpired reports whether now is strictly after ExpiresAt.
func (c *ResetCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
