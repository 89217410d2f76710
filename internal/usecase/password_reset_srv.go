package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"storefront/internal/data/entity"
	"storefront/internal/data/repository"
	"storefront/internal/dto/request"
	"storefront/internal/dto/response"
	"storefront/pkg/mailer"
	"storefront/pkg/metrics"
	"storefront/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused
// rather than silently truncated.
const maxPasswordBytes = 72

type PasswordResetService interface {
	// RequestCode issues a fresh code for email, superseding any earlier one.
	RequestCode(ctx context.Context, email string) (*response.ForgotPasswordResponse, error)
	// ResetPassword checks the latest code and, on a match, replaces the
	// password in one transaction.
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
}

type ResetOption func(*passwordResetService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ResetOption {
	return func(s *passwordResetService) { s.now = now }
}

// WithRandom replaces crypto/rand.Reader as the code source. The reader
// must still be cryptographically secure outside tests.
func WithRandom(r io.Reader) ResetOption {
	return func(s *passwordResetService) { s.random = r }
}

type passwordResetService struct {
	users repository.UserRepository
	tx    repository.Transactor
	mail  mailer.Mailer

	expiry        time.Duration
	maxAttempts   int
	minPassword   int
	bcryptCost    int
	exposeDevCode bool

	now    func() time.Time
	random io.Reader
	log    *zap.Logger
}

func NewPasswordResetService(
	users repository.UserRepository,
	tx repository.Transactor,
	mail mailer.Mailer,
	config *utils.Config,
	log *zap.Logger,
	opts ...ResetOption,
) PasswordResetService {
	s := &passwordResetService{
		users:         users,
		tx:            tx,
		mail:          mail,
		expiry:        time.Duration(config.Reset.ExpiryMinutes) * time.Minute,
		maxAttempts:   config.Reset.MaxAttempts,
		minPassword:   config.Reset.MinPasswordLength,
		bcryptCost:    config.Reset.BcryptCost,
		exposeDevCode: !config.App.IsProduction(),
		now:           time.Now,
		random:        rand.Reader,
		log:           log.With(zap.String("service", "password_reset")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *passwordResetService) RequestCode(ctx context.Context, email string) (*response.ForgotPasswordResponse, error) {
	email = normalizeEmail(email)
	if email == "" {
		metrics.ResetRequests.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidFormat
	}

	// 1. Find user
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		metrics.ResetRequests.WithLabelValues("storage_error").Inc()
		return nil, fmt.Errorf("%w: find user: %w", ErrStorageFailure, err)
	}
	if user == nil {
		metrics.ResetRequests.WithLabelValues("not_found").Inc()
		s.log.Info("Reset requested for unknown email", zap.String("email", email))
		return nil, ErrNotFound
	}

	// 2. Generate code; only its hash leaves this function
	code, err := utils.GenerateResetCode(s.random)
	if err != nil {
		s.log.Error("Failed to generate reset code", zap.Error(err))
		return nil, err
	}

	now := s.now()
	record := &entity.ResetCode{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     email,
		CodeHash:  utils.HashResetCode(code),
		ExpiresAt: now.Add(s.expiry),
	}

	// 3. Supersede older codes and store the new one atomically
	err = s.tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.User.LockByID(ctx, user.ID); err != nil {
			return err
		}
		if _, err := tx.ResetCode.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		return tx.ResetCode.Create(ctx, record)
	})
	if err != nil {
		metrics.ResetRequests.WithLabelValues("storage_error").Inc()
		s.log.Error("Failed to store reset code", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: store reset code: %w", ErrStorageFailure, err)
	}

	resp := &response.ForgotPasswordResponse{
		ExpiresInMinutes: int(s.expiry / time.Minute),
		Name:             user.Name,
	}

	// 4. Deliver. The code is already committed, so a failed send leaves a
	// valid code behind and the client can simply ask again.
	err = s.mail.SendResetCode(ctx, mailer.ResetCodeMessage{
		To:             email,
		Name:           user.Name,
		Code:           code,
		ExpiryMinutes:  resp.ExpiresInMinutes,
		IdempotencyKey: "password-reset:" + record.ID.String(),
	})
	switch {
	case err == nil:
		metrics.ResetRequests.WithLabelValues("issued").Inc()
		s.log.Info("Reset code issued",
			zap.String("user_id", user.ID.String()),
			zap.Time("expires_at", record.ExpiresAt),
		)
		return resp, nil

	case errors.Is(err, mailer.ErrNotConfigured):
		if s.exposeDevCode {
			resp.DevCode = code
			metrics.ResetRequests.WithLabelValues("dev_fallback").Inc()
			s.log.Debug("Mail not configured, returning reset code to caller",
				zap.String("user_id", user.ID.String()),
				zap.String("code", code),
			)
			return resp, nil
		}
		metrics.ResetRequests.WithLabelValues("issued").Inc()
		s.log.Warn("Mail not configured in production, reset code not delivered",
			zap.String("user_id", user.ID.String()))
		return resp, nil

	default:
		metrics.ResetRequests.WithLabelValues("transport_error").Inc()
		s.log.Error("Failed to send reset code", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
}

func (s *passwordResetService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	// Shape checks happen before any storage access.
	if !utils.IsResetCodeFormat(req.Code) {
		return s.verifyOutcome(ErrInvalidFormat)
	}
	email := normalizeEmail(req.Email)
	if email == "" {
		return s.verifyOutcome(ErrInvalidFormat)
	}
	if utf8.RuneCountInString(req.NewPassword) < s.minPassword {
		return s.verifyOutcome(ErrWeakPassword)
	}
	if len(req.NewPassword) > maxPasswordBytes {
		return s.verifyOutcome(ErrInvalidFormat)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		metrics.ResetVerifications.WithLabelValues("storage_error").Inc()
		return fmt.Errorf("%w: find user: %w", ErrStorageFailure, err)
	}
	if user == nil {
		return s.verifyOutcome(ErrNotFound)
	}

	var outcome error
	err = s.tx.WithinTx(ctx, func(tx *repository.Repository) error {
		outcome = nil

		// User row first, then the code row: the same order RequestCode
		// takes, so the two flows cannot deadlock on each other.
		if err := tx.User.LockByID(ctx, user.ID); err != nil {
			return err
		}

		code, err := tx.ResetCode.FindLatestForUpdate(ctx, user.ID)
		if err != nil {
			return err
		}
		if code == nil {
			outcome = ErrNoPendingRequest
			return nil
		}
		if code.Used {
			outcome = ErrAlreadyUsed
			return nil
		}
		now := s.now()
		if code.IsExpired(now) {
			outcome = ErrExpired
			return nil
		}
		if s.maxAttempts > 0 && code.Attempts >= s.maxAttempts {
			outcome = ErrTooManyAttempts
			return nil
		}

		if !utils.ConstantTimeEqual(utils.HashResetCode(req.Code), code.CodeHash) {
			attempts, err := tx.ResetCode.IncrementAttempts(ctx, code.ID)
			if err != nil {
				return err
			}
			s.log.Warn("Incorrect reset code",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", attempts),
			)
			outcome = ErrIncorrectCode
			return nil
		}

		// Runs with both row locks held; BCRYPT_COST bounds how long.
		hash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		if err := tx.User.UpdatePasswordHash(ctx, user.ID, hash, now); err != nil {
			return err
		}
		if err := tx.ResetCode.MarkUsed(ctx, code.ID); err != nil {
			return err
		}
		if _, err := tx.ResetCode.DeleteByUserExcept(ctx, user.ID, code.ID); err != nil {
			return err
		}
		revoked, err := tx.Session.RevokeAllUserSessions(ctx, user.ID, now)
		if err != nil {
			return err
		}

		s.log.Info("Password reset",
			zap.String("user_id", user.ID.String()),
			zap.Int64("sessions_revoked", revoked),
		)
		return nil
	})
	if err != nil {
		metrics.ResetVerifications.WithLabelValues("storage_error").Inc()
		s.log.Error("Password reset transaction failed", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: reset password: %w", ErrStorageFailure, err)
	}
	if outcome != nil {
		return s.verifyOutcome(outcome)
	}

	metrics.ResetVerifications.WithLabelValues("success").Inc()
	return nil
}

func (s *passwordResetService) verifyOutcome(err error) error {
	metrics.ResetVerifications.WithLabelValues(err.Error()).Inc()
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
