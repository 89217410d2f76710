package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"storefront/pkg/utils"
)

// ErrNotConfigured means no delivery channel is set up. It is distinct from
// a failed send: callers may fall back to showing the code in development.
var ErrNotConfigured = errors.New("mailer: delivery not configured")

// ResetCodeMessage is the payload for a password-reset email.
type ResetCodeMessage struct {
	To            string
	Name          string
	Code          string
	ExpiryMinutes int
	// IdempotencyKey lets API-backed transports drop duplicate sends.
	IdempotencyKey string
}

// Mailer delivers password-reset codes.
type Mailer interface {
	SendResetCode(ctx context.Context, msg ResetCodeMessage) error
}

// New picks the transport named by cfg.Driver. Missing credentials yield a
// mailer that reports ErrNotConfigured instead of an error at startup.
func New(cfg utils.EmailConfig) (Mailer, error) {
	switch cfg.Driver {
	case "", "smtp":
		if strings.TrimSpace(cfg.Host) == "" || strings.TrimSpace(cfg.From) == "" {
			return NotConfigured{}, nil
		}
		return NewSMTPMailer(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.From), nil
	case "resend":
		if strings.TrimSpace(cfg.ResendAPIKey) == "" || strings.TrimSpace(cfg.From) == "" {
			return NotConfigured{}, nil
		}
		return NewResendMailer(cfg.ResendAPIKey, cfg.From)
	case "none":
		return NotConfigured{}, nil
	default:
		return nil, fmt.Errorf("mailer: unknown driver %q", cfg.Driver)
	}
}

// NotConfigured is the fallback used when no transport has credentials.
type NotConfigured struct{}

func (NotConfigured) SendResetCode(ctx context.Context, msg ResetCodeMessage) error {
	return ErrNotConfigured
}

const resetSubject = "Your password reset code"

func resetText(msg ResetCodeMessage) string {
	name := msg.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi %s,\n\nYour password reset code is %s. It expires in %d minutes.\n\n"+
		"If you did not request a password reset, you can ignore this email.\n",
		name, msg.Code, msg.ExpiryMinutes)
}

func resetHTML(msg ResetCodeMessage) string {
	name := msg.Name
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`
		<h3>Hi %s,</h3>
		<p>Your password reset code is <strong>%s</strong>.</p>
		<p>It expires in %d minutes.</p>
		<p>If you did not request a password reset, you can ignore this email.</p>
	`, html.EscapeString(name), html.EscapeString(msg.Code), msg.ExpiryMinutes)
}
