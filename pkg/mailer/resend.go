package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

const resendMaxAttempts = 3

type resendMailer struct {
	from   string
	client *resend.Client
}

func NewResendMailer(apiKey, from string) (Mailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &resendMailer{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (s *resendMailer) SendResetCode(ctx context.Context, msg ResetCodeMessage) error {
	if msg.To == "" || msg.Code == "" {
		return fmt.Errorf("resend: recipient and code are required")
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: resetSubject,
		Text:    resetText(msg),
		Html:    resetHTML(msg),
	}

	options := &resend.SendEmailOptions{}
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		options.IdempotencyKey = key
	}

	var lastErr error
	for attempt := 0; attempt < resendMaxAttempts; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		wait, ok := retryDelay(err, attempt)
		if !ok {
			return fmt.Errorf("resend send failed: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

// retryDelay reports whether err is transient and how long to back off.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			return time.Duration(min(seconds, 30)) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
