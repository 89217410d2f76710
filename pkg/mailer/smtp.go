package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpMailer struct {
	dialer dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (s *smtpMailer) SendResetCode(ctx context.Context, msg ResetCodeMessage) error {
	if msg.To == "" || msg.Code == "" {
		return fmt.Errorf("smtp: recipient and code are required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", resetSubject)
	m.SetBody("text/plain", resetText(msg))
	m.AddAlternative("text/html", resetHTML(msg))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: send password reset email: %w", err)
	}

	return nil
}
