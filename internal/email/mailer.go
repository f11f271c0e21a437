// Package email sends transactional mail over SMTP, currently the
// account verification message with its 6-digit code.
package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/libroapp/libro/internal/config"
)

// Mailer sends email through a configured SMTP server.
type Mailer struct {
	config config.Email
	dialer *gomail.Dialer
}

// NewMailer creates a mailer from the email configuration.
func NewMailer(cfg config.Email) (*Mailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("missing SMTP_HOST configuration")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("missing FROM_EMAIL configuration")
	}

	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &Mailer{
		config: cfg,
		dialer: dialer,
	}, nil
}

// SendVerificationCode emails the verification code to a new account.
func (m *Mailer) SendVerificationCode(to, name, code string) error {
	body, err := renderVerificationEmail(name, code)
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.config.FromAddress, m.config.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify your email address")
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
