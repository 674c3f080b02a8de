// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
)

// Service sends transactional email. The "log" provider writes the message
// to the log instead of sending, which is the development default; "smtp"
// delivers through the configured relay.
type Service struct {
	config *config.Config
}

// NewService creates a new email service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// SendOrderConfirmation sends the order confirmation for a placed order.
// totalPaise is the tax-inclusive amount in paise.
func (s *Service) SendOrderConfirmation(ctx context.Context, to, name, orderNumber string, totalPaise int64) error {
	subject := fmt.Sprintf("Order %s confirmed", orderNumber)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Thank you for your order!\r\n\r\n"+
			"Order number: %s\r\n"+
			"Amount: %s\r\n\r\n"+
			"We will notify you when your order ships.\r\n\r\n"+
			"%s",
		name, orderNumber, FormatRupees(totalPaise), s.config.Email.FromName,
	)

	return s.send(ctx, to, subject, body)
}

// FormatRupees renders an amount in paise as a rupee string
func FormatRupees(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%sRs. %d.%02d", sign, paise/100, paise%100)
}

// Private helper methods

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	switch s.config.Email.Provider {
	case "smtp":
		return s.sendSMTP(to, subject, body)
	default:
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email (log provider): " + strings.ReplaceAll(body, "\r\n", " | "))
		return nil
	}
}

func (s *Service) sendSMTP(to, subject, body string) error {
	cfg := s.config.Email
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP host not configured")
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	from := fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, cfg.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
