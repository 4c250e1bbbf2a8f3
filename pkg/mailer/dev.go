package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Dev logs emails instead of delivering them. Used outside production
// and when no Postmark token is configured.
type Dev struct {
	logger *zap.Logger
}

// NewDev creates a logging sender
func NewDev(logger *zap.Logger) *Dev {
	return &Dev{logger: logger}
}

// Send logs the email at info level
func (d *Dev) Send(_ context.Context, to, subject, body string) error {
	d.logger.Info("Email dispatched (dev sender)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
