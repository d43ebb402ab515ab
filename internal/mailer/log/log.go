// Package log provides a mailer that only logs, for development and tests.
package log

import (
	"context"
	"log/slog"
)

// Mailer logs verification mail instead of sending it.
type Mailer struct {
	logger *slog.Logger
}

// NewMailer creates a new logging mailer.
func NewMailer(logger *slog.Logger) *Mailer {
	return &Mailer{logger: logger}
}

// Name returns the name of this mailer.
func (m *Mailer) Name() string {
	return "log"
}

// SendVerificationCode logs the code that would have been mailed.
func (m *Mailer) SendVerificationCode(ctx context.Context, email, code string) error {
	m.logger.InfoContext(ctx, "verification mail",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
