package mailer

import "context"

// Mailer defines the interface for delivering verification mail. The real
// delivery channel is external; the backend only hands off the message.
type Mailer interface {
	Name() string
	SendVerificationCode(ctx context.Context, email, code string) error
}
