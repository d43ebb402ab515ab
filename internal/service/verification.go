package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"

	"github.com/Team-WishU/wishu-backend/internal/mailer"
	"github.com/Team-WishU/wishu-backend/internal/repository"
	apperrors "github.com/Team-WishU/wishu-backend/pkg/errors"
)

// codeDigits is the length of a verification code.
const codeDigits = 6

// VerificationService implements email ownership verification: issue a
// short-lived code, deliver it, and consume it exactly once.
type VerificationService struct {
	store  repository.VerificationStore
	mailer mailer.Mailer
	logger *slog.Logger
}

// NewVerificationService creates a new verification service.
func NewVerificationService(
	store repository.VerificationStore,
	mailer mailer.Mailer,
	logger *slog.Logger,
) *VerificationService {
	return &VerificationService{
		store:  store,
		mailer: mailer,
		logger: logger,
	}
}

// IssueCode generates a fresh code for the email, replacing any previous
// one, and hands it to the mailer.
func (s *VerificationService) IssueCode(ctx context.Context, email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.InvalidInput("invalid email address")
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	if err := s.store.Put(ctx, email, code); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		return fmt.Errorf("send verification code: %w", err)
	}

	s.logger.InfoContext(ctx, "verification code issued",
		slog.String("email", email),
		slog.String("mailer", s.mailer.Name()),
	)
	return nil
}

// VerifyCode checks the code for the email and consumes it on success.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) error {
	ok, err := s.store.Consume(ctx, email, code)
	if err != nil {
		return fmt.Errorf("consume verification code: %w", err)
	}
	if !ok {
		return apperrors.InvalidInput("wrong or expired verification code")
	}

	s.logger.InfoContext(ctx, "email verified",
		slog.String("email", email),
	)
	return nil
}

// generateCode produces a uniformly random numeric code with leading zeros
// preserved.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}
