package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/schoolregistry/server/internal/model"
	"github.com/schoolregistry/server/internal/notify"
	"github.com/schoolregistry/server/internal/repo"
)

// Service orchestrates the login flow: code issuance, verification and
// session minting.
type Service struct {
	otpRepo   repo.OtpRepo
	userRepo  repo.UserRepo
	tokens    *TokenService
	admin     *AdminChecker
	mailer    notify.Mailer
	otpExpiry time.Duration
}

// NewService creates a new auth service.
func NewService(
	otpRepo repo.OtpRepo,
	userRepo repo.UserRepo,
	tokens *TokenService,
	admin *AdminChecker,
	mailer notify.Mailer,
	otpExpiry time.Duration,
) *Service {
	return &Service{
		otpRepo:   otpRepo,
		userRepo:  userRepo,
		tokens:    tokens,
		admin:     admin,
		mailer:    mailer,
		otpExpiry: otpExpiry,
	}
}

// IssueCode generates a fresh code for the address, stores it and mails
// it. Re-issuing is always safe: every call creates a new record and the
// newest unconsumed one wins at verification. When delivery fails the
// stored record stays in place and ErrDeliveryFailed is returned; a retry
// issues a fresh code rather than resending this one.
func (s *Service) IssueCode(ctx context.Context, email string) error {
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}

	// Housekeeping, not correctness: expired rows are ignored by
	// verification either way.
	if err := s.otpRepo.DeleteExpired(ctx, email); err != nil {
		return fmt.Errorf("cleanup expired codes: %w", err)
	}

	code, err := GenerateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	expiresAt := time.Now().Add(s.otpExpiry)
	if _, err := s.otpRepo.Create(ctx, email, code, expiresAt); err != nil {
		return fmt.Errorf("store code: %w", err)
	}

	if err := s.mailer.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyCode consumes a code, records the login and mints a session
// token. Wrong, expired and already-used codes all surface as
// ErrInvalidCode.
func (s *Service) VerifyCode(ctx context.Context, email, code string) (model.Identity, string, error) {
	if !ValidEmail(email) {
		return model.Identity{}, "", ErrInvalidEmail
	}
	if len(code) != CodeLength {
		return model.Identity{}, "", ErrInvalidCode
	}

	if err := s.otpRepo.Consume(ctx, email, code); err != nil {
		if errors.Is(err, repo.ErrNoMatchingCode) {
			return model.Identity{}, "", ErrInvalidCode
		}
		return model.Identity{}, "", fmt.Errorf("consume code: %w", err)
	}

	if _, err := s.userRepo.Upsert(ctx, email); err != nil {
		return model.Identity{}, "", fmt.Errorf("record login: %w", err)
	}

	token, err := s.tokens.Mint(email)
	if err != nil {
		return model.Identity{}, "", fmt.Errorf("mint token: %w", err)
	}

	identity := model.Identity{
		Email:   email,
		IsAdmin: s.admin.IsAdmin(email),
	}
	return identity, token, nil
}
