package services

import (
	"context"
	"fmt"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/repositories/sessionstore"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/common"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/dbx"
)

// The password-reset flow is a three-step token exchange:
//
//	SendOtp       -> verifyToken (persisted, single-use)
//	VerifyOtp     -> resetToken  (persisted; verifyToken consumed)
//	ResetPassword -> done        (caller clears the resetToken)
//
// Presenting the wrong token for a step is rejected by the remote API;
// missing local tokens fail fast as precondition errors without any
// network call.

type sendOtpInput struct {
	Email string `validate:"required,email"`
}

type verifyOtpInput struct {
	Email string `validate:"required,email"`
	Otp   string `validate:"required"`
}

type resetPasswordInput struct {
	NewPassword          string `validate:"required"`
	PasswordConfirmation string `validate:"required"`
	ResetToken           string `validate:"required"`
}

// SendOtp requests a password-reset OTP for email and persists the
// returned verify token. Starting a new flow discards any tokens left
// over from a previous one.
func (s *SessionService) SendOtp(ctx context.Context, email string) (*models.OtpChallenge, error) {
	if err := s.validate.Struct(sendOtpInput{Email: email}); err != nil {
		return nil, fmt.Errorf("%w: a valid email is required", common.ErrPrecondition)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	repo := s.repo()
	if err := repo.Delete(ctx, sessionstore.KeyVerifyToken); err != nil {
		return nil, fmt.Errorf("failed to reset otp state: %w", err)
	}
	if err := repo.Delete(ctx, sessionstore.KeyResetToken); err != nil {
		return nil, fmt.Errorf("failed to reset otp state: %w", err)
	}

	challenge, err := s.api.SendOtp(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("otp request failed: %w", err)
	}

	if err := repo.Set(ctx, sessionstore.KeyVerifyToken, []byte(challenge.VerifyToken)); err != nil {
		return nil, fmt.Errorf("failed to persist verify token: %w", err)
	}

	s.log.Info(ctx, "otp sent", "email", challenge.Email, "expires_in", challenge.ExpiresIn)
	return challenge, nil
}

// VerifyOtp submits the OTP together with the persisted verify token. On
// success the returned reset token is persisted and the verify token is
// consumed, in one transaction. On failure neither token is mutated.
func (s *SessionService) VerifyOtp(ctx context.Context, email, otp string) (string, error) {
	if err := s.validate.Struct(verifyOtpInput{Email: email, Otp: otp}); err != nil {
		return "", fmt.Errorf("%w: email and otp code are required", common.ErrPrecondition)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	repo := s.repo()
	verifyToken, err := repo.Get(ctx, sessionstore.KeyVerifyToken)
	if err != nil {
		return "", fmt.Errorf("failed to load verify token: %w", err)
	}
	if len(verifyToken) == 0 {
		return "", fmt.Errorf("%w: no otp was requested", common.ErrPrecondition)
	}

	resetToken, err := s.api.VerifyOtp(ctx, email, otp, string(verifyToken))
	if err != nil {
		return "", fmt.Errorf("otp verification failed: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := sessionstore.NewSQLiteRepository(tx)
		if err := txRepo.Set(ctx, sessionstore.KeyResetToken, []byte(resetToken)); err != nil {
			return err
		}
		return txRepo.Delete(ctx, sessionstore.KeyVerifyToken)
	})
	if err != nil {
		return "", fmt.Errorf("failed to persist reset token: %w", err)
	}

	s.log.Info(ctx, "otp verified", "email", email)
	return resetToken, nil
}

// ResetToken returns the persisted reset token, or "" when the flow has
// not reached the verification step.
func (s *SessionService) ResetToken(ctx context.Context) (string, error) {
	raw, err := s.repo().Get(ctx, sessionstore.KeyResetToken)
	if err != nil {
		return "", fmt.Errorf("failed to load reset token: %w", err)
	}
	return string(raw), nil
}

// ResetPassword submits the new password under the given reset token. It
// does not log the user in; on success the caller should follow up with
// ClearResetToken.
func (s *SessionService) ResetPassword(ctx context.Context, newPassword, passwordConfirmation, resetToken string) error {
	in := resetPasswordInput{
		NewPassword:          newPassword,
		PasswordConfirmation: passwordConfirmation,
		ResetToken:           resetToken,
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: password, confirmation and reset token are required", common.ErrPrecondition)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.ResetPassword(ctx, newPassword, passwordConfirmation, resetToken); err != nil {
		return fmt.Errorf("password reset failed: %w", err)
	}

	s.log.Info(ctx, "password reset")
	return nil
}

// ClearResetToken discards the persisted reset token once the flow is
// complete.
func (s *SessionService) ClearResetToken(ctx context.Context) error {
	if err := s.repo().Delete(ctx, sessionstore.KeyResetToken); err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}
