// Package api implements the HTTP client for the Lost & Found Pet platform
// auth API: the endpoint methods, the uniform response envelope codec and
// the token-refresh transport that recovers from expired access tokens.
package api

import (
	"context"
	"io"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
)

// Client is the remote auth API surface consumed by the session service.
//
// Contract:
//   - Login/Register: exchange credentials for an access token and a user
//     snapshot.
//   - Logout: invalidate the server-side session (best-effort for callers).
//   - Profile: fetch the current user.
//   - EditProfile: multipart profile update; avatar is optional and only
//     included when a non-nil reader is supplied.
//   - RefreshToken: exchange the current session for a fresh access token.
//   - SendOtp/VerifyOtp/ResetPassword: the three-step password-reset flow.
//
// All methods honor context cancellation/timeouts. Transport-level failures
// are reported wrapped in ErrUnavailable; remote envelope failures as *Error.
type Client interface {
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Register(ctx context.Context, name, email, password, passwordConfirmation string) (string, *models.User, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
	EditProfile(ctx context.Context, name, email string, avatar io.Reader, avatarName string) error
	RefreshToken(ctx context.Context) (string, error)
	SendOtp(ctx context.Context, email string) (*models.OtpChallenge, error)
	VerifyOtp(ctx context.Context, email, otp, verifyToken string) (string, error)
	ResetPassword(ctx context.Context, newPassword, passwordConfirmation, resetToken string) error
}
