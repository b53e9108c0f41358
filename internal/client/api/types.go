package api

import (
	"encoding/json"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
)

// Auth API endpoints.
const (
	pathLogin         = "/auth/login"
	pathRegister      = "/auth/register"
	pathLogout        = "/auth/logout"
	pathProfile       = "/auth/profile"
	pathEditProfile   = "/auth/edit-profile"
	pathRefreshToken  = "/auth/refresh-token"
	pathSendOtp       = "/auth/send-otp"
	pathVerifyOtp     = "/auth/verify-otp"
	pathResetPassword = "/auth/reset-password"
)

// envelope is the uniform response wrapper every endpoint returns.
type envelope struct {
	Success bool                `json:"success"`
	Title   string              `json:"title"`
	Code    int                 `json:"code"`
	Message string              `json:"message"`
	Result  json.RawMessage     `json:"result,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

type verifyOtpRequest struct {
	Otp         string `json:"otp"`
	VerifyToken string `json:"verifyToken"`
	Email       string `json:"email"`
}

type resetPasswordRequest struct {
	NewPassword          string `json:"newPassword"`
	PasswordConfirmation string `json:"passwordConfirmation"`
	ResetToken           string `json:"resetToken"`
}

type authResult struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

type refreshResult struct {
	AccessToken string `json:"accessToken"`
}

type verifyOtpResult struct {
	ResetToken string `json:"resetToken"`
}
