package models

// Status tracks whether a usable token/identity exists for the session.
type Status string

const (
	// StatusLoggedOut is the initial and terminal state: no token, no user.
	StatusLoggedOut Status = "logged_out"
	// StatusLoggedIn means a token is held and a user snapshot is cached.
	StatusLoggedIn Status = "logged_in"
	// StatusRegistered is LoggedIn reached through account creation.
	StatusRegistered Status = "registered"
)

// Authenticated reports whether the status carries a usable identity.
func (s Status) Authenticated() bool {
	return s == StatusLoggedIn || s == StatusRegistered
}

// OtpChallenge is the envelope returned when an OTP is requested for a
// password reset. The verify token ties the upcoming OTP submission to
// this challenge and is single-use.
type OtpChallenge struct {
	VerifyToken string `json:"verifyToken"`
	ExpiresIn   int64  `json:"expiresIn"`
	Email       string `json:"email"`
}
