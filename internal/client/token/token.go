// Package token inspects bearer access tokens on the client side.
//
// The platform issues JWT access tokens; the client never verifies their
// signature (that is the server's job) but reads the registered exp claim
// to decide whether a persisted token is still worth presenting. A token
// that does not parse as a JWT, or carries no exp claim, is treated as
// opaque and assumed alive.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// timeNow is a test seam.
var timeNow = time.Now

// ExpiresAt returns the exp claim of the token, if it has one.
func ExpiresAt(tokenString string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token's exp claim has passed.
func Expired(tokenString string) bool {
	exp, ok := ExpiresAt(tokenString)
	if !ok {
		return false
	}
	return exp.Before(timeNow())
}

// ExpiresWithin reports whether the token expires within the given leeway.
func ExpiresWithin(tokenString string, leeway time.Duration) bool {
	exp, ok := ExpiresAt(tokenString)
	if !ok {
		return false
	}
	return exp.Before(timeNow().Add(leeway))
}
