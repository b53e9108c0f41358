// Package models defines the client-side data types for the Lost & Found
// Pet platform: the authenticated user snapshot, session status and the
// password-reset OTP exchange.
package models

// User is a cached snapshot of the remote profile. It may be stale until
// the next profile fetch.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}
