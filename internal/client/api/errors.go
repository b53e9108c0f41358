package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/common"
)

// ErrUnavailable marks transient transport failures: timeouts, refused
// connections, unreadable responses. Safe to retry manually; such errors
// never mutate session state.
var ErrUnavailable = errors.New("server unavailable")

// Error is a remote failure reported through the uniform response envelope.
// A 401 unwraps to common.ErrUnauthorized so callers can match it with
// errors.Is without depending on HTTP status codes.
type Error struct {
	Status  int
	Code    int
	Title   string
	Message string
	Fields  map[string][]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api error (http %d)", e.Status)
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return common.ErrUnauthorized
	}
	return nil
}
