package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/token"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/logging"
)

// TokenSource is the session-side counterpart of the refresh transport.
// The session service implements it: it owns the persisted access token,
// knows how to obtain a fresh one, and performs the forced local logout
// when the token is beyond saving.
type TokenSource interface {
	// AccessToken returns the current token or "" when logged out.
	AccessToken(ctx context.Context) string

	// Refresh obtains and persists a new access token. A transient
	// transport failure is reported wrapped in ErrUnavailable; any other
	// failure means the session was definitively rejected.
	Refresh(ctx context.Context) (string, error)

	// Invalidate clears the token and cached user locally. Called when a
	// refreshed token is still rejected or the refresh itself was refused.
	Invalidate(ctx context.Context)
}

// authTransport wraps outbound requests with the token-refresh protocol:
//
//  1. non-401 responses pass through unchanged;
//  2. a 401 on a request that carried a token triggers exactly one refresh
//     and one resend with the new bearer token;
//  3. a second 401, or a definitive refresh rejection, invalidates the
//     session locally and the original 401 is returned to the caller;
//  4. a transient failure during refresh leaves the session intact and
//     returns the original 401 for manual retry.
//
// The retry state lives in locals of a single RoundTrip call; the caller's
// request is never mutated. Requests to the refresh endpoint itself bypass
// the protocol.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
	leeway time.Duration
	logger logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// The refresh endpoint authenticates with the current token but must
	// not recurse into the protocol. The base URL may carry a path prefix,
	// so match on the suffix.
	if strings.HasSuffix(req.URL.Path, pathRefreshToken) {
		return t.send(req, t.tokens.AccessToken(req.Context()))
	}

	ctx := req.Context()
	tok := t.tokens.AccessToken(ctx)

	// A token about to expire is refreshed eagerly instead of burning a
	// round trip on a guaranteed 401. A successful eager refresh counts as
	// this request's one refresh attempt.
	refreshed := false
	if tok != "" && t.leeway > 0 && token.ExpiresWithin(tok, t.leeway) {
		if fresh, err := t.tokens.Refresh(ctx); err == nil && fresh != "" {
			tok = fresh
			refreshed = true
		}
	}

	resp, err := t.send(req, tok)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || tok == "" {
		return resp, nil
	}

	if refreshed {
		t.logger.Warn(ctx, "request rejected after token refresh, clearing session", "path", req.URL.Path)
		t.tokens.Invalidate(ctx)
		return resp, nil
	}

	fresh, err := t.tokens.Refresh(ctx)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			t.logger.Warn(ctx, "token refresh unavailable, keeping session", "path", req.URL.Path, "error", err)
			return resp, nil
		}
		t.logger.Warn(ctx, "token refresh rejected, clearing session", "path", req.URL.Path, "error", err)
		t.tokens.Invalidate(ctx)
		return resp, nil
	}
	if fresh == "" {
		t.tokens.Invalidate(ctx)
		return resp, nil
	}

	drainBody(resp)

	retryResp, err := t.send(req, fresh)
	if err != nil {
		return nil, err
	}
	if retryResp.StatusCode == http.StatusUnauthorized {
		t.logger.Warn(ctx, "retried request rejected, clearing session", "path", req.URL.Path)
		t.tokens.Invalidate(ctx)
	}
	return retryResp, nil
}

// send dispatches a copy of req with the given bearer token. The body is
// rewound through GetBody so the request can be sent more than once.
func (t *authTransport) send(req *http.Request, tok string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	if tok != "" {
		clone.Header.Set("Authorization", "Bearer "+tok)
	}
	return t.base.RoundTrip(clone)
}

func drainBody(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
