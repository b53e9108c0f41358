// Package services contains the application services for the Lost & Found
// Pet client. This file defines the session service: the owner of the
// access token and cached user identity, covering login, registration,
// logout, profile fetch/update and the token lifecycle.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/api"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/repositories/sessionstore"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/token"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/common"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/dbx"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/logging"
)

// SessionService owns the client session: status, access token and cached
// user snapshot, all persisted to the local session database so they
// survive restarts.
//
// State machine: LoggedOut (initial) -> LoggedIn/Registered -> LoggedOut,
// re-enterable. Mutating operations are serialized by opMu; the short mu
// guards the in-memory mirror of the persisted state. Readers get
// immutable snapshots and must go through the service to effect change.
//
// SessionService implements api.TokenSource, so the API client's refresh
// transport calls back into it for the current token, silent refresh and
// forced local logout.
type SessionService struct {
	api      api.Client
	db       *sql.DB
	log      logging.Logger
	validate *validator.Validate

	// opMu serializes top-level mutating operations so a login cannot
	// interleave with a logout or refresh across awaited network calls.
	opMu sync.Mutex

	mu          sync.Mutex
	status      models.Status
	accessToken string
	user        *models.User
	loading     bool
}

var _ api.TokenSource = (*SessionService)(nil)

// NewSessionService constructs a logged-out session over the given local
// database. Call BindClient before use and Restore to pick up a persisted
// session.
func NewSessionService(db *sql.DB, log logging.Logger) *SessionService {
	return &SessionService{
		db:       db,
		log:      log,
		validate: validator.New(),
		status:   models.StatusLoggedOut,
	}
}

// BindClient attaches the API client. Separate from the constructor
// because the client's refresh transport needs the service as its token
// source.
func (s *SessionService) BindClient(c api.Client) {
	s.api = c
}

func (s *SessionService) repo() sessionstore.Repository {
	return sessionstore.NewSQLiteRepository(s.db)
}

// Restore loads a previously persisted session. A token whose exp claim
// has passed is discarded as absent, matching the ~30-day cookie decaying
// in the web client. A cached user without a token violates the session
// invariant and is dropped.
func (s *SessionService) Restore(ctx context.Context) error {
	repo := s.repo()

	tok, err := repo.Get(ctx, sessionstore.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if len(tok) > 0 && token.Expired(string(tok)) {
		s.log.Info(ctx, "persisted token expired, discarding")
		if err := repo.Clear(ctx); err != nil {
			return fmt.Errorf("failed to discard expired session: %w", err)
		}
		tok = nil
	}
	if len(tok) == 0 {
		if err := repo.Delete(ctx, sessionstore.KeyUser); err != nil {
			return fmt.Errorf("failed to drop orphaned user: %w", err)
		}
		return nil
	}

	var user *models.User
	if raw, err := repo.Get(ctx, sessionstore.KeyUser); err != nil {
		return fmt.Errorf("failed to load cached user: %w", err)
	} else if len(raw) > 0 {
		user = &models.User{}
		if err := json.Unmarshal(raw, user); err != nil {
			s.log.Warn(ctx, "cached user unreadable, dropping", "error", err)
			user = nil
			_ = repo.Delete(ctx, sessionstore.KeyUser)
		}
	}

	s.mu.Lock()
	s.accessToken = string(tok)
	s.user = user
	s.status = models.StatusLoggedIn
	s.mu.Unlock()

	s.log.Info(ctx, "session restored", "cached_user", user != nil)
	return nil
}

// Status returns the current session status.
func (s *SessionService) Status() models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Loading reports whether an auth-related request is in flight.
func (s *SessionService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SessionService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Login exchanges credentials for a token and user snapshot. On success
// both are persisted together and the session becomes LoggedIn. On failure
// the session is left exactly as it was.
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	tok, user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.establish(ctx, tok, user, models.StatusLoggedIn); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "logged in", "email", user.Email)
	return user, nil
}

// Register creates an account and establishes the session like Login.
// Matching password and confirmation is the caller's concern; both are
// forwarded to the API as-is.
func (s *SessionService) Register(ctx context.Context, name, email, password, passwordConfirmation string) (*models.User, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	tok, user, err := s.api.Register(ctx, name, email, password, passwordConfirmation)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	if err := s.establish(ctx, tok, user, models.StatusRegistered); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "registered", "email", user.Email)
	return user, nil
}

// establish persists token and user atomically (both or neither) and only
// then updates the in-memory mirror.
func (s *SessionService) establish(ctx context.Context, tok string, user *models.User, status models.Status) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := sessionstore.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, sessionstore.KeyAccessToken, []byte(tok)); err != nil {
			return err
		}
		return repo.Set(ctx, sessionstore.KeyUser, userJSON)
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.accessToken = tok
	s.user = user
	s.status = status
	s.mu.Unlock()
	return nil
}

// Logout notifies the remote API best-effort and unconditionally clears
// the local session. It never fails.
func (s *SessionService) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	s.mu.Lock()
	hasToken := s.accessToken != ""
	s.mu.Unlock()

	if hasToken {
		if err := s.api.Logout(ctx); err != nil {
			s.log.Warn(ctx, "remote logout failed, clearing locally anyway", "error", err)
		}
	}

	s.clearLocal(ctx)
	s.log.Info(ctx, "logged out")
}

// clearLocal wipes the persisted session and the in-memory mirror.
func (s *SessionService) clearLocal(ctx context.Context) {
	if err := s.repo().Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear session storage", "error", err)
	}
	s.mu.Lock()
	s.accessToken = ""
	s.user = nil
	s.status = models.StatusLoggedOut
	s.mu.Unlock()
}

// GetUser is a cache-first read of the current user. A cached snapshot is
// returned without any network call. On a miss the profile endpoint is
// consulted; a failure there resolves to nil and a LoggedOut session.
// GetUser never returns an error: "no user" is a normal state for callers.
func (s *SessionService) GetUser(ctx context.Context) *models.User {
	s.mu.Lock()
	if s.user != nil {
		u := s.user
		s.mu.Unlock()
		return u
	}
	s.mu.Unlock()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	// Re-check: another operation may have populated the cache while we
	// waited for the lock.
	s.mu.Lock()
	if s.user != nil {
		u := s.user
		s.mu.Unlock()
		return u
	}
	s.mu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	user, err := s.api.Profile(ctx)
	if err != nil {
		s.log.Warn(ctx, "profile fetch failed", "error", err)
		s.clearLocal(ctx)
		return nil
	}

	s.cacheUser(ctx, user)
	return user
}

func (s *SessionService) cacheUser(ctx context.Context, user *models.User) {
	if raw, err := json.Marshal(user); err == nil {
		if err := s.repo().Set(ctx, sessionstore.KeyUser, raw); err != nil {
			s.log.Warn(ctx, "failed to persist user snapshot", "error", err)
		}
	}
	s.mu.Lock()
	s.user = user
	if !s.status.Authenticated() {
		s.status = models.StatusLoggedIn
	}
	s.mu.Unlock()
}

// RefreshToken exchanges the current session for a fresh access token and
// persists it. On failure the session is left untouched; deciding whether
// the failure is fatal is the caller's (the refresh transport's) job.
func (s *SessionService) RefreshToken(ctx context.Context) (string, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.refresh(ctx)
}

// refresh is the lock-free core of RefreshToken, also invoked by the
// transport mid-request (when opMu may already be held by the operation
// that triggered the 401). The stored token is re-read after the network
// call so a refresh racing a logout cannot reinstate a cleared token.
func (s *SessionService) refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	prev := s.accessToken
	s.mu.Unlock()

	tok, err := s.api.RefreshToken(ctx)
	if err != nil {
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	if tok == "" {
		return "", fmt.Errorf("token refresh returned no token: %w", common.ErrUnauthorized)
	}

	s.mu.Lock()
	if s.accessToken != prev {
		cur := s.accessToken
		s.mu.Unlock()
		if cur == "" {
			return "", fmt.Errorf("session closed during refresh: %w", common.ErrUnauthorized)
		}
		return cur, nil
	}
	s.accessToken = tok
	s.mu.Unlock()

	if err := s.repo().Set(ctx, sessionstore.KeyAccessToken, []byte(tok)); err != nil {
		s.log.Error(ctx, "failed to persist refreshed token", "error", err)
	}
	return tok, nil
}

type profileInput struct {
	Email string `validate:"required,email"`
}

// UpdateProfile submits a multipart profile update. The avatar is optional
// and only sent when a non-nil reader is supplied. Email is mandatory and
// checked locally before any network call. On success the cached user is
// re-fetched so readers see the updated snapshot.
func (s *SessionService) UpdateProfile(ctx context.Context, name, email string, avatar io.Reader, avatarName string) error {
	if err := s.validate.Struct(profileInput{Email: email}); err != nil {
		return fmt.Errorf("%w: email is required", common.ErrPrecondition)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.EditProfile(ctx, name, email, avatar, avatarName); err != nil {
		return fmt.Errorf("profile update failed: %w", err)
	}

	user, err := s.api.Profile(ctx)
	if err != nil {
		// The update went through; drop the stale snapshot so the next
		// GetUser re-fetches.
		s.log.Warn(ctx, "profile re-fetch after update failed", "error", err)
		if derr := s.repo().Delete(ctx, sessionstore.KeyUser); derr != nil {
			s.log.Warn(ctx, "failed to drop stale user snapshot", "error", derr)
		}
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		return nil
	}

	s.cacheUser(ctx, user)
	s.log.Info(ctx, "profile updated", "email", user.Email)
	return nil
}

// ---- api.TokenSource ----

// AccessToken returns the current token or "" when logged out.
func (s *SessionService) AccessToken(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// Refresh implements the transport's silent-refresh callback.
func (s *SessionService) Refresh(ctx context.Context) (string, error) {
	return s.refresh(ctx)
}

// Invalidate is the forced local logout: the token is beyond saving, so
// the session must not stay half-authenticated.
func (s *SessionService) Invalidate(ctx context.Context) {
	s.log.Warn(ctx, "session invalidated, clearing local state")
	s.clearLocal(ctx)
}
