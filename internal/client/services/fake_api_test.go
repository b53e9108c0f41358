package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/logging"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:sessionsvc?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS session (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM session`)
	require.NoError(t, err)
	return db
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newService(t *testing.T) (*SessionService, *fakeAPI, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	fake := &fakeAPI{}
	svc := NewSessionService(db, discardLogger())
	svc.BindClient(fake)
	return svc, fake, db
}

func sessionValue(t *testing.T, db *sql.DB, key string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM session WHERE key=?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	require.NoError(t, err)
	return v
}

func insertSession(t *testing.T, db *sql.DB, key string, value []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO session(key,value) VALUES(?,?)`, key, value)
	require.NoError(t, err)
}

// ---- fake client ----

// fakeAPI implements api.Client for session service unit tests.
type fakeAPI struct {
	mu sync.Mutex

	LoginToken string
	LoginUser  *models.User
	LoginErr   error
	LoginCalls int

	RegisterToken string
	RegisterUser  *models.User
	RegisterErr   error
	RegisterCalls int

	LogoutErr   error
	LogoutCalls int

	ProfileUser  *models.User
	ProfileErr   error
	ProfileCalls int

	EditErr   error
	EditCalls int

	RefreshTok   string
	RefreshErr   error
	RefreshCalls int
	// When set, RefreshToken signals RefreshStarted and then waits for
	// RefreshRelease before returning, so tests can interleave operations.
	RefreshStarted chan struct{}
	RefreshRelease chan struct{}

	SendOtpChallenge *models.OtpChallenge
	SendOtpErr       error
	SendOtpCalls     int

	VerifyResetToken string
	VerifyErr        error
	VerifyCalls      int
	LastVerifyToken  string

	ResetErr   error
	ResetCalls int

	// OnCall runs inside every stubbed method, before returning.
	OnCall func()
}

func (f *fakeAPI) called() {
	if f.OnCall != nil {
		f.OnCall()
	}
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	f.mu.Lock()
	f.LoginCalls++
	f.mu.Unlock()
	f.called()
	if f.LoginErr != nil {
		return "", nil, f.LoginErr
	}
	return f.LoginToken, f.LoginUser, nil
}

func (f *fakeAPI) Register(ctx context.Context, name, email, password, passwordConfirmation string) (string, *models.User, error) {
	f.mu.Lock()
	f.RegisterCalls++
	f.mu.Unlock()
	f.called()
	if f.RegisterErr != nil {
		return "", nil, f.RegisterErr
	}
	return f.RegisterToken, f.RegisterUser, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	f.LogoutCalls++
	f.mu.Unlock()
	f.called()
	return f.LogoutErr
}

func (f *fakeAPI) Profile(ctx context.Context) (*models.User, error) {
	f.mu.Lock()
	f.ProfileCalls++
	f.mu.Unlock()
	f.called()
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	return f.ProfileUser, nil
}

func (f *fakeAPI) EditProfile(ctx context.Context, name, email string, avatar io.Reader, avatarName string) error {
	f.mu.Lock()
	f.EditCalls++
	f.mu.Unlock()
	f.called()
	return f.EditErr
}

func (f *fakeAPI) RefreshToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	f.RefreshCalls++
	started := f.RefreshStarted
	release := f.RefreshRelease
	f.mu.Unlock()
	if started != nil {
		close(started)
		f.mu.Lock()
		f.RefreshStarted = nil
		f.mu.Unlock()
	}
	if release != nil {
		<-release
	}
	f.called()
	if f.RefreshErr != nil {
		return "", f.RefreshErr
	}
	return f.RefreshTok, nil
}

func (f *fakeAPI) SendOtp(ctx context.Context, email string) (*models.OtpChallenge, error) {
	f.mu.Lock()
	f.SendOtpCalls++
	f.mu.Unlock()
	f.called()
	if f.SendOtpErr != nil {
		return nil, f.SendOtpErr
	}
	return f.SendOtpChallenge, nil
}

func (f *fakeAPI) VerifyOtp(ctx context.Context, email, otp, verifyToken string) (string, error) {
	f.mu.Lock()
	f.VerifyCalls++
	f.LastVerifyToken = verifyToken
	f.mu.Unlock()
	f.called()
	if f.VerifyErr != nil {
		return "", f.VerifyErr
	}
	return f.VerifyResetToken, nil
}

func (f *fakeAPI) ResetPassword(ctx context.Context, newPassword, passwordConfirmation, resetToken string) error {
	f.mu.Lock()
	f.ResetCalls++
	f.mu.Unlock()
	f.called()
	return f.ResetErr
}
