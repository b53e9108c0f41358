package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/api"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/config"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/models"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/repositories/sessionstore"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/client/services"
	"github.com/codewithyeow/lostandfoundpetphnompenh-sub000/internal/logging"
)

// session is the slice of the session service the CLI commands need.
// *services.SessionService satisfies it; tests provide a stub.
type session interface {
	Status() models.Status
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, name, email, password, passwordConfirmation string) (*models.User, error)
	Logout(ctx context.Context)
	GetUser(ctx context.Context) *models.User
	UpdateProfile(ctx context.Context, name, email string, avatar io.Reader, avatarName string) error
	SendOtp(ctx context.Context, email string) (*models.OtpChallenge, error)
	VerifyOtp(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, newPassword, passwordConfirmation, resetToken string) error
	ClearResetToken(ctx context.Context) error
}

type App struct {
	config  *config.Config
	session session
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	db, err := sessionstore.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		log.Printf("error initializing session database: %s", err.Error())
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	svc := services.NewSessionService(db, logger)
	apiClient := api.NewHTTPClient(c.APIBaseURL, svc,
		api.WithLocale(c.Locale),
		api.WithTimeout(c.RequestTimeout),
		api.WithRefreshLeeway(c.RefreshLeeway),
		api.WithLogger(logger),
	)
	svc.BindClient(apiClient)

	if err := svc.Restore(ctx); err != nil {
		log.Printf("error restoring session: %s", err.Error())
		return nil, err
	}

	return &App{config: c, session: svc, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.session.Status().Authenticated()
}

func (a *App) Run(ctx context.Context) {
	log.Println("Welcome to the Lost & Found Pet CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "guest"
	}
	if user := a.session.GetUser(context.Background()); user != nil {
		return user.Email
	}
	return "logged in"
}
