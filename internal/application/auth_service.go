package application

import (
	"context"
	"errors"
	"expvar"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tradesync/config"
	"github.com/oksasatya/tradesync/internal/domain/entity"
	repo "github.com/oksasatya/tradesync/internal/domain/repository"
	"github.com/oksasatya/tradesync/pkg/helpers"
	"github.com/oksasatya/tradesync/pkg/mailer"
	"github.com/oksasatya/tradesync/pkg/mailer/templates"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

var (
	registrations = expvar.NewInt("auth_registrations")
	logins        = expvar.NewInt("auth_logins")
	loginFailures = expvar.NewInt("auth_login_failures")
)

// TokenIssuer signs tokens for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// JobPublisher puts a JSON job on a queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// RequestMeta describes where a sign-in came from.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuthResult is what register and login hand back to the client.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

type AuthService struct {
	Users  repo.UserRepository
	Tokens TokenIssuer
	// Mail is nil when email jobs are disabled.
	Mail   JobPublisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewAuthService(users repo.UserRepository, tokens TokenIssuer, mail JobPublisher, cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, Mail: mail, Cfg: cfg, Logger: logger}
}

// Register creates an account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	_, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{FullName: fullName, Email: email, PasswordHash: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	registrations.Add(1)

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, u.Email, templates.Welcome, templates.NewWelcomeData(s.Cfg, u.FullName, u.Email))
	return res, nil
}

// Login checks credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string, meta RequestMeta) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			loginFailures.Add(1)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		loginFailures.Add(1)
		return nil, ErrInvalidCredentials
	}
	logins.Add(1)

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, u.Email, templates.LoginNotification, templates.NewLoginNotificationData(
		s.Cfg, u.FullName, u.Email,
		templates.WithIP(meta.IP),
		templates.WithUserAgent(meta.UserAgent),
		templates.WithTime(time.Now()),
	))
	return res, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	u, err := s.Users.GetByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

// enqueue publishes an email job. Failures are logged only.
func (s *AuthService) enqueue(ctx context.Context, to, template string, data map[string]any) {
	if s.Mail == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Mail.PublishJSON(context.WithoutCancel(ctx), job); err != nil {
		helpers.LogWarn(s.Logger, "enqueue email job", err, logrus.Fields{"template": template})
	}
}
