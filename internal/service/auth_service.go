package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/notify"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/utils"
)

// UserStore is satisfied by *repository.UserRepo.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// TokenStore is satisfied by *repository.TokenRepo.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ConsumeRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	RevokeAllForUser(ctx context.Context, userID uint64, now time.Time) error
}

// UserEvents receives registration events.
type UserEvents interface {
	UserRegistered(ctx context.Context, ev queue.UserRegisteredEvent) error
}

// AuthConfig carries the token and hashing settings.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// UserView is the public part of a user.
type UserView struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func userView(u *model.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Session is what a successful login or refresh hands back.
type Session struct {
	User    UserView
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

type AuthService struct {
	cfg    AuthConfig
	users  UserStore
	tokens TokenStore
	events UserEvents    // when set, welcome mails go through the broker
	mailer notify.Sender // used directly when events is nil
	now    func() time.Time
}

func NewAuthService(cfg AuthConfig, users UserStore, tokens TokenStore, events UserEvents, mailer notify.Sender) *AuthService {
	return &AuthService{
		cfg: cfg, users: users, tokens: tokens, events: events, mailer: mailer,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a User-role account and dispatches the welcome mail.
// Mail failures are logged and never fail the registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*UserView, error) {
	name = strings.TrimSpace(name)
	email = repository.NormalizeEmail(email)
	if name == "" {
		return nil, invalid("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email is invalid")
	}
	if err := utils.CheckPassword(password); err != nil {
		return nil, invalid("%s", err.Error())
	}

	u, err := s.create(ctx, name, email, password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	s.welcome(ctx, u)
	v := userView(u)
	return &v, nil
}

func (s *AuthService) create(ctx context.Context, name, email, password, role string) (*model.User, error) {
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{Name: name, Email: email, PasswordHash: hash, Role: role, CreatedAt: s.now()}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	logger.Info("user registered", zap.Uint64("user_id", u.ID), zap.String("role", role))
	return u, nil
}

func (s *AuthService) welcome(ctx context.Context, u *model.User) {
	if s.events != nil {
		ev := queue.UserRegisteredEvent{UserID: u.ID, Name: u.Name, Email: u.Email,
			RegisteredAt: u.CreatedAt.Format(time.RFC3339)}
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()
		if err := s.events.UserRegistered(pctx, ev); err != nil {
			logger.Warn("publish user.registered failed", zap.Uint64("user_id", u.ID), zap.Error(err))
		}
		return
	}
	if s.mailer == nil {
		return
	}
	msg := notify.Welcome(u.Name, u.Email)
	go func() {
		mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.mailer.Send(mctx, msg); err != nil {
			logger.Warn("welcome mail failed", zap.String("to", msg.To), zap.Error(err))
		}
	}()
}

// Login checks the credentials and issues an access and refresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*Session, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidRefresh
	}
	uid, err := s.tokens.ConsumeRefresh(ctx, utils.HashRefreshRaw(raw), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Logout revokes every refresh token of the user.  Access tokens stay
// valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.RevokeAllForUser(ctx, userID, s.now())
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (*Session, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Role, u.Email, s.cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &Session{User: userView(u), Access: access, Refresh: refresh}, nil
}

// EnsureAdmin creates an Admin account for email unless one exists.  An
// existing account with that email is left untouched whatever its role.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	_, err = s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if _, err := s.create(ctx, "Administrator", email, password, model.RoleAdmin); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
