// Package identity registers accounts and issues and restores the sessions
// that identify the acting principal of listing operations.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type Config struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     domain.Role
	Company  string
}

// Session is what a successful register or login hands back to the client.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

type Service struct {
	users    UserRepository
	sessions SessionStore
	cfg      Config
	logger   *logger.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(users UserRepository, sessions SessionStore, cfg Config, log *logger.Logger) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		logger:   log.Named("IdentityService"),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func unknown(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrUnknown, op, err)
}

func validateCredentials(email, password string) error {
	if email == "" {
		return domain.NewValidationError("email", "is required")
	}
	if !strings.Contains(email, "@") {
		return domain.NewValidationError("email", "is not a valid address")
	}
	if password == "" {
		return domain.NewValidationError("password", "is required")
	}
	if len(password) < minPasswordLength {
		return domain.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an agent or owner account and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if err := validateCredentials(email, in.Password); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleOwner
	}
	if !in.Role.IsLister() {
		return nil, domain.NewValidationError("role", "must be agent or owner")
	}

	user, err := s.createUser(ctx, email, in.Password, in.Name, in.Phone, in.Role, in.Company)
	if err != nil {
		return nil, err
	}
	s.logger.Info("IdentityService.Register: user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.openSession(ctx, user)
}

// Login checks credentials and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError("credentials", "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("IdentityService.Login: unknown email")
			return nil, domain.ErrUnauthenticated
		}
		s.logger.Error("IdentityService.Login: failed to look up user", zap.Error(err))
		return nil, unknown("find user", err)
	}
	if !user.IsActive {
		s.logger.Info("IdentityService.Login: inactive user", zap.String("user_id", user.ID))
		return nil, domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("IdentityService.Login: wrong password", zap.String("user_id", user.ID))
		return nil, domain.ErrUnauthenticated
	}
	return s.openSession(ctx, user)
}

// Logout ends a session. Ending an unknown session is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Error("IdentityService.Logout: failed to delete session", zap.String("session_id", sessionID), zap.Error(err))
		return unknown("delete session", err)
	}
	return nil
}

// Restore resolves a bearer token into the principal it was issued to. The
// token must be valid, its session still live and its user still active.
// Role, name and email come from the user record, so a demotion applies to
// tokens already issued.
func (s *Service) Restore(ctx context.Context, token string) (domain.Principal, *Claims, error) {
	claims, err := parseToken(s.cfg.Secret, token, s.now)
	if err != nil {
		return domain.Principal{}, nil, domain.ErrUnauthenticated
	}
	live, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		s.logger.Error("IdentityService.Restore: failed to check session", zap.String("session_id", claims.ID), zap.Error(err))
		return domain.Principal{}, nil, unknown("check session", err)
	}
	if !live {
		return domain.Principal{}, nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Principal{}, nil, domain.ErrUnauthenticated
	}
	if err != nil {
		s.logger.Error("IdentityService.Restore: failed to load user", zap.String("user_id", claims.Subject), zap.Error(err))
		return domain.Principal{}, nil, unknown("find user", err)
	}
	if !user.IsActive {
		s.logger.Info("IdentityService.Restore: user is inactive", zap.String("user_id", user.ID))
		return domain.Principal{}, nil, domain.ErrUnauthenticated
	}
	return user.Principal(), claims, nil
}

// EnsureAdmin creates the admin account if no user holds email yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return unknown("find admin", err)
	}
	user, err := s.createUser(ctx, email, password, "Administrator", "", domain.RoleAdmin, "")
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		return err
	}
	s.logger.Info("IdentityService.EnsureAdmin: admin account created", zap.String("user_id", user.ID))
	return nil
}

func (s *Service) createUser(ctx context.Context, email, password, name, phone string, role domain.Role, company string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, unknown("hash password", err)
	}
	now := s.now()
	user := &User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(name),
		Phone:        strings.TrimSpace(phone),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if role == domain.RoleAgent {
		user.Company = strings.TrimSpace(company)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.logger.Info("IdentityService: email already registered")
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		s.logger.Error("IdentityService: failed to create user", zap.Error(err))
		return nil, unknown("create user", err)
	}
	return user, nil
}

func (s *Service) openSession(ctx context.Context, user *User) (*Session, error) {
	sessionID := s.newID()
	token, expiresAt, err := issueToken(s.cfg.Secret, user, sessionID, s.now(), s.cfg.TTL)
	if err != nil {
		return nil, unknown("issue token", err)
	}
	if err := s.sessions.Save(ctx, sessionID, user.ID, s.cfg.TTL); err != nil {
		s.logger.Error("IdentityService: failed to save session", zap.String("user_id", user.ID), zap.Error(err))
		return nil, unknown("save session", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
