package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/auth"
	"github.com/coopmercado/coopmercado-backend/pkg/config"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userLoader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
}

type sessionRegistry interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service authenticates users and manages their sessions.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, jti string) error
}

// LoginResult carries the minted token and the authenticated account.
type LoginResult struct {
	AccessToken string
	User        *models.User
}

type service struct {
	users    userLoader
	sessions sessionRegistry
	jwt      config.JWTConfig
	now      func() time.Time
}

// NewService builds an auth service backed by the provided stack.
func NewService(users userLoader, sessions sessionRegistry, jwt config.JWTConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	return &service{users: users, sessions: sessions, jwt: jwt, now: time.Now}, nil
}

// Login verifies the credentials and mints a session-backed access token.
// Unknown emails and wrong passwords answer identically.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, invalidCredentials()
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	jti := uuid.NewString()
	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		MarketID:  user.MarketID,
		Role:      user.Role,
		JTI:       jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	if err := s.sessions.Create(ctx, jti); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register session")
	}

	lastLogin := s.now().UTC()
	user.LastLoginAt = &lastLogin
	if _, err := s.users.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}

	return &LoginResult{AccessToken: token, User: user}, nil
}

// Logout revokes the session behind the given token id. Revoking an already
// absent session is not an error.
func (s *service) Logout(ctx context.Context, jti string) error {
	if strings.TrimSpace(jti) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token id is required")
	}
	if err := s.sessions.Revoke(ctx, jti); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
