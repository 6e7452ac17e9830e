package auth

import (
	"context"
	"testing"

	"github.com/coopmercado/coopmercado-backend/pkg/auth"
	"github.com/coopmercado/coopmercado-backend/pkg/config"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUsers struct {
	user *models.User
	err  error
}

func (s *stubUsers) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	return s.user, s.err
}

func (s *stubUsers) Update(_ context.Context, user *models.User) (*models.User, error) {
	return user, nil
}

type stubSessions struct {
	created []string
	revoked []string
}

func (s *stubSessions) Create(_ context.Context, accessID string) error {
	s.created = append(s.created, accessID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "coopmercado-test",
		ExpirationMinutes: 60,
		SessionTTLMinutes: 120,
	}
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	companyID := uuid.New()
	return &models.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		PasswordHash: hash,
		Name:         "Ana Souza",
		Role:         enums.RoleCooperative,
		CompanyID:    &companyID,
		IsActive:     true,
	}
}

func TestLoginMintsSessionBackedToken(t *testing.T) {
	user := testUser(t, "correct horse")
	sessions := &stubSessions{}
	svc, err := NewService(&stubUsers{user: user}, sessions, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Login(context.Background(), "Ana@Example.com ", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected a token")
	}
	if len(sessions.created) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.created))
	}
	if result.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}

	claims, err := auth.ParseAccessToken(testJWTConfig(), result.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected subject to be the user")
	}
	if claims.Role != enums.RoleCooperative {
		t.Fatalf("expected role claim, got %s", claims.Role)
	}
	if claims.ID != sessions.created[0] {
		t.Fatalf("expected jti to match the registered session")
	}
}

func TestLoginWrongPasswordAndUnknownEmailAnswerIdentically(t *testing.T) {
	user := testUser(t, "correct horse")
	svc, err := NewService(&stubUsers{user: user}, &stubSessions{}, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, wrongPass := svc.Login(context.Background(), "ana@example.com", "wrong")

	svcUnknown, err := NewService(&stubUsers{err: gorm.ErrRecordNotFound}, &stubSessions{}, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, unknown := svcUnknown.Login(context.Background(), "nobody@example.com", "whatever")

	if pkgerrors.CodeOf(wrongPass) != pkgerrors.CodeUnauthorized || pkgerrors.CodeOf(unknown) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for both, got %v and %v", wrongPass, unknown)
	}
	if pkgerrors.As(wrongPass).Message() != pkgerrors.As(unknown).Message() {
		t.Fatalf("expected identical messages, got %q and %q", pkgerrors.As(wrongPass).Message(), pkgerrors.As(unknown).Message())
	}
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	user := testUser(t, "correct horse")
	user.IsActive = false
	svc, err := NewService(&stubUsers{user: user}, &stubSessions{}, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), "ana@example.com", "correct horse")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc, err := NewService(&stubUsers{}, sessions, testJWTConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Logout(context.Background(), "some-jti"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "some-jti" {
		t.Fatalf("expected session revocation")
	}

	if err := svc.Logout(context.Background(), " "); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank jti, got %v", err)
	}
}
