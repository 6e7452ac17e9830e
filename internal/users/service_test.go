package users

import (
	"context"
	"testing"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/config"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubRepo struct {
	Repository
	created  *models.User
	updated  *models.User
	findFn   func(ctx context.Context, companyID, id uuid.UUID) (*models.User, error)
	byEmail  func(ctx context.Context, email string) (*models.User, error)
	deleteFn func(ctx context.Context, companyID, id uuid.UUID) error
}

func (s *stubRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.created = user
	return user, nil
}

func (s *stubRepo) Update(_ context.Context, user *models.User) (*models.User, error) {
	s.updated = user
	return user, nil
}

func (s *stubRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	return s.findFn(ctx, companyID, id)
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.byEmail != nil {
		return s.byEmail(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return s.deleteFn(ctx, companyID, id)
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func superAdmin() policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: enums.RoleSuperAdmin, CompanyID: uuid.New()}
}

func companyAdmin() policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: enums.RoleCompanyAdmin, CompanyID: uuid.New()}
}

func TestCreateUserReturnsTempPassword(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	marketID := uuid.New()
	actor := companyAdmin()
	user, tempPassword, err := svc.Create(context.Background(), actor, CreateInput{
		Email:    "Ana@Example.com",
		Name:     "Ana Souza",
		Role:     enums.RoleMarket,
		MarketID: &marketID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tempPassword == "" {
		t.Fatalf("expected a generated password")
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.CompanyID == nil || *user.CompanyID != actor.CompanyID {
		t.Fatalf("expected tenant scoping")
	}

	ok, err := security.VerifyPassword(tempPassword, user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify the returned password")
	}
}

func TestCreateUserMarketBinding(t *testing.T) {
	svc, err := NewService(&stubRepo{}, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	actor := companyAdmin()

	_, _, err = svc.Create(context.Background(), actor, CreateInput{
		Email: "a@b.com", Name: "x", Role: enums.RoleMarket,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unbound market user, got %v", err)
	}

	marketID := uuid.New()
	_, _, err = svc.Create(context.Background(), actor, CreateInput{
		Email: "a@b.com", Name: "x", Role: enums.RoleCooperative, MarketID: &marketID,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bound company-wide user, got %v", err)
	}
}

func TestCompanyAdminCannotCreateSuperAdmin(t *testing.T) {
	svc, err := NewService(&stubRepo{}, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, _, err = svc.Create(context.Background(), companyAdmin(), CreateInput{
		Email: "root@b.com", Name: "x", Role: enums.RoleSuperAdmin,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if _, _, err := svc.Create(context.Background(), superAdmin(), CreateInput{
		Email: "root@b.com", Name: "x", Role: enums.RoleSuperAdmin,
	}); err != nil {
		t.Fatalf("expected super admin to create super admin, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := &stubRepo{
		byEmail: func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: uuid.New()}, nil
		},
	}
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, _, err = svc.Create(context.Background(), companyAdmin(), CreateInput{
		Email: "dup@b.com", Name: "x", Role: enums.RoleCooperative,
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSelfDeactivationDenied(t *testing.T) {
	actor := superAdmin()
	repo := &stubRepo{
		findFn: func(_ context.Context, _, _ uuid.UUID) (*models.User, error) {
			return &models.User{ID: actor.ID, Role: enums.RoleSuperAdmin, IsActive: true}, nil
		},
	}
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SetActive(context.Background(), actor, actor.ID, false)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected self-action to be denied, got %v", err)
	}

	err = svc.Delete(context.Background(), actor, actor.ID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected self-delete to be denied, got %v", err)
	}
}

func TestCompanyAdminCannotManageSuperAdmin(t *testing.T) {
	target := &models.User{ID: uuid.New(), Role: enums.RoleSuperAdmin, IsActive: true}
	repo := &stubRepo{
		findFn: func(_ context.Context, _, _ uuid.UUID) (*models.User, error) {
			return target, nil
		},
	}
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.SetActive(context.Background(), companyAdmin(), target.ID, false)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCooperativeCannotListUsers(t *testing.T) {
	svc, err := NewService(&stubRepo{}, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleCooperative, CompanyID: uuid.New()}
	if _, err := svc.List(context.Background(), actor); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateRoleEscalationBlocked(t *testing.T) {
	target := &models.User{ID: uuid.New(), Role: enums.RoleCooperative, IsActive: true}
	repo := &stubRepo{
		findFn: func(_ context.Context, _, _ uuid.UUID) (*models.User, error) {
			return target, nil
		},
	}
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	role := enums.RoleSuperAdmin
	_, err = svc.Update(context.Background(), companyAdmin(), target.ID, UpdateInput{Role: &role})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden on escalation to super admin, got %v", err)
	}
}
