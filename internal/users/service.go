package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/config"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/security"
	"github.com/coopmercado/coopmercado-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const tempPasswordLength = 16

// Service exposes account management within a tenant. Every mutation runs
// through the management policy, so the write boundary enforces the same
// rules the UI hides behind.
type Service interface {
	Create(ctx context.Context, actor policy.Actor, input CreateInput) (*models.User, string, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateInput) (*models.User, error)
	SetActive(ctx context.Context, actor policy.Actor, id uuid.UUID, active bool) (*models.User, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	ResetPassword(ctx context.Context, actor policy.Actor, id uuid.UUID) (string, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, actor policy.Actor) ([]models.User, error)
}

// CreateInput carries the fields for a new account. The initial password is
// generated server-side and returned once.
type CreateInput struct {
	Email       string
	Name        string
	Role        enums.Role
	MarketID    *uuid.UUID
	Permissions types.Permissions
}

// UpdateInput carries the editable fields of an account. Nil fields keep
// their current value.
type UpdateInput struct {
	Name        *string
	Role        *enums.Role
	MarketID    *uuid.UUID
	ClearMarket bool
	Permissions *types.Permissions
}

type service struct {
	repo     Repository
	password config.PasswordConfig
}

// NewService builds a users service backed by the provided repository.
func NewService(repo Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, password: password}, nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateInput) (*models.User, string, error) {
	// Creating an account is managing it; the target role decides whether
	// the actor is allowed.
	if !policy.CanManageUser(actor, uuid.Nil, input.Role) {
		return nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "role may not create this account")
	}
	if err := validateCreate(&input); err != nil {
		return nil, "", err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
	}
	hash, err := security.HashPassword(tempPassword, s.password)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	companyID := actor.CompanyID
	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         input.Role,
		CompanyID:    &companyID,
		MarketID:     input.MarketID,
		Permissions:  input.Permissions,
		IsActive:     true,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return created, tempPassword, nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateInput) (*models.User, error) {
	user, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = name
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
		}
		// The new role must also be within the actor's reach.
		if !policy.CanManageUser(actor, uuid.Nil, *input.Role) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not grant this role")
		}
		user.Role = *input.Role
	}
	if input.ClearMarket {
		user.MarketID = nil
	} else if input.MarketID != nil {
		user.MarketID = input.MarketID
	}
	if input.Permissions != nil {
		user.Permissions = *input.Permissions
	}

	if err := validateMarketBinding(user.Role, user.MarketID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return updated, nil
}

func (s *service) SetActive(ctx context.Context, actor policy.Actor, id uuid.UUID, active bool) (*models.User, error) {
	user, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}
	user.IsActive = active
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if _, err := s.manageable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CompanyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) ResetPassword(ctx context.Context, actor policy.Actor, id uuid.UUID) (string, error) {
	user, err := s.manageable(ctx, actor, id)
	if err != nil {
		return "", err
	}
	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
	}
	hash, err := security.HashPassword(tempPassword, s.password)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.PasswordHash = hash
	if _, err := s.repo.Update(ctx, user); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return tempPassword, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.User, error) {
	if actor.ID != id {
		switch actor.Role {
		case enums.RoleSuperAdmin, enums.RoleCompanyAdmin:
		default:
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not view other accounts")
		}
	}
	return s.load(ctx, actor.CompanyID, id)
}

func (s *service) List(ctx context.Context, actor policy.Actor) ([]models.User, error) {
	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not list accounts")
	}
	users, err := s.repo.ListAll(ctx, actor.CompanyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return users, nil
}

// manageable loads the target and applies the management policy, including
// the unconditional self-action denial.
func (s *service) manageable(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.User, error) {
	user, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageUser(actor, user.ID, user.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot manage this account")
	}
	return user, nil
}

func (s *service) load(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func validateCreate(input *CreateInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}
	return validateMarketBinding(input.Role, input.MarketID)
}

func validateMarketBinding(role enums.Role, marketID *uuid.UUID) error {
	if role == enums.RoleMarket && marketID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "market-role users must be bound to a market")
	}
	if role != enums.RoleMarket && marketID != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "only market-role users carry a market binding")
	}
	return nil
}
