package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the tenant profile: identity, theme and business settings.
type Service interface {
	Get(ctx context.Context, actor policy.Actor) (*models.Company, error)
	UpdateTheme(ctx context.Context, actor policy.Actor, theme types.CompanyTheme) (*models.Company, error)
	UpdateSettings(ctx context.Context, actor policy.Actor, settings types.BusinessSettings) (*models.Company, error)
	Rename(ctx context.Context, actor policy.Actor, name string, logoURL *string) (*models.Company, error)
}

type service struct {
	repo Repository
}

// NewService builds a companies service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("companies repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor) (*models.Company, error) {
	return s.load(ctx, actor.CompanyID)
}

func (s *service) UpdateTheme(ctx context.Context, actor policy.Actor, theme types.CompanyTheme) (*models.Company, error) {
	if err := requireCompanyAdmin(actor); err != nil {
		return nil, err
	}
	company, err := s.load(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	company.Theme = theme
	updated, err := s.repo.Update(ctx, company)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update theme")
	}
	return updated, nil
}

func (s *service) UpdateSettings(ctx context.Context, actor policy.Actor, settings types.BusinessSettings) (*models.Company, error) {
	if err := requireCompanyAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateSettings(&settings); err != nil {
		return nil, err
	}
	company, err := s.load(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	company.Settings = settings
	updated, err := s.repo.Update(ctx, company)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update settings")
	}
	return updated, nil
}

func (s *service) Rename(ctx context.Context, actor policy.Actor, name string, logoURL *string) (*models.Company, error) {
	if err := requireCompanyAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	company, err := s.load(ctx, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	company.Name = name
	company.LogoURL = logoURL
	updated, err := s.repo.Update(ctx, company)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update company")
	}
	return updated, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return company, nil
}

func requireCompanyAdmin(actor policy.Actor) error {
	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not manage company settings")
	}
}

func validateSettings(settings *types.BusinessSettings) error {
	if settings.Currency != "" && !settings.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown currency")
	}
	if settings.TaxRatePercent != "" {
		rate, err := decimal.NewFromString(settings.TaxRatePercent)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid default tax rate")
		}
		if rate.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "default tax rate cannot be negative")
		}
	}
	return nil
}
