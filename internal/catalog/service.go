package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/money"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes catalog operations scoped to the acting user's tenant.
type Service interface {
	CreateProduct(ctx context.Context, actor policy.Actor, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, actor policy.Actor, id uuid.UUID, input ProductInput) (*models.Product, error)
	SetProductActive(ctx context.Context, actor policy.Actor, id uuid.UUID, active bool) (*models.Product, error)
	GetProduct(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, actor policy.Actor, params pagination.Params, filters Filters) (*ProductPage, error)
	Snapshot(ctx context.Context, actor policy.Actor) ([]models.Product, error)
}

// ProductInput carries the writable fields of a catalog product. Price is a
// decimal string in major units, converted to cents on the way in.
type ProductInput struct {
	Name        string
	Category    string
	Price       string
	Unit        string
	Stock       int
	Description string
	ImageURL    *string
}

type service struct {
	repo Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, actor policy.Actor, input ProductInput) (*models.Product, error) {
	if err := requireCatalogWriter(actor); err != nil {
		return nil, err
	}
	priceCents, err := validateProductInput(&input)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		CompanyID:   actor.CompanyID,
		Name:        input.Name,
		Category:    input.Category,
		PriceCents:  priceCents,
		Unit:        input.Unit,
		Stock:       input.Stock,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, actor policy.Actor, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := requireCatalogWriter(actor); err != nil {
		return nil, err
	}
	priceCents, err := validateProductInput(&input)
	if err != nil {
		return nil, err
	}

	product, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Category = input.Category
	product.PriceCents = priceCents
	product.Unit = input.Unit
	product.Stock = input.Stock
	product.Description = input.Description
	product.ImageURL = input.ImageURL

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) SetProductActive(ctx context.Context, actor policy.Actor, id uuid.UUID, active bool) (*models.Product, error) {
	if err := requireCatalogWriter(actor); err != nil {
		return nil, err
	}
	product, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if product.IsActive == active {
		return product, nil
	}
	product.IsActive = active
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return updated, nil
}

func (s *service) GetProduct(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Product, error) {
	return s.load(ctx, actor, id)
}

func (s *service) ListProducts(ctx context.Context, actor policy.Actor, params pagination.Params, filters Filters) (*ProductPage, error) {
	// Market-role users browse the catalog to build orders but only see
	// active products.
	if !actor.SeesAllMarkets() {
		filters.ActiveOnly = true
	}
	page, err := s.repo.List(ctx, actor.CompanyID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return page, nil
}

func (s *service) Snapshot(ctx context.Context, actor policy.Actor) ([]models.Product, error) {
	products, err := s.repo.Snapshot(ctx, actor.CompanyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog snapshot")
	}
	return products, nil
}

func (s *service) load(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func requireCatalogWriter(actor policy.Actor) error {
	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin, enums.RoleCooperative:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not modify the catalog")
	}
}

func validateProductInput(input *ProductInput) (int64, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	input.Unit = strings.TrimSpace(input.Unit)
	if input.Name == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Unit == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "product unit is required")
	}
	if input.Stock < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	priceCents, err := money.ParseAmount(input.Price)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return priceCents, nil
}
