package markets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionName is the live feed collection markets publish under.
const CollectionName = "markets"

type snapshotPublisher interface {
	Publish(ctx context.Context, companyID uuid.UUID, collection string)
}

// Service exposes partner market management.
type Service interface {
	Create(ctx context.Context, actor policy.Actor, input Input) (*models.Market, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input Input) (*models.Market, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Market, error)
	List(ctx context.Context, actor policy.Actor) ([]models.Market, error)
}

// Input carries the writable fields of a market.
type Input struct {
	Name    string
	Owner   string
	Address string
	Phone   string
	Email   string
	CNPJ    string
}

type service struct {
	repo Repository
	feed snapshotPublisher
}

// NewService builds a markets service backed by the provided repository.
func NewService(repo Repository, feed snapshotPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("markets repository required")
	}
	return &service{repo: repo, feed: feed}, nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, input Input) (*models.Market, error) {
	if err := requireMarketAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	market := &models.Market{
		CompanyID: actor.CompanyID,
		Name:      input.Name,
		Owner:     input.Owner,
		Address:   input.Address,
		Phone:     input.Phone,
		Email:     input.Email,
		CNPJ:      input.CNPJ,
	}
	created, err := s.repo.Create(ctx, market)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create market")
	}
	s.publish(ctx, actor.CompanyID)
	return created, nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input Input) (*models.Market, error) {
	if err := requireMarketAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	market, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}

	market.Name = input.Name
	market.Owner = input.Owner
	market.Address = input.Address
	market.Phone = input.Phone
	market.Email = input.Email
	market.CNPJ = input.CNPJ

	updated, err := s.repo.Update(ctx, market)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update market")
	}
	s.publish(ctx, actor.CompanyID)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	if err := requireMarketAdmin(actor); err != nil {
		return err
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "market id is required")
	}
	if err := s.repo.Delete(ctx, actor.CompanyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "market not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete market")
	}
	s.publish(ctx, actor.CompanyID)
	return nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Market, error) {
	market, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeMarket(market.ID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "market not found")
	}
	return market, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor) ([]models.Market, error) {
	markets, err := s.repo.ListAll(ctx, actor.CompanyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list markets")
	}
	if actor.SeesAllMarkets() {
		return markets, nil
	}
	out := make([]models.Market, 0, 1)
	for _, market := range markets {
		if actor.CanSeeMarket(market.ID) {
			out = append(out, market)
		}
	}
	return out, nil
}

func (s *service) load(ctx context.Context, companyID, id uuid.UUID) (*models.Market, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "market id is required")
	}
	market, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "market not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load market")
	}
	return market, nil
}

func (s *service) publish(ctx context.Context, companyID uuid.UUID) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, companyID, CollectionName)
}

func requireMarketAdmin(actor policy.Actor) error {
	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin, enums.RoleCooperative:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not manage markets")
	}
}

func validateInput(input *Input) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Owner = strings.TrimSpace(input.Owner)
	input.CNPJ = strings.TrimSpace(input.CNPJ)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "market name is required")
	}
	if input.Owner == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "market owner is required")
	}
	return nil
}
