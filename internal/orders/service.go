package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coopmercado/coopmercado-backend/internal/catalog"
	"github.com/coopmercado/coopmercado-backend/internal/draft"
	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionName is the live feed collection orders publish under.
const CollectionName = "orders"

// Service exposes order placement and lifecycle operations.
type Service interface {
	Submit(ctx context.Context, actor policy.Actor, input SubmitInput) (*models.Order, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, actor policy.Actor, params pagination.Params, filters Filters) (*OrderPage, error)
	Advance(ctx context.Context, actor policy.Actor, id uuid.UUID, target enums.OrderStatus, version int) (*models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	catalog catalog.Repository
	markets marketLoader
	feed    snapshotPublisher
	now     func() time.Time
}

// NewService builds an orders service backed by the provided stack. The feed
// publisher may be nil when live updates are not wired.
func NewService(repo Repository, tx txRunner, catalogRepo catalog.Repository, markets marketLoader, feed snapshotPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if markets == nil {
		return nil, fmt.Errorf("market loader required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		catalog: catalogRepo,
		markets: markets,
		feed:    feed,
		now:     time.Now,
	}, nil
}

// Submit turns a draft into a persisted pending order. Lines are re-priced
// from the current catalog snapshot and stock is decremented atomically, so
// two simultaneous submissions cannot over-commit the same product.
func (s *service) Submit(ctx context.Context, actor policy.Actor, input SubmitInput) (*models.Order, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}
	if input.MarketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "market id is required")
	}
	if !actor.CanSeeMarket(input.MarketID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot place orders for another market")
	}

	market, err := s.markets.GetByID(ctx, actor.CompanyID, input.MarketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "market not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load market")
	}

	products, err := s.catalog.Snapshot(ctx, actor.CompanyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog snapshot")
	}
	source := draft.NewSnapshotSource(products)

	d := draft.New()
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		product, ok := source.Product(line.ProductID)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in catalog")
		}
		if line.Quantity > product.Stock {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for "+product.Name)
		}
		if err := d.AddLineQty(draft.Item{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Unit:           product.Unit,
			UnitPriceCents: product.PriceCents,
		}, line.Quantity); err != nil {
			return nil, err
		}
	}

	lines := make([]models.OrderLine, 0, d.Len())
	for _, line := range d.Lines() {
		lines = append(lines, models.OrderLine{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Unit:           line.Unit,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			TotalCents:     line.TotalCents(),
		})
	}

	order := &models.Order{
		CompanyID:  actor.CompanyID,
		MarketID:   market.ID,
		MarketName: market.Name,
		Status:     enums.OrderStatusPending,
		TotalCents: d.TotalCents(),
		Notes:      input.Notes,
		Version:    1,
		Lines:      lines,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCatalog := s.catalog.WithTx(tx)
		for _, line := range d.Lines() {
			if err := txCatalog.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for "+line.ProductName)
				}
				return err
			}
		}
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	}); err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeConflict {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	s.publish(ctx, actor.CompanyID)
	return order, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeMarket(order.MarketID) {
		// Hidden, not forbidden, so market users cannot learn other
		// markets' order ids exist.
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, params pagination.Params, filters Filters) (*OrderPage, error) {
	if !actor.SeesAllMarkets() && actor.MarketID == nil {
		return &OrderPage{Orders: []models.Order{}}, nil
	}
	page, err := s.repo.List(ctx, actor.CompanyID, actor.MarketFilter(), params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

// Advance moves an order along its lifecycle. The version is the one the
// caller last read; a stale version means a concurrent update won and the
// caller must re-read.
func (s *service) Advance(ctx context.Context, actor policy.Actor, id uuid.UUID, target enums.OrderStatus, version int) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeMarket(order.MarketID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin, enums.RoleCooperative:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not change order status")
	}
	if !policy.CanAdvanceOrder(actor, order.Status, target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}

	updated, err := s.repo.UpdateStatus(ctx, order.ID, order.Status, target, version, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently, re-read and retry")
	}

	s.publish(ctx, actor.CompanyID)
	return s.load(ctx, actor.CompanyID, order.ID)
}

func (s *service) load(ctx context.Context, companyID, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) publish(ctx context.Context, companyID uuid.UUID) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, companyID, CollectionName)
}
