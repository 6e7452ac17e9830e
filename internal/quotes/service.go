package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coopmercado/coopmercado-backend/internal/draft"
	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/money"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CollectionName is the live feed collection quotes publish under.
const CollectionName = "quotes"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type marketLoader interface {
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Market, error)
}

type companyLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type catalogSource interface {
	Snapshot(ctx context.Context, companyID uuid.UUID) ([]models.Product, error)
}

type snapshotPublisher interface {
	Publish(ctx context.Context, companyID uuid.UUID, collection string)
}

// Service exposes quote assembly and lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor policy.Actor, input CreateInput) (*models.Quote, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateInput) (*models.Quote, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, actor policy.Actor, params pagination.Params, filters Filters) (*QuotePage, error)
	Transition(ctx context.Context, actor policy.Actor, id uuid.UUID, target enums.QuoteStatus) (*models.Quote, error)
	Export(ctx context.Context, actor policy.Actor, id uuid.UUID) (*ExportPayload, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	catalog   catalogSource
	markets   marketLoader
	companies companyLoader
	feed      snapshotPublisher
	now       func() time.Time
}

// NewService builds a quotes service backed by the provided stack.
func NewService(repo Repository, tx txRunner, catalogRepo catalogSource, markets marketLoader, companies companyLoader, feed snapshotPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if markets == nil {
		return nil, fmt.Errorf("market loader required")
	}
	if companies == nil {
		return nil, fmt.Errorf("company loader required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		catalog:   catalogRepo,
		markets:   markets,
		companies: companies,
		feed:      feed,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, input CreateInput) (*models.Quote, error) {
	if err := requireQuoteWriter(actor); err != nil {
		return nil, err
	}
	if input.MarketID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "market id is required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote must contain at least one line")
	}
	if input.ValidUntil.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validity date must be in the future")
	}

	market, err := s.markets.GetByID(ctx, actor.CompanyID, input.MarketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "market not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load market")
	}

	rate, err := s.resolveTaxRate(ctx, actor.CompanyID, input.TaxRatePercent)
	if err != nil {
		return nil, err
	}

	lines, breakdown, err := s.priceLines(ctx, actor.CompanyID, input.Lines, rate)
	if err != nil {
		return nil, err
	}

	quote := &models.Quote{
		CompanyID:      actor.CompanyID,
		MarketID:       market.ID,
		MarketName:     market.Name,
		Status:         enums.QuoteStatusDraft,
		TaxRatePercent: rate,
		SubtotalCents:  breakdown.SubtotalCents,
		TaxCents:       breakdown.TaxCents,
		TotalCents:     breakdown.TotalCents,
		ValidUntil:     input.ValidUntil,
		Notes:          input.Notes,
		Terms:          input.Terms,
		Lines:          lines,
	}
	created, err := s.repo.Create(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quote")
	}

	s.publish(ctx, actor.CompanyID)
	return created, nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, input UpdateInput) (*models.Quote, error) {
	if err := requireQuoteWriter(actor); err != nil {
		return nil, err
	}
	quote, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if EffectiveStatus(quote, s.now()) != enums.QuoteStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft quotes can be edited")
	}

	if input.ValidUntil != nil {
		if input.ValidUntil.Before(s.now()) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "validity date must be in the future")
		}
		quote.ValidUntil = *input.ValidUntil
	}
	if input.Notes != nil {
		quote.Notes = input.Notes
	}
	if input.Terms != nil {
		quote.Terms = input.Terms
	}
	if input.TaxRatePercent != nil {
		rate, err := parseTaxRate(*input.TaxRatePercent)
		if err != nil {
			return nil, err
		}
		quote.TaxRatePercent = rate
	}

	var lines []models.QuoteLine
	if input.Lines != nil {
		if len(input.Lines) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote must contain at least one line")
		}
		lines, _, err = s.priceLines(ctx, actor.CompanyID, input.Lines, quote.TaxRatePercent)
		if err != nil {
			return nil, err
		}
		quote.Lines = lines
	}

	// Totals always derive from the current lines and rate.
	d := draft.New()
	for _, line := range quote.Lines {
		if err := d.AddLineQty(draft.Item{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Unit:           line.Unit,
			UnitPriceCents: line.UnitPriceCents,
		}, line.Quantity); err != nil {
			return nil, err
		}
	}
	breakdown, err := d.PriceWithTax(quote.TaxRatePercent)
	if err != nil {
		return nil, err
	}
	quote.SubtotalCents = breakdown.SubtotalCents
	quote.TaxCents = breakdown.TaxCents
	quote.TotalCents = breakdown.TotalCents

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, quote); err != nil {
			return err
		}
		if lines != nil {
			return txRepo.ReplaceLines(ctx, quote.ID, lines)
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist quote")
	}

	s.publish(ctx, actor.CompanyID)
	return s.load(ctx, actor.CompanyID, quote.ID)
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Quote, error) {
	quote, err := s.load(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSeeMarket(quote.MarketID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return quote, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, params pagination.Params, filters Filters) (*QuotePage, error) {
	if !actor.SeesAllMarkets() && actor.MarketID == nil {
		return &QuotePage{Quotes: []models.Quote{}}, nil
	}
	page, err := s.repo.List(ctx, actor.CompanyID, actor.MarketFilter(), params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	return page, nil
}

// Transition moves a quote between actor-triggered statuses. Expiry is never
// a valid target here; it happens on the clock, not on request.
func (s *service) Transition(ctx context.Context, actor policy.Actor, id uuid.UUID, target enums.QuoteStatus) (*models.Quote, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote status")
	}

	quote, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	// Accepting or rejecting is the receiving market's call as well as the
	// cooperative's; editing transitions stay with quote writers.
	switch target {
	case enums.QuoteStatusAccepted, enums.QuoteStatusRejected:
	default:
		if err := requireQuoteWriter(actor); err != nil {
			return nil, err
		}
	}

	current := EffectiveStatus(quote, s.now())
	if !current.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move quote from %s to %s", current, target))
	}

	updated, err := s.repo.UpdateStatus(ctx, quote.ID, quote.Status, target, s.now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "quote was modified concurrently, re-read and retry")
	}

	s.publish(ctx, actor.CompanyID)
	return s.load(ctx, actor.CompanyID, quote.ID)
}

// Export produces the flat payload the document renderer turns into a PDF.
func (s *service) Export(ctx context.Context, actor policy.Actor, id uuid.UUID) (*ExportPayload, error) {
	quote, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, actor.CompanyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}

	lines := make([]ExportLine, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		lines = append(lines, ExportLine{
			ProductName: line.ProductName,
			Unit:        line.Unit,
			UnitPrice:   money.Format(line.UnitPriceCents),
			Quantity:    line.Quantity,
			Total:       money.Format(line.TotalCents),
		})
	}

	return &ExportPayload{
		QuoteID:     quote.ID,
		CompanyName: company.Name,
		LogoURL:     company.LogoURL,
		MarketName:  quote.MarketName,
		Lines:       lines,
		Subtotal:    money.Format(quote.SubtotalCents),
		TaxRate:     quote.TaxRatePercent.StringFixed(2),
		Tax:         money.Format(quote.TaxCents),
		Total:       money.Format(quote.TotalCents),
		Currency:    company.Settings.Currency,
		ValidUntil:  quote.ValidUntil,
		Notes:       quote.Notes,
		Terms:       quote.Terms,
		IssuedAt:    s.now().UTC(),
	}, nil
}

func (s *service) priceLines(ctx context.Context, companyID uuid.UUID, inputs []LineInput, rate decimal.Decimal) ([]models.QuoteLine, draft.Breakdown, error) {
	products, err := s.catalog.Snapshot(ctx, companyID)
	if err != nil {
		return nil, draft.Breakdown{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog snapshot")
	}
	source := draft.NewSnapshotSource(products)

	d := draft.New()
	for _, line := range inputs {
		if line.Quantity <= 0 {
			return nil, draft.Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		product, ok := source.Product(line.ProductID)
		if !ok {
			return nil, draft.Breakdown{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found in catalog")
		}
		if err := d.AddLineQty(draft.Item{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Unit:           product.Unit,
			UnitPriceCents: product.PriceCents,
		}, line.Quantity); err != nil {
			return nil, draft.Breakdown{}, err
		}
	}

	breakdown, err := d.PriceWithTax(rate)
	if err != nil {
		return nil, draft.Breakdown{}, err
	}

	lines := make([]models.QuoteLine, 0, d.Len())
	for _, line := range d.Lines() {
		lines = append(lines, models.QuoteLine{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Unit:           line.Unit,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			TotalCents:     line.TotalCents(),
		})
	}
	return lines, breakdown, nil
}

func (s *service) resolveTaxRate(ctx context.Context, companyID uuid.UUID, override *string) (decimal.Decimal, error) {
	if override != nil {
		return parseTaxRate(*override)
	}
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	if company.Settings.TaxRatePercent == "" {
		return decimal.Zero, nil
	}
	return parseTaxRate(company.Settings.TaxRatePercent)
}

func (s *service) load(ctx context.Context, companyID, id uuid.UUID) (*models.Quote, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote id is required")
	}
	quote, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
	}
	return quote, nil
}

func (s *service) publish(ctx context.Context, companyID uuid.UUID) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, companyID, CollectionName)
}

func requireQuoteWriter(actor policy.Actor) error {
	switch actor.Role {
	case enums.RoleSuperAdmin, enums.RoleCompanyAdmin, enums.RoleCooperative:
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not manage quotes")
	}
}

func parseTaxRate(value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax rate")
	}
	if rate.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
	}
	return rate, nil
}
