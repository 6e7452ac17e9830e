package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubRepo struct {
	Repository
	created      *models.Quote
	findFn       func(ctx context.Context, companyID, id uuid.UUID) (*models.Quote, error)
	updateStatus func(ctx context.Context, id uuid.UUID, from, to enums.QuoteStatus, at time.Time) (bool, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(_ context.Context, quote *models.Quote) (*models.Quote, error) {
	s.created = quote
	return quote, nil
}

func (s *stubRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Quote, error) {
	return s.findFn(ctx, companyID, id)
}

func (s *stubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.QuoteStatus, at time.Time) (bool, error) {
	return s.updateStatus(ctx, id, from, to, at)
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubCatalog struct {
	products []models.Product
}

func (s *stubCatalog) Snapshot(_ context.Context, _ uuid.UUID) ([]models.Product, error) {
	return s.products, nil
}

type stubMarkets struct {
	market *models.Market
	err    error
}

func (s *stubMarkets) GetByID(_ context.Context, _, _ uuid.UUID) (*models.Market, error) {
	return s.market, s.err
}

type stubCompanies struct {
	company *models.Company
}

func (s *stubCompanies) GetByID(_ context.Context, _ uuid.UUID) (*models.Company, error) {
	return s.company, nil
}

func coopActor() policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: enums.RoleCooperative, CompanyID: uuid.New()}
}

func testCompany() *models.Company {
	return &models.Company{
		ID:   uuid.New(),
		Name: "Cooperativa Serra Azul",
		Settings: types.BusinessSettings{
			Currency:       enums.CurrencyBRL,
			TaxRatePercent: "10",
		},
	}
}

func testProduct(priceCents int64) models.Product {
	return models.Product{
		ID:         uuid.New(),
		Name:       "Azeite Extra Virgem",
		Unit:       "un",
		PriceCents: priceCents,
		Stock:      100,
		IsActive:   true,
	}
}

func newTestService(t *testing.T, repo *stubRepo, cat *stubCatalog, markets *stubMarkets, companies *stubCompanies) Service {
	t.Helper()
	svc, err := NewService(repo, stubTx{}, cat, markets, companies, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateAppliesTenantDefaultTaxRate(t *testing.T) {
	product := testProduct(1290)
	repo := &stubRepo{}
	market := &models.Market{ID: uuid.New(), Name: "Mercado Central"}
	svc := newTestService(t, repo, &stubCatalog{products: []models.Product{product}}, &stubMarkets{market: market}, &stubCompanies{company: testCompany()})

	quote, err := svc.Create(context.Background(), coopActor(), CreateInput{
		MarketID:   market.ID,
		ValidUntil: time.Now().Add(7 * 24 * time.Hour),
		Lines:      []LineInput{{ProductID: product.ID, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 5 x R$12.90 at the tenant default 10%.
	if quote.SubtotalCents != 6450 {
		t.Fatalf("expected subtotal 6450, got %d", quote.SubtotalCents)
	}
	if quote.TaxCents != 645 {
		t.Fatalf("expected tax 645, got %d", quote.TaxCents)
	}
	if quote.TotalCents != 7095 {
		t.Fatalf("expected total 7095, got %d", quote.TotalCents)
	}
	if quote.Status != enums.QuoteStatusDraft {
		t.Fatalf("expected draft status, got %s", quote.Status)
	}
	if !quote.TaxRatePercent.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected default rate 10, got %s", quote.TaxRatePercent)
	}
}

func TestCreateTaxRateOverride(t *testing.T) {
	product := testProduct(1000)
	repo := &stubRepo{}
	market := &models.Market{ID: uuid.New(), Name: "Mercado Central"}
	svc := newTestService(t, repo, &stubCatalog{products: []models.Product{product}}, &stubMarkets{market: market}, &stubCompanies{company: testCompany()})

	override := "5.50"
	quote, err := svc.Create(context.Background(), coopActor(), CreateInput{
		MarketID:       market.ID,
		TaxRatePercent: &override,
		ValidUntil:     time.Now().Add(24 * time.Hour),
		Lines:          []LineInput{{ProductID: product.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// 2000 * 5.5% = 110.
	if quote.TaxCents != 110 {
		t.Fatalf("expected tax 110, got %d", quote.TaxCents)
	}

	bad := "-1"
	_, err = svc.Create(context.Background(), coopActor(), CreateInput{
		MarketID:       market.ID,
		TaxRatePercent: &bad,
		ValidUntil:     time.Now().Add(24 * time.Hour),
		Lines:          []LineInput{{ProductID: product.ID, Quantity: 1}},
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative rate, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	market := &models.Market{ID: uuid.New(), Name: "M"}
	svc := newTestService(t, &stubRepo{}, &stubCatalog{}, &stubMarkets{market: market}, &stubCompanies{company: testCompany()})
	actor := coopActor()

	_, err := svc.Create(context.Background(), actor, CreateInput{
		MarketID:   market.ID,
		ValidUntil: time.Now().Add(-time.Hour),
		Lines:      []LineInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for past validity, got %v", err)
	}

	_, err = svc.Create(context.Background(), actor, CreateInput{
		MarketID:   market.ID,
		ValidUntil: time.Now().Add(time.Hour),
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty lines, got %v", err)
	}

	marketID := uuid.New()
	marketActor := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: actor.CompanyID, MarketID: &marketID}
	_, err = svc.Create(context.Background(), marketActor, CreateInput{
		MarketID:   market.ID,
		ValidUntil: time.Now().Add(time.Hour),
		Lines:      []LineInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for market role, got %v", err)
	}
}

func TestTransitionDraftSentRoundTrip(t *testing.T) {
	quoteID := uuid.New()
	status := enums.QuoteStatusDraft
	repo := &stubRepo{
		findFn: func(_ context.Context, _, _ uuid.UUID) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, Status: status, MarketID: uuid.New(), ValidUntil: time.Now().Add(24 * time.Hour)}, nil
		},
		updateStatus: func(_ context.Context, _ uuid.UUID, _, to enums.QuoteStatus, _ time.Time) (bool, error) {
			status = to
			return true, nil
		},
	}
	svc := newTestService(t, repo, &stubCatalog{}, &stubMarkets{}, &stubCompanies{company: testCompany()})
	actor := coopActor()

	quote, err := svc.Transition(context.Background(), actor, quoteID, enums.QuoteStatusSent)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if quote.Status != enums.QuoteStatusSent {
		t.Fatalf("expected sent, got %s", quote.Status)
	}

	// Sent quotes can return to draft for editing.
	if _, err := svc.Transition(context.Background(), actor, quoteID, enums.QuoteStatusDraft); err != nil {
		t.Fatalf("revert to draft: %v", err)
	}

	// Draft quotes cannot be accepted directly.
	_, err = svc.Transition(context.Background(), actor, quoteID, enums.QuoteStatusAccepted)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestTransitionExpiredQuoteIsFrozen(t *testing.T) {
	quoteID := uuid.New()
	repo := &stubRepo{
		findFn: func(_ context.Context, _, _ uuid.UUID) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, Status: enums.QuoteStatusSent, MarketID: uuid.New(), ValidUntil: time.Now().Add(-time.Hour)}, nil
		},
	}
	svc := newTestService(t, repo, &stubCatalog{}, &stubMarkets{}, &stubCompanies{company: testCompany()})

	// The persisted status is still sent but the validity has passed, so the
	// effective status is expired and accepting is refused.
	_, err := svc.Transition(context.Background(), coopActor(), quoteID, enums.QuoteStatusAccepted)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for expired quote, got %v", err)
	}
}

func TestUpdateOnlyDraftQuotes(t *testing.T) {
	quoteID := uuid.New()
	repo := &stubRepo{
		findFn: func(_ context.Context, _, _ uuid.UUID) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, Status: enums.QuoteStatusSent, MarketID: uuid.New(), ValidUntil: time.Now().Add(24 * time.Hour)}, nil
		},
	}
	svc := newTestService(t, repo, &stubCatalog{}, &stubMarkets{}, &stubCompanies{company: testCompany()})

	notes := "updated"
	_, err := svc.Update(context.Background(), coopActor(), quoteID, UpdateInput{Notes: &notes})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for non-draft quote, got %v", err)
	}
}

func TestEffectiveStatus(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name  string
		quote models.Quote
		want  enums.QuoteStatus
	}{
		{"open and valid", models.Quote{Status: enums.QuoteStatusSent, ValidUntil: now.Add(time.Hour)}, enums.QuoteStatusSent},
		{"open and stale", models.Quote{Status: enums.QuoteStatusSent, ValidUntil: now.Add(-time.Hour)}, enums.QuoteStatusExpired},
		{"draft and stale", models.Quote{Status: enums.QuoteStatusDraft, ValidUntil: now.Add(-time.Hour)}, enums.QuoteStatusExpired},
		{"accepted survives expiry", models.Quote{Status: enums.QuoteStatusAccepted, ValidUntil: now.Add(-time.Hour)}, enums.QuoteStatusAccepted},
		{"rejected survives expiry", models.Quote{Status: enums.QuoteStatusRejected, ValidUntil: now.Add(-time.Hour)}, enums.QuoteStatusRejected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EffectiveStatus(&tc.quote, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestExportPayload(t *testing.T) {
	quoteID := uuid.New()
	company := testCompany()
	repo := &stubRepo{
		findFn: func(_ context.Context, _, _ uuid.UUID) (*models.Quote, error) {
			return &models.Quote{
				ID:             quoteID,
				Status:         enums.QuoteStatusSent,
				MarketID:       uuid.New(),
				MarketName:     "Mercado Central",
				TaxRatePercent: decimal.NewFromInt(10),
				SubtotalCents:  6450,
				TaxCents:       645,
				TotalCents:     7095,
				ValidUntil:     time.Now().Add(24 * time.Hour),
				Lines: []models.QuoteLine{{
					ProductName:    "Azeite Extra Virgem",
					Unit:           "un",
					UnitPriceCents: 1290,
					Quantity:       5,
					TotalCents:     6450,
				}},
			}, nil
		},
	}
	svc := newTestService(t, repo, &stubCatalog{}, &stubMarkets{}, &stubCompanies{company: company})

	payload, err := svc.Export(context.Background(), coopActor(), quoteID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if payload.CompanyName != company.Name {
		t.Fatalf("expected company name on the payload")
	}
	if payload.Subtotal != "64.50" || payload.Tax != "6.45" || payload.Total != "70.95" {
		t.Fatalf("unexpected money formatting: %s / %s / %s", payload.Subtotal, payload.Tax, payload.Total)
	}
	if payload.Currency != enums.CurrencyBRL {
		t.Fatalf("expected BRL currency, got %s", payload.Currency)
	}
	if len(payload.Lines) != 1 || payload.Lines[0].UnitPrice != "12.90" {
		t.Fatalf("unexpected export lines: %+v", payload.Lines)
	}
}
