package documents

import (
	"context"
	"testing"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
)

type stubRepo struct {
	Repository
	created *models.Document
	deleted []uuid.UUID
	findFn  func(ctx context.Context, companyID, id uuid.UUID) (*models.Document, error)
	listFn  func(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params) (*DocumentPage, error)
}

func (s *stubRepo) Create(_ context.Context, doc *models.Document) (*models.Document, error) {
	s.created = doc
	return doc, nil
}

func (s *stubRepo) Delete(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubRepo) FindByID(ctx context.Context, companyID, id uuid.UUID) (*models.Document, error) {
	return s.findFn(ctx, companyID, id)
}

func (s *stubRepo) List(ctx context.Context, companyID uuid.UUID, marketID *uuid.UUID, params pagination.Params) (*DocumentPage, error) {
	return s.listFn(ctx, companyID, marketID, params)
}

type stubFeed struct {
	collections []string
}

func (s *stubFeed) Publish(_ context.Context, _ uuid.UUID, collection string) {
	s.collections = append(s.collections, collection)
}

func adminActor() policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: enums.RoleCompanyAdmin, CompanyID: uuid.New()}
}

func TestRegisterDocument(t *testing.T) {
	repo := &stubRepo{}
	feed := &stubFeed{}
	svc, err := NewService(repo, feed)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	actor := adminActor()
	doc, err := svc.Register(context.Background(), actor, RegisterInput{
		Name:      "nota-fiscal-0042.pdf",
		Type:      enums.DocumentTypeInvoice,
		URL:       "https://storage.example.com/docs/nota-fiscal-0042.pdf",
		SizeBytes: 48213,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if doc.CompanyID != actor.CompanyID {
		t.Fatalf("expected tenant scoping")
	}
	if doc.UploadedByUserID != actor.ID {
		t.Fatalf("expected uploader to be the actor")
	}
	if repo.created == nil {
		t.Fatalf("expected repository create call")
	}
	if len(feed.collections) != 1 || feed.collections[0] != CollectionName {
		t.Fatalf("expected feed publish on %q, got %v", CollectionName, feed.collections)
	}
}

func TestRegisterDocumentValidation(t *testing.T) {
	svc, err := NewService(&stubRepo{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{URL: "https://x"}},
		{"missing url", RegisterInput{Name: "a.pdf"}},
		{"unknown type", RegisterInput{Name: "a.pdf", URL: "https://x", Type: "spreadsheet"}},
		{"negative size", RegisterInput{Name: "a.pdf", URL: "https://x", SizeBytes: -1}},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), adminActor(), tc.input); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestRegisterDocumentDefaultsTypeOther(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	doc, err := svc.Register(context.Background(), adminActor(), RegisterInput{Name: "a.pdf", URL: "https://x"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if doc.Type != enums.DocumentTypeOther {
		t.Fatalf("expected default type other, got %s", doc.Type)
	}
}

func TestRegisterDocumentMarketActorBoundToOwnMarket(t *testing.T) {
	repo := &stubRepo{}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ownID := uuid.New()
	foreignID := uuid.New()
	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: uuid.New(), MarketID: &ownID}

	doc, err := svc.Register(context.Background(), actor, RegisterInput{
		Name:     "pedido.pdf",
		URL:      "https://x",
		MarketID: &foreignID,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if doc.MarketID == nil || *doc.MarketID != ownID {
		t.Fatalf("expected document pinned to the actor's market")
	}

	unbound := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: actor.CompanyID}
	if _, err := svc.Register(context.Background(), unbound, RegisterInput{Name: "x", URL: "https://x"}); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for unbound market actor, got %v", err)
	}
}

func TestGetDocumentHiddenAcrossMarkets(t *testing.T) {
	ownID := uuid.New()
	foreignID := uuid.New()
	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: uuid.New(), MarketID: &ownID}

	cases := []struct {
		name     string
		marketID *uuid.UUID
	}{
		{"foreign market", &foreignID},
		{"tenant level", nil},
	}
	for _, tc := range cases {
		repo := &stubRepo{
			findFn: func(_ context.Context, _, id uuid.UUID) (*models.Document, error) {
				return &models.Document{ID: id, CompanyID: actor.CompanyID, MarketID: tc.marketID}, nil
			},
		}
		svc, err := NewService(repo, nil)
		if err != nil {
			t.Fatalf("new service: %v", err)
		}
		if _, err := svc.Get(context.Background(), actor, uuid.New()); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
			t.Fatalf("%s: expected not found, got %v", tc.name, err)
		}
	}
}

func TestDeleteDocumentOwnership(t *testing.T) {
	uploader := uuid.New()
	repo := &stubRepo{
		findFn: func(_ context.Context, companyID, id uuid.UUID) (*models.Document, error) {
			return &models.Document{ID: id, CompanyID: companyID, UploadedByUserID: uploader}, nil
		},
	}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	companyID := uuid.New()
	coop := policy.Actor{ID: uuid.New(), Role: enums.RoleCooperative, CompanyID: companyID}
	if err := svc.Delete(context.Background(), coop, uuid.New()); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-uploader cooperative, got %v", err)
	}

	owner := policy.Actor{ID: uploader, Role: enums.RoleCooperative, CompanyID: companyID}
	if err := svc.Delete(context.Background(), owner, uuid.New()); err != nil {
		t.Fatalf("uploader delete: %v", err)
	}

	admin := policy.Actor{ID: uuid.New(), Role: enums.RoleCompanyAdmin, CompanyID: companyID}
	if err := svc.Delete(context.Background(), admin, uuid.New()); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(repo.deleted) != 2 {
		t.Fatalf("expected two repository deletes, got %d", len(repo.deleted))
	}
}

func TestListDocumentsScoping(t *testing.T) {
	var gotFilter *uuid.UUID
	repo := &stubRepo{
		listFn: func(_ context.Context, _ uuid.UUID, marketID *uuid.UUID, _ pagination.Params) (*DocumentPage, error) {
			gotFilter = marketID
			return &DocumentPage{Documents: []models.Document{}}, nil
		},
	}
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.List(context.Background(), adminActor(), pagination.Params{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotFilter != nil {
		t.Fatalf("expected no market filter for admin")
	}

	ownID := uuid.New()
	actor := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: uuid.New(), MarketID: &ownID}
	if _, err := svc.List(context.Background(), actor, pagination.Params{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotFilter == nil || *gotFilter != ownID {
		t.Fatalf("expected market filter for market actor")
	}

	gotFilter = nil
	unbound := policy.Actor{ID: uuid.New(), Role: enums.RoleMarket, CompanyID: uuid.New()}
	page, err := svc.List(context.Background(), unbound, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Documents) != 0 {
		t.Fatalf("expected empty page for unbound market actor")
	}
}
