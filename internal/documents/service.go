package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coopmercado/coopmercado-backend/internal/policy"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionName is the live feed collection documents publish under.
const CollectionName = "documents"

type snapshotPublisher interface {
	Publish(ctx context.Context, companyID uuid.UUID, collection string)
}

// Service exposes document metadata operations. Uploads happen against the
// storage collaborator first; this side records the pointer.
type Service interface {
	Register(ctx context.Context, actor policy.Actor, input RegisterInput) (*models.Document, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Document, error)
	List(ctx context.Context, actor policy.Actor, params pagination.Params) (*DocumentPage, error)
}

// RegisterInput carries the metadata for an uploaded document.
type RegisterInput struct {
	Name      string
	Type      enums.DocumentType
	URL       string
	SizeBytes int64
	MarketID  *uuid.UUID
	OrderID   *uuid.UUID
}

type service struct {
	repo Repository
	feed snapshotPublisher
}

// NewService builds a documents service backed by the provided repository.
func NewService(repo Repository, feed snapshotPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	return &service{repo: repo, feed: feed}, nil
}

func (s *service) Register(ctx context.Context, actor policy.Actor, input RegisterInput) (*models.Document, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document name is required")
	}
	if strings.TrimSpace(input.URL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document url is required")
	}
	if input.Type == "" {
		input.Type = enums.DocumentTypeOther
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown document type")
	}
	if input.SizeBytes < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size cannot be negative")
	}
	// Market users file documents under their own market only.
	if !actor.SeesAllMarkets() {
		if actor.MarketID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not bound to a market")
		}
		input.MarketID = actor.MarketID
	}

	doc := &models.Document{
		CompanyID:        actor.CompanyID,
		Name:             input.Name,
		Type:             input.Type,
		URL:              input.URL,
		SizeBytes:        input.SizeBytes,
		UploadedByUserID: actor.ID,
		MarketID:         input.MarketID,
		OrderID:          input.OrderID,
	}
	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create document")
	}
	s.publish(ctx, actor.CompanyID)
	return created, nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	doc, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	// Uploaders delete their own documents; admins delete any.
	if doc.UploadedByUserID != actor.ID {
		switch actor.Role {
		case enums.RoleSuperAdmin, enums.RoleCompanyAdmin:
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete another user's document")
		}
	}
	if err := s.repo.Delete(ctx, actor.CompanyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete document")
	}
	s.publish(ctx, actor.CompanyID)
	return nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Document, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document id is required")
	}
	doc, err := s.repo.FindByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load document")
	}
	if !actor.SeesAllMarkets() {
		if doc.MarketID == nil || actor.MarketID == nil || *doc.MarketID != *actor.MarketID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
	}
	return doc, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, params pagination.Params) (*DocumentPage, error) {
	if !actor.SeesAllMarkets() && actor.MarketID == nil {
		return &DocumentPage{Documents: []models.Document{}}, nil
	}
	page, err := s.repo.List(ctx, actor.CompanyID, actor.MarketFilter(), params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list documents")
	}
	return page, nil
}

func (s *service) publish(ctx context.Context, companyID uuid.UUID) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ctx, companyID, CollectionName)
}
