package orders

import (
	"context"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type marketLoader interface {
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*models.Market, error)
}

// snapshotPublisher pushes the refreshed collection snapshot to live
// subscribers after a write. Publishing is best-effort.
type snapshotPublisher interface {
	Publish(ctx context.Context, companyID uuid.UUID, collection string)
}
