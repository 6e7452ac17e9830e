package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coopmercado/coopmercado-backend/internal/documents"
	"github.com/coopmercado/coopmercado-backend/internal/markets"
	"github.com/coopmercado/coopmercado-backend/internal/orders"
	"github.com/coopmercado/coopmercado-backend/internal/quotes"
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
	"github.com/google/uuid"
)

// Collections carried over the live feed.
const (
	CollectionOrders    = orders.CollectionName
	CollectionQuotes    = quotes.CollectionName
	CollectionMarkets   = markets.CollectionName
	CollectionDocuments = documents.CollectionName
)

type channelPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
	FeedChannel(companyID, collection string) string
}

type orderSource interface {
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Order, error)
}

type quoteSource interface {
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Quote, error)
}

type marketSource interface {
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Market, error)
}

type documentSource interface {
	ListAll(ctx context.Context, companyID uuid.UUID) ([]models.Document, error)
}

// Snapshot is the wire envelope published per tenant collection. Consumers
// replace their local copy wholesale; there is no delta protocol.
type Snapshot struct {
	Collection string          `json:"collection"`
	CompanyID  uuid.UUID       `json:"companyId"`
	EmittedAt  time.Time       `json:"emittedAt"`
	Items      json.RawMessage `json:"items"`
}

// Feed pushes full-collection snapshots onto the tenant pub/sub channels
// whenever a write path reports a change.
type Feed struct {
	broker    channelPublisher
	orders    orderSource
	quotes    quoteSource
	markets   marketSource
	documents documentSource
	logg      *logger.Logger
	now       func() time.Time
}

// NewFeed wires the snapshot feed. All sources are required; a service that
// does not want live updates passes a nil Feed to its constructor instead.
func NewFeed(
	broker channelPublisher,
	orderSrc orderSource,
	quoteSrc quoteSource,
	marketSrc marketSource,
	documentSrc documentSource,
	logg *logger.Logger,
) (*Feed, error) {
	if broker == nil {
		return nil, fmt.Errorf("feed broker required")
	}
	if orderSrc == nil || quoteSrc == nil || marketSrc == nil || documentSrc == nil {
		return nil, fmt.Errorf("feed collection sources required")
	}
	if logg == nil {
		return nil, fmt.Errorf("feed logger required")
	}
	return &Feed{
		broker:    broker,
		orders:    orderSrc,
		quotes:    quoteSrc,
		markets:   marketSrc,
		documents: documentSrc,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Publish loads the named collection for the tenant and pushes a snapshot.
// Failures are logged and swallowed: the feed is advisory, writes that
// triggered it have already committed.
func (f *Feed) Publish(ctx context.Context, companyID uuid.UUID, collection string) {
	items, err := f.loadCollection(ctx, companyID, collection)
	if err != nil {
		ctx = f.logg.WithFields(ctx, map[string]any{
			"company_id": companyID.String(),
			"collection": collection,
		})
		f.logg.Error(ctx, "live feed snapshot load failed", err)
		return
	}

	snapshot := Snapshot{
		Collection: collection,
		CompanyID:  companyID,
		EmittedAt:  f.now().UTC(),
		Items:      items,
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		f.logg.Error(ctx, "live feed snapshot marshal failed", err)
		return
	}

	channel := f.broker.FeedChannel(companyID.String(), collection)
	if err := f.broker.Publish(ctx, channel, payload); err != nil {
		ctx = f.logg.WithField(ctx, "channel", channel)
		f.logg.Error(ctx, "live feed publish failed", err)
	}
}

func (f *Feed) loadCollection(ctx context.Context, companyID uuid.UUID, collection string) (json.RawMessage, error) {
	now := f.now()
	switch collection {
	case CollectionOrders:
		records, err := f.orders.ListAll(ctx, companyID)
		if err != nil {
			return nil, err
		}
		dtos := make([]orders.OrderDTO, 0, len(records))
		for i := range records {
			dtos = append(dtos, orders.ToDTO(&records[i]))
		}
		return json.Marshal(dtos)
	case CollectionQuotes:
		records, err := f.quotes.ListAll(ctx, companyID)
		if err != nil {
			return nil, err
		}
		dtos := make([]quotes.QuoteDTO, 0, len(records))
		for i := range records {
			dtos = append(dtos, quotes.ToDTO(&records[i], now))
		}
		return json.Marshal(dtos)
	case CollectionMarkets:
		records, err := f.markets.ListAll(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(markets.ToDTOs(records))
	case CollectionDocuments:
		records, err := f.documents.ListAll(ctx, companyID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(documents.ToDTOs(records))
	default:
		return nil, fmt.Errorf("unknown feed collection %q", collection)
	}
}
