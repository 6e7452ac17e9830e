package orders

import (
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/coopmercado/coopmercado-backend/pkg/money"
	"github.com/google/uuid"
)

// SubmitInput is the payload accepted when a draft is submitted as an order.
// Lines reference catalog products; prices are resolved server-side from the
// current snapshot, never trusted from the client.
type SubmitInput struct {
	MarketID uuid.UUID
	Notes    *string
	Lines    []LineInput
}

// LineInput selects a product and quantity.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID          uuid.UUID      `json:"id"`
	MarketID    uuid.UUID      `json:"market_id"`
	MarketName  string         `json:"market_name"`
	Status      string         `json:"status"`
	Lines       []OrderLineDTO `json:"lines"`
	TotalCents  int64          `json:"total_cents"`
	Total       string         `json:"total"`
	Notes       *string        `json:"notes,omitempty"`
	Version     int            `json:"version"`
	AllowedNext []string       `json:"allowed_next"`
	ConfirmedAt *time.Time     `json:"confirmed_at,omitempty"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// OrderLineDTO is the API shape of one order line.
type OrderLineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Unit           string    `json:"unit"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	Quantity       int       `json:"quantity"`
	TotalCents     int64     `json:"total_cents"`
	Total          string    `json:"total"`
}

// OrderPageDTO is a page of orders plus the next cursor.
type OrderPageDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToPageDTO converts a repository page to its API shape.
func ToPageDTO(page *OrderPage) OrderPageDTO {
	out := OrderPageDTO{
		Orders:     make([]OrderDTO, 0, len(page.Orders)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Orders {
		out.Orders = append(out.Orders, ToDTO(&page.Orders[i]))
	}
	return out
}

// AllowedTransitions lists the statuses an order may move to from the given
// status. Cancellation is only offered from pending.
func AllowedTransitions(status enums.OrderStatus) []enums.OrderStatus {
	var out []enums.OrderStatus
	if next, ok := status.Next(); ok {
		out = append(out, next)
	}
	if status == enums.OrderStatusPending {
		out = append(out, enums.OrderStatusCancelled)
	}
	return out
}

// ToDTO converts an order model to its API shape.
func ToDTO(order *models.Order) OrderDTO {
	lines := make([]OrderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, OrderLineDTO{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Unit:           line.Unit,
			UnitPriceCents: line.UnitPriceCents,
			UnitPrice:      money.Format(line.UnitPriceCents),
			Quantity:       line.Quantity,
			TotalCents:     line.TotalCents,
			Total:          money.Format(line.TotalCents),
		})
	}

	allowed := AllowedTransitions(order.Status)
	next := make([]string, 0, len(allowed))
	for _, status := range allowed {
		next = append(next, status.String())
	}

	return OrderDTO{
		ID:          order.ID,
		MarketID:    order.MarketID,
		MarketName:  order.MarketName,
		Status:      order.Status.String(),
		Lines:       lines,
		TotalCents:  order.TotalCents,
		Total:       money.Format(order.TotalCents),
		Notes:       order.Notes,
		Version:     order.Version,
		AllowedNext: next,
		ConfirmedAt: order.ConfirmedAt,
		DeliveredAt: order.DeliveredAt,
		CancelledAt: order.CancelledAt,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
