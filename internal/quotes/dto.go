package quotes

import (
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/enums"
	"github.com/coopmercado/coopmercado-backend/pkg/money"
	"github.com/google/uuid"
)

// CreateInput is the payload accepted when a quote draft is created. Lines
// reference catalog products and are re-priced server-side. TaxRatePercent
// is a decimal string; when nil the tenant's default rate applies.
type CreateInput struct {
	MarketID       uuid.UUID
	TaxRatePercent *string
	ValidUntil     time.Time
	Notes          *string
	Terms          *string
	Lines          []LineInput
}

// UpdateInput carries the editable fields of a draft quote. Nil fields keep
// their current value; Lines always replaces the full line set.
type UpdateInput struct {
	TaxRatePercent *string
	ValidUntil     *time.Time
	Notes          *string
	Terms          *string
	Lines          []LineInput
}

// LineInput selects a product and quantity.
type LineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// QuoteDTO is the API shape of a quote. Status reflects the time-triggered
// expiry, so an open quote past its validity reads as expired even before
// the persistence sweep runs.
type QuoteDTO struct {
	ID             uuid.UUID      `json:"id"`
	MarketID       uuid.UUID      `json:"market_id"`
	MarketName     string         `json:"market_name"`
	Status         string         `json:"status"`
	TaxRatePercent string         `json:"tax_rate_percent"`
	Lines          []QuoteLineDTO `json:"lines"`
	SubtotalCents  int64          `json:"subtotal_cents"`
	Subtotal       string         `json:"subtotal"`
	TaxCents       int64          `json:"tax_cents"`
	Tax            string         `json:"tax"`
	TotalCents     int64          `json:"total_cents"`
	Total          string         `json:"total"`
	ValidUntil     time.Time      `json:"valid_until"`
	Notes          *string        `json:"notes,omitempty"`
	Terms          *string        `json:"terms,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// QuoteLineDTO is the API shape of one quote line.
type QuoteLineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Unit           string    `json:"unit"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	Quantity       int       `json:"quantity"`
	TotalCents     int64     `json:"total_cents"`
	Total          string    `json:"total"`
}

// QuotePageDTO is a page of quotes plus the next cursor.
type QuotePageDTO struct {
	Quotes     []QuoteDTO `json:"quotes"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToPageDTO converts a repository page to its API shape.
func ToPageDTO(page *QuotePage, now time.Time) QuotePageDTO {
	out := QuotePageDTO{
		Quotes:     make([]QuoteDTO, 0, len(page.Quotes)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Quotes {
		out.Quotes = append(out.Quotes, ToDTO(&page.Quotes[i], now))
	}
	return out
}

// ExportPayload is the flat structure handed to the document renderer. The
// renderer owns layout; this side owns the numbers.
type ExportPayload struct {
	QuoteID     uuid.UUID      `json:"quote_id"`
	CompanyName string         `json:"company_name"`
	LogoURL     *string        `json:"logo_url,omitempty"`
	MarketName  string         `json:"market_name"`
	Lines       []ExportLine   `json:"lines"`
	Subtotal    string         `json:"subtotal"`
	TaxRate     string         `json:"tax_rate"`
	Tax         string         `json:"tax"`
	Total       string         `json:"total"`
	Currency    enums.Currency `json:"currency"`
	ValidUntil  time.Time      `json:"valid_until"`
	Notes       *string        `json:"notes,omitempty"`
	Terms       *string        `json:"terms,omitempty"`
	IssuedAt    time.Time      `json:"issued_at"`
}

// ExportLine is one rendered quote line.
type ExportLine struct {
	ProductName string `json:"product_name"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	Total       string `json:"total"`
}

// EffectiveStatus applies the read-time expiry rule: an open quote past its
// validity date reads as expired, while accepted and rejected outcomes are
// kept.
func EffectiveStatus(quote *models.Quote, now time.Time) enums.QuoteStatus {
	if quote.Status.IsTerminal() {
		return quote.Status
	}
	if now.After(quote.ValidUntil) {
		return enums.QuoteStatusExpired
	}
	return quote.Status
}

// ToDTO converts a quote model to its API shape as of the given time.
func ToDTO(quote *models.Quote, now time.Time) QuoteDTO {
	lines := make([]QuoteLineDTO, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		lines = append(lines, QuoteLineDTO{
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

	return QuoteDTO{
		ID:             quote.ID,
		MarketID:       quote.MarketID,
		MarketName:     quote.MarketName,
		Status:         EffectiveStatus(quote, now).String(),
		TaxRatePercent: quote.TaxRatePercent.StringFixed(2),
		Lines:          lines,
		SubtotalCents:  quote.SubtotalCents,
		Subtotal:       money.Format(quote.SubtotalCents),
		TaxCents:       quote.TaxCents,
		Tax:            money.Format(quote.TaxCents),
		TotalCents:     quote.TotalCents,
		Total:          money.Format(quote.TotalCents),
		ValidUntil:     quote.ValidUntil,
		Notes:          quote.Notes,
		Terms:          quote.Terms,
		CreatedAt:      quote.CreatedAt,
		UpdatedAt:      quote.UpdatedAt,
	}
}
