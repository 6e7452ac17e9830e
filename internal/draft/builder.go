package draft

import (
	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CatalogSource supplies the product snapshot a builder prices lines from.
// Implementations are injected so tests can use a fixed in-memory catalog.
type CatalogSource interface {
	Product(productID uuid.UUID) (*models.Product, bool)
}

// SnapshotSource is a CatalogSource over a fixed slice of products.
type SnapshotSource map[uuid.UUID]*models.Product

// NewSnapshotSource indexes the given products by id.
func NewSnapshotSource(products []models.Product) SnapshotSource {
	src := make(SnapshotSource, len(products))
	for i := range products {
		src[products[i].ID] = &products[i]
	}
	return src
}

// Product implements CatalogSource.
func (s SnapshotSource) Product(productID uuid.UUID) (*models.Product, bool) {
	p, ok := s[productID]
	return p, ok
}

// Builder assembles a draft against a catalog snapshot. Line prices are
// copied from the catalog at add time and never re-read.
type Builder struct {
	source CatalogSource
	draft  *Draft
}

// NewBuilder returns a builder over the given catalog source.
func NewBuilder(source CatalogSource) *Builder {
	return &Builder{source: source, draft: New()}
}

// AddLine adds one unit of the product, merging into an existing line. An
// unknown or inactive product is skipped without error, matching how a stale
// snapshot entry should behave. Returns whether a line was added.
func (b *Builder) AddLine(productID uuid.UUID) bool {
	product, ok := b.source.Product(productID)
	if !ok || !product.IsActive {
		return false
	}
	if pos, exists := b.draft.index[productID]; exists {
		if b.draft.lines[pos].Quantity >= product.Stock {
			return false
		}
	}
	err := b.draft.AddLine(Item{
		ProductID:      product.ID,
		ProductName:    product.Name,
		Unit:           product.Unit,
		UnitPriceCents: product.PriceCents,
	})
	return err == nil
}

// SetQuantity replaces a line's quantity as typed. The stock ceiling is
// enforced at submission against the current catalog, never by silently
// rewriting the buyer's input. A quantity of zero or below removes the line.
func (b *Builder) SetQuantity(productID uuid.UUID, qty int) {
	b.draft.SetQuantity(productID, qty)
}

// RemoveLine drops the product's line, silently when absent.
func (b *Builder) RemoveLine(productID uuid.UUID) {
	b.draft.RemoveLine(productID)
}

// Draft exposes the underlying draft for pricing and submission.
func (b *Builder) Draft() *Draft {
	return b.draft
}
