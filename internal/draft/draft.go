// Package draft implements the in-memory line builder shared by orders and
// quotes. A draft accumulates product lines before anything is persisted, so
// callers can add, adjust and remove lines freely and read consistent totals
// at any point.
package draft

import (
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is the product snapshot captured when a line is added. Prices are
// copied onto the line so later catalog edits do not move a draft's totals.
type Item struct {
	ProductID      uuid.UUID
	ProductName    string
	Unit           string
	UnitPriceCents int64
}

// Line is one product entry in a draft.
type Line struct {
	Item
	Quantity int
}

// TotalCents returns the line total, unit price times quantity.
func (l Line) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Draft accumulates lines keyed by product. Lines keep insertion order.
type Draft struct {
	lines []Line
	index map[uuid.UUID]int
}

// New returns an empty draft.
func New() *Draft {
	return &Draft{index: map[uuid.UUID]int{}}
}

// AddLine adds one unit of the product, or increments the quantity when the
// product is already in the draft.
func (d *Draft) AddLine(item Item) error {
	return d.AddLineQty(item, 1)
}

// AddLineQty adds qty units of the product, merging into an existing line for
// the same product.
func (d *Draft) AddLineQty(item Item, qty int) error {
	if item.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if item.UnitPriceCents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if pos, ok := d.index[item.ProductID]; ok {
		d.lines[pos].Quantity += qty
		return nil
	}
	d.index[item.ProductID] = len(d.lines)
	d.lines = append(d.lines, Line{Item: item, Quantity: qty})
	return nil
}

// SetQuantity replaces the quantity for the product's line. A quantity of
// zero or below removes the line. Unknown products are ignored.
func (d *Draft) SetQuantity(productID uuid.UUID, qty int) {
	pos, ok := d.index[productID]
	if !ok {
		return
	}
	if qty <= 0 {
		d.removeAt(productID, pos)
		return
	}
	d.lines[pos].Quantity = qty
}

// RemoveLine drops the product's line. Removing a product that is not in the
// draft is a no-op.
func (d *Draft) RemoveLine(productID uuid.UUID) {
	pos, ok := d.index[productID]
	if !ok {
		return
	}
	d.removeAt(productID, pos)
}

func (d *Draft) removeAt(productID uuid.UUID, pos int) {
	d.lines = append(d.lines[:pos], d.lines[pos+1:]...)
	delete(d.index, productID)
	for i := pos; i < len(d.lines); i++ {
		d.index[d.lines[i].ProductID] = i
	}
}

// Lines returns a copy of the draft's lines in insertion order.
func (d *Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// Len reports how many distinct product lines the draft holds.
func (d *Draft) Len() int {
	return len(d.lines)
}

// TotalCents returns the sum of all line totals.
func (d *Draft) TotalCents() int64 {
	var total int64
	for _, line := range d.lines {
		total += line.TotalCents()
	}
	return total
}

// Breakdown is the priced summary of a draft once a tax rate is applied.
type Breakdown struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// PriceWithTax computes the subtotal, tax and grand total for the draft at
// the given percentage rate. Tax rounds half up on the subtotal.
func (d *Draft) PriceWithTax(ratePercent decimal.Decimal) (Breakdown, error) {
	if ratePercent.IsNegative() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
	}
	subtotal := d.TotalCents()
	tax := money.TaxAmount(subtotal, ratePercent)
	return Breakdown{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}, nil
}
