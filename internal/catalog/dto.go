package catalog

import (
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/db/models"
	"github.com/coopmercado/coopmercado-backend/pkg/money"
	"github.com/google/uuid"
)

// ProductDTO is the API shape of a catalog product.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	Unit        string    `json:"unit"`
	Stock       int       `json:"stock"`
	Description string    `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductPageDTO is a page of products plus the next cursor.
type ProductPageDTO struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// ToDTO converts a product model to its API shape.
func ToDTO(product *models.Product) ProductDTO {
	return ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Category:    product.Category,
		PriceCents:  product.PriceCents,
		Price:       money.Format(product.PriceCents),
		Unit:        product.Unit,
		Stock:       product.Stock,
		Description: product.Description,
		ImageURL:    product.ImageURL,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// ToPageDTO converts a repository page to its API shape.
func ToPageDTO(page *ProductPage) ProductPageDTO {
	out := ProductPageDTO{
		Products:   make([]ProductDTO, 0, len(page.Products)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Products {
		out.Products = append(out.Products, ToDTO(&page.Products[i]))
	}
	return out
}
