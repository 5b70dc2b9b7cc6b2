package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/solemate/solemate-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID             uuid.UUID        `json:"id"`
	Slug           string           `json:"slug"`
	Title          string           `json:"title"`
	Brand          string           `json:"brand"`
	Color          string           `json:"color,omitempty"`
	Category       string           `json:"category"`
	Collection     string           `json:"collection,omitempty"`
	Description    string           `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
	Images         []string         `json:"images,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	Sizes          []string         `json:"sizes,omitempty"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:             product.ID,
		Slug:           product.Slug,
		Title:          product.Title,
		Brand:          product.Brand,
		Color:          product.Color,
		Category:       product.Category,
		Collection:     product.Collection,
		Description:    product.Description,
		Price:          product.Price,
		CompareAtPrice: product.CompareAtPrice,
		ImageURL:       product.ImageURL,
		Images:         append([]string{}, product.Images...),
		Tags:           append([]string{}, product.Tags...),
		Sizes:          append([]string{}, product.Sizes...),
		IsActive:       product.IsActive,
		CreatedAt:      product.CreatedAt,
		UpdatedAt:      product.UpdatedAt,
	}
}

// FilterDTO is an admin-managed storefront filter group.
type FilterDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Options  []string  `json:"options"`
	Position int       `json:"position"`
}

// NewFilterDTO builds a DTO from the persisted model.
func NewFilterDTO(filter *models.ProductFilter) FilterDTO {
	return FilterDTO{
		ID:       filter.ID,
		Name:     filter.Name,
		Label:    filter.Label,
		Options:  append([]string{}, filter.Options...),
		Position: filter.Position,
	}
}

// ProductListResult is one storefront page plus the next cursor.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}
