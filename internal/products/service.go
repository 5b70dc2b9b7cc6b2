package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/pagination"
)

// Service exposes catalog read paths and admin product management.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, idOrSlug string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	ListFilters(ctx context.Context) ([]FilterDTO, error)
	CreateFilter(ctx context.Context, input FilterInput) (*FilterDTO, error)
	UpdateFilter(ctx context.Context, filterID uuid.UUID, input FilterInput) (*FilterDTO, error)
	DeleteFilter(ctx context.Context, filterID uuid.UUID) error
}

// ListProductsInput holds storefront listing parameters.
type ListProductsInput struct {
	Category        string
	Collection      string
	Brand           string
	Color           string
	Size            string
	Search          string
	IncludeInactive bool
	Limit           int
	Cursor          string
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Slug           string
	Title          string
	Brand          string
	Color          string
	Category       string
	Collection     string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	ImageURL       string
	Images         []string
	Tags           []string
	Sizes          []string
	IsActive       bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Slug           *string
	Title          *string
	Brand          *string
	Color          *string
	Category       *string
	Collection     *string
	Description    *string
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	ImageURL       *string
	Images         *[]string
	Tags           *[]string
	Sizes          *[]string
	IsActive       *bool
}

// FilterInput carries filter group fields for create and update.
type FilterInput struct {
	Name     string
	Label    string
	Options  []string
	Position int
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// ListProducts returns one storefront page with a next cursor when more rows exist.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Limit)

	rows, err := s.repo.List(ctx, ListQuery{
		Category:        input.Category,
		Collection:      input.Collection,
		Brand:           input.Brand,
		Color:           input.Color,
		Size:            input.Size,
		Search:          input.Search,
		IncludeInactive: input.IncludeInactive,
		Limit:           limit + 1,
		Cursor:          cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}

	result := &ProductListResult{Products: make([]ProductDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}
	for i := range rows {
		result.Products = append(result.Products, *NewProductDTO(&rows[i]))
	}
	return result, nil
}

// GetProduct resolves a product by UUID first, then by slug.
func (s *service) GetProduct(ctx context.Context, idOrSlug string) (*ProductDTO, error) {
	value := strings.TrimSpace(idOrSlug)
	if value == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id or slug is required")
	}

	var (
		product *models.Product
		err     error
	)
	if id, parseErr := uuid.Parse(value); parseErr == nil {
		product, err = s.repo.FindByID(ctx, id)
	} else {
		product, err = s.repo.FindBySlug(ctx, value)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return NewProductDTO(product), nil
}

// CreateProduct inserts a catalog entry.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	product := &models.Product{
		Slug:           input.Slug,
		Title:          input.Title,
		Brand:          input.Brand,
		Color:          input.Color,
		Category:       input.Category,
		Collection:     input.Collection,
		Description:    input.Description,
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		ImageURL:       input.ImageURL,
		Images:         input.Images,
		Tags:           input.Tags,
		Sizes:          input.Sizes,
		IsActive:       input.IsActive,
	}
	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_slug", "products.slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies the provided fields and leaves the rest untouched.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if input.Slug != nil {
		if err := validateSlug(*input.Slug); err != nil {
			return nil, err
		}
		product.Slug = *input.Slug
	}
	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Color != nil {
		product.Color = *input.Color
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Collection != nil {
		product.Collection = *input.Collection
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		product.Price = *input.Price
	}
	if input.CompareAtPrice != nil {
		product.CompareAtPrice = input.CompareAtPrice
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.Images != nil {
		product.Images = *input.Images
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}
	if input.Sizes != nil {
		product.Sizes = *input.Sizes
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_slug", "products.slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct removes the catalog entry. Order line items keep their
// snapshot and survive via ON DELETE SET NULL.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// ListFilters returns the storefront filter groups in display order.
func (s *service) ListFilters(ctx context.Context) ([]FilterDTO, error) {
	rows, err := s.repo.ListFilters(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list filters")
	}
	filters := make([]FilterDTO, 0, len(rows))
	for i := range rows {
		filters = append(filters, NewFilterDTO(&rows[i]))
	}
	return filters, nil
}

// CreateFilter adds a filter group.
func (s *service) CreateFilter(ctx context.Context, input FilterInput) (*FilterDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	filter := &models.ProductFilter{
		Name:     strings.ToLower(strings.TrimSpace(input.Name)),
		Label:    input.Label,
		Options:  input.Options,
		Position: input.Position,
	}
	created, err := s.repo.CreateFilter(ctx, filter)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_product_filters_name", "product_filters.name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "filter name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert filter")
	}
	dto := NewFilterDTO(created)
	return &dto, nil
}

// UpdateFilter replaces the filter group's label, options, and position.
func (s *service) UpdateFilter(ctx context.Context, filterID uuid.UUID, input FilterInput) (*FilterDTO, error) {
	filter, err := s.repo.FindFilterByID(ctx, filterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "filter not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load filter")
	}

	if name := strings.ToLower(strings.TrimSpace(input.Name)); name != "" {
		filter.Name = name
	}
	if input.Label != "" {
		filter.Label = input.Label
	}
	if input.Options != nil {
		filter.Options = input.Options
	}
	filter.Position = input.Position

	updated, err := s.repo.UpdateFilter(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update filter")
	}
	dto := NewFilterDTO(updated)
	return &dto, nil
}

// DeleteFilter removes a filter group.
func (s *service) DeleteFilter(ctx context.Context, filterID uuid.UUID) error {
	if err := s.repo.DeleteFilter(ctx, filterID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete filter")
	}
	return nil
}

func validateSlug(slug string) error {
	if !slugRe.MatchString(slug) {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase kebab-case")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() || price.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	return nil
}
