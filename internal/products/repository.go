package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/pagination"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListQuery holds the storefront listing filters.
type ListQuery struct {
	Category        string
	Collection      string
	Brand           string
	Color           string
	Size            string
	Search          string
	IncludeInactive bool
	Limit           int
	Cursor          *pagination.Cursor
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// FindByID loads the product by primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads the product by its storefront slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads many products at once, used by checkout to snapshot prices.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	if len(ids) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

// List returns one storefront page ordered newest-first with keyset pagination.
func (r *Repository) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{})

	if !query.IncludeInactive {
		tx = tx.Where("is_active = ?", true)
	}
	if query.Category != "" {
		tx = tx.Where("category = ?", query.Category)
	}
	if query.Collection != "" {
		tx = tx.Where("collection = ?", query.Collection)
	}
	if query.Brand != "" {
		tx = tx.Where("brand = ?", query.Brand)
	}
	if query.Color != "" {
		tx = tx.Where("color = ?", query.Color)
	}
	if query.Size != "" {
		// Sizes are stored as a JSON array of strings.
		tx = tx.Where("sizes LIKE ?", "%\""+query.Size+"\"%")
	}
	if term := strings.TrimSpace(query.Search); term != "" {
		needle := "%" + strings.ToLower(term) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(description) LIKE ?", needle, needle, needle)
	}
	if query.Cursor != nil {
		tx = tx.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var rows []models.Product
	err := tx.Order("created_at DESC").
		Order("id DESC").
		Limit(query.Limit).
		Find(&rows).Error
	return rows, err
}

// CreateFilter inserts a filter group.
func (r *Repository) CreateFilter(ctx context.Context, filter *models.ProductFilter) (*models.ProductFilter, error) {
	if err := r.db.WithContext(ctx).Create(filter).Error; err != nil {
		return nil, err
	}
	return filter, nil
}

// UpdateFilter saves filter mutations.
func (r *Repository) UpdateFilter(ctx context.Context, filter *models.ProductFilter) (*models.ProductFilter, error) {
	if err := r.db.WithContext(ctx).Save(filter).Error; err != nil {
		return nil, err
	}
	return filter, nil
}

// DeleteFilter removes a filter group by ID.
func (r *Repository) DeleteFilter(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductFilter{}).Error
}

// FindFilterByID loads one filter group.
func (r *Repository) FindFilterByID(ctx context.Context, id uuid.UUID) (*models.ProductFilter, error) {
	var filter models.ProductFilter
	if err := r.db.WithContext(ctx).First(&filter, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &filter, nil
}

// ListFilters returns all filter groups in display order.
func (r *Repository) ListFilters(ctx context.Context) ([]models.ProductFilter, error) {
	var rows []models.ProductFilter
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}
