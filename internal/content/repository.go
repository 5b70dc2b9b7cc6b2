package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
)

// Repository persists homepage sections.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns the storefront-visible sections in display order.
func (r *Repository) ListActive(ctx context.Context) ([]models.HomepageSection, error) {
	var rows []models.HomepageSection
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListAll returns every section for the admin console.
func (r *Repository) ListAll(ctx context.Context) ([]models.HomepageSection, error) {
	var rows []models.HomepageSection
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.HomepageSection, error) {
	var section models.HomepageSection
	if err := r.db.WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *Repository) Create(ctx context.Context, section *models.HomepageSection) (*models.HomepageSection, error) {
	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		return nil, err
	}
	return section, nil
}

func (r *Repository) Update(ctx context.Context, section *models.HomepageSection) (*models.HomepageSection, error) {
	if err := r.db.WithContext(ctx).Save(section).Error; err != nil {
		return nil, err
	}
	return section, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.HomepageSection{}).Error
}
