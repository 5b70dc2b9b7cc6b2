package discount

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/solemate/solemate-backend/pkg/db/models"
)

// Repository persists redeemable codes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Create(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

func (r *Repository) Update(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Save(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Discount{}).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// FindByCode looks a code up case-insensitively.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Discount, error) {
	var discount models.Discount
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// FindByCodeForUpdateTx locks the row inside the caller's transaction so a
// concurrent redemption cannot double-draw a gift card.
func (r *Repository) FindByCodeForUpdateTx(ctx context.Context, tx *gorm.DB, code string) (*models.Discount, error) {
	if tx == nil {
		return nil, fmt.Errorf("discount lock requires a transaction")
	}
	q := tx.WithContext(ctx)
	// sqlite (tests) has no row locks; its writes are serialized anyway.
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var discount models.Discount
	err := q.
		Where("LOWER(code) = ?", strings.ToLower(strings.TrimSpace(code))).
		First(&discount).Error
	if err != nil {
		return nil, err
	}
	return &discount, nil
}

// SaveTx writes a mutated discount row inside the caller's transaction.
func (r *Repository) SaveTx(ctx context.Context, tx *gorm.DB, discount *models.Discount) error {
	if tx == nil {
		return fmt.Errorf("discount save requires a transaction")
	}
	return tx.WithContext(ctx).Save(discount).Error
}

func (r *Repository) List(ctx context.Context) ([]models.Discount, error) {
	var rows []models.Discount
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error
	return rows, err
}
