package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
)

// Repository persists payment rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts a payment inside the caller's transaction. The unique
// index on order_id backstops the caller's check-then-insert.
func (r *Repository) CreateTx(ctx context.Context, tx *gorm.DB, row *models.Payment) error {
	if tx == nil {
		return fmt.Errorf("payment create requires a transaction")
	}
	return tx.WithContext(ctx).Create(row).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var row models.Payment
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByIDTx reloads the payment inside a mutation transaction.
func (r *Repository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Payment, error) {
	if tx == nil {
		return nil, fmt.Errorf("payment load requires a transaction")
	}
	var row models.Payment
	if err := tx.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	var row models.Payment
	if err := r.db.WithContext(ctx).First(&row, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) FindByOrderIDTx(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*models.Payment, error) {
	if tx == nil {
		return nil, fmt.Errorf("payment load requires a transaction")
	}
	var row models.Payment
	if err := tx.WithContext(ctx).First(&row, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// SaveTx writes a mutated payment inside the caller's transaction.
func (r *Repository) SaveTx(ctx context.Context, tx *gorm.DB, row *models.Payment) error {
	if tx == nil {
		return fmt.Errorf("payment save requires a transaction")
	}
	return tx.WithContext(ctx).Save(row).Error
}

// ListPendingByUser returns the user's unsettled payments, newest first.
func (r *Repository) ListPendingByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status IN ?", []enums.PaymentStatus{enums.PaymentStatusPending, enums.PaymentStatusPartial}).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// List returns payments newest first, filtered by exact status when given,
// truncated to limit after filtering.
func (r *Repository) List(ctx context.Context, status enums.PaymentStatus, limit int) ([]models.Payment, error) {
	q := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Payment
	err := q.Find(&rows).Error
	return rows, err
}
