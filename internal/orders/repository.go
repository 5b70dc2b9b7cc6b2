package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
)

// firstOrderNumber matches the start of the order_number_seq sequence.
const firstOrderNumber = 1001

// Repository persists orders and their line items.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NextOrderNumberTx draws the next customer-facing order number inside the
// caller's transaction.
func (r *Repository) NextOrderNumberTx(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("order number draw requires a transaction")
	}
	if tx.Dialector.Name() == "postgres" {
		var n int64
		if err := tx.WithContext(ctx).Raw("SELECT nextval('order_number_seq')").Scan(&n).Error; err != nil {
			return 0, err
		}
		return n, nil
	}
	// sqlite tests have no sequences; MAX+1 is safe under its single writer.
	var max *int64
	err := tx.WithContext(ctx).
		Model(&models.Order{}).
		Select("MAX(order_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil || *max < firstOrderNumber {
		return firstOrderNumber, nil
	}
	return *max + 1, nil
}

// CreateTx inserts the order with its line items in the caller's transaction.
func (r *Repository) CreateTx(ctx context.Context, tx *gorm.DB, row *models.Order) error {
	if tx == nil {
		return fmt.Errorf("order create requires a transaction")
	}
	return tx.WithContext(ctx).Create(row).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var row models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) FindByNumber(ctx context.Context, number int64) (*models.Order, error) {
	var row models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		First(&row, "order_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByUser returns a customer's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// AdminListQuery narrows the admin order listing.
type AdminListQuery struct {
	FinancialStatus   enums.FinancialStatus
	FulfillmentStatus enums.FulfillmentStatus
	Limit             int
	CursorCreatedAt   time.Time
	CursorID          uuid.UUID
}

// AdminList pages every order by keyset on (created_at, id) descending.
func (r *Repository) AdminList(ctx context.Context, query AdminListQuery) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC").
		Order("id DESC").
		Limit(query.Limit)

	if query.FinancialStatus != "" {
		q = q.Where("financial_status = ?", query.FinancialStatus)
	}
	if query.FulfillmentStatus != "" {
		q = q.Where("fulfillment_status = ?", query.FulfillmentStatus)
	}
	if !query.CursorCreatedAt.IsZero() {
		q = q.Where("(created_at, id) < (?, ?)", query.CursorCreatedAt, query.CursorID)
	}

	var rows []models.Order
	err := q.Find(&rows).Error
	return rows, err
}

// UpdateStatuses writes the given status columns; zero values are skipped.
func (r *Repository) UpdateStatuses(ctx context.Context, id uuid.UUID, fulfillment enums.FulfillmentStatus, financial enums.FinancialStatus) error {
	updates := map[string]any{}
	if fulfillment != "" {
		updates["fulfillment_status"] = fulfillment
	}
	if financial != "" {
		updates["financial_status"] = financial
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetFinancialStatusTx mirrors a payment outcome onto the order inside the
// reconciliation transaction.
func (r *Repository) SetFinancialStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.FinancialStatus) error {
	if tx == nil {
		return fmt.Errorf("financial status update requires a transaction")
	}
	return tx.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("financial_status", status).Error
}
