package credit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
)

// Repository reads and appends rows in the platform-credit ledger. The ledger
// is append-only; a balance is always SUM(amount) over a user's rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AppendTx inserts a ledger row inside the caller's transaction.
func (r *Repository) AppendTx(ctx context.Context, tx *gorm.DB, entry *models.CreditTransaction) error {
	if tx == nil {
		return fmt.Errorf("credit ledger append requires a transaction")
	}
	return tx.WithContext(ctx).Create(entry).Error
}

// BalanceTx sums the user's ledger inside the caller's transaction so a
// concurrent spend cannot slip between the read and the append.
func (r *Repository) BalanceTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (decimal.Decimal, error) {
	if tx == nil {
		tx = r.db
	}
	var raw *string
	err := tx.WithContext(ctx).
		Model(&models.CreditTransaction{}).
		Where("user_id = ?", userID).
		Select("CAST(COALESCE(SUM(amount), 0) AS TEXT)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

// Balance sums the user's ledger outside any transaction.
func (r *Repository) Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	return r.BalanceTx(ctx, r.db, userID)
}

// History returns the user's ledger rows, newest first.
func (r *Repository) History(ctx context.Context, userID uuid.UUID, limit int) ([]models.CreditTransaction, error) {
	var rows []models.CreditTransaction
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
