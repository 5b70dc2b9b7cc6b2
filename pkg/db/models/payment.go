package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/enums"
)

// Payment is the manual-reconciliation record for an order's UPI transfer.
// Exactly one row exists per order, enforced by the unique index on order_id.
type Payment struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID            uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_payments_order_id"`
	UserID             uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Amount             decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	AmountPaid         decimal.Decimal     `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	Status             enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Method             enums.PaymentMethod `gorm:"column:method;type:text;not null;default:'UPI'"`
	PaymentInitiatedAt *time.Time          `gorm:"column:payment_initiated_at"`
	TransactionID      *string             `gorm:"column:transaction_id"`
	Notes              *string             `gorm:"column:notes"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
