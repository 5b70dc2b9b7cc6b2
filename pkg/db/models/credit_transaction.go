package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/enums"
)

// CreditTransaction is one append-only row in a user's platform-credit ledger.
// Amount is signed: earns/refunds are positive, spends are negative.
type CreditTransaction struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Type      enums.CreditEntryType `gorm:"column:type;type:text;not null"`
	Amount    decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason    string                `gorm:"column:reason;not null"`
	OrderID   *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (c *CreditTransaction) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
