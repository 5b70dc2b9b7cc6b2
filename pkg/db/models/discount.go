package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/enums"
)

// Discount is a redeemable code: a percent/fixed coupon or a gift card
// carrying a drawable balance.
type Discount struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code        string             `gorm:"column:code;type:text;not null;uniqueIndex"`
	Type        enums.DiscountType `gorm:"column:type;type:text;not null"`
	PercentOff  *int               `gorm:"column:percent_off"`
	AmountOff   *decimal.Decimal   `gorm:"column:amount_off;type:numeric(12,2)"`
	Balance     *decimal.Decimal   `gorm:"column:balance;type:numeric(12,2)"`
	MinPurchase decimal.Decimal    `gorm:"column:min_purchase;type:numeric(12,2);not null;default:0"`
	UsageLimit  *int               `gorm:"column:usage_limit"`
	UsageCount  int                `gorm:"column:usage_count;not null;default:0"`
	ExpiresAt   *time.Time         `gorm:"column:expires_at"`
	IsActive    bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Discount) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
