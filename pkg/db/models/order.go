package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/enums"
)

// Order is a customer's checkout record. Line-item prices are snapshotted at
// creation and never recomputed from live product prices.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber       int64                   `gorm:"column:order_number;not null;uniqueIndex"`
	UserID            uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	CurrencyCode      enums.Currency          `gorm:"column:currency_code;type:text;not null;default:'INR'"`
	TotalPrice        decimal.Decimal         `gorm:"column:total_price;type:numeric(12,2);not null"`
	DiscountCode      *string                 `gorm:"column:discount_code"`
	DiscountAmount    decimal.Decimal         `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	CreditsApplied    decimal.Decimal         `gorm:"column:credits_applied;type:numeric(12,2);not null;default:0"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'unfulfilled'"`
	FinancialStatus   enums.FinancialStatus   `gorm:"column:financial_status;type:text;not null;default:'pending'"`
	Items             []OrderLineItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment           *Payment                `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
