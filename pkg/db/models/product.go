package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry for a single shoe style.
type Product struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Slug           string           `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Title          string           `gorm:"column:title;not null"`
	Brand          string           `gorm:"column:brand;not null"`
	Color          string           `gorm:"column:color"`
	Category       string           `gorm:"column:category;not null;index"`
	Collection     string           `gorm:"column:collection;index"`
	Description    string           `gorm:"column:description"`
	Price          decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	CompareAtPrice *decimal.Decimal `gorm:"column:compare_at_price;type:numeric(12,2)"`
	ImageURL       string           `gorm:"column:image_url"`
	Images         []string         `gorm:"column:images;type:jsonb;serializer:json"`
	Tags           []string         `gorm:"column:tags;type:jsonb;serializer:json"`
	Sizes          []string         `gorm:"column:sizes;type:jsonb;serializer:json"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
