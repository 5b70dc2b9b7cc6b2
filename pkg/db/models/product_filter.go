package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductFilter is an admin-managed storefront filter group (brand, size, color...).
type ProductFilter struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	Label     string    `gorm:"column:label;not null"`
	Options   []string  `gorm:"column:options;type:jsonb;serializer:json"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (f *ProductFilter) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
