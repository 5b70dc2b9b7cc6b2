package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HomepageSection is one ordered block of admin-managed homepage content.
type HomepageSection struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Kind      string          `gorm:"column:kind;not null"`
	Title     string          `gorm:"column:title"`
	Position  int             `gorm:"column:position;not null;default:0"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb"`
	IsActive  bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *HomepageSection) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
