package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/enums"
)

// ChatMessage is one persisted turn in an admin assistant conversation.
type ChatMessage struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ConversationID uuid.UUID       `gorm:"column:conversation_id;type:uuid;not null;index"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	Role           enums.ChatRole  `gorm:"column:role;type:text;not null"`
	Content        string          `gorm:"column:content;not null"`
	ToolCalls      json.RawMessage `gorm:"column:tool_calls;type:jsonb"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (m *ChatMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
