package assistant

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
)

// Repository persists admin assistant conversations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append stores one chat turn.
func (r *Repository) Append(ctx context.Context, conversationID, userID uuid.UUID, role enums.ChatRole, content string, toolCalls json.RawMessage) error {
	row := &models.ChatMessage{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		ToolCalls:      toolCalls,
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// History returns a conversation's turns oldest first.
func (r *Repository) History(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	var rows []models.ChatMessage
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}
