package notification

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	"github.com/solemate/solemate-backend/pkg/logger"
)

// Service queues payment notifications in the same transaction as the
// mutation that produced them. Delivery happens later in the dispatcher.
type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Emitter is the surface other services use to queue notifications.
type Emitter interface {
	EmitPaymentEvent(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, paymentID uuid.UUID, payload WebhookPayload) error
}

// EmitPaymentEvent writes one outbox row for the given payment.
func (s *Service) EmitPaymentEvent(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, paymentID uuid.UUID, payload WebhookPayload) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	row := models.OutboxEvent{
		EventType:     eventType,
		AggregateType: enums.AggregatePayment,
		AggregateID:   paymentID,
		Payload:       json.RawMessage(body),
	}
	if err := s.repo.InsertTx(tx, row); err != nil {
		return err
	}

	if s.logg != nil {
		fields := map[string]any{
			"event_type":   eventType,
			"aggregate_id": paymentID.String(),
			"order_number": payload.OrderNumber,
			"status":       payload.Status,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "notification queued")
	}
	return nil
}
