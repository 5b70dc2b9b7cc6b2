package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
)

// PaymentDTO is the API view of a payment row.
type PaymentDTO struct {
	ID                 uuid.UUID           `json:"id"`
	OrderID            uuid.UUID           `json:"order_id"`
	UserID             uuid.UUID           `json:"user_id"`
	Amount             decimal.Decimal     `json:"amount"`
	AmountPaid         decimal.Decimal     `json:"amount_paid"`
	Status             enums.PaymentStatus `json:"status"`
	Method             enums.PaymentMethod `json:"method"`
	PaymentInitiatedAt *time.Time          `json:"payment_initiated_at,omitempty"`
	TransactionID      *string             `json:"transaction_id,omitempty"`
	Notes              *string             `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// FromModel maps a payment row to its API shape.
func FromModel(row *models.Payment) *PaymentDTO {
	return &PaymentDTO{
		ID:                 row.ID,
		OrderID:            row.OrderID,
		UserID:             row.UserID,
		Amount:             row.Amount,
		AmountPaid:         row.AmountPaid,
		Status:             row.Status,
		Method:             row.Method,
		PaymentInitiatedAt: row.PaymentInitiatedAt,
		TransactionID:      row.TransactionID,
		Notes:              row.Notes,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

// InitiationDTO is the response to a payment initiation call.
type InitiationDTO struct {
	PaymentID          uuid.UUID `json:"payment_id"`
	PaymentInitiatedAt time.Time `json:"payment_initiated_at"`
}

// UpdateInput carries an admin reconciliation write. Nil pointer fields keep
// the stored value; an empty string overwrites it.
type UpdateInput struct {
	AmountPaid    decimal.Decimal
	TransactionID *string
	Notes         *string
}

// UpdateResult reports the status the reconciliation write derived.
type UpdateResult struct {
	Success bool                `json:"success"`
	Status  enums.PaymentStatus `json:"status"`
	Payment *PaymentDTO         `json:"payment"`
}
