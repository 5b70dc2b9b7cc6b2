package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
)

// LineItemDTO is one snapshotted row of an order.
type LineItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Title     string          `json:"title"`
	Size      *string         `json:"size,omitempty"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ImageURL  *string         `json:"image_url,omitempty"`
}

// PaymentSummaryDTO is the payment state embedded in an order view.
type PaymentSummaryDTO struct {
	ID            uuid.UUID           `json:"id"`
	Amount        decimal.Decimal     `json:"amount"`
	AmountPaid    decimal.Decimal     `json:"amount_paid"`
	Status        enums.PaymentStatus `json:"status"`
	Method        enums.PaymentMethod `json:"method"`
	TransactionID *string             `json:"transaction_id,omitempty"`
}

// OrderDTO is the full order view for customers and admins.
type OrderDTO struct {
	ID                uuid.UUID               `json:"id"`
	OrderNumber       int64                   `json:"order_number"`
	UserID            uuid.UUID               `json:"user_id"`
	CurrencyCode      enums.Currency          `json:"currency_code"`
	TotalPrice        decimal.Decimal         `json:"total_price"`
	DiscountCode      *string                 `json:"discount_code,omitempty"`
	DiscountAmount    decimal.Decimal         `json:"discount_amount"`
	CreditsApplied    decimal.Decimal         `json:"credits_applied"`
	FulfillmentStatus enums.FulfillmentStatus `json:"fulfillment_status"`
	FinancialStatus   enums.FinancialStatus   `json:"financial_status"`
	Items             []LineItemDTO           `json:"items"`
	Payment           *PaymentSummaryDTO      `json:"payment,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// ListResult pages admin order listings.
type ListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

// FromModel maps an order row (with whatever associations were preloaded)
// into the API shape.
func FromModel(row *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                row.ID,
		OrderNumber:       row.OrderNumber,
		UserID:            row.UserID,
		CurrencyCode:      row.CurrencyCode,
		TotalPrice:        row.TotalPrice,
		DiscountCode:      row.DiscountCode,
		DiscountAmount:    row.DiscountAmount,
		CreditsApplied:    row.CreditsApplied,
		FulfillmentStatus: row.FulfillmentStatus,
		FinancialStatus:   row.FinancialStatus,
		Items:             make([]LineItemDTO, 0, len(row.Items)),
		CreatedAt:         row.CreatedAt,
	}
	for i := range row.Items {
		item := &row.Items[i]
		dto.Items = append(dto.Items, LineItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Size:      item.Size,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			ImageURL:  item.ImageURL,
		})
	}
	if row.Payment != nil {
		dto.Payment = &PaymentSummaryDTO{
			ID:            row.Payment.ID,
			Amount:        row.Payment.Amount,
			AmountPaid:    row.Payment.AmountPaid,
			Status:        row.Payment.Status,
			Method:        row.Payment.Method,
			TransactionID: row.Payment.TransactionID,
		}
	}
	return dto
}
