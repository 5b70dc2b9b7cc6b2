package notification

import (
	"github.com/shopspring/decimal"

	"github.com/solemate/solemate-backend/pkg/enums"
)

// WebhookPayload is the JSON body posted to the ops webhook for every payment
// event. Amounts are serialized as decimal strings.
type WebhookPayload struct {
	Type          enums.NotificationType `json:"type"`
	OrderNumber   int64                  `json:"orderNumber"`
	CustomerEmail string                 `json:"customerEmail"`
	Amount        decimal.Decimal        `json:"amount"`
	AmountPaid    decimal.Decimal        `json:"amountPaid"`
	PaymentMethod enums.PaymentMethod    `json:"paymentMethod"`
	Status        enums.PaymentStatus    `json:"status"`
}
