package payment

import (
	"github.com/shopspring/decimal"

	"github.com/solemate/solemate-backend/pkg/enums"
)

// DeriveStatus recomputes a payment's status from its amounts. The status is
// always a pure function of the pair; there is no transition table, so an
// admin lowering amountPaid moves a paid payment back to partial or pending.
// cancelled is never produced here.
func DeriveStatus(amount, amountPaid decimal.Decimal) enums.PaymentStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(amount):
		return enums.PaymentStatusPaid
	case amountPaid.IsPositive():
		return enums.PaymentStatusPartial
	default:
		return enums.PaymentStatusPending
	}
}

// NotificationTypeFor labels the webhook for a derived status. The pending
// case reuses the "initiated" label, so a zero-amount admin update after
// initiation produces a second initiated-labeled notification.
func NotificationTypeFor(status enums.PaymentStatus) enums.NotificationType {
	switch status {
	case enums.PaymentStatusPaid:
		return enums.NotificationTypeCompleted
	case enums.PaymentStatusPartial:
		return enums.NotificationTypePartial
	default:
		return enums.NotificationTypeInitiated
	}
}
