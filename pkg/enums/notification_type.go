package enums

// NotificationType labels the outbound payment webhook payload.
type NotificationType string

const (
	NotificationTypeInitiated NotificationType = "initiated"
	NotificationTypePartial   NotificationType = "partial"
	NotificationTypeCompleted NotificationType = "completed"
)

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	switch n {
	case NotificationTypeInitiated, NotificationTypePartial, NotificationTypeCompleted:
		return true
	default:
		return false
	}
}
