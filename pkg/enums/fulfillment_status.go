package enums

import "fmt"

// FulfillmentStatus tracks shipping progress for an order.
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartial     FulfillmentStatus = "partial"
	FulfillmentStatusFulfilled   FulfillmentStatus = "fulfilled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusUnfulfilled,
	FulfillmentStatusPartial,
	FulfillmentStatusFulfilled,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
