package enums

// PaymentMethod identifies how an order is collected.
type PaymentMethod string

const (
	// PaymentMethodUPI is the only method the storefront offers today:
	// a QR deep link the customer scans, reconciled by hand by an admin.
	PaymentMethodUPI PaymentMethod = "UPI"
)

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	return p == PaymentMethodUPI
}
