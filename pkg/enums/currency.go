package enums

// Currency is the ISO 4217 code carried on money-bearing rows.
type Currency string

const (
	CurrencyINR Currency = "INR"
)

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsValid reports whether the value is a supported Currency.
func (c Currency) IsValid() bool {
	return c == CurrencyINR
}
