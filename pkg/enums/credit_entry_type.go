package enums

import "fmt"

// CreditEntryType classifies a row in a user's platform-credit ledger.
type CreditEntryType string

const (
	CreditEntryTypeEarned     CreditEntryType = "earned"
	CreditEntryTypeSpent      CreditEntryType = "spent"
	CreditEntryTypeRefund     CreditEntryType = "refund"
	CreditEntryTypeAdjustment CreditEntryType = "adjustment"
)

var validCreditEntryTypes = []CreditEntryType{
	CreditEntryTypeEarned,
	CreditEntryTypeSpent,
	CreditEntryTypeRefund,
	CreditEntryTypeAdjustment,
}

// String implements fmt.Stringer.
func (c CreditEntryType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CreditEntryType.
func (c CreditEntryType) IsValid() bool {
	for _, candidate := range validCreditEntryTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCreditEntryType converts raw input into a CreditEntryType.
func ParseCreditEntryType(value string) (CreditEntryType, error) {
	for _, candidate := range validCreditEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit entry type %q", value)
}
